// Package tumour charts tumour response: per-subject waterfalls of the best
// percentage change and lesion trajectories.
package tumour

import (
	"github.com/ehr/trialviz/internal/chart"
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const Name = "tumour-response"

func NewDomain() *chart.Domain[*Assessment] {
	return &chart.Domain[*Assessment]{
		Name:        Name,
		Attributes:  Attributes,
		FilterSpecs: FilterSpecs,
		Candidates: chart.Candidates{
			XAxis:    []string{AttrVisit, AttrStudyDay},
			Trellis:  []string{population.AttrArm, AttrLesionType, population.AttrStudyPart},
			ColorBy:  []string{AttrBestResponse, AttrOverallResponse, population.AttrArm},
			SeriesBy: []string{engine.SubjectAttr, AttrLesion},
		},
		Families: []engine.Family{engine.FamilyWaterfall, engine.FamilyLine},
		Attach:   func(a *Assessment, s *population.Subject) { a.Subject = s },
	}
}
