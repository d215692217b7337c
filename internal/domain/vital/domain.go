// Package vital charts vital signs by visit and over time.
package vital

import (
	"github.com/ehr/trialviz/internal/chart"
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const Name = "vitals"

func NewDomain() *chart.Domain[*Sign] {
	return &chart.Domain[*Sign]{
		Name:        Name,
		Attributes:  Attributes,
		FilterSpecs: FilterSpecs,
		Candidates: chart.Candidates{
			XAxis:    []string{AttrVisit, AttrStudyDay},
			Trellis:  []string{AttrTest, AttrPosition, population.AttrArm},
			ColorBy:  []string{population.AttrArm, population.AttrSex, AttrPosition},
			SeriesBy: []string{engine.SubjectAttr},
		},
		Families: []engine.Family{engine.FamilyBox, engine.FamilyRange, engine.FamilyLine},
		Attach:   func(v *Sign, s *population.Subject) { v.Subject = s },
	}
}
