// Package exposure charts pharmacokinetic exposure: concentration-time
// profiles per subject and cycle, and treatment cycle spans.
package exposure

import (
	"github.com/ehr/trialviz/internal/chart"
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const Name = "exposure"

func NewDomain() *chart.Domain[*Sample] {
	return &chart.Domain[*Sample]{
		Name:        Name,
		Attributes:  Attributes,
		FilterSpecs: FilterSpecs,
		Candidates: chart.Candidates{
			XAxis:    []string{AttrNominalHour, AttrVisit, AttrCycle, AttrDose},
			Trellis:  []string{AttrAnalyte, AttrCycle, AttrDose, population.AttrArm},
			ColorBy:  []string{AttrDose, AttrCycle, population.AttrArm},
			SeriesBy: []string{engine.SubjectAttr},
		},
		Families: []engine.Family{engine.FamilyLine, engine.FamilyColumnRange, engine.FamilyBox},
		Prepass:  engine.ExcludeSinglePointSeries(series),
		Attach:   func(s *Sample, subj *population.Subject) { s.Subject = subj },
	}
}
