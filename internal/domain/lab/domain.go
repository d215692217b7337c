// Package lab charts laboratory results: value distributions per visit,
// reference range shifts and per-subject trajectories.
package lab

import (
	"github.com/ehr/trialviz/internal/chart"
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const Name = "labs"

func NewDomain() *chart.Domain[*Result] {
	return &chart.Domain[*Result]{
		Name:        Name,
		Attributes:  Attributes,
		FilterSpecs: FilterSpecs,
		Candidates: chart.Candidates{
			XAxis:    []string{AttrVisit, AttrVisitNumber, AttrStudyDay, AttrRangeCategory},
			Trellis:  []string{AttrTest, AttrCategory, population.AttrArm, population.AttrSex},
			ColorBy:  []string{AttrRangeCategory, population.AttrArm, population.AttrSex},
			SeriesBy: []string{engine.SubjectAttr},
		},
		Families: []engine.Family{engine.FamilyBox, engine.FamilyRange, engine.FamilyShift, engine.FamilyLine},
		Attach:   func(r *Result, s *population.Subject) { r.Subject = s },
		Shift:    chart.ShiftDefaults{Timepoint: AttrVisit, Category: AttrRangeCategory},
	}
}
