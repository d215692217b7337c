// Package adverseevent charts adverse events: counts by term and grade,
// onset heat maps and event duration ranges.
package adverseevent

import (
	"github.com/ehr/trialviz/internal/chart"
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const Name = "adverse-events"

func NewDomain() *chart.Domain[*AdverseEvent] {
	return &chart.Domain[*AdverseEvent]{
		Name:       Name,
		Attributes: Attributes,
		Resolvers: map[string]engine.Resolver[*AdverseEvent]{
			maxSeverityContext: engine.MaxPerSubject[*AdverseEvent](AttrSeverity),
		},
		FilterSpecs: FilterSpecs,
		Candidates: chart.Candidates{
			XAxis: []string{AttrSOC, AttrHLT, AttrPT, AttrSeverity, AttrMaxSeverity, AttrSerious,
				AttrCausality, AttrOutcome, AttrActionTaken, AttrSpecialInterest, AttrStartDay},
			Trellis:  []string{population.AttrArm, population.AttrStudyPart, population.AttrSex, AttrSOC, AttrSerious},
			ColorBy:  []string{AttrSeverity, AttrMaxSeverity, AttrSerious, AttrCausality, AttrOutcome, population.AttrArm},
			SeriesBy: []string{engine.SubjectAttr, AttrPT},
		},
		Families: []engine.Family{engine.FamilyBar, engine.FamilyHeatmap, engine.FamilyColumnRange},
		Attach:   func(e *AdverseEvent, s *population.Subject) { e.Subject = s },
		Row:      toRow,
	}
}
