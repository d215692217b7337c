package adverseevent

import (
	"fmt"

	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const (
	AttrPT              = "PT"
	AttrHLT             = "HLT"
	AttrSOC             = "SOC"
	AttrSeverity        = "SEVERITY"
	AttrMaxSeverity     = "MAX_SEVERITY"
	AttrSerious         = "SERIOUS"
	AttrCausality       = "CAUSALITY"
	AttrOutcome         = "OUTCOME"
	AttrActionTaken     = "ACTION_TAKEN"
	AttrSpecialInterest = "SPECIAL_INTEREST"
	AttrStartDate       = "START_DATE"
	AttrStartDay        = "START_DAY"
	AttrEndDay          = "END_DAY"
	AttrDuration        = "DURATION"
)

// maxSeverityContext is the side-table holding each event's subject-level
// worst grade.
const maxSeverityContext = "maxSeverity"

// severity renders a CTCAE grade as an ordinal so "Grade 10" never sorts
// before "Grade 2".
func severity(grade *int) engine.Value {
	if grade == nil {
		return engine.Empty
	}
	return engine.Ordinal(fmt.Sprintf("Grade %d", *grade), *grade)
}

var Attributes = engine.NewAttributes(append([]engine.Attribute[*AdverseEvent]{
	engine.Attr(AttrPT, "Preferred term", func(e *AdverseEvent) engine.Value { return engine.String(e.PreferredTerm) }),
	engine.Attr(AttrHLT, "High level term", func(e *AdverseEvent) engine.Value { return engine.StringPtr(e.HighLevelTerm) }),
	engine.Attr(AttrSOC, "System organ class", func(e *AdverseEvent) engine.Value { return engine.String(e.SystemOrganClass) }),
	engine.Attr(AttrSeverity, "Severity", func(e *AdverseEvent) engine.Value { return severity(e.Grade) }),
	engine.ContextAttr[*AdverseEvent](AttrMaxSeverity, "Max severity per subject", maxSeverityContext,
		func(e *AdverseEvent, ctx *engine.Context) engine.Value { return ctx.Lookup(maxSeverityContext, e.ID()) }),
	engine.Attr(AttrSerious, "Serious", func(e *AdverseEvent) engine.Value { return engine.Bool(e.Serious) }),
	engine.Attr(AttrCausality, "Causality", func(e *AdverseEvent) engine.Value { return engine.StringPtr(e.Causality) }),
	engine.Attr(AttrOutcome, "Outcome", func(e *AdverseEvent) engine.Value { return engine.StringPtr(e.Outcome) }),
	engine.Attr(AttrActionTaken, "Action taken", func(e *AdverseEvent) engine.Value { return engine.StringPtr(e.ActionTaken) }),
	engine.MultiAttr(AttrSpecialInterest, "Special interest group", func(e *AdverseEvent) []engine.Value {
		vs := make([]engine.Value, 0, len(e.SpecialInterest))
		for _, g := range e.SpecialInterest {
			vs = append(vs, engine.String(g))
		}
		return vs
	}),
	engine.Attr(AttrStartDate, "Start date", func(e *AdverseEvent) engine.Value { return engine.DatePtr(e.StartDate) }).Binnable(),
	engine.Attr(AttrStartDay, "Start day", func(e *AdverseEvent) engine.Value { return engine.NumberPtr(e.StartDay()) }).Binnable(),
	engine.Attr(AttrEndDay, "End day", func(e *AdverseEvent) engine.Value { return engine.NumberPtr(e.EndDay()) }).Binnable(),
	engine.Attr(AttrDuration, "Duration (days)", func(e *AdverseEvent) engine.Value { return engine.NumberPtr(e.Duration()) }).Binnable(),
}, population.Lift(func(e *AdverseEvent) *population.Subject { return e.Subject })...)...)

var FilterSpecs = []engine.FilterSpec{
	{Attr: AttrSOC, Kind: engine.FilterSet},
	{Attr: AttrHLT, Kind: engine.FilterSet},
	{Attr: AttrPT, Kind: engine.FilterSet},
	{Attr: AttrSeverity, Kind: engine.FilterSet},
	{Attr: AttrSerious, Kind: engine.FilterBool},
	{Attr: AttrCausality, Kind: engine.FilterSet},
	{Attr: AttrOutcome, Kind: engine.FilterSet},
	{Attr: AttrSpecialInterest, Kind: engine.FilterSet},
	{Attr: AttrStartDate, Kind: engine.FilterDateRange},
	{Attr: AttrStartDay, Kind: engine.FilterRange},
}
