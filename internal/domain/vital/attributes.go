package vital

import (
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const (
	AttrTest     = "TEST"
	AttrVisit    = "VISIT"
	AttrValue    = "VALUE"
	AttrUnit     = "UNIT"
	AttrChange   = "CHANGE_FROM_BASELINE"
	AttrPosition = "POSITION"
	AttrStudyDay = "STUDY_DAY"
)

func visit(v *Sign) engine.Value {
	switch {
	case v.Visit == nil:
		return engine.Empty
	case v.VisitNumber == nil:
		return engine.String(*v.Visit)
	default:
		return engine.Ordinal(*v.Visit, int(*v.VisitNumber))
	}
}

var Attributes = engine.NewAttributes(append([]engine.Attribute[*Sign]{
	engine.Attr(AttrTest, "Vital sign", func(v *Sign) engine.Value { return engine.String(v.TestName) }),
	engine.Attr(AttrVisit, "Visit", visit),
	engine.Attr(AttrValue, "Value", func(v *Sign) engine.Value { return engine.NumberPtr(v.Value) }).Binnable(),
	engine.Attr(AttrUnit, "Unit", func(v *Sign) engine.Value { return engine.StringPtr(v.Unit) }),
	engine.Attr(AttrChange, "Change from baseline", func(v *Sign) engine.Value { return engine.NumberPtr(v.ChangeFromBaseline()) }).Binnable(),
	engine.Attr(AttrPosition, "Position", func(v *Sign) engine.Value { return engine.StringPtr(v.Position) }),
	engine.Attr(AttrStudyDay, "Study day", func(v *Sign) engine.Value { return engine.NumberPtr(v.StudyDay()) }).Binnable(),
}, population.Lift(func(v *Sign) *population.Subject { return v.Subject })...)...)

var FilterSpecs = []engine.FilterSpec{
	{Attr: AttrTest, Kind: engine.FilterSet},
	{Attr: AttrVisit, Kind: engine.FilterSet},
	{Attr: AttrPosition, Kind: engine.FilterSet},
	{Attr: AttrValue, Kind: engine.FilterRange},
}
