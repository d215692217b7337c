package lab

import (
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const (
	AttrTest          = "TEST"
	AttrCategory      = "LAB_CATEGORY"
	AttrVisitNumber   = "VISIT_NUMBER"
	AttrVisit         = "VISIT"
	AttrValue         = "VALUE"
	AttrUnit          = "UNIT"
	AttrBaseline      = "BASELINE"
	AttrChange        = "CHANGE_FROM_BASELINE"
	AttrRangeCategory = "RANGE_CATEGORY"
	AttrStudyDay      = "STUDY_DAY"
)

var rangeRank = map[string]int{RangeLow: 1, RangeNormal: 2, RangeHigh: 3}

func rangeCategory(r *Result) engine.Value {
	c := r.RangeCategory()
	if rank, ok := rangeRank[c]; ok {
		return engine.Ordinal(c, rank)
	}
	return engine.String(c)
}

// visit orders analysis visits by their visit number.
func visit(r *Result) engine.Value {
	if r.AnalysisVisit == nil {
		return engine.Empty
	}
	if r.VisitNumber == nil {
		return engine.String(*r.AnalysisVisit)
	}
	return engine.Ordinal(*r.AnalysisVisit, int(*r.VisitNumber))
}

var Attributes = engine.NewAttributes(append([]engine.Attribute[*Result]{
	engine.Attr(AttrTest, "Lab test", func(r *Result) engine.Value { return engine.String(r.TestName) }),
	engine.Attr(AttrCategory, "Lab category", func(r *Result) engine.Value { return engine.StringPtr(r.Category) }),
	engine.Attr(AttrVisitNumber, "Visit number", func(r *Result) engine.Value { return engine.NumberPtr(r.VisitNumber) }),
	engine.Attr(AttrVisit, "Analysis visit", visit),
	engine.Attr(AttrValue, "Value", func(r *Result) engine.Value { return engine.NumberPtr(r.Value) }).Binnable(),
	engine.Attr(AttrUnit, "Unit", func(r *Result) engine.Value { return engine.StringPtr(r.Unit) }),
	engine.Attr(AttrBaseline, "Baseline", func(r *Result) engine.Value { return engine.NumberPtr(r.Baseline) }).Binnable(),
	engine.Attr(AttrChange, "Change from baseline", func(r *Result) engine.Value { return engine.NumberPtr(r.ChangeFromBaseline()) }).Binnable(),
	engine.Attr(AttrRangeCategory, "Reference range", rangeCategory),
	engine.Attr(AttrStudyDay, "Study day", func(r *Result) engine.Value { return engine.NumberPtr(r.StudyDay()) }).Binnable(),
}, population.Lift(func(r *Result) *population.Subject { return r.Subject })...)...)

var FilterSpecs = []engine.FilterSpec{
	{Attr: AttrTest, Kind: engine.FilterSet},
	{Attr: AttrCategory, Kind: engine.FilterSet},
	{Attr: AttrVisit, Kind: engine.FilterSet},
	{Attr: AttrRangeCategory, Kind: engine.FilterSet},
	{Attr: AttrValue, Kind: engine.FilterRange},
	{Attr: AttrStudyDay, Kind: engine.FilterRange},
}
