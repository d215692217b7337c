package tumour

import (
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const (
	AttrLesion          = "LESION_ID"
	AttrLesionType      = "LESION_TYPE"
	AttrVisit           = "VISIT"
	AttrDiameter        = "DIAMETER"
	AttrPercentChange   = "PERCENT_CHANGE"
	AttrOverallResponse = "OVERALL_RESPONSE"
	AttrBestResponse    = "BEST_RESPONSE"
	AttrStudyDay        = "STUDY_DAY"
)

// RECIST responses, best first.
var responseRank = map[string]int{"CR": 1, "PR": 2, "SD": 3, "PD": 4, "NE": 5}

func response(r *string) engine.Value {
	if r == nil {
		return engine.Empty
	}
	if rank, ok := responseRank[*r]; ok {
		return engine.Ordinal(*r, rank)
	}
	return engine.String(*r)
}

func visit(a *Assessment) engine.Value {
	switch {
	case a.Visit == nil:
		return engine.Empty
	case a.VisitNumber == nil:
		return engine.String(*a.Visit)
	default:
		return engine.Ordinal(*a.Visit, int(*a.VisitNumber))
	}
}

var Attributes = engine.NewAttributes(append([]engine.Attribute[*Assessment]{
	engine.Attr(AttrLesion, "Lesion", func(a *Assessment) engine.Value { return engine.StringPtr(a.LesionID) }),
	engine.Attr(AttrLesionType, "Lesion type", func(a *Assessment) engine.Value { return engine.StringPtr(a.LesionType) }),
	engine.Attr(AttrVisit, "Assessment visit", visit),
	engine.Attr(AttrDiameter, "Diameter (mm)", func(a *Assessment) engine.Value { return engine.NumberPtr(a.Diameter) }).Binnable(),
	engine.Attr(AttrPercentChange, "% change from baseline", func(a *Assessment) engine.Value { return engine.NumberPtr(a.PercentChange) }).Binnable(),
	engine.Attr(AttrOverallResponse, "Overall response", func(a *Assessment) engine.Value { return response(a.OverallResponse) }),
	engine.Attr(AttrBestResponse, "Best overall response", func(a *Assessment) engine.Value { return response(a.BestResponse) }),
	engine.Attr(AttrStudyDay, "Study day", func(a *Assessment) engine.Value { return engine.NumberPtr(a.StudyDay()) }).Binnable(),
}, population.Lift(func(a *Assessment) *population.Subject { return a.Subject })...)...)

var FilterSpecs = []engine.FilterSpec{
	{Attr: AttrLesionType, Kind: engine.FilterSet},
	{Attr: AttrVisit, Kind: engine.FilterSet},
	{Attr: AttrBestResponse, Kind: engine.FilterSet},
	{Attr: AttrPercentChange, Kind: engine.FilterRange},
}
