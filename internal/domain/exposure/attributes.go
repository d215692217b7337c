package exposure

import (
	"fmt"

	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

const (
	AttrAnalyte       = "ANALYTE"
	AttrVisit         = "VISIT"
	AttrCycle         = "CYCLE"
	AttrDose          = "DOSE"
	AttrNominalHour   = "NOMINAL_HOUR"
	AttrConcentration = "CONCENTRATION"
	AttrCycleStart    = "CYCLE_START_DAY"
	AttrCycleEnd      = "CYCLE_END_DAY"
)

func cycle(s *Sample) engine.Value {
	if s.Cycle == nil {
		return engine.Empty
	}
	return engine.Ordinal(fmt.Sprintf("Cycle %d", *s.Cycle), *s.Cycle)
}

func dose(s *Sample) engine.Value {
	if s.Dose == nil {
		return engine.Empty
	}
	if s.DoseUnit == nil {
		return engine.Number(*s.Dose)
	}
	return engine.Ordinal(fmt.Sprintf("%g %s", *s.Dose, *s.DoseUnit), int(*s.Dose*1000))
}

var Attributes = engine.NewAttributes(append([]engine.Attribute[*Sample]{
	engine.Attr(AttrAnalyte, "Analyte", func(s *Sample) engine.Value { return engine.String(s.Analyte) }),
	engine.Attr(AttrVisit, "Visit", func(s *Sample) engine.Value { return engine.StringPtr(s.Visit) }),
	engine.Attr(AttrCycle, "Cycle", cycle),
	engine.Attr(AttrDose, "Dose", dose),
	engine.Attr(AttrNominalHour, "Nominal time (h)", func(s *Sample) engine.Value { return engine.NumberPtr(s.NominalHour) }).Binnable(),
	engine.Attr(AttrConcentration, "Concentration", func(s *Sample) engine.Value { return engine.NumberPtr(s.Concentration) }).Binnable(),
	engine.Attr(AttrCycleStart, "Cycle start day", func(s *Sample) engine.Value { return engine.NumberPtr(s.CycleStartDay()) }).Binnable(),
	engine.Attr(AttrCycleEnd, "Cycle end day", func(s *Sample) engine.Value { return engine.NumberPtr(s.CycleEndDay()) }).Binnable(),
}, population.Lift(func(s *Sample) *population.Subject { return s.Subject })...)...)

var FilterSpecs = []engine.FilterSpec{
	{Attr: AttrAnalyte, Kind: engine.FilterSet},
	{Attr: AttrCycle, Kind: engine.FilterSet},
	{Attr: AttrDose, Kind: engine.FilterSet},
	{Attr: AttrVisit, Kind: engine.FilterSet},
	{Attr: AttrNominalHour, Kind: engine.FilterRange},
}
