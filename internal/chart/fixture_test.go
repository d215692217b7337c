package chart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
	"github.com/ehr/trialviz/internal/provider"
	"github.com/ehr/trialviz/pkg/pagination"
)

type item struct {
	id      string
	usubjid string
	soc     string
	grade   int
	visit   string
	cat     string
	day     *float64
	value   *float64
	subject *population.Subject
}

func (i *item) ID() string        { return i.id }
func (i *item) SubjectID() string { return i.usubjid }

func num(f float64) *float64 { return &f }
func str(s string) *string   { return &s }

func gradeValue(g int) engine.Value {
	if g == 0 {
		return engine.Empty
	}
	return engine.Ordinal(fmt.Sprintf("Grade %d", g), g)
}

var itemAttrs = engine.NewAttributes(
	engine.Attr("SOC", "System organ class", func(i *item) engine.Value { return engine.String(i.soc) }),
	engine.Attr("GRADE", "Grade", func(i *item) engine.Value { return gradeValue(i.grade) }),
	engine.Attr("VISIT", "Visit", func(i *item) engine.Value { return engine.String(i.visit) }),
	engine.Attr("CATEGORY", "Category", func(i *item) engine.Value { return engine.String(i.cat) }),
	engine.Attr("DAY", "Day", func(i *item) engine.Value { return engine.NumberPtr(i.day) }).Binnable(),
	engine.Attr("VALUE", "Value", func(i *item) engine.Value { return engine.NumberPtr(i.value) }),
	engine.Attr("ARM", "Arm", func(i *item) engine.Value { return engine.StringPtr(i.subject.Arm) }),
	engine.ContextAttr[*item]("MAX_GRADE", "Max grade", "maxGrade", func(i *item, ctx *engine.Context) engine.Value {
		return ctx.Lookup("maxGrade", i.id)
	}),
)

func testDomain() *Domain[*item] {
	return &Domain[*item]{
		Name:       "items",
		Attributes: itemAttrs,
		Resolvers: map[string]engine.Resolver[*item]{
			"maxGrade": engine.MaxPerSubject[*item]("GRADE"),
		},
		FilterSpecs: []engine.FilterSpec{
			{Attr: "SOC", Kind: engine.FilterSet},
			{Attr: "VALUE", Kind: engine.FilterRange},
		},
		Candidates: Candidates{
			XAxis:    []string{"SOC", "GRADE", "MAX_GRADE", "DAY"},
			Trellis:  []string{"ARM", "SOC"},
			ColorBy:  []string{"GRADE", "MAX_GRADE"},
			SeriesBy: []string{engine.SubjectAttr},
		},
		Families: []engine.Family{
			engine.FamilyBar, engine.FamilyBox, engine.FamilyShift,
			engine.FamilyWaterfall, engine.FamilyLine, engine.FamilyHeatmap,
		},
		Attach: func(i *item, s *population.Subject) { i.subject = s },
		Row: func(i *item) any {
			return map[string]any{"id": i.id, "usubjid": i.usubjid, "soc": i.soc}
		},
		Shift: ShiftDefaults{Timepoint: "VISIT", Category: "CATEGORY"},
	}
}

func testSubjects() []*population.Subject {
	return []*population.Subject{
		{USUBJID: "s1", DatasetID: "ds1", Arm: str("Drug")},
		{USUBJID: "s2", DatasetID: "ds1", Arm: str("Placebo")},
		{USUBJID: "s3", DatasetID: "ds1", Arm: str("Drug")},
	}
}

// testItems are eight entities over three subjects plus one orphan.
func testItems() []*item {
	return []*item{
		{id: "i1", usubjid: "s1", soc: "A", grade: 1, visit: "BASELINE", cat: "NORMAL", day: num(1), value: num(10)},
		{id: "i2", usubjid: "s1", soc: "A", grade: 3, visit: "WEEK 4", cat: "HIGH", day: num(28), value: num(-20)},
		{id: "i3", usubjid: "s1", soc: "B", grade: 2, day: num(5), value: num(4)},
		{id: "i4", usubjid: "s2", soc: "A", grade: 2, visit: "BASELINE", cat: "NORMAL", day: num(2), value: num(6)},
		{id: "i5", usubjid: "s2", soc: "C", visit: "WEEK 4", cat: "NORMAL", day: num(30)},
		{id: "i6", usubjid: "s3", soc: "B", grade: 1, visit: "BASELINE", cat: "LOW", day: num(3), value: num(35)},
		{id: "i7", usubjid: "s3", soc: "B", grade: 4, day: num(9), value: num(8)},
		{id: "i8", usubjid: "s3", soc: "A", grade: 2, day: num(12), value: num(12)},
		{id: "i9", usubjid: "s404", soc: "A", grade: 5},
	}
}

func itemLoader() provider.EventLoader[*item] {
	return provider.EventLoaderFunc[*item](func(ctx context.Context, datasets []string) ([]*item, error) {
		return testItems(), nil
	})
}

func subjectLoader() provider.PopulationLoader {
	return provider.PopulationLoaderFunc(func(ctx context.Context, datasets []string) ([]*population.Subject, error) {
		return testSubjects(), nil
	})
}

func newTestService() *Service[*item] {
	return NewService(testDomain(), itemLoader(), subjectLoader(), zerolog.Nop(), nil)
}

// recorder captures metric observations.
type recorder struct {
	charts   []engine.Family
	filtered []int
}

func (r *recorder) ObserveChart(domain string, family engine.Family, _ time.Duration) {
	r.charts = append(r.charts, family)
}

func (r *recorder) ObserveFiltered(domain string, events, subjects int) {
	r.filtered = append(r.filtered, events)
}

// stubService is a DomainService whose Metadata is scripted.
type stubService struct {
	name string
	md   func() (*Metadata, error)
}

func (s *stubService) Name() string              { return s.name }
func (s *stubService) Families() []engine.Family { return []engine.Family{engine.FamilyBar} }
func (s *stubService) Chart(context.Context, ChartRequest) ([]engine.TrellisedChart, error) {
	return nil, errors.New("not implemented")
}
func (s *stubService) Selection(context.Context, SelectionRequest) (engine.SelectionDetail, error) {
	return engine.SelectionDetail{}, errors.New("not implemented")
}
func (s *stubService) Options(context.Context, Request) (Options, error) {
	return Options{}, errors.New("not implemented")
}
func (s *stubService) AvailableFilters(context.Context, Request) (FilterOptions, error) {
	return FilterOptions{}, errors.New("not implemented")
}
func (s *stubService) Details(context.Context, DetailsRequest) (*pagination.Response, error) {
	return nil, errors.New("not implemented")
}
func (s *stubService) Metadata(ctx context.Context, datasets []string) (*Metadata, error) {
	return s.md()
}
