package adverseevent

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/trialviz/internal/chart"
	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
	"github.com/ehr/trialviz/internal/provider"
)

func day(d int) *time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d-1)
	return &t
}

func grade(g int) *int { return &g }

func subjects() []*population.Subject {
	drug, placebo := "Drug", "Placebo"
	return []*population.Subject{
		{USUBJID: "s1", DatasetID: "ds1", Arm: &drug, FirstTreatmentDate: day(1)},
		{USUBJID: "s2", DatasetID: "ds1", Arm: &placebo, FirstTreatmentDate: day(1)},
	}
}

func events() []*AdverseEvent {
	return []*AdverseEvent{
		{RecordID: "a1", USUBJID: "s1", SystemOrganClass: "Gastrointestinal", PreferredTerm: "Nausea", Grade: grade(1),
			StartDate: day(3), EndDate: day(5), SpecialInterest: []string{"GI toxicity"}},
		{RecordID: "a2", USUBJID: "s1", SystemOrganClass: "Gastrointestinal", PreferredTerm: "Vomiting", Grade: grade(3),
			Serious: true, StartDate: day(10), SpecialInterest: []string{"GI toxicity", "Dehydration"}},
		{RecordID: "a3", USUBJID: "s1", SystemOrganClass: "Nervous system", PreferredTerm: "Headache", Grade: grade(2)},
		{RecordID: "a4", USUBJID: "s2", SystemOrganClass: "Gastrointestinal", PreferredTerm: "Nausea", Grade: grade(2)},
	}
}

func newService() *chart.Service[*AdverseEvent] {
	ev := provider.EventLoaderFunc[*AdverseEvent](func(ctx context.Context, datasets []string) ([]*AdverseEvent, error) {
		return events(), nil
	})
	pop := provider.PopulationLoaderFunc(func(ctx context.Context, datasets []string) ([]*population.Subject, error) {
		return subjects(), nil
	})
	return chart.NewService(NewDomain(), ev, pop, zerolog.Nop(), nil)
}

func TestAdverseEvent_Days(t *testing.T) {
	e := events()[0]
	e.Subject = subjects()[0]
	if d := e.StartDay(); d == nil || *d != 3 {
		t.Errorf("expected start day 3, got %v", d)
	}
	if d := e.Duration(); d == nil || *d != 3 {
		t.Errorf("expected a 3 day event, got %v", d)
	}
	ongoing := events()[1]
	if ongoing.Duration() != nil || ongoing.StartDay() != nil {
		t.Error("expected no duration for an ongoing event and no study day without subject")
	}
}

func TestDomain_MaxSeverityBySOC(t *testing.T) {
	req := chart.ChartRequest{
		Request: chart.Request{Settings: engine.Settings{
			XAxis:   &engine.AttrRef{Attr: AttrSOC},
			ColorBy: &engine.AttrRef{Attr: AttrMaxSeverity},
		}},
		Family:    engine.FamilyBar,
		CountType: engine.CountOfSubjects,
	}
	charts, err := newService().Chart(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bars := charts[0].Data.(engine.BarChart).Bars
	if len(bars) != 3 {
		t.Fatalf("expected 3 bar segments, got %d", len(bars))
	}
	for _, b := range bars {
		if b.Calc.Subjects != 1 {
			t.Errorf("segment %s: expected 1 subject, got %d", b.Key, b.Calc.Subjects)
		}
		soc, sev := b.Key.Get(engine.RoleXAxis).Token(), b.Key.Get(engine.RoleColorBy).Label()
		if soc == "Gastrointestinal" && sev == "Grade 3" && b.Calc.Events != 2 {
			t.Errorf("expected both of s1's GI events under Grade 3, got %d", b.Calc.Events)
		}
		if soc == "Gastrointestinal" && sev == "Grade 1" {
			t.Error("s1's Grade 1 nausea must roll up to its max severity")
		}
	}
}

func TestDomain_SpecialInterestIsMultiValued(t *testing.T) {
	req := chart.SelectionRequest{
		ChartRequest: chart.ChartRequest{
			Request: chart.Request{Settings: engine.Settings{XAxis: &engine.AttrRef{Attr: AttrSpecialInterest}}},
			Family:  engine.FamilyBar,
		},
		Items: []engine.Key{engine.NewKey(engine.Part{Dim: engine.RoleXAxis, Value: engine.String("GI toxicity")})},
	}
	sel, err := newService().Selection(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sel.EventIDs) != 2 || sel.EventIDs[0] != "a1" || sel.EventIDs[1] != "a2" {
		t.Errorf("expected a1 and a2, got %v", sel.EventIDs)
	}
}

func TestDomain_ColumnRangeOfOnset(t *testing.T) {
	req := chart.ChartRequest{
		Request: chart.Request{Settings: engine.Settings{XAxis: &engine.AttrRef{Attr: AttrPT}}},
		Family:  engine.FamilyColumnRange,
		Low:     &engine.AttrRef{Attr: AttrStartDay},
		High:    &engine.AttrRef{Attr: AttrEndDay},
	}
	charts, err := newService().Chart(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cols := charts[0].Data.(engine.ColumnRangeChart).Columns
	for _, c := range cols {
		if c.Key.Get(engine.RoleXAxis).Token() != "Nausea" {
			continue
		}
		if c.Calc.Low == nil || *c.Calc.Low != 3 || c.Calc.High == nil || *c.Calc.High != 5 {
			t.Errorf("unexpected nausea range %v..%v", c.Calc.Low, c.Calc.High)
		}
	}
}

func TestDomain_Wiring(t *testing.T) {
	d := NewDomain()
	for _, spec := range d.FilterSpecs {
		if !d.Attributes.Has(spec.Attr) {
			t.Errorf("filter %s has no attribute", spec.Attr)
		}
	}
	c := d.Candidates
	for _, names := range [][]string{c.XAxis, c.Trellis, c.ColorBy, c.SeriesBy} {
		for _, name := range names {
			if name != engine.SubjectAttr && !d.Attributes.Has(name) {
				t.Errorf("candidate %s has no attribute", name)
			}
		}
	}
	if d.Supports(engine.FamilyWaterfall) {
		t.Error("adverse events do not chart waterfalls")
	}
}
