package engine

import (
	"errors"
	"testing"
)

func TestHeatmap_SharedCategories(t *testing.T) {
	s := Settings{Trellis: []AttrRef{{Attr: "SOC"}}, XAxis: ref("DAY")}
	bindings := append(s.Bindings(), Binding{Dim: RoleYAxis, Attr: "SEVERITY"})
	g, err := Group(tenEvents(), testAttrs, bindings, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hm := Heatmap(g, false)
	if len(hm.XCategories) != 10 {
		t.Errorf("expected 10 shared X categories, got %d", len(hm.XCategories))
	}
	if len(hm.YCategories) != 4 || !hm.YCategories[3].IsEmpty() {
		t.Errorf("expected 3 grades then Empty, got %v", hm.YCategories)
	}

	charts := HeatmapCharts(hm, s.TrellisDims())
	if len(charts) != 3 {
		t.Fatalf("expected 3 trellised charts, got %d", len(charts))
	}
	for _, c := range charts {
		data := c.Data.(HeatmapChart)
		if len(data.XCategories) != 10 || len(data.YCategories) != 4 {
			t.Errorf("trellis %v does not share the coordinate system", c.Trellis)
		}
		for _, cell := range data.Cells {
			if !hm.XCategories[cell.Calc.X].Matches(cell.Key.Get(RoleXAxis)) {
				t.Errorf("cell %s indexed at wrong X", cell.Key)
			}
			if !hm.YCategories[cell.Calc.Y].Matches(cell.Key.Get(RoleYAxis)) {
				t.Errorf("cell %s indexed at wrong Y", cell.Key)
			}
		}
	}
}

func TestWaterfall_OrderedByValue(t *testing.T) {
	events := []testEvent{
		{id: "t1", subject: "s1", result: ptr(-30)},
		{id: "t2", subject: "s1", result: ptr(-50)},
		{id: "t3", subject: "s2", result: ptr(20)},
		{id: "t4", subject: "s3", result: ptr(20)},
		{id: "t5", subject: "s4"},
	}
	bindings := []Binding{{Dim: RoleSubject, Attr: SubjectAttr}}
	g, err := Group(events, testAttrs, bindings, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wf, err := Waterfall(g, resultMeasure(t), ReduceMin, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalStrings(wf.Subjects, []string{"s2", "s3", "s1", "s4"}) {
		t.Errorf("unexpected subject order %v", wf.Subjects)
	}
	for _, c := range wf.Bars.Cells {
		switch c.Calc.Subject {
		case "s1":
			if c.Calc.Value == nil || *c.Calc.Value != -50 {
				t.Errorf("expected MIN -50 for s1, got %v", c.Calc.Value)
			}
		case "s4":
			if c.Calc.Value != nil {
				t.Errorf("expected no value for s4, got %v", *c.Calc.Value)
			}
		}
	}

	if _, err := Waterfall(g, resultMeasure(t), "MEDIAN", nil); !errors.Is(err, ErrInvalidReducer) {
		t.Errorf("expected ErrInvalidReducer, got %v", err)
	}
}

func TestLines_SkipMissingPoints(t *testing.T) {
	events := []testEvent{
		{id: "c3", subject: "s1", day: ptr(3), result: ptr(1.5)},
		{id: "c1", subject: "s1", day: ptr(1), result: ptr(4)},
		{id: "c2", subject: "s1", day: ptr(2)},
		{id: "c4", subject: "s1", result: ptr(9)},
	}
	x, _ := NewMeasure(testAttrs, AttrRef{Attr: "DAY"})
	g := mustGroup(t, events, Settings{SeriesBy: ref(SubjectAttr)}, nil)
	r := Lines(g, x, resultMeasure(t), nil)
	line := r.Cells[0].Calc
	if len(line.Points) != 2 || line.Points[0].EventID != "c1" || line.Points[1].EventID != "c3" {
		t.Errorf("unexpected points %+v", line.Points)
	}
	if len(line.EventIDs) != 4 {
		t.Errorf("expected all events in membership, got %v", line.EventIDs)
	}
}

func TestColumnRanges(t *testing.T) {
	events := []testEvent{
		{id: "r1", subject: "s1", soc: "A", day: ptr(3), result: ptr(10)},
		{id: "r2", subject: "s1", soc: "A", day: ptr(1), result: ptr(4)},
		{id: "r3", subject: "s2", soc: "B"},
	}
	low, _ := NewMeasure(testAttrs, AttrRef{Attr: "DAY"})
	g := mustGroup(t, events, Settings{XAxis: ref("SOC")}, nil)
	r := ColumnRanges(g, low, resultMeasure(t), nil)
	a, b := r.Cells[0].Calc, r.Cells[1].Calc
	if a.Low == nil || *a.Low != 1 || a.High == nil || *a.High != 10 {
		t.Errorf("unexpected range for A: %v..%v", a.Low, a.High)
	}
	if b.Low != nil || b.High != nil {
		t.Error("expected open range for B")
	}
}

func TestDiscoverOptions_DropsDegenerate(t *testing.T) {
	opts, err := DiscoverOptions(tenEvents(), testAttrs, []string{"SOC", "SIG", "SEVERITY", "DAY"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts) != 3 {
		t.Fatalf("expected SIG dropped, got %d options", len(opts))
	}
	if opts[0].Attr != "SOC" || len(opts[0].Values) != 3 || opts[0].Label != "System organ class" {
		t.Errorf("unexpected SOC option %+v", opts[0])
	}
	sev := opts[1]
	if len(sev.Values) != 4 || !sev.Values[3].IsEmpty() {
		t.Errorf("expected Empty listed last, got %v", sev.Values)
	}
	if !opts[2].Binnable {
		t.Error("expected DAY to be binnable")
	}
}

func TestProject_NoTrellisSingleChart(t *testing.T) {
	g := mustGroup(t, tenEvents(), Settings{XAxis: ref("SOC")}, nil)
	r, _ := CountBars(g, BarOptions{CountType: CountOfEvents})
	charts := BarCharts(r, nil, CountOfEvents, nil)
	if len(charts) != 1 {
		t.Fatalf("expected one chart, got %d", len(charts))
	}
	if charts[0].Trellis == nil || len(charts[0].Trellis) != 0 {
		t.Errorf("expected empty trellis, got %v", charts[0].Trellis)
	}
	bar, ok := charts[0].Data.(BarChart)
	if !ok || len(bar.Categories) != 3 || len(bar.Bars) != 3 {
		t.Errorf("unexpected bar chart %+v", charts[0].Data)
	}
}
