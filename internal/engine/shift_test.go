package engine

import "testing"

func shiftOptions(t *testing.T) ShiftOptions[testEvent] {
	t.Helper()
	tp, err := NewMeasure(testAttrs, AttrRef{Attr: "VISIT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cat, err := NewMeasure(testAttrs, AttrRef{Attr: "CATEGORY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ShiftOptions[testEvent]{Timepoint: tp, From: String("BASELINE"), To: String("WEEK 4"), Category: cat}
}

func TestShifts_UnmatchedSubjectExcludedFromMatrix(t *testing.T) {
	events := []testEvent{
		{id: "l1", subject: "A", visit: "BASELINE", cat: "NORMAL"},
		{id: "l2", subject: "B", visit: "BASELINE", cat: "NORMAL"},
		{id: "l3", subject: "B", visit: "WEEK 4", cat: "HIGH"},
		{id: "l4", subject: "C", visit: "BASELINE", cat: "LOW"},
		{id: "l5", subject: "C", visit: "WEEK 4", cat: "LOW"},
	}
	g := mustGroup(t, events, Settings{}, nil)
	r := Shifts(g, shiftOptions(t), nil)

	if r.Groups.Len() != 1 {
		t.Fatalf("expected 1 group, got %d", r.Groups.Len())
	}
	grp := r.Groups.Cells[0].Calc
	if grp.Subjects != 3 || grp.Matched != 2 {
		t.Errorf("expected 3 subjects / 2 matched, got %d / %d", grp.Subjects, grp.Matched)
	}
	if !equalStrings(grp.Unmatched, []string{"A"}) {
		t.Errorf("expected A unmatched, got %v", grp.Unmatched)
	}
	if len(grp.EventIDs) != 5 {
		t.Errorf("expected unmatched events kept in membership, got %v", grp.EventIDs)
	}

	if r.Cells.Len() != 2 {
		t.Fatalf("expected 2 transitions, got %d", r.Cells.Len())
	}
	for _, c := range r.Cells.Cells {
		for _, sid := range c.Calc.SubjectIDs {
			if sid == "A" {
				t.Errorf("unmatched subject A in transition %s", c.Key)
			}
		}
	}
	k := NewKey(Part{Dim: RoleShiftFrom, Value: String("NORMAL")}, Part{Dim: RoleShiftTo, Value: String("HIGH")})
	sel := Select(r.Cells, []Key{k}, Totals{Events: 5, Subjects: 3})
	if !equalStrings(sel.SubjectIDs, []string{"B"}) || !equalStrings(sel.EventIDs, []string{"l2", "l3"}) {
		t.Errorf("unexpected selection %+v", sel)
	}
}

func TestShifts_PerTrellis(t *testing.T) {
	events := []testEvent{
		{id: "l1", subject: "A", soc: "ALT", visit: "BASELINE", cat: "NORMAL"},
		{id: "l2", subject: "A", soc: "ALT", visit: "WEEK 4", cat: "HIGH"},
		{id: "l3", subject: "A", soc: "AST", visit: "BASELINE", cat: "NORMAL"},
	}
	s := Settings{Trellis: []AttrRef{{Attr: "SOC"}}}
	g := mustGroup(t, events, s, nil)
	charts := ShiftCharts(Shifts(g, shiftOptions(t), nil), s.TrellisDims(), String("BASELINE"), String("WEEK 4"))
	if len(charts) != 2 {
		t.Fatalf("expected 2 sub-charts, got %d", len(charts))
	}
	ast, ok := charts[1].Data.(ShiftChart)
	if !ok {
		t.Fatalf("expected ShiftChart, got %T", charts[1].Data)
	}
	if len(ast.Cells) != 0 || ast.Groups[0].Calc.Matched != 0 {
		t.Errorf("expected AST sub-chart without transitions, got %+v", ast)
	}
}
