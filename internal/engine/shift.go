package engine

import "sort"

// ShiftOptions pick the two timepoints compared by a shift chart and the
// category whose transition is plotted.
type ShiftOptions[E Entity] struct {
	Timepoint Measure[E]
	From      Value
	To        Value
	Category  Measure[E]
}

// ShiftGroupCalc is the membership of one shift sub-chart. Subjects missing
// either timepoint are excluded from the matrix and listed in Unmatched.
type ShiftGroupCalc struct {
	Members
	Subjects  int      `json:"subjects"`
	Matched   int      `json:"matched"`
	Unmatched []string `json:"unmatched"`
}

// ShiftCellCalc is one transition of the matrix.
type ShiftCellCalc struct {
	Members
	Subjects int `json:"subjects"`
}

// ShiftResult pairs the per-group membership with the transition cells.
// Cell keys are the group key plus SHIFT_FROM and SHIFT_TO.
type ShiftResult struct {
	Groups Result[ShiftGroupCalc] `json:"groups"`
	Cells  Result[ShiftCellCalc]  `json:"cells"`
}

// Shifts pairs, per group and subject, the entity at the From timepoint with
// the entity at the To timepoint. Several entities at one timepoint resolve
// to the lowest entity id.
func Shifts[E Entity](g *Grouped[E], opts ShiftOptions[E], ctx *Context) ShiftResult {
	out := ShiftResult{
		Groups: Result[ShiftGroupCalc]{Dims: g.Dims()},
		Cells:  Result[ShiftCellCalc]{Dims: append(g.Dims(), RoleShiftFrom, RoleShiftTo)},
	}
	type pair struct{ from, to *E }
	for _, grp := range g.Groups() {
		items := append([]E(nil), grp.Items...)
		sort.SliceStable(items, func(i, j int) bool { return items[i].ID() < items[j].ID() })

		bySubject := make(map[string]*pair)
		var subjects []string
		for i := range items {
			e := &items[i]
			sid := (*e).SubjectID()
			p, ok := bySubject[sid]
			if !ok {
				p = &pair{}
				bySubject[sid] = p
				subjects = append(subjects, sid)
			}
			tp := opts.Timepoint.Value(*e, ctx)
			if p.from == nil && tp.Matches(opts.From) {
				p.from = e
			}
			if p.to == nil && tp.Matches(opts.To) {
				p.to = e
			}
		}
		sort.Strings(subjects)

		calc := ShiftGroupCalc{Members: membersOf(grp.Items), Subjects: len(subjects), Unmatched: []string{}}
		cells := make(map[string]*Cell[ShiftCellCalc])
		var cellOrder []string
		for _, sid := range subjects {
			p := bySubject[sid]
			if p.from == nil || p.to == nil {
				calc.Unmatched = append(calc.Unmatched, sid)
				continue
			}
			calc.Matched++
			k := grp.Key.
				With(RoleShiftFrom, opts.Category.Value(*p.from, ctx)).
				With(RoleShiftTo, opts.Category.Value(*p.to, ctx))
			c, ok := cells[k.ID()]
			if !ok {
				c = &Cell[ShiftCellCalc]{Key: k}
				cells[k.ID()] = c
				cellOrder = append(cellOrder, k.ID())
			}
			c.Calc.Members = c.Calc.Members.union(membersOf([]E{*p.from, *p.to}))
			c.Calc.Subjects = len(c.Calc.SubjectIDs)
		}
		out.Groups.Cells = append(out.Groups.Cells, Cell[ShiftGroupCalc]{Key: grp.Key, Calc: calc})

		row := make([]Cell[ShiftCellCalc], 0, len(cellOrder))
		for _, id := range cellOrder {
			row = append(row, *cells[id])
		}
		sort.SliceStable(row, func(i, j int) bool { return CompareKeys(row[i].Key, row[j].Key) < 0 })
		out.Cells.Cells = append(out.Cells.Cells, row...)
	}
	return out
}
