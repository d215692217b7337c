package engine

import (
	"errors"
	"fmt"
)

var ErrInvalidCountType = errors.New("invalid count type")

// CountType selects the metric plotted by a bar chart.
type CountType string

const (
	CountOfEvents                  CountType = "COUNT_OF_EVENTS"
	CountOfSubjects                CountType = "COUNT_OF_SUBJECTS"
	PercentageOfAllEvents          CountType = "PERCENTAGE_OF_ALL_EVENTS"
	PercentageOfAllSubjects        CountType = "PERCENTAGE_OF_ALL_SUBJECTS"
	PercentageOfEvents100Stacked   CountType = "PERCENTAGE_OF_EVENTS_100_STACKED"
	PercentageOfSubjects100Stacked CountType = "PERCENTAGE_OF_SUBJECTS_100_STACKED"
	CumulativeCountOfEvents        CountType = "CUMULATIVE_COUNT_OF_EVENTS"
	CumulativeCountOfSubjects      CountType = "CUMULATIVE_COUNT_OF_SUBJECTS"
)

// CountTypes lists every supported count type.
var CountTypes = []CountType{
	CountOfEvents, CountOfSubjects,
	PercentageOfAllEvents, PercentageOfAllSubjects,
	PercentageOfEvents100Stacked, PercentageOfSubjects100Stacked,
	CumulativeCountOfEvents, CumulativeCountOfSubjects,
}

// Valid reports whether c is a known count type.
func (c CountType) Valid() bool {
	for _, t := range CountTypes {
		if t == c {
			return true
		}
	}
	return false
}

func (c CountType) bySubject() bool {
	switch c {
	case CountOfSubjects, PercentageOfAllSubjects, PercentageOfSubjects100Stacked, CumulativeCountOfSubjects:
		return true
	}
	return false
}

func (c CountType) cumulative() bool {
	return c == CumulativeCountOfEvents || c == CumulativeCountOfSubjects
}

// BarCalc is the aggregate of one bar segment. Subjects are deduplicated
// within the cell.
type BarCalc struct {
	Members
	Events   int     `json:"events"`
	Subjects int     `json:"subjects"`
	Value    float64 `json:"value"`
}

// BarOptions parameterises CountBars.
type BarOptions struct {
	CountType CountType
	// Totals are the filtered-universe denominators for the
	// percentage-of-all metrics.
	Totals      Totals
	TrellisDims []string
	// XOrder fixes the running order of cumulative counts. Observed X values
	// missing from it follow in natural order.
	XOrder []Value
}

// CountBars computes bar metrics per group.
func CountBars[E Entity](g *Grouped[E], opts BarOptions) (Result[BarCalc], error) {
	if !opts.CountType.Valid() {
		return Result[BarCalc]{}, fmt.Errorf("%w: %q", ErrInvalidCountType, opts.CountType)
	}
	if opts.CountType.cumulative() && containsDim(g.Dims(), RoleXAxis) {
		return cumulativeBars(g, opts), nil
	}

	groups := g.Groups()
	cells := make([]Cell[BarCalc], 0, len(groups))
	stacked := make(map[string]int)
	for _, grp := range groups {
		m := membersOf(grp.Items)
		calc := BarCalc{Members: m, Events: len(m.EventIDs), Subjects: len(m.SubjectIDs)}
		stacked[grp.Key.Only(opts.TrellisDims...).ID()] += calc.count(opts.CountType)
		cells = append(cells, Cell[BarCalc]{Key: grp.Key, Calc: calc})
	}
	for i := range cells {
		c := &cells[i].Calc
		n := c.count(opts.CountType)
		switch opts.CountType {
		case PercentageOfAllEvents:
			c.Value = ratio(n, opts.Totals.Events)
		case PercentageOfAllSubjects:
			c.Value = ratio(n, opts.Totals.Subjects)
		case PercentageOfEvents100Stacked, PercentageOfSubjects100Stacked:
			c.Value = ratio(n, stacked[cells[i].Key.Only(opts.TrellisDims...).ID()])
		default:
			c.Value = float64(n)
		}
	}
	return Result[BarCalc]{Dims: g.Dims(), Cells: cells}, nil
}

func (c BarCalc) count(t CountType) int {
	if t.bySubject() {
		return c.Subjects
	}
	return c.Events
}

// cumulativeBars runs a distinct union along the X order within every
// series (the key without its X part). Once a series has started, X values
// where it has no data carry the running total forward.
func cumulativeBars[E Entity](g *Grouped[E], opts BarOptions) Result[BarCalc] {
	type series struct {
		key  Key
		byX  map[Value]*Bucket[E]
		seen bool
	}
	var order []*series
	index := make(map[string]*series)
	var observed []Value
	for _, grp := range g.Groups() {
		sk := grp.Key.Without(RoleXAxis)
		s, ok := index[sk.ID()]
		if !ok {
			s = &series{key: sk, byX: make(map[Value]*Bucket[E])}
			index[sk.ID()] = s
			order = append(order, s)
		}
		x := grp.Key.Get(RoleXAxis)
		s.byX[x] = grp
		observed = append(observed, x)
	}
	axis := AxisOrder(opts.XOrder, observed)

	var cells []Cell[BarCalc]
	for _, s := range order {
		var running Members
		for _, x := range axis {
			grp, ok := s.byX[x]
			if ok {
				running = running.union(membersOf(grp.Items))
				s.seen = true
			}
			if !s.seen {
				continue
			}
			calc := BarCalc{Members: running, Events: len(running.EventIDs), Subjects: len(running.SubjectIDs)}
			calc.Value = float64(calc.count(opts.CountType))
			cells = append(cells, Cell[BarCalc]{Key: s.key.With(RoleXAxis, x), Calc: calc})
		}
	}
	return Result[BarCalc]{Dims: g.Dims(), Cells: cells}
}

// AxisOrder returns the distinct observed values ordered by explicit first,
// then naturally. Values of explicit that were never observed are dropped.
func AxisOrder(explicit, observed []Value) []Value {
	candidates := Distinct(observed)
	out := make([]Value, 0, len(candidates))
	placed := make(map[Value]struct{}, len(candidates))
	for _, v := range explicit {
		for _, p := range candidates {
			if _, done := placed[p]; !done && p.Matches(v) {
				out = append(out, p)
				placed[p] = struct{}{}
			}
		}
	}
	for _, v := range candidates {
		if _, done := placed[v]; !done {
			out = append(out, v)
		}
	}
	return out
}

func containsDim(dims []string, dim string) bool {
	for _, d := range dims {
		if d == dim {
			return true
		}
	}
	return false
}
