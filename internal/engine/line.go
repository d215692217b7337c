package engine

import "sort"

// Point is one plotted sample of a line.
type Point struct {
	X       Value   `json:"x"`
	Y       float64 `json:"y"`
	EventID string  `json:"eventId"`
}

// LineCalc is one series. Members with a missing X or Y are kept for
// selection but not plotted.
type LineCalc struct {
	Members
	Points []Point `json:"points"`
}

// Lines builds one series per group, points sorted by X then event id.
func Lines[E Entity](g *Grouped[E], x Measure[E], y Measure[E], ctx *Context) Result[LineCalc] {
	groups := g.Groups()
	cells := make([]Cell[LineCalc], 0, len(groups))
	for _, grp := range groups {
		calc := LineCalc{Members: membersOf(grp.Items), Points: []Point{}}
		for _, e := range grp.Items {
			xv := x.Value(e, ctx)
			yv, ok := y.Float(e, ctx)
			if xv.IsEmpty() || !ok {
				continue
			}
			calc.Points = append(calc.Points, Point{X: xv, Y: yv, EventID: e.ID()})
		}
		sort.SliceStable(calc.Points, func(i, j int) bool {
			if c := Compare(calc.Points[i].X, calc.Points[j].X); c != 0 {
				return c < 0
			}
			return calc.Points[i].EventID < calc.Points[j].EventID
		})
		cells = append(cells, Cell[LineCalc]{Key: grp.Key, Calc: calc})
	}
	return Result[LineCalc]{Dims: g.Dims(), Cells: cells}
}

// ColumnRangeCalc spans from the lowest low to the highest high measure of
// a group. Low and High are nil when no member has the measure.
type ColumnRangeCalc struct {
	Members
	Low  *float64 `json:"low"`
	High *float64 `json:"high"`
}

// ColumnRanges computes a low/high span per group, e.g. event start and end
// day on study.
func ColumnRanges[E Entity](g *Grouped[E], low Measure[E], high Measure[E], ctx *Context) Result[ColumnRangeCalc] {
	groups := g.Groups()
	cells := make([]Cell[ColumnRangeCalc], 0, len(groups))
	for _, grp := range groups {
		calc := ColumnRangeCalc{Members: membersOf(grp.Items)}
		for _, e := range grp.Items {
			if v, ok := low.Float(e, ctx); ok && (calc.Low == nil || v < *calc.Low) {
				calc.Low = &v
			}
			if v, ok := high.Float(e, ctx); ok && (calc.High == nil || v > *calc.High) {
				calc.High = &v
			}
		}
		cells = append(cells, Cell[ColumnRangeCalc]{Key: grp.Key, Calc: calc})
	}
	return Result[ColumnRangeCalc]{Dims: g.Dims(), Cells: cells}
}
