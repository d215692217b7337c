package engine

import "sort"

// Family names a chart family.
type Family string

const (
	FamilyBar         Family = "BAR"
	FamilyBox         Family = "BOX"
	FamilyRange       Family = "RANGE"
	FamilyShift       Family = "SHIFT"
	FamilyHeatmap     Family = "HEATMAP"
	FamilyWaterfall   Family = "WATERFALL"
	FamilyLine        Family = "LINE"
	FamilyColumnRange Family = "COLUMN_RANGE"
)

// ChartData is the family-specific payload of a sub-chart. The set of
// implementations is closed; renderers type-switch on it.
type ChartData interface {
	Family() Family
	chartData()
}

type BarChart struct {
	CountType  CountType       `json:"countType"`
	Categories []Value         `json:"categories"`
	Bars       []Cell[BarCalc] `json:"bars"`
}

type BoxChart struct {
	Boxes []Cell[BoxCalc] `json:"boxes"`
}

type RangeChart struct {
	Points []Cell[RangeCalc] `json:"points"`
}

type ShiftChart struct {
	From   Value                  `json:"from"`
	To     Value                  `json:"to"`
	Groups []Cell[ShiftGroupCalc] `json:"groups"`
	Cells  []Cell[ShiftCellCalc]  `json:"cells"`
}

type HeatmapChart struct {
	XCategories []Value             `json:"xCategories"`
	YCategories []Value             `json:"yCategories"`
	Cells       []Cell[HeatmapCalc] `json:"cells"`
}

type WaterfallChart struct {
	Subjects []string              `json:"subjects"`
	Bars     []Cell[WaterfallCalc] `json:"bars"`
}

type LineChart struct {
	Series []Cell[LineCalc] `json:"series"`
}

type ColumnRangeChart struct {
	Columns []Cell[ColumnRangeCalc] `json:"columns"`
}

func (BarChart) Family() Family         { return FamilyBar }
func (BoxChart) Family() Family         { return FamilyBox }
func (RangeChart) Family() Family       { return FamilyRange }
func (ShiftChart) Family() Family       { return FamilyShift }
func (HeatmapChart) Family() Family     { return FamilyHeatmap }
func (WaterfallChart) Family() Family   { return FamilyWaterfall }
func (LineChart) Family() Family        { return FamilyLine }
func (ColumnRangeChart) Family() Family { return FamilyColumnRange }

func (BarChart) chartData()         {}
func (BoxChart) chartData()         {}
func (RangeChart) chartData()       {}
func (ShiftChart) chartData()       {}
func (HeatmapChart) chartData()     {}
func (WaterfallChart) chartData()   {}
func (LineChart) chartData()        {}
func (ColumnRangeChart) chartData() {}

// TrellisedChart is one sub-chart of a response.
type TrellisedChart struct {
	Trellis []Part    `json:"trellis"`
	Family  Family    `json:"family"`
	Data    ChartData `json:"data"`
}

// Slice is the cells of one trellis.
type Slice[T any] struct {
	Trellis Key
	Cells   []Cell[T]
}

// ByTrellis splits cells by their trellis sub-key, preserving cell order
// within a slice. Slices are sorted by trellis key.
func ByTrellis[T any](cells []Cell[T], trellisDims []string) []Slice[T] {
	index := make(map[string]int)
	var out []Slice[T]
	for _, c := range cells {
		tk := c.Key.Only(trellisDims...)
		i, ok := index[tk.ID()]
		if !ok {
			i = len(out)
			index[tk.ID()] = i
			out = append(out, Slice[T]{Trellis: tk})
		}
		out[i].Cells = append(out[i].Cells, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return CompareKeys(out[i].Trellis, out[j].Trellis) < 0 })
	return out
}

// Project builds one TrellisedChart per trellis slice. Empty input yields an
// empty, non-nil list.
func Project[T any](cells []Cell[T], trellisDims []string, build func(Slice[T]) ChartData) []TrellisedChart {
	split := ByTrellis(cells, trellisDims)
	out := make([]TrellisedChart, 0, len(split))
	for _, s := range split {
		data := build(s)
		parts := s.Trellis.Parts()
		if parts == nil {
			parts = []Part{}
		}
		out = append(out, TrellisedChart{Trellis: parts, Family: data.Family(), Data: data})
	}
	return out
}

// BarCharts projects a bar result. Categories are the X values of the
// response in axis order.
func BarCharts(r Result[BarCalc], trellisDims []string, ct CountType, xOrder []Value) []TrellisedChart {
	var xs []Value
	for _, c := range r.Cells {
		if x, ok := c.Key.Lookup(RoleXAxis); ok {
			xs = append(xs, x)
		}
	}
	categories := AxisOrder(xOrder, xs)
	return Project(r.Cells, trellisDims, func(s Slice[BarCalc]) ChartData {
		return BarChart{CountType: ct, Categories: categories, Bars: s.Cells}
	})
}

func BoxCharts(r Result[BoxCalc], trellisDims []string) []TrellisedChart {
	return Project(r.Cells, trellisDims, func(s Slice[BoxCalc]) ChartData {
		return BoxChart{Boxes: s.Cells}
	})
}

func RangeCharts(r Result[RangeCalc], trellisDims []string) []TrellisedChart {
	return Project(r.Cells, trellisDims, func(s Slice[RangeCalc]) ChartData {
		return RangeChart{Points: s.Cells}
	})
}

// ShiftCharts projects a shift result; trellises come from the groups so
// that a sub-chart with only unmatched subjects is still rendered.
func ShiftCharts(r ShiftResult, trellisDims []string, from, to Value) []TrellisedChart {
	cells := make(map[string][]Cell[ShiftCellCalc])
	for _, s := range ByTrellis(r.Cells.Cells, trellisDims) {
		cells[s.Trellis.ID()] = s.Cells
	}
	return Project(r.Groups.Cells, trellisDims, func(s Slice[ShiftGroupCalc]) ChartData {
		c := cells[s.Trellis.ID()]
		if c == nil {
			c = []Cell[ShiftCellCalc]{}
		}
		return ShiftChart{From: from, To: to, Groups: s.Cells, Cells: c}
	})
}

func HeatmapCharts(r HeatmapResult, trellisDims []string) []TrellisedChart {
	return Project(r.Cells.Cells, trellisDims, func(s Slice[HeatmapCalc]) ChartData {
		return HeatmapChart{XCategories: r.XCategories, YCategories: r.YCategories, Cells: s.Cells}
	})
}

func WaterfallCharts(r WaterfallResult, trellisDims []string) []TrellisedChart {
	return Project(r.Bars.Cells, trellisDims, func(s Slice[WaterfallCalc]) ChartData {
		return WaterfallChart{Subjects: r.Subjects, Bars: s.Cells}
	})
}

func LineCharts(r Result[LineCalc], trellisDims []string) []TrellisedChart {
	return Project(r.Cells, trellisDims, func(s Slice[LineCalc]) ChartData {
		return LineChart{Series: s.Cells}
	})
}

func ColumnRangeCharts(r Result[ColumnRangeCalc], trellisDims []string) []TrellisedChart {
	return Project(r.Cells, trellisDims, func(s Slice[ColumnRangeCalc]) ChartData {
		return ColumnRangeChart{Columns: s.Cells}
	})
}
