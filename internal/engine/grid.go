package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// HeatmapCalc is one filled (x, y) cell. X and Y index the shared
// category lists of the HeatmapResult.
type HeatmapCalc struct {
	Members
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Events   int     `json:"events"`
	Subjects int     `json:"subjects"`
	Value    float64 `json:"value"`
}

// HeatmapResult is a sparse listing of a dense grid. Every sub-chart of the
// response indexes into the same category lists.
type HeatmapResult struct {
	XCategories []Value             `json:"xCategories"`
	YCategories []Value             `json:"yCategories"`
	Cells       Result[HeatmapCalc] `json:"cells"`
}

// Heatmap lays groups carrying X_AXIS and Y_AXIS dims onto a shared grid.
// Value is the subject count when bySubjects is set, the event count
// otherwise.
func Heatmap[E Entity](g *Grouped[E], bySubjects bool) HeatmapResult {
	groups := g.Groups()
	var xs, ys []Value
	for _, grp := range groups {
		xs = append(xs, grp.Key.Get(RoleXAxis))
		ys = append(ys, grp.Key.Get(RoleYAxis))
	}
	out := HeatmapResult{
		XCategories: Distinct(xs),
		YCategories: Distinct(ys),
		Cells:       Result[HeatmapCalc]{Dims: g.Dims(), Cells: make([]Cell[HeatmapCalc], 0, len(groups))},
	}
	xi, yi := indexOf(out.XCategories), indexOf(out.YCategories)
	for _, grp := range groups {
		m := membersOf(grp.Items)
		calc := HeatmapCalc{
			Members:  m,
			X:        xi[grp.Key.Get(RoleXAxis)],
			Y:        yi[grp.Key.Get(RoleYAxis)],
			Events:   len(m.EventIDs),
			Subjects: len(m.SubjectIDs),
		}
		calc.Value = float64(calc.Events)
		if bySubjects {
			calc.Value = float64(calc.Subjects)
		}
		out.Cells.Cells = append(out.Cells.Cells, Cell[HeatmapCalc]{Key: grp.Key, Calc: calc})
	}
	return out
}

func indexOf(vs []Value) map[Value]int {
	idx := make(map[Value]int, len(vs))
	for i, v := range vs {
		idx[v] = i
	}
	return idx
}

var ErrInvalidReducer = errors.New("invalid reducer")

// Reducer folds a subject's measurements into one waterfall bar.
type Reducer string

const (
	ReduceMin  Reducer = "MIN"
	ReduceMax  Reducer = "MAX"
	ReduceMean Reducer = "MEAN"
)

func (r Reducer) reduce(xs []float64) float64 {
	switch r {
	case ReduceMin:
		lo, _ := stats.Bounds(xs)
		return lo
	case ReduceMean:
		return stats.Mean(xs)
	default:
		_, hi := stats.Bounds(xs)
		return hi
	}
}

// WaterfallCalc is one subject's bar. Value is nil when the subject has no
// numeric measurement.
type WaterfallCalc struct {
	Members
	Subject string   `json:"subject"`
	Value   *float64 `json:"value"`
}

// WaterfallResult lists bars against a subject axis shared by every
// sub-chart.
type WaterfallResult struct {
	Subjects []string              `json:"subjects"`
	Bars     Result[WaterfallCalc] `json:"bars"`
}

// Waterfall reduces measure per group, where groups carry a SUBJECT dim.
// The subject axis is ordered by each subject's highest bar across the
// response, descending, then by subject id; subjects without a value go
// last.
func Waterfall[E Entity](g *Grouped[E], measure Measure[E], reducer Reducer, ctx *Context) (WaterfallResult, error) {
	if reducer == "" {
		reducer = ReduceMax
	}
	if reducer != ReduceMin && reducer != ReduceMax && reducer != ReduceMean {
		return WaterfallResult{}, fmt.Errorf("%w: %q", ErrInvalidReducer, reducer)
	}
	groups := g.Groups()
	out := WaterfallResult{Bars: Result[WaterfallCalc]{Dims: g.Dims(), Cells: make([]Cell[WaterfallCalc], 0, len(groups))}}
	best := make(map[string]float64)
	for _, grp := range groups {
		sid := grp.Key.Get(RoleSubject).Token()
		calc := WaterfallCalc{Members: membersOf(grp.Items), Subject: sid}
		if _, seen := best[sid]; !seen {
			best[sid] = math.Inf(-1)
		}
		if xs := measure.floats(grp.Items, ctx); len(xs) > 0 {
			v := reducer.reduce(xs)
			calc.Value = &v
			best[sid] = math.Max(best[sid], v)
		}
		out.Bars.Cells = append(out.Bars.Cells, Cell[WaterfallCalc]{Key: grp.Key, Calc: calc})
	}
	for sid := range best {
		out.Subjects = append(out.Subjects, sid)
	}
	sort.Slice(out.Subjects, func(i, j int) bool {
		a, b := out.Subjects[i], out.Subjects[j]
		if best[a] != best[b] {
			return best[a] > best[b]
		}
		return a < b
	})
	if out.Subjects == nil {
		out.Subjects = []string{}
	}
	return out, nil
}
