package engine

import (
	"math"
	"slices"

	"github.com/aclements/go-moremath/stats"
)

// whiskerIQR is the whisker reach in interquartile ranges.
const whiskerIQR = 1.5

// BoxStats are the order statistics of one box.
type BoxStats struct {
	N            int       `json:"n"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	Mean         float64   `json:"mean"`
	LowerWhisker float64   `json:"lowerWhisker"`
	UpperWhisker float64   `json:"upperWhisker"`
	Outliers     []float64 `json:"outliers"`
	// SinglePoint marks a box drawn as a point.
	SinglePoint bool `json:"singlePoint"`
}

// BoxCalc is one box. Stats is nil when no member has a numeric value;
// members with a missing measure still count for selection.
type BoxCalc struct {
	Members
	Stats *BoxStats `json:"stats"`
}

// Boxes computes box statistics of measure per group.
func Boxes[E Entity](g *Grouped[E], measure Measure[E], ctx *Context) Result[BoxCalc] {
	groups := g.Groups()
	cells := make([]Cell[BoxCalc], 0, len(groups))
	for _, grp := range groups {
		calc := BoxCalc{Members: membersOf(grp.Items)}
		if xs := measure.floats(grp.Items, ctx); len(xs) > 0 {
			calc.Stats = boxStats(xs)
		}
		cells = append(cells, Cell[BoxCalc]{Key: grp.Key, Calc: calc})
	}
	return Result[BoxCalc]{Dims: g.Dims(), Cells: cells}
}

func boxStats(xs []float64) *BoxStats {
	slices.Sort(xs)
	s := stats.Sample{Xs: xs, Sorted: true}
	b := &BoxStats{
		N:        len(xs),
		Min:      xs[0],
		Max:      xs[len(xs)-1],
		Q1:       s.Quantile(0.25),
		Median:   s.Quantile(0.5),
		Q3:       s.Quantile(0.75),
		Mean:     stats.Mean(xs),
		Outliers: []float64{},
	}
	if len(xs) == 1 {
		b.SinglePoint = true
		b.LowerWhisker, b.UpperWhisker = xs[0], xs[0]
		return b
	}
	reach := whiskerIQR * (b.Q3 - b.Q1)
	lo, hi := b.Q1-reach, b.Q3+reach
	b.LowerWhisker, b.UpperWhisker = b.Q1, b.Q3
	for _, x := range xs {
		if x < lo || x > hi {
			b.Outliers = append(b.Outliers, x)
			continue
		}
		b.LowerWhisker = math.Min(b.LowerWhisker, x)
		b.UpperWhisker = math.Max(b.UpperWhisker, x)
	}
	return b
}

// RangeStats summarise a measure for mean/median charts with error bars.
type RangeStats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	StdErr float64 `json:"stdErr"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// RangeCalc is one range point. Stats follow the same null policy as
// BoxCalc.
type RangeCalc struct {
	Members
	Stats *RangeStats `json:"stats"`
}

// Ranges computes mean, population standard deviation and median of
// measure per group.
func Ranges[E Entity](g *Grouped[E], measure Measure[E], ctx *Context) Result[RangeCalc] {
	groups := g.Groups()
	cells := make([]Cell[RangeCalc], 0, len(groups))
	for _, grp := range groups {
		calc := RangeCalc{Members: membersOf(grp.Items)}
		if xs := measure.floats(grp.Items, ctx); len(xs) > 0 {
			calc.Stats = rangeStats(xs)
		}
		cells = append(cells, Cell[RangeCalc]{Key: grp.Key, Calc: calc})
	}
	return Result[RangeCalc]{Dims: g.Dims(), Cells: cells}
}

func rangeStats(xs []float64) *RangeStats {
	slices.Sort(xs)
	n := float64(len(xs))
	sd := math.Sqrt(stats.Variance(xs) * (n - 1) / n)
	lo, hi := stats.Bounds(xs)
	return &RangeStats{
		N:      len(xs),
		Mean:   stats.Mean(xs),
		StdDev: sd,
		StdErr: sd / math.Sqrt(n),
		Median: stats.Sample{Xs: xs, Sorted: true}.Quantile(0.5),
		Min:    lo,
		Max:    hi,
	}
}
