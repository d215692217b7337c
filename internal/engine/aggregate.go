package engine

import (
	"sort"
)

// Totals are the denominators of the filtered universe.
type Totals struct {
	Events   int `json:"events"`
	Subjects int `json:"subjects"`
}

// Members is the provenance of a calculation: which events and subjects
// contributed to it. Both lists are sorted and distinct.
type Members struct {
	EventIDs   []string `json:"eventIds"`
	SubjectIDs []string `json:"subjectIds"`
}

// Provenance returns m; calculations embedding Members inherit it.
func (m Members) Provenance() Members { return m }

// Provenanced is any calculation that can answer a selection.
type Provenanced interface {
	Provenance() Members
}

// Cell is one aggregated key.
type Cell[T any] struct {
	Key  Key `json:"key"`
	Calc T   `json:"calc"`
}

// Result is the ordered output of an aggregation.
type Result[T any] struct {
	Dims  []string  `json:"dims"`
	Cells []Cell[T] `json:"cells"`
}

// Len is the number of cells.
func (r Result[T]) Len() int { return len(r.Cells) }

func membersOf[E Entity](items []E) Members {
	events := make(map[string]struct{}, len(items))
	subjects := make(map[string]struct{})
	for _, e := range items {
		events[e.ID()] = struct{}{}
		subjects[e.SubjectID()] = struct{}{}
	}
	return Members{EventIDs: sortedSet(events), SubjectIDs: sortedSet(subjects)}
}

func (m Members) union(o Members) Members {
	return Members{
		EventIDs:   mergeSorted(m.EventIDs, o.EventIDs),
		SubjectIDs: mergeSorted(m.SubjectIDs, o.SubjectIDs),
	}
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// mergeSorted merges two sorted, duplicate-free id lists.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// memberSet accumulates provenance across many cells and sorts once.
type memberSet struct {
	events   map[string]struct{}
	subjects map[string]struct{}
}

func newMemberSet() *memberSet {
	return &memberSet{events: make(map[string]struct{}), subjects: make(map[string]struct{})}
}

func (s *memberSet) add(m Members) {
	for _, id := range m.EventIDs {
		s.events[id] = struct{}{}
	}
	for _, id := range m.SubjectIDs {
		s.subjects[id] = struct{}{}
	}
}

func addItems[E Entity](s *memberSet, items []E) {
	for _, e := range items {
		s.events[e.ID()] = struct{}{}
		s.subjects[e.SubjectID()] = struct{}{}
	}
}

func (s *memberSet) members() Members {
	return Members{EventIDs: sortedSet(s.events), SubjectIDs: sortedSet(s.subjects)}
}

// Measure is a numeric attribute bound with its request parameters, used
// for Y values and other plotted quantities.
type Measure[E Entity] struct {
	Name   string
	attr   Attribute[E]
	params Params
}

// NewMeasure binds ref against attrs.
func NewMeasure[E Entity](attrs *Attributes[E], ref AttrRef) (Measure[E], error) {
	a, err := lookupAttr(attrs, ref.Attr)
	if err != nil {
		return Measure[E]{}, err
	}
	return Measure[E]{Name: ref.Attr, attr: a, params: ref.Params}, nil
}

// Value returns the raw attribute value of e.
func (m Measure[E]) Value(e E, ctx *Context) Value {
	return m.attr.Value(e, ctx, m.params)
}

// Float returns the numeric value of e; ok is false for missing or
// non-numeric data.
func (m Measure[E]) Float(e E, ctx *Context) (float64, bool) {
	return m.Value(e, ctx).Float()
}

func (m Measure[E]) floats(items []E, ctx *Context) []float64 {
	xs := make([]float64, 0, len(items))
	for _, e := range items {
		if x, ok := m.Float(e, ctx); ok {
			xs = append(xs, x)
		}
	}
	return xs
}

// ratio returns 100*n/d, or 0 when d is zero.
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return 100 * float64(n) / float64(d)
}
