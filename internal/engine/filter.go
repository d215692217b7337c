package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFilter reports a filter that cannot apply to its attribute.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterKind selects how a filter dimension matches values.
type FilterKind string

const (
	FilterSet       FilterKind = "SET"
	FilterRange     FilterKind = "RANGE"
	FilterDateRange FilterKind = "DATE_RANGE"
	FilterBool      FilterKind = "BOOL"
)

// Filter is one dimension's constraint. A filter with no constraint set is
// inactive and matches everything.
type Filter struct {
	// Values is the multi-select list; nil means inactive, an empty slice
	// selects nothing. Include null to select Empty.
	Values []Value `json:"values,omitempty"`

	From     *float64   `json:"from,omitempty"`
	To       *float64   `json:"to,omitempty"`
	FromDate *time.Time `json:"fromDate,omitempty"`
	ToDate   *time.Time `json:"toDate,omitempty"`

	Is *bool `json:"is,omitempty"`

	// IncludeEmpty controls whether Empty passes an active range filter.
	IncludeEmpty *bool `json:"includeEmpty,omitempty"`
}

// Filters maps attribute names to filters.
type Filters map[string]Filter

// Active reports whether the filter constrains anything.
func (f Filter) Active() bool {
	return f.Values != nil || f.From != nil || f.To != nil ||
		f.FromDate != nil || f.ToDate != nil || f.Is != nil
}

// Match reports whether any of vs passes the filter.
func (f Filter) Match(vs []Value) bool {
	if !f.Active() {
		return true
	}
	for _, v := range vs {
		if f.matchOne(v) {
			return true
		}
	}
	return false
}

func (f Filter) matchOne(v Value) bool {
	if f.Values != nil {
		ok := false
		for _, want := range f.Values {
			if v.Matches(want) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Is != nil {
		b, isBool := v.Truth()
		if !isBool || b != *f.Is {
			return false
		}
	}
	if f.From != nil || f.To != nil {
		x, ok := v.Float()
		if !ok {
			return v.IsEmpty() && f.IncludeEmpty != nil && *f.IncludeEmpty
		}
		if f.From != nil && x < *f.From {
			return false
		}
		if f.To != nil && x > *f.To {
			return false
		}
	}
	if f.FromDate != nil || f.ToDate != nil {
		t, ok := v.Time()
		if !ok {
			return v.IsEmpty() && f.IncludeEmpty != nil && *f.IncludeEmpty
		}
		if f.FromDate != nil && t.Before(*f.FromDate) {
			return false
		}
		if f.ToDate != nil && t.After(*f.ToDate) {
			return false
		}
	}
	return true
}

// FilterSpec declares a filterable attribute of an entity type.
type FilterSpec struct {
	Attr string     `json:"attr"`
	Kind FilterKind `json:"kind"`
}

type boundFilter[T any] struct {
	name   string
	attr   Attribute[T]
	filter Filter
}

func bindFilters[T any](attrs *Attributes[T], filters Filters) ([]boundFilter[T], error) {
	out := make([]boundFilter[T], 0, len(filters))
	for name, f := range filters {
		a, err := attrs.Get(name)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		if a.context != "" {
			return nil, fmt.Errorf("%w: attribute %q needs request context", ErrInvalidFilter, name)
		}
		if f.Active() {
			out = append(out, boundFilter[T]{name: name, attr: a, filter: f})
		}
	}
	return out, nil
}

func passes[T any](item T, bound []boundFilter[T], skip string) bool {
	for _, b := range bound {
		if b.name == skip {
			continue
		}
		if !b.filter.Match(b.attr.Values(item, nil, Params{})) {
			return false
		}
	}
	return true
}

// Apply returns the items passing every filter.
func Apply[T any](items []T, attrs *Attributes[T], filters Filters) ([]T, error) {
	bound, err := bindFilters(attrs, filters)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if passes(it, bound, "") {
			out = append(out, it)
		}
	}
	return out, nil
}

// PopulationResult is the subject side of a FilterResult.
type PopulationResult[S Identified] struct {
	All      []S
	Filtered []S

	ids map[string]struct{}
}

// Contains reports whether the subject passed the population filters.
func (p *PopulationResult[S]) Contains(subjectID string) bool {
	_, ok := p.ids[subjectID]
	return ok
}

// FilterResult holds the unfiltered universe next to the filtered subset;
// the universe is needed for "percentage of all" metrics.
type FilterResult[E Entity, S Identified] struct {
	All        []E
	Filtered   []E
	Population *PopulationResult[S]
}

// TotalEvents is the filtered event count.
func (r *FilterResult[E, S]) TotalEvents() int { return len(r.Filtered) }

// TotalSubjects is the filtered population size.
func (r *FilterResult[E, S]) TotalSubjects() int { return len(r.Population.Filtered) }

// Totals returns the denominators of the filtered universe.
func (r *FilterResult[E, S]) Totals() Totals {
	return Totals{Events: r.TotalEvents(), Subjects: r.TotalSubjects()}
}

// FilterPopulation applies population filters.
func FilterPopulation[S Identified](subjects []S, attrs *Attributes[S], pf Filters) (*PopulationResult[S], error) {
	kept, err := Apply(subjects, attrs, pf)
	if err != nil {
		return nil, fmt.Errorf("population %w", err)
	}
	ids := make(map[string]struct{}, len(kept))
	for _, s := range kept {
		ids[s.ID()] = struct{}{}
	}
	return &PopulationResult[S]{All: subjects, Filtered: kept, ids: ids}, nil
}

// ApplyFilters evaluates population filters first, then event filters. An
// event is kept only if its subject passes the population filters and the
// event passes its own filters.
func ApplyFilters[E Entity, S Identified](events []E, subjects []S, eventAttrs *Attributes[E], subjectAttrs *Attributes[S], ef, pf Filters) (*FilterResult[E, S], error) {
	pop, err := FilterPopulation(subjects, subjectAttrs, pf)
	if err != nil {
		return nil, err
	}
	bound, err := bindFilters(eventAttrs, ef)
	if err != nil {
		return nil, fmt.Errorf("event %w", err)
	}
	filtered := make([]E, 0, len(events))
	for _, e := range events {
		if pop.Contains(e.SubjectID()) && passes(e, bound, "") {
			filtered = append(filtered, e)
		}
	}
	return &FilterResult[E, S]{All: events, Filtered: filtered, Population: pop}, nil
}

// FilterSummary describes the values still available to one filter
// dimension.
type FilterSummary struct {
	Attr     string     `json:"attr"`
	Kind     FilterKind `json:"kind"`
	Values   []Value    `json:"values,omitempty"`
	Min      *float64   `json:"min,omitempty"`
	Max      *float64   `json:"max,omitempty"`
	MinDate  *time.Time `json:"minDate,omitempty"`
	MaxDate  *time.Time `json:"maxDate,omitempty"`
	HasEmpty bool       `json:"hasEmpty"`
	Count    int        `json:"count"`
}

// AvailableFilters summarises each spec'd dimension over the items that
// pass every other active filter, so that choices in one dimension narrow
// the options offered in the others.
func AvailableFilters[T any](items []T, attrs *Attributes[T], specs []FilterSpec, filters Filters) ([]FilterSummary, error) {
	bound, err := bindFilters(attrs, filters)
	if err != nil {
		return nil, err
	}
	out := make([]FilterSummary, 0, len(specs))
	for _, spec := range specs {
		a, err := attrs.Get(spec.Attr)
		if err != nil {
			return nil, fmt.Errorf("filter spec: %w", err)
		}
		sum := FilterSummary{Attr: spec.Attr, Kind: spec.Kind}
		var observed []Value
		for _, it := range items {
			if !passes(it, bound, spec.Attr) {
				continue
			}
			sum.Count++
			for _, v := range a.Values(it, nil, Params{}) {
				if v.IsEmpty() {
					sum.HasEmpty = true
					continue
				}
				observed = append(observed, v)
			}
		}
		summarize(&sum, observed)
		out = append(out, sum)
	}
	return out, nil
}

func summarize(sum *FilterSummary, observed []Value) {
	switch sum.Kind {
	case FilterRange:
		for _, v := range observed {
			x, ok := v.Float()
			if !ok {
				continue
			}
			if sum.Min == nil || x < *sum.Min {
				sum.Min = &x
			}
			if sum.Max == nil || x > *sum.Max {
				sum.Max = &x
			}
		}
	case FilterDateRange:
		for _, v := range observed {
			t, ok := v.Time()
			if !ok {
				continue
			}
			if sum.MinDate == nil || t.Before(*sum.MinDate) {
				sum.MinDate = &t
			}
			if sum.MaxDate == nil || t.After(*sum.MaxDate) {
				sum.MaxDate = &t
			}
		}
	default:
		sum.Values = Distinct(observed)
	}
}

// Prepass reshapes the loaded universe before any filter runs.
type Prepass[E any] func([]E) []E

// ExcludeSinglePointSeries returns a pre-pass dropping every series (as
// identified by seriesOf) that has exactly one sample. It runs before
// filtering and is kept apart from filter predicates.
func ExcludeSinglePointSeries[E any](seriesOf func(E) string) Prepass[E] {
	return func(items []E) []E {
		counts := make(map[string]int, len(items))
		for _, it := range items {
			counts[seriesOf(it)]++
		}
		out := make([]E, 0, len(items))
		for _, it := range items {
			if counts[seriesOf(it)] > 1 {
				out = append(out, it)
			}
		}
		return out
	}
}
