package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrUnknownAttribute = errors.New("unknown attribute")

// DateBin is the truncation unit applied to date attributes.
type DateBin string

const (
	BinDay   DateBin = "DAY"
	BinWeek  DateBin = "WEEK"
	BinMonth DateBin = "MONTH"
	BinYear  DateBin = "YEAR"
)

// Params parameterises an attribute for one request, e.g. the bin width of a
// numeric X axis.
type Params struct {
	BinSize float64 `json:"binSize,omitempty"`
	DateBin DateBin `json:"dateBin,omitempty"`
}

// IsZero reports whether no parameter is set.
func (p Params) IsZero() bool {
	return p.BinSize == 0 && p.DateBin == ""
}

// apply bins v according to p. Values of other kinds pass through.
func (p Params) apply(v Value) Value {
	switch v.kind {
	case KindNumber:
		if p.BinSize > 0 {
			return Number(math.Floor(v.num/p.BinSize) * p.BinSize)
		}
	case KindDate:
		if p.DateBin != "" {
			t, _ := v.Time()
			return Date(truncateDate(t, p.DateBin))
		}
	}
	return v
}

func truncateDate(t time.Time, unit DateBin) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch unit {
	case BinWeek:
		offset := (int(day.Weekday()) + 6) % 7 // weeks start on Monday
		return day.AddDate(0, 0, -offset)
	case BinMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case BinYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// Extractor computes a value from an entity. The context is only consulted
// by attributes that declare a context dependency.
type Extractor[E any] func(e E, ctx *Context) Value

// MultiExtractor computes the values of a multi-valued attribute.
type MultiExtractor[E any] func(e E, ctx *Context) []Value

// Attribute is one named, pure accessor of an entity type.
type Attribute[E any] struct {
	Name  string
	Label string

	one      Extractor[E]
	many     MultiExtractor[E]
	context  string
	binnable bool
}

// Attr declares a plain single-valued attribute.
func Attr[E any](name, label string, fn func(E) Value) Attribute[E] {
	return Attribute[E]{
		Name:  name,
		Label: label,
		one:   func(e E, _ *Context) Value { return fn(e) },
	}
}

// MultiAttr declares a multi-valued attribute. An entity contributes to one
// group per value.
func MultiAttr[E any](name, label string, fn func(E) []Value) Attribute[E] {
	return Attribute[E]{
		Name:  name,
		Label: label,
		many:  func(e E, _ *Context) []Value { return fn(e) },
	}
}

// ContextAttr declares an attribute whose value comes from the named
// request context side-table.
func ContextAttr[E any](name, label, contextName string, fn Extractor[E]) Attribute[E] {
	return Attribute[E]{
		Name:    name,
		Label:   label,
		one:     fn,
		context: contextName,
	}
}

// Binnable marks the attribute as accepting Params binning.
func (a Attribute[E]) Binnable() Attribute[E] {
	a.binnable = true
	return a
}

// IsBinnable reports whether Params apply to this attribute.
func (a Attribute[E]) IsBinnable() bool { return a.binnable }

// IsMulti reports whether the attribute can yield several values.
func (a Attribute[E]) IsMulti() bool { return a.many != nil }

// RequiredContext names the context side-table the attribute reads, or "".
func (a Attribute[E]) RequiredContext() string { return a.context }

// Values evaluates the attribute. The result always has at least one
// element; missing data yields a single Empty.
func (a Attribute[E]) Values(e E, ctx *Context, p Params) []Value {
	if a.context != "" {
		ctx.require(a.context)
	}
	var vs []Value
	if a.many != nil {
		vs = dedupe(a.many(e, ctx))
	} else {
		vs = []Value{a.one(e, ctx)}
	}
	if len(vs) == 0 {
		return []Value{Empty}
	}
	if a.binnable && !p.IsZero() {
		for i := range vs {
			vs[i] = p.apply(vs[i])
		}
		vs = dedupe(vs)
	}
	return vs
}

// Value evaluates a single-valued attribute; for multi-valued attributes it
// returns the first value in natural order.
func (a Attribute[E]) Value(e E, ctx *Context, p Params) Value {
	vs := a.Values(e, ctx, p)
	if len(vs) > 1 {
		SortValues(vs)
	}
	return vs[0]
}

func dedupe(vs []Value) []Value {
	if len(vs) < 2 {
		return vs
	}
	seen := make(map[Value]struct{}, len(vs))
	out := vs[:0:0]
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Attributes is the closed attribute table of one entity type.
type Attributes[E any] struct {
	byName map[string]Attribute[E]
	order  []string
}

// NewAttributes builds a table; duplicate names panic at wiring time.
func NewAttributes[E any](attrs ...Attribute[E]) *Attributes[E] {
	t := &Attributes[E]{byName: make(map[string]Attribute[E], len(attrs))}
	for _, a := range attrs {
		if _, dup := t.byName[a.Name]; dup {
			panic(fmt.Sprintf("engine: duplicate attribute %q", a.Name))
		}
		if a.Label == "" {
			a.Label = humanize(a.Name)
		}
		t.byName[a.Name] = a
		t.order = append(t.order, a.Name)
	}
	return t
}

// Get looks up an attribute by name.
func (t *Attributes[E]) Get(name string) (Attribute[E], error) {
	a, ok := t.byName[name]
	if !ok {
		return Attribute[E]{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	return a, nil
}

// Has reports whether the table declares name.
func (t *Attributes[E]) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Names returns attribute names in declaration order.
func (t *Attributes[E]) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func humanize(name string) string {
	words := strings.Split(strings.ToLower(name), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
