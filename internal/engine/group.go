package engine

import (
	"fmt"
	"slices"
)

// Entity is the engine's view of a domain record: a stable id unique within
// its universe and the id of the owning subject.
type Entity interface {
	ID() string
	SubjectID() string
}

// Identified is anything with a stable id, e.g. a population subject.
type Identified interface {
	ID() string
}

// SubjectAttr is the built-in attribute resolving to Entity.SubjectID. It is
// available on every attribute table without being declared.
const SubjectAttr = "SUBJECT_ID"

// AttrRef names an attribute and its per-request parameters.
type AttrRef struct {
	Attr   string `json:"attr"`
	Params Params `json:"params,omitempty"`
}

// Settings selects the attributes bound to each chart role.
type Settings struct {
	Trellis  []AttrRef `json:"trellis,omitempty"`
	XAxis    *AttrRef  `json:"xAxis,omitempty"`
	YAxis    *AttrRef  `json:"yAxis,omitempty"`
	ColorBy  *AttrRef  `json:"colorBy,omitempty"`
	SeriesBy *AttrRef  `json:"seriesBy,omitempty"`
	Name     *AttrRef  `json:"name,omitempty"`
}

// Binding ties a grouping dim to an attribute.
type Binding struct {
	Dim    string
	Attr   string
	Params Params
}

// Bindings returns the grouping dims in order: trellis, X axis, colour-by,
// series-by, name. Trellis dims are named after their attribute. The Y axis
// is a measure and never a grouping dim.
func (s Settings) Bindings() []Binding {
	var out []Binding
	for _, t := range s.Trellis {
		out = append(out, Binding{Dim: t.Attr, Attr: t.Attr, Params: t.Params})
	}
	for _, r := range []struct {
		dim string
		ref *AttrRef
	}{
		{RoleXAxis, s.XAxis},
		{RoleColorBy, s.ColorBy},
		{RoleSeriesBy, s.SeriesBy},
		{RoleName, s.Name},
	} {
		if r.ref != nil && r.ref.Attr != "" {
			out = append(out, Binding{Dim: r.dim, Attr: r.ref.Attr, Params: r.ref.Params})
		}
	}
	return out
}

// TrellisDims returns the dims that split a response into sub-charts.
func (s Settings) TrellisDims() []string {
	dims := make([]string, 0, len(s.Trellis))
	for _, t := range s.Trellis {
		dims = append(dims, t.Attr)
	}
	return dims
}

func (s Settings) isTrellis(dim string) bool {
	return slices.Contains(s.TrellisDims(), dim)
}

func (s Settings) refs() []AttrRef {
	refs := append([]AttrRef(nil), s.Trellis...)
	for _, r := range []*AttrRef{s.XAxis, s.YAxis, s.ColorBy, s.SeriesBy, s.Name} {
		if r != nil && r.Attr != "" {
			refs = append(refs, *r)
		}
	}
	return refs
}

// Bucket is one partition cell.
type Bucket[E any] struct {
	Key   Key
	Items []E
}

// Grouped is the partition produced by Group.
type Grouped[E any] struct {
	dims   []string
	groups map[string]*Bucket[E]
	sorted []*Bucket[E]
}

// Dims returns the dims every key of the partition carries.
func (g *Grouped[E]) Dims() []string { return append([]string(nil), g.dims...) }

// Len is the number of groups.
func (g *Grouped[E]) Len() int { return len(g.groups) }

// Get returns the group with key k.
func (g *Grouped[E]) Get(k Key) (*Bucket[E], bool) {
	grp, ok := g.groups[k.ID()]
	return grp, ok
}

// Groups returns every group in deterministic key order.
func (g *Grouped[E]) Groups() []*Bucket[E] {
	if g.sorted == nil {
		g.sorted = make([]*Bucket[E], 0, len(g.groups))
		for _, grp := range g.groups {
			g.sorted = append(g.sorted, grp)
		}
		slices.SortFunc(g.sorted, func(a, b *Bucket[E]) int { return CompareKeys(a.Key, b.Key) })
	}
	return g.sorted
}

type boundAttr[E Entity] struct {
	dim    string
	params Params
	attr   Attribute[E]
}

func bind[E Entity](attrs *Attributes[E], bindings []Binding) ([]boundAttr[E], error) {
	out := make([]boundAttr[E], 0, len(bindings))
	for _, b := range bindings {
		a, err := lookupAttr(attrs, b.Attr)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", b.Dim, err)
		}
		out = append(out, boundAttr[E]{dim: b.Dim, params: b.Params, attr: a})
	}
	return out, nil
}

// lookupAttr resolves a name against the table, falling back to the
// built-in subject attribute.
func lookupAttr[E Entity](attrs *Attributes[E], name string) (Attribute[E], error) {
	if name == SubjectAttr && !attrs.Has(SubjectAttr) {
		return Attr(SubjectAttr, "Subject", func(e E) Value { return String(e.SubjectID()) }), nil
	}
	return attrs.Get(name)
}

// Group partitions items by the bound dims. Every entity lands in at least
// one group; a multi-valued dim puts the entity in one group per value.
// Binding an attribute whose context is missing from ctx panics with
// *ContextError.
func Group[E Entity](items []E, attrs *Attributes[E], bindings []Binding, ctx *Context) (*Grouped[E], error) {
	bound, err := bind(attrs, bindings)
	if err != nil {
		return nil, err
	}
	dims := make([]string, len(bound))
	for i, b := range bound {
		dims[i] = b.dim
	}
	out := &Grouped[E]{dims: dims, groups: make(map[string]*Bucket[E])}
	values := make([][]Value, len(bound))
	for _, e := range items {
		for i, b := range bound {
			values[i] = b.attr.Values(e, ctx, b.params)
		}
		for _, k := range expand(dims, values) {
			id := k.ID()
			grp, ok := out.groups[id]
			if !ok {
				grp = &Bucket[E]{Key: k}
				out.groups[id] = grp
			}
			grp.Items = append(grp.Items, e)
		}
	}
	return out, nil
}

// GroupSettings groups by every binding of s.
func GroupSettings[E Entity](items []E, attrs *Attributes[E], s Settings, ctx *Context) (*Grouped[E], error) {
	return Group(items, attrs, s.Bindings(), ctx)
}
