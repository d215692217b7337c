package engine

import "fmt"

// ContextError is raised (as a panic) when an extractor needs a context
// side-table that was never resolved for the request. It is a wiring bug,
// not a user error.
type ContextError struct {
	Name string
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("engine: context %q was not resolved for this request", e.Name)
}

// Context holds request-scoped derived values keyed by entity id. It is
// built once per request from the filtered data and passed explicitly.
type Context struct {
	tables map[string]map[string]Value
}

// NewContext returns an empty request context.
func NewContext() *Context {
	return &Context{tables: make(map[string]map[string]Value)}
}

// Set installs a resolved side-table.
func (c *Context) Set(name string, table map[string]Value) {
	if table == nil {
		table = map[string]Value{}
	}
	c.tables[name] = table
}

// Has reports whether name was resolved.
func (c *Context) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.tables[name]
	return ok
}

// Lookup returns the derived value for an entity. A resolved table without
// an entry for id yields Empty.
func (c *Context) Lookup(name, id string) Value {
	c.require(name)
	return c.tables[name][id]
}

func (c *Context) require(name string) {
	if !c.Has(name) {
		panic(&ContextError{Name: name})
	}
}

// Resolver derives a context side-table from the filtered entities of a
// request.
type Resolver[E Entity] func(filtered []E, attrs *Attributes[E], s Settings, ctx *Context) (map[string]Value, error)

// ResolveContexts runs, once each, the resolvers needed by the attributes
// bound in s (plus any names in extra). Tables already present are kept.
func ResolveContexts[E Entity](filtered []E, attrs *Attributes[E], resolvers map[string]Resolver[E], s Settings, ctx *Context, extra ...string) error {
	needed := append([]string(nil), extra...)
	for _, ref := range s.refs() {
		a, err := lookupAttr(attrs, ref.Attr)
		if err != nil {
			return err
		}
		if a.context != "" {
			needed = append(needed, a.context)
		}
	}
	for _, name := range needed {
		if ctx.Has(name) {
			continue
		}
		resolve, ok := resolvers[name]
		if !ok {
			panic(&ContextError{Name: name})
		}
		table, err := resolve(filtered, attrs, s, ctx)
		if err != nil {
			return fmt.Errorf("resolve context %s: %w", name, err)
		}
		ctx.Set(name, table)
	}
	return nil
}

// MaxPerSubject builds a resolver giving every entity the highest rankAttr
// value held by its subject within the entity's trellis and X-axis bucket.
// When an entity falls into several buckets (multi-valued dims) it gets the
// maximum across all of them.
func MaxPerSubject[E Entity](rankAttr string) Resolver[E] {
	return func(filtered []E, attrs *Attributes[E], s Settings, ctx *Context) (map[string]Value, error) {
		rank, err := attrs.Get(rankAttr)
		if err != nil {
			return nil, err
		}
		var bindings []Binding
		for _, b := range s.Bindings() {
			if b.Dim != RoleXAxis && !s.isTrellis(b.Dim) {
				continue
			}
			a, err := lookupAttr(attrs, b.Attr)
			if err != nil {
				return nil, err
			}
			if a.context != "" {
				continue
			}
			bindings = append(bindings, b)
		}
		bindings = append(bindings, Binding{Dim: RoleSubject, Attr: SubjectAttr})

		grouped, err := Group(filtered, attrs, bindings, ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]Value, len(filtered))
		for _, g := range grouped.Groups() {
			top := Empty
			for _, e := range g.Items {
				if v := rank.Value(e, ctx, Params{}); Higher(v, top) {
					top = v
				}
			}
			for _, e := range g.Items {
				if cur, seen := out[e.ID()]; !seen || Higher(top, cur) {
					out[e.ID()] = top
				}
			}
		}
		return out, nil
	}
}
