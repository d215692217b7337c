package engine

// Option is one attribute offered in an axis, trellis, colour-by or
// series-by picker, with the values present in the data.
type Option struct {
	Attr     string  `json:"attr"`
	Label    string  `json:"label"`
	Values   []Value `json:"values"`
	Binnable bool    `json:"binnable"`
	Multi    bool    `json:"multi"`
}

// DiscoverOptions returns the candidates that are non-degenerate over
// items, i.e. that have at least one non-empty value. Values are distinct
// and sorted, Empty last when present. Context attributes need their
// context resolved in ctx.
func DiscoverOptions[E Entity](items []E, attrs *Attributes[E], candidates []string, ctx *Context) ([]Option, error) {
	out := make([]Option, 0, len(candidates))
	for _, name := range candidates {
		a, err := lookupAttr(attrs, name)
		if err != nil {
			return nil, err
		}
		var vs []Value
		seen := make(map[Value]struct{})
		populated := false
		for _, e := range items {
			for _, v := range a.Values(e, ctx, Params{}) {
				if _, ok := seen[v]; ok {
					continue
				}
				seen[v] = struct{}{}
				vs = append(vs, v)
				populated = populated || !v.IsEmpty()
			}
		}
		if !populated {
			continue
		}
		SortValues(vs)
		out = append(out, Option{
			Attr:     a.Name,
			Label:    a.Label,
			Values:   vs,
			Binnable: a.IsBinnable(),
			Multi:    a.IsMulti(),
		})
	}
	return out, nil
}
