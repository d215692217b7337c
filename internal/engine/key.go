package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Grouping dimensions that are not trellis attributes are named by role.
const (
	RoleXAxis     = "X_AXIS"
	RoleYAxis     = "Y_AXIS"
	RoleColorBy   = "COLOR_BY"
	RoleSeriesBy  = "SERIES_BY"
	RoleName      = "NAME"
	RoleSubject   = "SUBJECT"
	RoleShiftFrom = "SHIFT_FROM"
	RoleShiftTo   = "SHIFT_TO"
)

// Part is one dimension of a grouping key.
type Part struct {
	Dim   string `json:"dim"`
	Value Value  `json:"value"`
}

// Key is an immutable, order-irrelevant set of dimension values.
type Key struct {
	parts []Part
}

// NewKey builds a key; a later part overrides an earlier one on the same dim.
func NewKey(parts ...Part) Key {
	byDim := make(map[string]Value, len(parts))
	for _, p := range parts {
		byDim[p.Dim] = p.Value
	}
	out := make([]Part, 0, len(byDim))
	for d, v := range byDim {
		out = append(out, Part{Dim: d, Value: v})
	}
	slices.SortFunc(out, func(a, b Part) int { return strings.Compare(a.Dim, b.Dim) })
	return Key{parts: out}
}

// Parts returns a copy of the key's parts sorted by dim.
func (k Key) Parts() []Part {
	return append([]Part(nil), k.parts...)
}

// Len is the number of dims.
func (k Key) Len() int { return len(k.parts) }

// Dims returns the key's dims in sorted order.
func (k Key) Dims() []string {
	out := make([]string, len(k.parts))
	for i, p := range k.parts {
		out[i] = p.Dim
	}
	return out
}

// Lookup returns the value of dim.
func (k Key) Lookup(dim string) (Value, bool) {
	i, ok := slices.BinarySearchFunc(k.parts, dim, func(p Part, d string) int { return strings.Compare(p.Dim, d) })
	if !ok {
		return Empty, false
	}
	return k.parts[i].Value, true
}

// Get returns the value of dim, or Empty when the key lacks it.
func (k Key) Get(dim string) Value {
	v, _ := k.Lookup(dim)
	return v
}

// With returns a copy of k with dim set to v.
func (k Key) With(dim string, v Value) Key {
	return NewKey(append(k.Parts(), Part{Dim: dim, Value: v})...)
}

// Only returns the sub-key restricted to dims.
func (k Key) Only(dims ...string) Key {
	out := make([]Part, 0, len(dims))
	for _, p := range k.parts {
		if slices.Contains(dims, p.Dim) {
			out = append(out, p)
		}
	}
	return Key{parts: out}
}

// Without returns the sub-key with dims removed.
func (k Key) Without(dims ...string) Key {
	out := make([]Part, 0, len(k.parts))
	for _, p := range k.parts {
		if !slices.Contains(dims, p.Dim) {
			out = append(out, p)
		}
	}
	return Key{parts: out}
}

// ID is the canonical identity of the key. Two keys are equal iff their IDs
// are equal.
func (k Key) ID() string {
	var b strings.Builder
	for i, p := range k.parts {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(p.Dim)
		b.WriteByte('=')
		b.WriteString(p.Value.id())
	}
	return b.String()
}

// Equal reports natural equality of all dim values.
func (k Key) Equal(o Key) bool {
	if len(k.parts) != len(o.parts) {
		return false
	}
	for i := range k.parts {
		if k.parts[i] != o.parts[i] {
			return false
		}
	}
	return true
}

// Contains reports whether every dim of partial is present in k with a
// matching value. An empty partial key matches everything.
func (k Key) Contains(partial Key) bool {
	for _, p := range partial.parts {
		v, ok := k.Lookup(p.Dim)
		if !ok || !v.Matches(p.Value) {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	parts := make([]string, len(k.parts))
	for i, p := range k.parts {
		parts[i] = fmt.Sprintf("%s=%s", p.Dim, p.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// CompareKeys orders keys dim by dim using Compare.
func CompareKeys(a, b Key) int {
	n := min(len(a.parts), len(b.parts))
	for i := 0; i < n; i++ {
		if c := strings.Compare(a.parts[i].Dim, b.parts[i].Dim); c != 0 {
			return c
		}
		if c := Compare(a.parts[i].Value, b.parts[i].Value); c != 0 {
			return c
		}
	}
	return cmpInt(len(a.parts), len(b.parts))
}

func (k Key) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range k.parts {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(p.Dim)
		val, err := p.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (k *Key) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode key: %w", err)
	}
	parts := make([]Part, 0, len(raw))
	for d, v := range raw {
		parts = append(parts, Part{Dim: d, Value: v})
	}
	*k = NewKey(parts...)
	return nil
}

// expand returns one key per element of the Cartesian product of the
// candidate values of each dim.
func expand(dims []string, values [][]Value) []Key {
	combos := [][]Part{nil}
	for i, d := range dims {
		next := make([][]Part, 0, len(combos)*len(values[i]))
		for _, c := range combos {
			for _, v := range values[i] {
				row := make([]Part, len(c), len(c)+1)
				copy(row, c)
				next = append(next, append(row, Part{Dim: d, Value: v}))
			}
		}
		combos = next
	}
	keys := make([]Key, len(combos))
	for i, c := range combos {
		keys[i] = NewKey(c...)
	}
	return keys
}
