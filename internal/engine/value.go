package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the natural domain of a Value.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindNumber
	KindDate
	KindOrdinal
	KindString
	// KindEmpty sorts after every other kind.
	KindEmpty Kind = 0
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindOrdinal:
		return "ordinal"
	case KindString:
		return "string"
	default:
		return "empty"
	}
}

// Value is a single attribute value. It is comparable, so it can be used
// directly inside map keys. The zero Value is Empty.
type Value struct {
	kind Kind
	str  string
	num  float64
	unix int64
}

// Empty is the sentinel for missing data. Entities with missing data group
// together under Empty instead of being dropped.
var Empty = Value{}

// String returns a string value, or Empty for a blank string.
func String(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Empty
	}
	return Value{kind: KindString, str: s}
}

// StringPtr is String for nullable columns.
func StringPtr(s *string) Value {
	if s == nil {
		return Empty
	}
	return String(*s)
}

// Number returns a numeric value, or Empty for NaN/Inf.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Empty
	}
	return Value{kind: KindNumber, num: f}
}

// NumberPtr is Number for nullable columns.
func NumberPtr(f *float64) Value {
	if f == nil {
		return Empty
	}
	return Number(*f)
}

// IntPtr is Number for nullable integer columns.
func IntPtr(i *int) Value {
	if i == nil {
		return Empty
	}
	return Number(float64(*i))
}

// Date returns a date value normalised to UTC, or Empty for the zero time.
func Date(t time.Time) Value {
	if t.IsZero() {
		return Empty
	}
	return Value{kind: KindDate, unix: t.UTC().UnixNano()}
}

// DatePtr is Date for nullable columns.
func DatePtr(t *time.Time) Value {
	if t == nil {
		return Empty
	}
	return Date(*t)
}

// Ordinal returns an enum value that sorts by rank rather than by label
// (e.g. severity grades).
func Ordinal(label string, rank int) Value {
	if strings.TrimSpace(label) == "" {
		return Empty
	}
	return Value{kind: KindOrdinal, str: label, num: float64(rank)}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool}
}

// BoolPtr is Bool for nullable columns.
func BoolPtr(b *bool) Value {
	if b == nil {
		return Empty
	}
	return Bool(*b)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Label is the display label of String and Ordinal values.
func (v Value) Label() string { return v.str }

// Rank is the ordering rank of an Ordinal value.
func (v Value) Rank() int { return int(v.num) }

// Float returns the numeric payload of a Number value.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Time returns the payload of a Date value.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return time.Unix(0, v.unix).UTC(), true
}

// Truth returns the payload of a Bool value.
func (v Value) Truth() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num == 1, true
}

// Token is the kind-independent textual form of the value. Values coming
// back from the UI carry no kind, so selections match on tokens.
func (v Value) Token() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.num == 1)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		t := time.Unix(0, v.unix).UTC()
		if t.Equal(t.Truncate(24 * time.Hour)) {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339Nano)
	case KindOrdinal, KindString:
		return v.str
	default:
		return ""
	}
}

// String renders the value for logs and UI labels.
func (v Value) String() string {
	if v.kind == KindEmpty {
		return "(Empty)"
	}
	return v.Token()
}

// Matches reports whether two values render to the same token.
func (v Value) Matches(o Value) bool {
	if v.kind == KindEmpty || o.kind == KindEmpty {
		return v.kind == o.kind
	}
	return v.Token() == o.Token()
}

// id is the kind-qualified encoding used for grouping key identity.
func (v Value) id() string {
	if v.kind == KindOrdinal {
		return fmt.Sprintf("%d:%g:%s", v.kind, v.num, v.str)
	}
	return fmt.Sprintf("%d:%s", v.kind, v.Token())
}

// Compare orders values by a fixed total order: by kind, then naturally
// within a kind. Empty sorts last.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind == KindEmpty {
			return 1
		}
		if b.kind == KindEmpty {
			return -1
		}
		return cmpInt(int(a.kind), int(b.kind))
	}
	switch a.kind {
	case KindBool, KindNumber:
		return cmpFloat(a.num, b.num)
	case KindDate:
		return cmpInt64(a.unix, b.unix)
	case KindOrdinal:
		if c := cmpFloat(a.num, b.num); c != 0 {
			return c
		}
		return strings.Compare(a.str, b.str)
	case KindString:
		if c := strings.Compare(strings.ToLower(a.str), strings.ToLower(b.str)); c != 0 {
			return c
		}
		return strings.Compare(a.str, b.str)
	}
	return 0
}

// Higher reports whether a ranks above b when picking a maximum; Empty is
// the lowest rank here so that any recorded value beats a missing one.
func Higher(a, b Value) bool {
	if b.IsEmpty() {
		return !a.IsEmpty()
	}
	if a.IsEmpty() {
		return false
	}
	return Compare(a, b) > 0
}

// SortValues sorts in place using Compare.
func SortValues(vs []Value) {
	slices.SortStableFunc(vs, Compare)
}

// Distinct returns the distinct values of vs in Compare order.
func Distinct(vs []Value) []Value {
	seen := make(map[Value]struct{}, len(vs))
	out := make([]Value, 0, len(vs))
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	SortValues(out)
	return out
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindEmpty:
		return []byte("null"), nil
	case KindNumber:
		return []byte(v.Token()), nil
	case KindBool:
		return []byte(v.Token()), nil
	default:
		return json.Marshal(v.Token())
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Empty
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	switch x := raw.(type) {
	case bool:
		*v = Bool(x)
	case float64:
		*v = Number(x)
	case string:
		*v = String(x)
	default:
		return fmt.Errorf("decode value: unsupported JSON type %T", raw)
	}
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
