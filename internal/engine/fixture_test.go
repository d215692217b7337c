package engine

import (
	"fmt"
	"math"
	"sort"
	"testing"
)

type testEvent struct {
	id      string
	subject string
	soc     string
	grade   int // 0 = not recorded
	sigs    []string
	day     *float64
	visit   string
	result  *float64
	cat     string
}

func (e testEvent) ID() string        { return e.id }
func (e testEvent) SubjectID() string { return e.subject }

type testSubject struct {
	id  string
	arm string
	age float64
}

func (s testSubject) ID() string { return s.id }

func grade(g int) Value {
	if g == 0 {
		return Empty
	}
	return Ordinal(fmt.Sprintf("Grade %d", g), g)
}

func ptr(f float64) *float64 { return &f }

var testAttrs = NewAttributes(
	Attr("SOC", "System organ class", func(e testEvent) Value { return String(e.soc) }),
	Attr("SEVERITY", "", func(e testEvent) Value { return grade(e.grade) }),
	MultiAttr("SIG", "Special interest group", func(e testEvent) []Value {
		out := make([]Value, 0, len(e.sigs))
		for _, s := range e.sigs {
			out = append(out, String(s))
		}
		return out
	}),
	Attr("DAY", "Day on study", func(e testEvent) Value { return NumberPtr(e.day) }).Binnable(),
	Attr("VISIT", "Visit", func(e testEvent) Value { return String(e.visit) }),
	Attr("RESULT", "Result", func(e testEvent) Value { return NumberPtr(e.result) }),
	Attr("CATEGORY", "Category", func(e testEvent) Value { return String(e.cat) }),
	ContextAttr[testEvent]("MAX_SEVERITY", "Max severity", "maxSeverity", func(e testEvent, ctx *Context) Value {
		return ctx.Lookup("maxSeverity", e.id)
	}),
)

var testSubjectAttrs = NewAttributes(
	Attr("ARM", "Arm", func(s testSubject) Value { return String(s.arm) }),
	Attr("AGE", "Age", func(s testSubject) Value { return Number(s.age) }).Binnable(),
)

var testResolvers = map[string]Resolver[testEvent]{
	"maxSeverity": MaxPerSubject[testEvent]("SEVERITY"),
}

// tenEvents is ten adverse events over two subjects, three without a
// severity.
func tenEvents() []testEvent {
	return []testEvent{
		{id: "e01", subject: "s1", soc: "A", grade: 1, day: ptr(1)},
		{id: "e02", subject: "s1", soc: "A", grade: 2, day: ptr(2)},
		{id: "e03", subject: "s1", soc: "A", day: ptr(3)},
		{id: "e04", subject: "s1", soc: "B", grade: 3, day: ptr(4)},
		{id: "e05", subject: "s1", soc: "B", grade: 1, day: ptr(5)},
		{id: "e06", subject: "s2", soc: "A", grade: 2, day: ptr(6)},
		{id: "e07", subject: "s2", soc: "A", day: ptr(7)},
		{id: "e08", subject: "s2", soc: "C", grade: 1, day: ptr(8)},
		{id: "e09", subject: "s2", soc: "C", day: ptr(9)},
		{id: "e10", subject: "s2", soc: "C", grade: 2, day: ptr(10)},
	}
}

func twoSubjects() []testSubject {
	return []testSubject{
		{id: "s1", arm: "Drug", age: 34},
		{id: "s2", arm: "Placebo", age: 61},
	}
}

func eventIDs(events []testEvent) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.id)
	}
	sort.Strings(ids)
	return ids
}

func ref(attr string) *AttrRef { return &AttrRef{Attr: attr} }

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustGroup(t *testing.T, items []testEvent, s Settings, ctx *Context) *Grouped[testEvent] {
	t.Helper()
	g, err := GroupSettings(items, testAttrs, s, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}
