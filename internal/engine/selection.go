package engine

import (
	"strconv"
	"strings"
)

// SelectionDetail maps a chart selection back to its source records.
// Totals describe the filtered universe, not the selection, so a client
// can render "N of M selected".
type SelectionDetail struct {
	SubjectIDs    []string `json:"subjectIds"`
	EventIDs      []string `json:"eventIds"`
	TotalEvents   int      `json:"totalEvents"`
	TotalSubjects int      `json:"totalSubjects"`
}

// Select unions the provenance of every cell matching any selected
// partial key.
func Select[T Provenanced](r Result[T], selected []Key, totals Totals) SelectionDetail {
	m := newKeyMatcher(selected)
	acc := newMemberSet()
	for _, c := range r.Cells {
		if m.match(c.Key) {
			acc.add(c.Calc.Provenance())
		}
	}
	return detail(acc.members(), totals)
}

// SelectGroups is Select over raw groups, for charts whose cells map one to
// one onto groups.
func SelectGroups[E Entity](g *Grouped[E], selected []Key, totals Totals) SelectionDetail {
	m := newKeyMatcher(selected)
	acc := newMemberSet()
	for _, grp := range g.Groups() {
		if m.match(grp.Key) {
			addItems(acc, grp.Items)
		}
	}
	return detail(acc.members(), totals)
}

// keyMatcher answers "does k Contain any selected key" with one map lookup
// per distinct dim set of the selection.
type keyMatcher struct {
	shapes []matchShape
}

type matchShape struct {
	dims []string
	keys map[string]struct{}
}

func newKeyMatcher(selected []Key) *keyMatcher {
	m := &keyMatcher{}
	bySig := make(map[string]*matchShape)
	for _, sel := range selected {
		dims := sel.Dims()
		sig := strings.Join(dims, "\x1f")
		sh, ok := bySig[sig]
		if !ok {
			sh = &matchShape{dims: dims, keys: make(map[string]struct{})}
			bySig[sig] = sh
		}
		var b strings.Builder
		for _, p := range sel.parts {
			writeMatchToken(&b, p.Value)
		}
		sh.keys[b.String()] = struct{}{}
	}
	for _, sh := range bySig {
		m.shapes = append(m.shapes, *sh)
	}
	return m
}

func (m *keyMatcher) match(k Key) bool {
	var b strings.Builder
next:
	for _, sh := range m.shapes {
		b.Reset()
		for _, d := range sh.dims {
			v, ok := k.Lookup(d)
			if !ok {
				continue next
			}
			writeMatchToken(&b, v)
		}
		if _, ok := sh.keys[b.String()]; ok {
			return true
		}
	}
	return false
}

// writeMatchToken encodes v so that two values encode equally iff Matches.
func writeMatchToken(b *strings.Builder, v Value) {
	if v.IsEmpty() {
		b.WriteString("-;")
		return
	}
	tok := v.Token()
	b.WriteString(strconv.Itoa(len(tok)))
	b.WriteByte(':')
	b.WriteString(tok)
}

func detail(m Members, totals Totals) SelectionDetail {
	d := SelectionDetail{
		SubjectIDs:    m.SubjectIDs,
		EventIDs:      m.EventIDs,
		TotalEvents:   totals.Events,
		TotalSubjects: totals.Subjects,
	}
	if d.SubjectIDs == nil {
		d.SubjectIDs = []string{}
	}
	if d.EventIDs == nil {
		d.EventIDs = []string{}
	}
	return d
}
