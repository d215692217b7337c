package chart

import (
	"fmt"
	"sort"

	"github.com/ehr/trialviz/internal/engine"
	"github.com/ehr/trialviz/internal/population"
)

// computed is one family's output together with the selection over the
// same cells.
type computed struct {
	charts     []engine.TrellisedChart
	selectKeys func(items []engine.Key, totals engine.Totals) engine.SelectionDetail
}

func selector[T engine.Provenanced](r engine.Result[T]) func([]engine.Key, engine.Totals) engine.SelectionDetail {
	return func(items []engine.Key, totals engine.Totals) engine.SelectionDetail {
		return engine.Select(r, items, totals)
	}
}

func (s *Service[E]) measure(ref *engine.AttrRef, role string) (engine.Measure[E], error) {
	if ref == nil || ref.Attr == "" {
		return engine.Measure[E]{}, fmt.Errorf("%w: %s is required", ErrInvalidSettings, role)
	}
	return engine.NewMeasure(s.domain.Attributes, *ref)
}

// without drops the bindings of the given dims.
func without(bindings []engine.Binding, dims ...string) []engine.Binding {
	out := make([]engine.Binding, 0, len(bindings))
outer:
	for _, b := range bindings {
		for _, d := range dims {
			if b.Dim == d {
				continue outer
			}
		}
		out = append(out, b)
	}
	return out
}

func hasDim(bindings []engine.Binding, dim string) bool {
	for _, b := range bindings {
		if b.Dim == dim {
			return true
		}
	}
	return false
}

func refName(ref *engine.AttrRef) []string {
	if ref == nil || ref.Attr == "" {
		return nil
	}
	return []string{ref.Attr}
}

// compute runs the family's pipeline over the filtered entities.
func (s *Service[E]) compute(req ChartRequest, res *engine.FilterResult[E, *population.Subject]) (computed, error) {
	attrs := s.domain.Attributes
	settings := req.Settings
	dims := settings.TrellisDims()
	items := res.Filtered

	var shift ShiftSettings
	if req.Shift != nil {
		shift = *req.Shift
	}
	if shift.Timepoint == nil && s.domain.Shift.Timepoint != "" {
		shift.Timepoint = &engine.AttrRef{Attr: s.domain.Shift.Timepoint}
	}
	actx := engine.NewContext()
	extra := s.domain.contextsOf(refName(shift.Timepoint), refName(req.Low), refName(req.High))
	if err := engine.ResolveContexts(items, attrs, s.domain.Resolvers, settings, actx, extra...); err != nil {
		return computed{}, err
	}

	switch req.Family {
	case engine.FamilyBar:
		ct := req.CountType
		if ct == "" {
			ct = engine.CountOfEvents
		}
		g, err := engine.GroupSettings(items, attrs, settings, actx)
		if err != nil {
			return computed{}, err
		}
		r, err := engine.CountBars(g, engine.BarOptions{CountType: ct, Totals: res.Totals(), TrellisDims: dims, XOrder: req.XOrder})
		if err != nil {
			return computed{}, err
		}
		return computed{engine.BarCharts(r, dims, ct, req.XOrder), selector(r)}, nil

	case engine.FamilyBox, engine.FamilyRange:
		y, err := s.measure(settings.YAxis, "y axis")
		if err != nil {
			return computed{}, err
		}
		g, err := engine.GroupSettings(items, attrs, settings, actx)
		if err != nil {
			return computed{}, err
		}
		if req.Family == engine.FamilyBox {
			r := engine.Boxes(g, y, actx)
			return computed{engine.BoxCharts(r, dims), selector(r)}, nil
		}
		r := engine.Ranges(g, y, actx)
		return computed{engine.RangeCharts(r, dims), selector(r)}, nil

	case engine.FamilyShift:
		if shift.From.IsEmpty() || shift.To.IsEmpty() {
			return computed{}, fmt.Errorf("%w: shift from and to timepoints are required", ErrInvalidSettings)
		}
		tp, err := s.measure(shift.Timepoint, "shift timepoint")
		if err != nil {
			return computed{}, err
		}
		catRef := settings.YAxis
		if catRef == nil && s.domain.Shift.Category != "" {
			catRef = &engine.AttrRef{Attr: s.domain.Shift.Category}
		}
		cat, err := s.measure(catRef, "shift category")
		if err != nil {
			return computed{}, err
		}
		g, err := engine.Group(items, attrs, without(settings.Bindings(), engine.RoleXAxis), actx)
		if err != nil {
			return computed{}, err
		}
		r := engine.Shifts(g, engine.ShiftOptions[E]{Timepoint: tp, From: shift.From, To: shift.To, Category: cat}, actx)
		return computed{engine.ShiftCharts(r, dims, shift.From, shift.To), shiftSelector(r)}, nil

	case engine.FamilyHeatmap:
		if settings.XAxis == nil || settings.YAxis == nil {
			return computed{}, fmt.Errorf("%w: heat-map needs x and y axes", ErrInvalidSettings)
		}
		bindings := append(settings.Bindings(), engine.Binding{Dim: engine.RoleYAxis, Attr: settings.YAxis.Attr, Params: settings.YAxis.Params})
		g, err := engine.Group(items, attrs, bindings, actx)
		if err != nil {
			return computed{}, err
		}
		r := engine.Heatmap(g, req.BySubjects)
		return computed{engine.HeatmapCharts(r, dims), selector(r.Cells)}, nil

	case engine.FamilyWaterfall:
		y, err := s.measure(settings.YAxis, "y axis")
		if err != nil {
			return computed{}, err
		}
		bindings := append(without(settings.Bindings(), engine.RoleXAxis), engine.Binding{Dim: engine.RoleSubject, Attr: engine.SubjectAttr})
		g, err := engine.Group(items, attrs, bindings, actx)
		if err != nil {
			return computed{}, err
		}
		r, err := engine.Waterfall(g, y, req.Reducer, actx)
		if err != nil {
			return computed{}, err
		}
		return computed{engine.WaterfallCharts(r, dims), selector(r.Bars)}, nil

	case engine.FamilyLine:
		x, err := s.measure(settings.XAxis, "x axis")
		if err != nil {
			return computed{}, err
		}
		y, err := s.measure(settings.YAxis, "y axis")
		if err != nil {
			return computed{}, err
		}
		bindings := without(settings.Bindings(), engine.RoleXAxis)
		if !hasDim(bindings, engine.RoleSeriesBy) {
			bindings = append(bindings, engine.Binding{Dim: engine.RoleSeriesBy, Attr: engine.SubjectAttr})
		}
		g, err := engine.Group(items, attrs, bindings, actx)
		if err != nil {
			return computed{}, err
		}
		r := engine.Lines(g, x, y, actx)
		return computed{engine.LineCharts(r, dims), selector(r)}, nil

	case engine.FamilyColumnRange:
		low, err := s.measure(req.Low, "low")
		if err != nil {
			return computed{}, err
		}
		high, err := s.measure(req.High, "high")
		if err != nil {
			return computed{}, err
		}
		g, err := engine.GroupSettings(items, attrs, settings, actx)
		if err != nil {
			return computed{}, err
		}
		r := engine.ColumnRanges(g, low, high, actx)
		return computed{engine.ColumnRangeCharts(r, dims), selector(r)}, nil
	}
	return computed{}, fmt.Errorf("%w: %s", ErrUnsupportedFamily, req.Family)
}

// shiftSelector resolves keys naming a transition against the matrix cells
// and every other key against the groups.
func shiftSelector(r engine.ShiftResult) func([]engine.Key, engine.Totals) engine.SelectionDetail {
	return func(items []engine.Key, totals engine.Totals) engine.SelectionDetail {
		var cells, groups []engine.Key
		for _, k := range items {
			_, from := k.Lookup(engine.RoleShiftFrom)
			_, to := k.Lookup(engine.RoleShiftTo)
			if from || to {
				cells = append(cells, k)
			} else {
				groups = append(groups, k)
			}
		}
		a := engine.Select(r.Cells, cells, totals)
		b := engine.Select(r.Groups, groups, totals)
		return engine.SelectionDetail{
			SubjectIDs:    union(a.SubjectIDs, b.SubjectIDs),
			EventIDs:      union(a.EventIDs, b.EventIDs),
			TotalEvents:   totals.Events,
			TotalSubjects: totals.Subjects,
		}
	}
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}
