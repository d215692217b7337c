package chart

import (
	"github.com/ehr/trialviz/internal/engine"
)

// Request is the scope shared by every chart-related call: the datasets to
// load, the filters and the role bindings.
type Request struct {
	Datasets          []string        `json:"datasets"`
	EventFilters      engine.Filters  `json:"eventFilters,omitempty"`
	PopulationFilters engine.Filters  `json:"populationFilters,omitempty"`
	Settings          engine.Settings `json:"settings"`
}

// ShiftSettings parameterises a shift chart.
type ShiftSettings struct {
	Timepoint *engine.AttrRef `json:"timepoint,omitempty"`
	From      engine.Value    `json:"from"`
	To        engine.Value    `json:"to"`
}

// ChartRequest asks for one family. Only the fields of that family are read.
type ChartRequest struct {
	Request
	Family engine.Family `json:"family"`

	CountType engine.CountType `json:"countType,omitempty"`
	// XOrder is the explicit category order of the X axis.
	XOrder []engine.Value `json:"xOrder,omitempty"`
	// BySubjects counts subjects instead of events in heat-map cells.
	BySubjects bool            `json:"bySubjects,omitempty"`
	Reducer    engine.Reducer  `json:"reducer,omitempty"`
	Shift      *ShiftSettings  `json:"shift,omitempty"`
	Low        *engine.AttrRef `json:"low,omitempty"`
	High       *engine.AttrRef `json:"high,omitempty"`
}

// SelectionRequest re-runs a chart and resolves the selected cells.
type SelectionRequest struct {
	ChartRequest
	Items []engine.Key `json:"items"`
}

// DetailsRequest pages through the rows of selected events.
type DetailsRequest struct {
	Request
	EventIDs []string `json:"eventIds"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}

// Options are the picker choices available for a request.
type Options struct {
	XAxis    []engine.Option `json:"xAxis"`
	Trellis  []engine.Option `json:"trellis"`
	ColorBy  []engine.Option `json:"colorBy"`
	SeriesBy []engine.Option `json:"seriesBy"`
}

// FilterOptions are the available filter values for a request.
type FilterOptions struct {
	Events     []engine.FilterSummary `json:"events"`
	Population []engine.FilterSummary `json:"population"`
}

// Metadata summarises a domain for the landing page. Error is set when the
// domain could not be built; counts are then zero.
type Metadata struct {
	Domain   string          `json:"domain"`
	Error    string          `json:"error,omitempty"`
	Events   int             `json:"events"`
	Subjects int             `json:"subjects"`
	Families []engine.Family `json:"families"`
	Options  Options         `json:"options"`
}

func emptyOptions() Options {
	return Options{
		XAxis:    []engine.Option{},
		Trellis:  []engine.Option{},
		ColorBy:  []engine.Option{},
		SeriesBy: []engine.Option{},
	}
}
