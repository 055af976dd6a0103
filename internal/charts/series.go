// Package charts turns analytics results into chart-ready view-models.
//
// The output shapes mirror what the client-side charting code expects:
// pies and bars take {value, label, color} tuples and the interval line
// chart takes {labels[], datasets[{label, style, data[]}]}.
package charts

import "nathanbeddoewebdev/cfdash/internal/analytics/domain"

// Series is the full set of chart view-models for one dashboard render.
type Series struct {
	Metric       domain.MetricKind `json:"current_type"`
	Bandwidth    []Slice           `json:"bandwidth"`
	SSL          []Slice           `json:"ssl"`
	ContentTypes []Bar             `json:"content_types"`
	Countries    []Bar             `json:"countries"`
	Interval     LineChart         `json:"interval"`
}

// Slice is one segment of a pie chart.
type Slice struct {
	Value     int64  `json:"value"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	Highlight string `json:"highlight"`
	// Display is the formatted value shown in tooltips; empty when the raw
	// value is already human-readable.
	Display string `json:"display,omitempty"`
}

// Bar is one bar of a category bar chart.
type Bar struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// LineChart is the interval time-series chart.
type LineChart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is a single line of the interval chart.
type Dataset struct {
	Label string    `json:"label"`
	Style LineStyle `json:"style"`
	Data  []int64   `json:"data"`
}

// LineStyle carries the fixed drawing attributes of a dataset.
type LineStyle struct {
	FillColor            string `json:"fillColor"`
	StrokeColor          string `json:"strokeColor"`
	PointColor           string `json:"pointColor"`
	PointStrokeColor     string `json:"pointStrokeColor"`
	PointHighlightFill   string `json:"pointHighlightFill"`
	PointHighlightStroke string `json:"pointHighlightStroke"`
}
