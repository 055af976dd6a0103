package dashboard

import (
	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/charts"
)

// SettingsHint tells the user how to fix a failed fetch.
const SettingsHint = "Check your settings: run 'cfdash config set zone-id <id>' and 'cfdash auth login cloudflare'."

// Option is one entry of a select control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Failure describes why analytics could not be shown. Message is the
// fetcher's error text, unchanged.
type Failure struct {
	Message      string `json:"message"`
	SettingsHint string `json:"settings_hint"`
}

// ViewModel is everything a presentation layer needs to draw the widget.
// Exactly one of Failure or (Analytics, Charts) is set.
type ViewModel struct {
	UserID        string            `json:"user_id"`
	Provider      string            `json:"provider"`
	TimeOptions   []Option          `json:"time_options"`
	MetricOptions []Option          `json:"metric_options"`
	CurrentRange  domain.TimeRange  `json:"current_time"`
	CurrentMetric domain.MetricKind `json:"current_type"`

	Analytics *domain.Result `json:"analytics,omitempty"`
	Charts    *charts.Series `json:"charts,omitempty"`

	// Cached reports whether Analytics came from the cache.
	Cached bool `json:"cached"`

	Failure *Failure `json:"failure,omitempty"`
}

// Failed reports whether the render could not load analytics.
func (v *ViewModel) Failed() bool {
	return v.Failure != nil
}

// RangeLabel returns the display label of the current range.
func (v *ViewModel) RangeLabel() string {
	return v.CurrentRange.Label()
}

// MetricLabel returns the display label of the current metric, as shown in
// the metric selector.
func (v *ViewModel) MetricLabel() string {
	for _, o := range v.MetricOptions {
		if o.Value == string(v.CurrentMetric) {
			return o.Label
		}
	}
	return v.CurrentMetric.Label()
}

func timeOptions() []Option {
	opts := make([]Option, 0, len(domain.TimeRanges))
	for _, r := range domain.TimeRanges {
		opts = append(opts, Option{Value: r.String(), Label: r.Label()})
	}
	return opts
}

func metricOptions(labels map[domain.MetricKind]string) []Option {
	opts := make([]Option, 0, len(domain.MetricKinds))
	for _, m := range domain.MetricKinds {
		label := m.Label()
		if l, ok := labels[m]; ok && l != "" {
			label = l
		}
		opts = append(opts, Option{Value: string(m), Label: label})
	}
	return opts
}

// RangeValue returns the current range as its option value.
func (v *ViewModel) RangeValue() string {
	return v.CurrentRange.String()
}

// MetricValue returns the current metric as its option value.
func (v *ViewModel) MetricValue() string {
	return string(v.CurrentMetric)
}
