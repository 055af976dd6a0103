package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeRange is a lookback window expressed as a negative minute offset.
// The offset doubles as the API "since" parameter and as the cache and
// preference key.
type TimeRange int

const (
	RangeLast24Hours TimeRange = -1440
	RangeLastWeek    TimeRange = -10080
	RangeLastMonth   TimeRange = -43200
)

// TimeRanges lists the supported windows in display order.
var TimeRanges = []TimeRange{RangeLast24Hours, RangeLastWeek, RangeLastMonth}

var rangeAliases = map[string]TimeRange{
	"last-24-hours": RangeLast24Hours,
	"24h":           RangeLast24Hours,
	"day":           RangeLast24Hours,
	"last-week":     RangeLastWeek,
	"week":          RangeLastWeek,
	"7d":            RangeLastWeek,
	"last-month":    RangeLastMonth,
	"month":         RangeLastMonth,
	"30d":           RangeLastMonth,
}

// ParseTimeRange accepts either the offset form ("-10080") or one of the
// named aliases ("last-week", "week", ...). Anything else is an error.
func ParseTimeRange(s string) (TimeRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := rangeAliases[s]; ok {
		return r, nil
	}
	n, err := strconv.Atoi(s)
	if err == nil {
		r := TimeRange(n)
		if r.Valid() {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown time range %q", s)
}

// Valid reports whether r is one of the supported windows.
func (r TimeRange) Valid() bool {
	switch r {
	case RangeLast24Hours, RangeLastWeek, RangeLastMonth:
		return true
	}
	return false
}

// String returns the offset form, e.g. "-10080".
func (r TimeRange) String() string {
	return strconv.Itoa(int(r))
}

// Label returns the human-readable window name.
func (r TimeRange) Label() string {
	switch r {
	case RangeLast24Hours:
		return "Last 24 hours"
	case RangeLastWeek:
		return "Last week"
	case RangeLastMonth:
		return "Last month"
	default:
		return r.String()
	}
}

// MarshalText encodes the range as its offset string.
func (r TimeRange) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText rejects values outside the supported set.
func (r *TimeRange) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeRange(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MetricKind is one of the chart-able analytics dimensions.
type MetricKind string

const (
	MetricRequests  MetricKind = "requests"
	MetricPageviews MetricKind = "pageviews"
	MetricUniques   MetricKind = "uniques"
	MetricBandwidth MetricKind = "bandwidth"
)

// MetricKinds lists the supported metrics in display order.
var MetricKinds = []MetricKind{MetricRequests, MetricPageviews, MetricUniques, MetricBandwidth}

// ParseMetricKind normalizes s and rejects anything outside the supported set.
func ParseMetricKind(s string) (MetricKind, error) {
	m := MetricKind(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown metric %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of the supported metrics.
func (m MetricKind) Valid() bool {
	switch m {
	case MetricRequests, MetricPageviews, MetricUniques, MetricBandwidth:
		return true
	}
	return false
}

// HasCacheSplit reports whether the metric carries cached/uncached values.
func (m MetricKind) HasCacheSplit() bool {
	return m == MetricRequests || m == MetricBandwidth
}

// Label returns the default display label for the metric.
func (m MetricKind) Label() string {
	return DefaultMetricLabels[m]
}

// UnmarshalText rejects values outside the supported set.
func (m *MetricKind) UnmarshalText(text []byte) error {
	parsed, err := ParseMetricKind(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// DefaultMetricLabels maps each metric to its display label.
var DefaultMetricLabels = map[MetricKind]string{
	MetricRequests:  "Requests",
	MetricPageviews: "Pageviews",
	MetricUniques:   "Unique Visitors",
	MetricBandwidth: "Bandwidth",
}

// Defaults applied when a user has no stored view.
const (
	DefaultTimeRange = RangeLastWeek
	DefaultMetric    = MetricPageviews
)
