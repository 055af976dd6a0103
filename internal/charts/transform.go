package charts

import (
	"sort"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/bytefmt"
)

// Options selects what Transform renders and how.
type Options struct {
	Metric domain.MetricKind
	Range  domain.TimeRange

	// Palette is cycled over the bar charts. Empty means DefaultPalette.
	Palette []string

	// MetricLabels overrides the dataset labels. Missing entries fall back
	// to domain.DefaultMetricLabels.
	MetricLabels map[domain.MetricKind]string

	// Location is the zone interval labels are rendered in. Nil means UTC.
	Location *time.Location
}

// Transformer binds a palette, label set and location so callers only
// choose the metric and range per render.
type Transformer struct {
	Palette      []string
	MetricLabels map[domain.MetricKind]string
	Location     *time.Location
}

// Transform renders result for the given metric and range.
func (t Transformer) Transform(result *domain.Result, metric domain.MetricKind, r domain.TimeRange) *Series {
	return Transform(result, Options{
		Metric:       metric,
		Range:        r,
		Palette:      t.Palette,
		MetricLabels: t.MetricLabels,
		Location:     t.Location,
	})
}

// Transform converts a validated analytics result into chart series.
// It is pure: the same inputs always produce the same output.
// opts.Metric must be a valid MetricKind.
func Transform(result *domain.Result, opts Options) *Series {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	totals := result.Totals
	return &Series{
		Metric: opts.Metric,
		Bandwidth: []Slice{
			{
				Value:     totals.Bandwidth.Cached,
				Label:     "Cached",
				Color:     primaryColor,
				Highlight: primaryHighlight,
				Display:   bytefmt.Bytes(totals.Bandwidth.Cached),
			},
			{
				Value:     totals.Bandwidth.Uncached,
				Label:     "Uncached",
				Color:     secondaryColor,
				Highlight: secondaryHighlight,
				Display:   bytefmt.Bytes(totals.Bandwidth.Uncached),
			},
		},
		SSL: []Slice{
			{
				Value:     totals.Requests.SSL.Encrypted,
				Label:     "Encrypted",
				Color:     primaryColor,
				Highlight: primaryHighlight,
			},
			{
				Value:     totals.Requests.SSL.Unencrypted,
				Label:     "Unencrypted",
				Color:     secondaryColor,
				Highlight: secondaryHighlight,
			},
		},
		ContentTypes: rankedBars(totals.Requests.ContentType, palette),
		Countries:    rankedBars(totals.Requests.Country, palette),
		Interval:     intervalChart(result.Timeseries, opts),
	}
}

// rankedBars sorts counts by value, highest first, keeping the original
// order for ties, and colors them by cycling the palette from index 0.
func rankedBars(counts domain.Counts, palette []string) []Bar {
	sorted := make(domain.Counts, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	bars := make([]Bar, 0, len(sorted))
	for i, c := range sorted {
		bars = append(bars, Bar{
			Value: c.Value,
			Label: c.Key,
			Color: palette[i%len(palette)],
		})
	}
	return bars
}

func intervalChart(intervals []domain.Interval, opts Options) LineChart {
	label := metricLabel(opts.MetricLabels, opts.Metric)
	split := opts.Metric.HasCacheSplit()

	var datasets []Dataset
	if split {
		datasets = []Dataset{
			{Label: label, Style: allStyle, Data: make([]int64, 0, len(intervals))},
			{Label: "Cached", Style: cachedStyle, Data: make([]int64, 0, len(intervals))},
			{Label: "Uncached", Style: uncachedStyle, Data: make([]int64, 0, len(intervals))},
		}
	} else {
		datasets = []Dataset{
			{Label: label, Style: cachedStyle, Data: make([]int64, 0, len(intervals))},
		}
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	labels := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		labels = append(labels, IntervalLabel(iv.Since, opts.Range, loc))

		c := iv.Metric(opts.Metric)
		datasets[0].Data = append(datasets[0].Data, c.All)
		if split {
			datasets[1].Data = append(datasets[1].Data, c.Cached)
			datasets[2].Data = append(datasets[2].Data, c.Uncached)
		}
	}

	return LineChart{Labels: labels, Datasets: datasets}
}

// IntervalLabel formats an interval start for the x-axis: hour of day
// ("3pm") for the 24 hour window, month/day ("6/30") otherwise.
func IntervalLabel(since time.Time, r domain.TimeRange, loc *time.Location) string {
	t := since.In(loc)
	if r == domain.RangeLast24Hours {
		return t.Format("3pm")
	}
	return t.Format("1/2")
}

func metricLabel(labels map[domain.MetricKind]string, m domain.MetricKind) string {
	if l, ok := labels[m]; ok && l != "" {
		return l
	}
	return m.Label()
}
