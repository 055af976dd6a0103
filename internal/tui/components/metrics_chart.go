package components

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/cfdash/internal/bytefmt"
	"nathanbeddoewebdev/cfdash/internal/charts"
	"nathanbeddoewebdev/cfdash/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// chartHeight is the fixed height of the interval line chart.
const chartHeight = 8

// seriesColors colors the line chart datasets in order: total (or the only
// dataset), cached, uncached.
var seriesColors = []asciigraph.AnsiColor{asciigraph.Orange, asciigraph.DodgerBlue, asciigraph.Gray}

// IntervalChart renders the interval line chart. Byte-valued charts pass
// bytes=true so the summary uses byte units.
func IntervalChart(label string, chart charts.LineChart, width int, bytes bool) string {
	if len(chart.Labels) == 0 || len(chart.Datasets) == 0 {
		return styles.MutedText.Render(label + ": no data")
	}

	// Reserve space for Y-axis labels (number + " ┤" ≈ 9 chars).
	plotWidth := width - 9
	if plotWidth < 10 {
		plotWidth = 10
	}

	series := make([][]float64, 0, len(chart.Datasets))
	legends := make([]string, 0, len(chart.Datasets))
	for _, ds := range chart.Datasets {
		series = append(series, toFloats(ds.Data))
		legends = append(legends, ds.Label)
	}

	opts := []asciigraph.Option{
		asciigraph.Height(chartHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(seriesColors[:min(len(series), len(seriesColors))]...),
		asciigraph.LabelColor(asciigraph.Default),
	}
	if len(series) > 1 {
		opts = append(opts, asciigraph.SeriesLegends(legends...))
	}
	plot := asciigraph.PlotMany(series, opts...)

	axis := styles.MutedText.Render(fmt.Sprintf("  %s … %s", chart.Labels[0], chart.Labels[len(chart.Labels)-1]))

	var summary []string
	for _, ds := range chart.Datasets {
		lo, hi := minMax(ds.Data)
		summary = append(summary, fmt.Sprintf("  %s  total: %s  min: %s  max: %s",
			ds.Label, formatValue(sum(ds.Data), bytes), formatValue(lo, bytes), formatValue(hi, bytes)))
	}

	header := styles.Label.Render(label)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		plot,
		axis,
		styles.MutedText.Render(strings.Join(summary, "\n")),
	)
}

// PieBar renders a two-slice pie as a single proportional bar followed by a
// legend with values and percentages.
func PieBar(label string, slices []charts.Slice, width int) string {
	total := int64(0)
	for _, s := range slices {
		total += s.Value
	}
	if total <= 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.Label.Render(label),
			styles.MutedText.Render("  no data"),
		)
	}

	barWidth := width - 4
	if barWidth < 10 {
		barWidth = 10
	}

	var bar strings.Builder
	used := 0
	for i, s := range slices {
		n := int(float64(barWidth) * float64(s.Value) / float64(total))
		if i == len(slices)-1 {
			n = barWidth - used
		}
		used += n
		bar.WriteString(styles.Swatch(s.Color).Render(strings.Repeat("█", n)))
	}

	legend := make([]string, 0, len(slices))
	for _, s := range slices {
		display := s.Display
		if display == "" {
			display = formatCount(s.Value)
		}
		legend = append(legend, fmt.Sprintf("%s %s %s (%.1f%%)",
			styles.Swatch(s.Color).Render("■"),
			styles.Value.Render(s.Label),
			display,
			100*float64(s.Value)/float64(total),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Label.Render(label),
		"  "+bar.String(),
		"  "+strings.Join(legend, "   "),
	)
}

// RankedBars renders up to limit bars as horizontal bars scaled to the
// largest value. Bars are drawn in the order given.
func RankedBars(label string, bars []charts.Bar, width, limit int) string {
	if len(bars) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.Label.Render(label),
			styles.MutedText.Render("  no data"),
		)
	}

	shown := bars
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	labelWidth := 0
	var peak int64
	for _, b := range shown {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
		peak = max(peak, b.Value)
	}

	barWidth := width - labelWidth - 16
	if barWidth < 5 {
		barWidth = 5
	}

	lines := []string{styles.Label.Render(label)}
	for _, b := range shown {
		n := 0
		if peak > 0 {
			n = int(float64(barWidth) * float64(b.Value) / float64(peak))
		}
		if n == 0 && b.Value > 0 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("  %-*s %s %s",
			labelWidth, b.Label,
			styles.Swatch(b.Color).Render(strings.Repeat("█", n)),
			styles.MutedText.Render(formatCount(b.Value)),
		))
	}
	if rest := len(bars) - len(shown); rest > 0 {
		lines = append(lines, styles.MutedText.Render(fmt.Sprintf("  … %d more", rest)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func toFloats(data []int64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// minMax returns the minimum and maximum values from a slice.
func minMax(data []int64) (int64, int64) {
	if len(data) == 0 {
		return 0, 0
	}
	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func sum(data []int64) int64 {
	var total int64
	for _, v := range data {
		total += v
	}
	return total
}

// formatValue renders a count, or a byte size when bytes is set.
func formatValue(v int64, bytes bool) string {
	if bytes {
		return bytefmt.Bytes(v)
	}
	return formatCount(v)
}

// formatCount renders a count using human-readable suffixes for large values.
func formatCount(v int64) string {
	f := float64(v)
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.1fG", f/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", f/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", f/1_000)
	default:
		return fmt.Sprintf("%d", v)
	}
}
