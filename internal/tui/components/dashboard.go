package components

import (
	"fmt"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/bytefmt"
	"nathanbeddoewebdev/cfdash/internal/dashboard"
	"nathanbeddoewebdev/cfdash/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// topBars is how many content types and countries are listed.
const topBars = 10

const minWidth = 40

// Dashboard renders a full view-model for a terminal of the given width.
func Dashboard(vm *dashboard.ViewModel, width int) string {
	if width < minWidth {
		width = minWidth
	}
	return lipgloss.JoinVertical(lipgloss.Left, DashboardHeader(vm, width), DashboardBody(vm, width))
}

// DashboardHeader renders the header bar with the current view as breadcrumb.
func DashboardHeader(vm *dashboard.ViewModel, width int) string {
	return Header(width, vm.MetricLabel()+", "+vm.RangeLabel(), vm.Provider)
}

// DashboardBody renders everything below the header: the failure card, or
// the totals and charts followed by a cache status line.
func DashboardBody(vm *dashboard.ViewModel, width int) string {
	if width < minWidth {
		width = minWidth
	}

	if vm.Failed() {
		return styles.ErrorCard.Width(width - 4).Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.ErrorText.Render("Unable to connect to "+vm.Provider),
			vm.Failure.Message,
			styles.MutedText.Render(vm.Failure.SettingsHint),
		))
	}

	sections := []string{Totals(vm.Analytics.Totals)}

	sections = append(sections, styles.Card.Width(width-4).Render(
		IntervalChart(vm.MetricLabel(), vm.Charts.Interval, width-8, vm.CurrentMetric == domain.MetricBandwidth),
	))

	half := (width - 4) / 2
	pies := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Card.Width(half).Render(PieBar("Bandwidth", vm.Charts.Bandwidth, half-4)),
		styles.Card.Width(half).Render(PieBar("SSL", vm.Charts.SSL, half-4)),
	)
	sections = append(sections, pies)

	sections = append(sections,
		styles.Card.Width(width-4).Render(RankedBars("Content Types", vm.Charts.ContentTypes, width-8, topBars)),
		styles.Card.Width(width-4).Render(RankedBars("Countries", vm.Charts.Countries, width-8, topBars)),
	)

	status, tone := SourceStatus(vm.Provider, vm.Cached)
	sections = append(sections, StatusBar(width, status, tone))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Totals renders the headline numbers for the window.
func Totals(t domain.Totals) string {
	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.Label.Render(label),
			styles.Value.Render(value),
		)
	}
	gap := "    "
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Requests", formatCount(t.Requests.All)), gap,
		cell("Bandwidth", bytefmt.Bytes(t.Bandwidth.All)), gap,
		cell("Pageviews", formatCount(t.Pageviews.All)), gap,
		cell("Unique Visitors", formatCount(t.Uniques.All)), gap,
		cell("Cached", fmt.Sprintf("%.1f%%", cachedShare(t.Requests.Counter))),
	))
}

func cachedShare(c domain.Counter) float64 {
	if c.All <= 0 {
		return 0
	}
	return 100 * float64(c.Cached) / float64(c.All)
}
