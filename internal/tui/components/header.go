// Package components provides render-only building blocks for the cfdash
// terminal dashboard. Each helper returns a styled string; composition is
// left to the caller.
package components

import (
	"strings"

	"nathanbeddoewebdev/cfdash/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Header renders the application header bar.
//
//	┌──────────────────────────────────────────┐
//	│  cfdash > Pageviews, Last week  Cloudflare │
//	└──────────────────────────────────────────┘
func Header(width int, breadcrumb string, provider string) string {
	if width < 10 {
		return ""
	}

	leftStyle := styles.Title.Foreground(styles.Orange)
	left := leftStyle.Render("cfdash")
	if breadcrumb != "" {
		left += styles.MutedText.Render(" > ") + styles.Title.Render(breadcrumb)
	}

	right := ""
	if provider != "" {
		right = styles.Subtitle.Render(provider)
	}

	// Calculate spacing between left and right.
	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	innerWidth := width - 4 // account for padding
	gap := max(innerWidth-leftLen-rightLen, 1)

	content := left + strings.Repeat(" ", gap) + right

	bar := lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderBottom(true).
		BorderForeground(styles.DimGray).
		Render(content)

	return bar
}
