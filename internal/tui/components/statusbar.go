package components

import (
	"nathanbeddoewebdev/cfdash/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Tone selects the color of a status line.
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneError
)

func (t Tone) style() lipgloss.Style {
	switch t {
	case ToneSuccess:
		return styles.SuccessText
	case ToneError:
		return styles.ErrorText
	default:
		return styles.MutedText
	}
}

// StatusBar renders a one-line status message. An empty message renders
// nothing so callers can skip it in layout math.
func StatusBar(width int, message string, tone Tone) string {
	if message == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(tone.style().Render(message))
}

// SourceStatus describes where a rendered view's analytics came from.
func SourceStatus(provider string, cached bool) (string, Tone) {
	if cached {
		return "served from cache", ToneSuccess
	}
	return "fetched from " + provider, ToneInfo
}
