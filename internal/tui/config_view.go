package tui

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/cfdash/internal/config"
	"nathanbeddoewebdev/cfdash/internal/tui/components"
	"nathanbeddoewebdev/cfdash/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Config messages ---

type configSavedMsg struct {
	key string
}

type configSaveErrorMsg struct {
	err error
}

// --- Config model ---

type configViewModel struct {
	cfg  *config.Config
	keys []config.KeySpec
	save func(*config.Config) error

	cursor  int
	editing bool
	editor  textinput.Model

	width  int
	height int

	status  string
	isError bool
}

// RunConfigView starts the interactive config editor. Values are validated
// with the same rules as 'cfdash config set' and saved on enter.
func RunConfigView() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p := tea.NewProgram(newConfigViewModel(cfg, (*config.Config).Save), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func newConfigViewModel(cfg *config.Config, save func(*config.Config) error) configViewModel {
	return configViewModel{cfg: cfg, keys: config.Keys, save: save}
}

func (m configViewModel) Init() tea.Cmd {
	return nil
}

func (m configViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case configSavedMsg:
		m.editing = false
		m.status = "Saved " + msg.key
		m.isError = false
		return m, nil

	case configSaveErrorMsg:
		m.status = "Error: " + msg.err.Error()
		m.isError = true
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m configViewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.keys)-1 {
			m.cursor++
		}
	case "enter", "e":
		spec := m.keys[m.cursor]
		ti := textinput.New()
		ti.SetValue(spec.Get(m.cfg))
		ti.Focus()
		ti.Width = 40
		ti.Placeholder = "enter value"
		m.editor = ti
		m.editing = true
		m.status = ""
		return m, textinput.Blink
	}

	return m, nil
}

func (m configViewModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil
	case "enter":
		spec := m.keys[m.cursor]
		if err := spec.Apply(m.cfg, strings.TrimSpace(m.editor.Value())); err != nil {
			m.status = err.Error()
			m.isError = true
			return m, nil
		}
		return m, m.saveConfig(spec.Name)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m configViewModel) saveConfig(key string) tea.Cmd {
	return func() tea.Msg {
		if err := m.save(m.cfg); err != nil {
			return configSaveErrorMsg{err: err}
		}
		return configSavedMsg{key: key}
	}
}

func (m configViewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "config", "")

	bindings := []components.KeyBinding{
		{Key: "j/k", Desc: "navigate"},
		{Key: "e", Desc: "edit"},
		{Key: "q", Desc: "quit"},
	}
	if m.editing {
		bindings = []components.KeyBinding{
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}
	}
	footer := components.Footer(m.width, bindings)
	tone := components.ToneSuccess
	if m.isError {
		tone = components.ToneError
	}
	statusBar := components.StatusBar(m.width, m.status, tone)

	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if statusBar != "" {
		contentH -= lipgloss.Height(statusBar)
	}
	if contentH < 1 {
		contentH = 1
	}

	sections := []string{header, m.renderContent(contentH)}
	if statusBar != "" {
		sections = append(sections, statusBar)
	}
	sections = append(sections, footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m configViewModel) renderContent(height int) string {
	labelWidth := 16

	rows := make([]string, 0, len(m.keys)+1)
	for i, spec := range m.keys {
		value := spec.Get(m.cfg)
		if value == "" {
			value = "(not set)"
		}

		if i != m.cursor {
			rows = append(rows, "  "+styles.MutedText.Width(labelWidth).Render(spec.Name)+styles.MutedText.Render(value))
			continue
		}

		prefix := styles.AccentText.Render("> ")
		name := styles.Label.Width(labelWidth).Render(spec.Name)
		if m.editing {
			rows = append(rows, prefix+name+m.editor.View())
			continue
		}
		rows = append(rows,
			prefix+name+styles.Value.Bold(true).Render(value),
			"    "+styles.MutedText.Italic(true).Render(spec.Description),
		)
	}

	combined := lipgloss.JoinVertical(lipgloss.Center,
		styles.Title.Render("Configuration"),
		"",
		styles.Card.Width(72).Render(strings.Join(rows, "\n")),
	)
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, combined)
}
