package tui

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/cfdash/internal/services/auth"
	"nathanbeddoewebdev/cfdash/internal/tui/components"
	"nathanbeddoewebdev/cfdash/internal/tui/styles"
	"nathanbeddoewebdev/cfdash/internal/util"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Messages ---

type tokenSavedMsg struct{}

type tokenSaveErrorMsg struct {
	err error
}

// --- Auth login model ---

type authLoginModel struct {
	provider string
	store    auth.Store

	tokenInput textinput.Model

	width  int
	height int

	err      error
	saved    bool
	quitting bool
}

// RunAuthLogin prompts for an API token in a full-window form and stores it
// for provider. It reports whether a token was saved; cancelling is not an
// error.
func RunAuthLogin(provider string, store auth.Store) (bool, error) {
	p := tea.NewProgram(newAuthLoginModel(provider, store), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("failed to run auth login: %w", err)
	}
	return result.(authLoginModel).saved, nil
}

func newAuthLoginModel(provider string, store auth.Store) authLoginModel {
	ti := textinput.New()
	ti.Placeholder = "paste your API token here"
	ti.Focus()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.Width = 50

	return authLoginModel{
		provider:   provider,
		store:      store,
		tokenInput: ti,
	}
}

func (m authLoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m authLoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tokenSavedMsg:
		m.saved = true
		return m, tea.Quit

	case tokenSaveErrorMsg:
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	return m, cmd
}

func (m authLoginModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		token := strings.TrimSpace(m.tokenInput.Value())
		if err := util.ValidateAPIToken(token); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		return m, m.saveToken(token)
	}

	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	m.err = nil
	return m, cmd
}

func (m authLoginModel) saveToken(token string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.SetToken(m.provider, token); err != nil {
			return tokenSaveErrorMsg{err: err}
		}
		return tokenSavedMsg{}
	}
}

func (m authLoginModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth login", m.provider)
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "enter", Desc: "save"},
		{Key: "esc", Desc: "cancel"},
	})

	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentH < 1 {
		contentH = 1
	}

	card := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("API Token"),
		styles.MutedText.Render("Create a token with Zone Analytics:Read for "+m.provider),
		"",
		m.tokenInput.View(),
	)
	if m.err != nil {
		card = lipgloss.JoinVertical(lipgloss.Left, card, "", styles.ErrorText.Render(m.err.Error()))
	}

	content := lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, card)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}
