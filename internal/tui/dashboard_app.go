package tui

import (
	"context"
	"fmt"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/dashboard"
	"nathanbeddoewebdev/cfdash/internal/tui/components"
	"nathanbeddoewebdev/cfdash/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Renderer produces dashboard view-models.
type Renderer interface {
	Render(ctx context.Context, req dashboard.Request) (*dashboard.ViewModel, error)
}

// --- Messages ---

type viewLoadedMsg struct {
	vm *dashboard.ViewModel
}

type viewErrorMsg struct {
	err error
}

// --- Dashboard app model ---

type dashboardModel struct {
	ctx      context.Context
	renderer Renderer
	userID   string

	vm *dashboard.ViewModel

	width    int
	height   int
	viewport viewport.Model
	ready    bool

	loading bool
	spinner spinner.Model
	err     error

	quitting bool
}

func newDashboardModel(ctx context.Context, renderer Renderer, userID string) dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	return dashboardModel{
		ctx:      ctx,
		renderer: renderer,
		userID:   userID,
		loading:  true,
		spinner:  s,
	}
}

// RunDashboard starts the full-window interactive dashboard. Each change of
// range or metric re-renders through renderer, which also persists the
// choice as the user's view preference.
func RunDashboard(ctx context.Context, renderer Renderer, userID string) error {
	p := tea.NewProgram(newDashboardModel(ctx, renderer, userID), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.render(dashboard.Request{CurrentUserID: m.userID}))
}

func (m dashboardModel) render(req dashboard.Request) tea.Cmd {
	return func() tea.Msg {
		vm, err := m.renderer.Render(m.ctx, req)
		if err != nil {
			return viewErrorMsg{err: err}
		}
		return viewLoadedMsg{vm: vm}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case viewLoadedMsg:
		m.loading = false
		m.vm = msg.vm
		m.err = nil
		m.refreshContent()
		return m, nil

	case viewErrorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	}

	if m.loading {
		return m, nil
	}

	switch msg.String() {
	case "t":
		return m.switchView(dashboard.Request{RangeOverride: nextRange(m.currentRange()).String()})
	case "m":
		return m.switchView(dashboard.Request{MetricOverride: string(nextMetric(m.currentMetric()))})
	case "r":
		return m.switchView(dashboard.Request{})
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m dashboardModel) switchView(req dashboard.Request) (tea.Model, tea.Cmd) {
	req.CurrentUserID = m.userID
	m.loading = true
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.render(req))
}

func (m dashboardModel) currentRange() domain.TimeRange {
	if m.vm == nil {
		return domain.DefaultTimeRange
	}
	return m.vm.CurrentRange
}

func (m dashboardModel) currentMetric() domain.MetricKind {
	if m.vm == nil {
		return domain.DefaultMetric
	}
	return m.vm.CurrentMetric
}

// nextRange cycles through the supported ranges in display order.
func nextRange(r domain.TimeRange) domain.TimeRange {
	for i, candidate := range domain.TimeRanges {
		if candidate == r {
			return domain.TimeRanges[(i+1)%len(domain.TimeRanges)]
		}
	}
	return domain.TimeRanges[0]
}

// nextMetric cycles through the supported metrics in display order.
func nextMetric(mk domain.MetricKind) domain.MetricKind {
	for i, candidate := range domain.MetricKinds {
		if candidate == mk {
			return domain.MetricKinds[(i+1)%len(domain.MetricKinds)]
		}
	}
	return domain.MetricKinds[0]
}

func (m *dashboardModel) resize() {
	h := m.height - lipgloss.Height(m.header()) - lipgloss.Height(m.footer())
	if h < 1 {
		h = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, h)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = h
	}
	m.refreshContent()
}

func (m *dashboardModel) refreshContent() {
	if !m.ready || m.vm == nil {
		return
	}
	m.viewport.SetContent(components.DashboardBody(m.vm, m.width))
}

func (m dashboardModel) header() string {
	if m.vm == nil {
		return components.Header(m.width, "dashboard", "")
	}
	return components.DashboardHeader(m.vm, m.width)
}

func (m dashboardModel) footer() string {
	return components.Footer(m.width, []components.KeyBinding{
		{Key: "t", Desc: "range"},
		{Key: "m", Desc: "metric"},
		{Key: "r", Desc: "refresh"},
		{Key: "↑/↓", Desc: "scroll"},
		{Key: "q", Desc: "quit"},
	})
}

func (m dashboardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := m.header()
	footer := m.footer()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentH < 1 {
		contentH = 1
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderContent(contentH), footer)
}

func (m dashboardModel) renderContent(height int) string {
	if m.loading {
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(m.spinner.View()+"  Loading analytics..."),
		)
	}

	if m.err != nil {
		errText := styles.ErrorText.Render("Error: "+m.err.Error()) + "\n\n" +
			styles.MutedText.Render("Press r to retry or q to quit.")
		return lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			errText,
		)
	}

	if !m.ready || m.vm == nil {
		return ""
	}
	return m.viewport.View()
}
