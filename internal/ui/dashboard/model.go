package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"robotutor/internal/modules/monitor/dto"
	"robotutor/internal/ui/theme"
)

const progressWidth = 24

type keyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Quit}}
}

var keys = keyMap{
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type eventMsg struct{ event any }

type Model struct {
	client    *Client
	help      help.Model
	width     int
	connected bool
	lastError string
	stats     *dto.DashboardStatsOutput
	sessions  map[string]dto.GraphStateOutput
}

func NewModel(client *Client) Model {
	return Model{
		client:   client,
		help:     help.New(),
		sessions: map[string]dto.GraphStateOutput{},
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: <-m.client.Events()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.client.Close()
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			m.client.RequestActiveSessions()
		}
		return m, nil

	case eventMsg:
		m.apply(msg.event)
		return m, m.waitForEvent()
	}
	return m, nil
}

func (m *Model) apply(event any) {
	switch event := event.(type) {
	case ConnectedEvent:
		m.connected = true
		m.lastError = ""
		m.client.RequestActiveSessions()
	case DisconnectedEvent:
		m.connected = false
		m.lastError = event.Reason
	case StatsEvent:
		stats := dto.DashboardStatsOutput(event)
		m.stats = &stats
	case ActiveSessionsEvent:
		m.sessions = map[string]dto.GraphStateOutput{}
		for _, state := range event {
			m.sessions[state.SessionID] = state
			m.client.Watch(state.SessionID)
		}
	case SessionNewEvent:
		state := dto.GraphStateOutput(event)
		m.sessions[state.SessionID] = state
		m.client.Watch(state.SessionID)
	case SessionStateEvent:
		m.sessions[event.SessionID] = dto.GraphStateOutput(event)
	case NotFoundEvent:
		delete(m.sessions, event.SessionID)
	}
}

func (m Model) View() string {
	var b strings.Builder

	status := theme.Bad.Render("● offline")
	if m.connected {
		status = theme.Good.Render("● live")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		theme.Title.Render("robotutor dashboard"), "  ", status))
	b.WriteString("\n\n")

	b.WriteString(theme.Pane.Render(m.statsView()))
	b.WriteString("\n")
	b.WriteString(theme.PaneActive.Render(m.sessionsView()))
	b.WriteString("\n")
	if m.lastError != "" {
		b.WriteString(theme.Bad.Render(m.lastError))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return theme.App.Render(b.String())
}

func (m Model) statsView() string {
	if m.stats == nil {
		return theme.Muted.Render("waiting for stats...")
	}
	return fmt.Sprintf("lessons %s   sessions %s   students %s   completed %s   avg score %s",
		theme.Hot.Render(fmt.Sprint(m.stats.Lessons)),
		theme.Hot.Render(fmt.Sprint(m.stats.Sessions)),
		theme.Hot.Render(fmt.Sprint(m.stats.Students)),
		theme.Hot.Render(fmt.Sprint(m.stats.Completed)),
		theme.Hot.Render(fmt.Sprintf("%.1f%%", m.stats.AverageScorePct)))
}

func (m Model) sessionsView() string {
	if len(m.sessions) == 0 {
		return theme.Muted.Render("no active sessions")
	}
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, renderSession(m.sessions[id]))
	}
	return strings.Join(lines, "\n")
}

func renderSession(state dto.GraphStateOutput) string {
	label := state.LessonTitle
	if label == "" {
		label = state.LessonID
	}
	node := theme.Muted.Render(state.Node)
	switch state.Node {
	case "quiz":
		node = theme.Hot.Render(state.Node)
	case "complete":
		node = theme.Good.Render(state.Node)
	}
	detail := fmt.Sprintf("%d/%d", state.SegmentIndex, state.SegmentCount)
	if state.ScorePct != nil {
		detail = fmt.Sprintf("score %d%%", *state.ScorePct)
	} else if state.ActiveSegment != nil {
		detail = *state.ActiveSegment
	}
	return fmt.Sprintf("%-12s %-24s %s %3d%% %-8s %s",
		state.StudentID, truncate(label, 24), progressBar(state.ProgressPct), state.ProgressPct, node, theme.Muted.Render(detail))
}

func progressBar(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := progressWidth * pct / 100
	return theme.Good.Render(strings.Repeat("█", filled)) +
		theme.Muted.Render(strings.Repeat("░", progressWidth-filled))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
