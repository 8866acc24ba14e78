// Package monitor implements the interactive terminal monitor.
//
// The monitor renders the aggregated system status as a header bar and the
// live process log beneath it. Updates arrive as bubbletea messages pumped
// through a channel, so the status aggregator and the event stream stay
// decoupled from the UI loop.
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/datagenesis-ai/dgctl/internal/proclog"
	"github.com/datagenesis-ai/dgctl/internal/status"
	"github.com/datagenesis-ai/dgctl/internal/stream"
)

// StatusMsg delivers a fresh status snapshot to the UI.
type StatusMsg struct {
	Status status.SystemStatus
}

// EntryMsg signals that a new process log entry was appended to the shared
// buffer. The producer owns the append; the UI only re-reads the buffer.
type EntryMsg struct {
	Entry proclog.Entry
}

// ChannelMsg delivers an event channel state transition to the UI.
type ChannelMsg struct {
	State stream.State
}

// Model is the bubbletea model for the monitor view.
type Model struct {
	events  <-chan tea.Msg
	entries *proclog.Buffer
	refresh func()

	current status.SystemStatus
	channel stream.State
	spin    spinner.Model

	width    int
	height   int
	quitting bool
}

// New creates a monitor model. Messages sent on events drive the UI; refresh
// is invoked when the user requests an immediate status check and may be nil.
func New(events <-chan tea.Msg, entries *proclog.Buffer, refresh func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return Model{
		events:  events,
		entries: entries,
		refresh: refresh,
		current: status.Initial(),
		channel: stream.StateDisconnected,
		spin:    sp,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForActivity(m.events))
}

// waitForActivity blocks on the event channel and replays whatever arrives
// as the next bubbletea message.
func waitForActivity(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.refresh != nil {
				m.refresh()
			}
		}

	case StatusMsg:
		m.current = msg.Status
		return m, waitForActivity(m.events)

	case EntryMsg:
		return m, waitForActivity(m.events)

	case ChannelMsg:
		m.channel = msg.State
		return m, waitForActivity(m.events)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)

		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderLog())
	b.WriteString(helpStyle.Render("q quit  r refresh"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("DataGenesis Monitor")
	verdict := verdictBadge(m.current.Overall.Verdict)

	backend := "backend: unreachable"
	if m.current.Backend.Healthy {
		backend = fmt.Sprintf("backend: %dms", m.current.Backend.ResponseTimeMs)
	}

	engine := fmt.Sprintf("engine: %s", m.current.AIEngine.State)
	if m.current.AIEngine.ModelName != "" {
		engine += " (" + m.current.AIEngine.ModelName + ")"
	}

	agents := fmt.Sprintf("agents: %d/%d", m.current.Agents.Operational, m.current.Agents.Total)
	channel := fmt.Sprintf("channel: %s", m.channel)

	line := strings.Join([]string{backend, engine, agents, channel}, "  ")
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", verdict, "  ", m.spin.View())

	return header + "\n" + mutedStyle.Render(truncate(line, m.width)) + "\n" +
		mutedStyle.Render(truncate(m.current.Overall.Message, m.width))
}

func (m Model) renderLog() string {
	entries := m.entries.Entries()

	visible := proclog.CompactCapacity
	if len(entries) < visible {
		visible = len(entries)
	}

	var b strings.Builder
	for _, e := range entries[len(entries)-visible:] {
		b.WriteString(truncate(renderEntry(e), m.width))
		b.WriteString("\n")
	}

	if visible == 0 {
		b.WriteString(mutedStyle.Render("waiting for events..."))
		b.WriteString("\n")
	}

	return b.String()
}

func renderEntry(e proclog.Entry) string {
	ts := e.Timestamp.Format(time.TimeOnly)

	var prefix string
	switch e.Level {
	case proclog.LevelSuccess:
		prefix = successStyle.Render("ok ")
	case proclog.LevelWarning:
		prefix = warnStyle.Render("wrn")
	case proclog.LevelError:
		prefix = errorStyle.Render("err")
	default:
		prefix = mutedStyle.Render("inf")
	}

	line := fmt.Sprintf("%s %s %s", mutedStyle.Render(ts), prefix, e.Message)

	if e.Agent != "" {
		line += mutedStyle.Render(" [" + e.Agent + "]")
	}

	if e.Progress >= 0 {
		line += mutedStyle.Render(fmt.Sprintf(" %d%%", e.Progress))
	}

	return line
}

func verdictBadge(v status.Verdict) string {
	switch v {
	case status.VerdictHealthy:
		return healthyBadge.Render("HEALTHY")
	case status.VerdictDegraded:
		return degradedBadge.Render("DEGRADED")
	default:
		return unhealthyBadge.Render("UNHEALTHY")
	}
}

// truncate trims a rendered line to the terminal width, accounting for
// wide runes.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}

	return runewidth.Truncate(s, width, "…")
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	healthyBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")).Padding(0, 1)
	degradedBadge  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1)
	unhealthyBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("196")).Padding(0, 1)
)
