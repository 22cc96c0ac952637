package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"mangasplit/internal/events"
)

const recentLines = 8

type Model struct {
	updates  <-chan events.Event
	cancel   func()
	started  time.Time
	width    int
	bar      progress.Model
	status   string
	percent  int
	warnings int
	errors   int
	recent   []events.Event
	quitting bool
}

type doneMsg struct{}

type eventMsg events.Event

// NewModel renders events from updates until the channel is closed. cancel,
// if set, is called when the user presses ctrl+c or q.
func NewModel(updates <-chan events.Event, cancel func()) Model {
	return Model{
		updates: updates,
		cancel:  cancel,
		started: time.Now(),
		bar:     progress.New(progress.WithDefaultGradient()),
		status:  "Starting",
	}
}

func (m Model) Init() tea.Cmd {
	return listenForEvents(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m = m.apply(events.Event(msg))
		return m, listenForEvents(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			// Keep draining events until the run winds down and closes the channel.
			if m.cancel != nil {
				m.cancel()
			}
			m.status = "Cancelling"
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = barWidth(msg.Width)
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) apply(e events.Event) Model {
	if e.Progress {
		m.status = e.Status
		m.percent = e.Percent
		return m
	}
	switch e.Level {
	case events.LevelWarn:
		m.warnings++
	case events.LevelError:
		m.errors++
	}
	m.recent = append(m.recent, e)
	if len(m.recent) > recentLines {
		m.recent = m.recent[len(m.recent)-recentLines:]
	}
	return m
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	elapsed := time.Since(m.started).Round(time.Second)

	lines := []string{
		titleStyle.Render("mangasplit"),
		labelStyle.Render(m.status) + dimStyle.Render(fmt.Sprintf("  warnings:%d errors:%d", m.warnings, m.errors)),
		m.bar.ViewAs(float64(m.percent) / 100),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		"",
	}
	for _, e := range m.recent {
		lines = append(lines, renderEvent(e, m.width))
	}
	return strings.Join(lines, "\n")
}

func renderEvent(e events.Event, width int) string {
	msg := e.Message
	// Cut by display cells; folder names are often CJK.
	if width > 4 && ansi.StringWidth(msg) > width-2 {
		msg = ansi.Truncate(msg, width-2, "...")
	}
	switch e.Level {
	case events.LevelWarn:
		return warnStyle.Render(msg)
	case events.LevelError:
		return errorStyle.Render(msg)
	default:
		return dimStyle.Render(msg)
	}
}

func barWidth(termWidth int) int {
	w := termWidth - 10
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func listenForEvents(updates <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return eventMsg(e)
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	errorStyle = lipgloss.NewStyle().Foreground(ColorError)
)
