package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/klfgate/internal/events"
)

// EventMsg is one line of the monitor.
type EventMsg struct {
	Time    time.Time
	Topic   string
	Command string
	Detail  string
}

// NewEventMsg converts a bus event for display.
func NewEventMsg(ev events.Event) EventMsg {
	m := EventMsg{Time: ev.Time, Topic: ev.Topic}
	if msg := ev.Message; msg != nil {
		m.Command = msg.Name()
		if msg.Record != nil {
			m.Detail = fmt.Sprintf("%+v", msg.Record)
		} else {
			m.Detail = fmt.Sprintf("[% X]", msg.Payload)
		}
	}
	if ev.Err != nil {
		if m.Detail != "" {
			m.Detail += " "
		}
		m.Detail += ev.Err.Error()
	}
	return m
}

// ConnectedMsg tells the monitor the session is up.
type ConnectedMsg struct{ Host string }

// ErrMsg stops the monitor with an error.
type ErrMsg struct{ Err error }

type sourceClosedMsg struct{}

// MonitorHistory is the number of events kept for scrolling.
const MonitorHistory = 500

// Monitor is a bubbletea model that shows a spinner while connecting and
// then a scrolling list of gateway events. q or ctrl+c quits.
type Monitor struct {
	spinner   spinner.Model
	title     string
	host      string
	connected bool
	err       error
	events    []EventMsg
	source    <-chan EventMsg
	width     int
	height    int
	offset    int // lines scrolled up from the bottom
	quitting  bool
}

// NewMonitor creates a monitor reading events from source. Closing source
// quits the program.
func NewMonitor(title string, source <-chan EventMsg) Monitor {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	width, height := GetTerminalSize()
	return Monitor{
		spinner: s,
		title:   title,
		source:  source,
		width:   width,
		height:  height,
	}
}

// Err returns the error that stopped the monitor, if any.
func (m Monitor) Err() error { return m.err }

// Events returns the events received so far.
func (m Monitor) Events() []EventMsg { return m.events }

func waitForEvent(source <-chan EventMsg) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-source
		if !ok {
			return sourceClosedMsg{}
		}
		return ev
	}
}

// Init implements tea.Model
func (m Monitor) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.source))
}

// Update implements tea.Model
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.offset < len(m.events)-1 {
				m.offset++
			}
		case "down", "j":
			if m.offset > 0 {
				m.offset--
			}
		case "end", "G":
			m.offset = 0
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = clampWidth(msg.Width), msg.Height
		return m, nil

	case ConnectedMsg:
		m.connected = true
		m.host = msg.Host
		return m, nil

	case ErrMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit

	case EventMsg:
		m.events = append(m.events, msg)
		if len(m.events) > MonitorHistory {
			m.events = m.events[len(m.events)-MonitorHistory:]
		}
		if m.offset > 0 {
			m.offset++
		}
		return m, waitForEvent(m.source)

	case sourceClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m Monitor) View() string {
	var b strings.Builder

	b.WriteString(HeaderTitleStyle.Render(strings.ToUpper(m.title)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(ErrorMessageStyle.Render("  " + FailureMarker + " " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	case !m.connected:
		b.WriteString("  " + m.spinner.View() + " Connecting...\n")
		return b.String()
	}

	b.WriteString(HeaderCommandStyle.Render(fmt.Sprintf("%s  %d events  (q to quit, ↑/↓ to scroll)", m.host, len(m.events))))
	b.WriteString("\n")
	b.WriteString(RenderHorizontalDivider(m.width-2, "─"))
	b.WriteString("\n")

	for _, ev := range m.visible() {
		b.WriteString(formatEventLine(ev, m.width))
		b.WriteString("\n")
	}

	if m.quitting {
		b.WriteString("\n")
	}
	return b.String()
}

// visible returns the window of events that fits the terminal.
func (m Monitor) visible() []EventMsg {
	rows := m.height - 4
	if rows < 1 {
		rows = 1
	}
	end := len(m.events) - m.offset
	if end < 0 {
		end = 0
	}
	start := end - rows
	if start < 0 {
		start = 0
	}
	return m.events[start:end]
}

func formatEventLine(ev EventMsg, width int) string {
	line := EventTimeStyle.Render(ev.Time.Format("15:04:05.000")) + " " +
		EventTopicStyle.Render(ev.Topic) + " " +
		EventCommandStyle.Render(ev.Command)
	if ev.Detail != "" {
		line += " " + ev.Detail
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

// FormatEvent renders an event as a single plain line for non-interactive
// output.
func FormatEvent(ev EventMsg) string {
	parts := []string{ev.Time.Format("15:04:05.000"), ev.Topic}
	if ev.Command != "" {
		parts = append(parts, ev.Command)
	}
	if ev.Detail != "" {
		parts = append(parts, ev.Detail)
	}
	return strings.Join(parts, " ")
}
