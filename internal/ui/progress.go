// Package ui renders interactive terminal views for long checker runs.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"formula/internal/driver"
)

// maxRows bounds the descriptor rows drawn; the rest are summarized.
const maxRows = 12

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []descriptorItem
	working int
	failed  int
	settled int
	width   int
	done    bool
}

type descriptorItem struct {
	text   string
	status driver.Status
	stage  driver.Stage
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that follows a CheckAll run
// over descriptors. The model quits once events is closed.
func NewProgressModel(title string, descriptors []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]descriptorItem, 0, len(descriptors))
	for _, text := range descriptors {
		items = append(items, descriptorItem{text: text, status: driver.StatusQueued})
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d", m.title, m.settled, len(m.items))
	if m.failed > 0 {
		header += fmt.Sprintf(", %d failed", m.failed)
	}
	header += ")"
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-4, 20)
	shown := 0
	for _, item := range m.items {
		// finished descriptors scroll away unless they failed
		if item.status == driver.StatusQueued || item.status == driver.StatusDone {
			continue
		}
		if shown == maxRows {
			break
		}
		label := statusLabel(item)
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(item.status).Render(fmt.Sprintf("%12s", label)), truncate(item.text, nameWidth))
		shown++
	}
	if queued := len(m.items) - m.settled - m.working; queued > 0 {
		fmt.Fprintf(&b, "  %12s %d more\n", "queued", queued)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.Index < 0 || ev.Index >= len(m.items) {
		return nil
	}
	item := &m.items[ev.Index]
	wasWorking := item.status == driver.StatusWorking
	item.stage = ev.Stage
	item.status = ev.Status
	switch ev.Status {
	case driver.StatusWorking:
		if !wasWorking {
			m.working++
		}
	case driver.StatusDone, driver.StatusError:
		if wasWorking {
			m.working--
		}
		m.settled++
		if ev.Status == driver.StatusError {
			m.failed++
		}
	}

	total := 0.0
	for _, it := range m.items {
		total += progressFor(it)
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func progressFor(item descriptorItem) float64 {
	switch item.status {
	case driver.StatusDone, driver.StatusError:
		return 1.0
	case driver.StatusWorking:
		if item.stage == driver.StageCheck {
			return 0.5
		}
		return 0.2
	default:
		return 0.0
	}
}

func statusLabel(item descriptorItem) string {
	switch item.status {
	case driver.StatusWorking:
		switch item.stage {
		case driver.StageParse:
			return "parsing"
		case driver.StageCheck:
			return "checking"
		}
		return "working"
	default:
		return string(item.status)
	}
}

func styleStatus(status driver.Status) lipgloss.Style {
	switch status {
	case driver.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case driver.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case driver.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
