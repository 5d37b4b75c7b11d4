// Package ui renders decompilation progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sierradec/internal/pipeline"
)

// maxRows bounds the function list; finished rows scroll away first.
const maxRows = 10

type progressModel struct {
	title      string
	events     <-chan pipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []funcItem
	index      map[string]int
	finished   int
	failed     int
	stageLabel string
	cached     bool
	width      int
	done       bool
}

type funcItem struct {
	name    string
	status  pipeline.Status
	elapsed time.Duration
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders run progress.
// Function rows appear as the pipeline queues them; the model quits once
// events is closed.
func NewProgressModel(title string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(pipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
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
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	if m.cached {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("  program loaded from cache"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	statusWidth := 9
	nameWidth := m.width - statusWidth - 16
	if nameWidth < 20 {
		nameWidth = 20
	}
	for _, item := range m.visible() {
		status := styleStatus(item.status).Render(fmt.Sprintf("%9s", item.status))
		line := "  " + status + " " + truncate(item.name, nameWidth)
		if item.elapsed > 0 {
			line += fmt.Sprintf("  %s", item.elapsed.Round(time.Microsecond))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.items) > 0 {
		counts := fmt.Sprintf("%d/%d functions", m.finished, len(m.items))
		if m.failed > 0 {
			counts += fmt.Sprintf(", %d failed", m.failed)
		}
		b.WriteString("\n  ")
		b.WriteString(counts)
		b.WriteString("\n")
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

// visible picks up to maxRows rows: failures and running functions win over
// finished ones, and the list keeps pipeline order.
func (m *progressModel) visible() []funcItem {
	if len(m.items) <= maxRows {
		return m.items
	}
	keep := make([]bool, len(m.items))
	n := 0
	for pass := 0; pass < 3 && n < maxRows; pass++ {
		for i := len(m.items) - 1; i >= 0 && n < maxRows; i-- {
			if keep[i] || rowRank(m.items[i].status) != pass {
				continue
			}
			keep[i] = true
			n++
		}
	}
	out := make([]funcItem, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, m.items[i])
		}
	}
	return out
}

func rowRank(st pipeline.Status) int {
	switch st {
	case pipeline.StatusError:
		return 0
	case pipeline.StatusWorking, pipeline.StatusQueued:
		return 1
	default:
		return 2
	}
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

func (m *progressModel) applyEvent(ev pipeline.Event) tea.Cmd {
	if ev.Func == "" {
		switch ev.Status {
		case pipeline.StatusCached:
			m.cached = true
		case pipeline.StatusWorking:
			m.stageLabel = stageLabel(ev.Stage)
		case pipeline.StatusError:
			m.stageLabel = string(ev.Stage) + " failed"
		}
		return m.prog.SetPercent(m.percent())
	}

	idx, ok := m.index[ev.Func]
	if !ok {
		idx = len(m.items)
		m.index[ev.Func] = idx
		m.items = append(m.items, funcItem{name: ev.Func, status: pipeline.StatusQueued})
	}
	item := &m.items[idx]
	wasFinished := isFinished(item.status)
	item.status = ev.Status
	item.elapsed = ev.Elapsed
	if !wasFinished && isFinished(ev.Status) {
		m.finished++
		if ev.Status == pipeline.StatusError {
			m.failed++
		}
	}
	return m.prog.SetPercent(m.percent())
}

// percent weights the decompile stage by finished functions; the other
// stages are quick and only move the bar at their boundaries.
func (m *progressModel) percent() float64 {
	base := 0.0
	switch m.stageLabel {
	case stageLabel(pipeline.StageCatalog):
		base = 0.05
	case stageLabel(pipeline.StageDecompile):
		base = 0.1
	case stageLabel(pipeline.StageWrite):
		return 0.95
	}
	if len(m.items) == 0 {
		return base
	}
	if base < 0.1 {
		base = 0.1
	}
	return base + 0.85*float64(m.finished)/float64(len(m.items))
}

func isFinished(st pipeline.Status) bool {
	return st == pipeline.StatusDone || st == pipeline.StatusError
}

func stageLabel(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageLoad:
		return "loading"
	case pipeline.StageCatalog:
		return "resolving"
	case pipeline.StageDecompile:
		return "decompiling"
	case pipeline.StageWrite:
		return "writing"
	default:
		return ""
	}
}

func styleStatus(status pipeline.Status) lipgloss.Style {
	switch status {
	case pipeline.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case pipeline.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case pipeline.StatusWorking:
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
	return runewidth.Truncate(value, width, "...")
}
