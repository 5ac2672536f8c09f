// Package app renders fetch progress as a terminal UI: an overall bar plus
// a scrolling tail of completed files.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/calebmah/tlcparquet/internal/fetcher"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	infoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	okStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	failStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	progressBarStyle = lipgloss.NewStyle().Padding(0, 1)
)

type fileLine struct {
	name    string
	ok      bool
	detail  string
	elapsed time.Duration
}

// Model is the bubbletea model for one fetch run.
type Model struct {
	category string
	cancel   context.CancelFunc

	spinner spinner.Model
	bar     progress.Model

	total     int
	completed int
	failed    int
	lines     []fileLine

	finished bool
	quitting bool

	termWidth  int
	termHeight int
}

// NewModel creates the fetch progress model. cancel is invoked when the
// user quits mid-run so in-flight downloads stop.
func NewModel(category string, cancel context.CancelFunc) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Model{
		category: category,
		cancel:   cancel,
		spinner:  s,
		bar:      progress.New(progress.WithDefaultGradient()),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.bar.Width = max(0, m.termWidth-6)
	case StartMsg:
		m.total = msg.Total
	case AdvanceMsg:
		m.completed++
		line := fileLine{
			name:    fetcher.BaseName(msg.Result.Task),
			ok:      msg.Result.OK,
			elapsed: msg.Result.Elapsed,
		}
		if msg.Result.OK {
			line.detail = humanize.Bytes(uint64(msg.Result.Bytes))
		} else {
			m.failed++
			if msg.Result.Err != nil {
				line.detail = msg.Result.Err.Error()
			}
		}
		m.lines = append(m.lines, line)
		var percent float64
		if m.total > 0 {
			percent = float64(m.completed) / float64(m.total)
		}
		cmds = append(cmds, m.bar.SetPercent(percent))
	case DoneMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		if newBar, ok := barModel.(progress.Model); ok {
			m.bar = newBar
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("--- TLC Trip Data Fetch (%s) ---", m.category)))
	b.WriteString("\n\n")

	switch {
	case m.quitting:
		b.WriteString(infoStyle.Render("Cancelling remaining downloads..."))
	case m.finished:
		b.WriteString(fmt.Sprintf("Finished: %d succeeded, %d failed.\n", m.completed-m.failed, m.failed))
	default:
		b.WriteString(fmt.Sprintf("%s Downloading\n", m.spinner.View()))
		b.WriteString(progressBarStyle.Render(m.bar.View()))
		b.WriteString(fmt.Sprintf(" (%d/%d)\n", m.completed, m.total))
	}

	if len(m.lines) > 0 {
		b.WriteString("\n")
		maxLines := m.termHeight - 8
		if maxLines < 1 {
			maxLines = 1
		}
		start := 0
		if len(m.lines) > maxLines {
			start = len(m.lines) - maxLines
		}
		for _, line := range m.lines[start:] {
			status := okStyle.Render("done")
			if !line.ok {
				status = failStyle.Render("failed")
			}
			row := fmt.Sprintf("  %-44s %-8s %-10s %s",
				truncate(line.name, 44), status, line.detail, line.elapsed.Round(time.Millisecond))
			if m.termWidth > 0 && len(row) >= m.termWidth {
				row = row[:m.termWidth-1]
			}
			b.WriteString(row)
			b.WriteString("\n")
		}
	}

	if !m.finished && !m.quitting {
		b.WriteString("\n")
		b.WriteString(infoStyle.Render("'q' or Ctrl+C to cancel."))
	}

	return b.String()
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
