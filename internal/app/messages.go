package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/calebmah/tlcparquet/internal/fetcher"
)

// StartMsg carries the planned task count before any download begins.
type StartMsg struct {
	Total int
}

// AdvanceMsg reports one completed task, in completion order.
type AdvanceMsg struct {
	Result fetcher.Result
}

// DoneMsg signals that every task has completed and the UI may exit.
type DoneMsg struct{}

// Sink forwards progress signals into a running bubbletea program. It
// satisfies report.ProgressSink, so the fetch command can swap it for the
// plain log sink without the collector noticing.
type Sink struct {
	program *tea.Program
}

func NewSink(program *tea.Program) *Sink {
	return &Sink{program: program}
}

func (s *Sink) Start(total int)            { s.program.Send(StartMsg{Total: total}) }
func (s *Sink) Advance(res fetcher.Result) { s.program.Send(AdvanceMsg{Result: res}) }
func (s *Sink) Done()                      { s.program.Send(DoneMsg{}) }
