package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okabe/revue/internal/review"
)

// Program wraps a running Bubble Tea progress display. Status updates come
// in from the runner's goroutines via Send, which is safe for concurrent
// use.
type Program struct {
	program *tea.Program
}

// NewProgram starts a progress display for the given modes. Call Run on
// the returned Program from the main goroutine; it blocks until Finish.
func NewProgram(title string, modes []review.Mode) *Program {
	return &Program{
		program: tea.NewProgram(NewModel(title, modes)),
	}
}

// StatusCallback returns a callback suitable for the mode runner.
func (p *Program) StatusCallback() review.StatusCallback {
	return func(mode review.Mode, status review.Status) {
		p.program.Send(StatusMsg{Mode: mode, Status: status})
	}
}

// Finish tells the display the run is over and unblocks Run.
func (p *Program) Finish() {
	p.program.Send(FinishedMsg{})
}

// Run blocks displaying progress until Finish is called or the user quits.
func (p *Program) Run() error {
	_, err := p.program.Run()
	return err
}
