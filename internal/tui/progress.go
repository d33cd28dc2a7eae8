package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okabe/revue/internal/review"
)

// StatusMsg reports a mode's status transition to the progress model.
type StatusMsg struct {
	Mode   review.Mode
	Status review.Status
}

// FinishedMsg tells the progress model the whole run is over.
type FinishedMsg struct{}

// modeState tracks one mode's row in the progress table.
type modeState struct {
	status    review.Status
	startTime time.Time
	endTime   time.Time
}

func (s *modeState) duration() time.Duration {
	switch s.status {
	case review.StatusPending:
		return 0
	case review.StatusRunning:
		return time.Since(s.startTime)
	}
	return s.endTime.Sub(s.startTime)
}

// Model is the Bubble Tea model for run progress.
type Model struct {
	title    string
	modes    []review.Mode
	states   map[review.Mode]*modeState
	spinner  spinner.Model
	complete int
	quitting bool
}

// NewModel creates a progress model tracking the given modes.
func NewModel(title string, modes []review.Mode) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusRunningStyle

	states := make(map[review.Mode]*modeState, len(modes))
	for _, mode := range modes {
		states[mode] = &modeState{status: review.StatusPending}
	}
	return Model{
		title:   title,
		modes:   modes,
		states:  states,
		spinner: s,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles status transitions, spinner ticks and interrupt keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		if st, ok := m.states[msg.Mode]; ok {
			switch msg.Status {
			case review.StatusRunning:
				st.status = review.StatusRunning
				st.startTime = time.Now()
			case review.StatusDone, review.StatusFailed:
				if st.status != review.StatusDone && st.status != review.StatusFailed {
					m.complete++
				}
				st.status = msg.Status
				st.endTime = time.Now()
			default:
				st.status = msg.Status
			}
		}
		return m, nil

	case FinishedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// Done reports whether every tracked mode reached a terminal status.
func (m Model) Done() bool {
	return m.complete >= len(m.modes)
}

// View renders the progress table.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(renderDivider(50))
	b.WriteString("\n")

	header := fmt.Sprintf(" %-16s │ %-11s │ %s", "MODE", "STATUS", "DURATION")
	b.WriteString(tableHeaderStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(renderDivider(50))
	b.WriteString("\n")

	for _, mode := range m.modes {
		st := m.states[mode]
		if st == nil {
			continue
		}

		info := review.GetModeInfo(mode)
		name := info.Name
		if len(name) > 16 {
			name = name[:15] + "…"
		}

		var statusStr string
		switch st.status {
		case review.StatusPending:
			statusStr = statusPendingStyle.Render(indicatorPending + " Pending")
		case review.StatusRunning:
			statusStr = statusRunningStyle.Render(m.spinner.View() + "Running")
		case review.StatusDone:
			statusStr = statusDoneStyle.Render(indicatorDone + " Done")
		case review.StatusFailed:
			statusStr = statusFailedStyle.Render(indicatorFailed + " Failed")
		}

		durationStr := "-"
		if st.status != review.StatusPending {
			durationStr = fmt.Sprintf("%.1fs", st.duration().Seconds())
		}

		fmt.Fprintf(&b, " %-16s │ %-11s │ %s\n", name, statusStr, durationStr)
	}

	b.WriteString(renderDivider(50))
	b.WriteString("\n")
	fmt.Fprintf(&b, " Progress: %d/%d complete\n", m.complete, len(m.modes))
	if !m.quitting {
		b.WriteString(helpStyle.Render(" q/ctrl+c: abort"))
		b.WriteString("\n")
	}

	return b.String()
}
