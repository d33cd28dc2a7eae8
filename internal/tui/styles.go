// Package tui renders live progress for an analysis run as a Bubble Tea
// program: one table row per mode with a spinner, status and duration.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#7B68EE")
	colorMedium = lipgloss.Color("#FFAA00")
	colorGreen  = lipgloss.Color("#55FF55")
	colorHigh   = lipgloss.Color("#FF5555")
	colorDimmed = lipgloss.Color("#666666")
	colorBorder = lipgloss.Color("#444444")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF"))

	statusPendingStyle = lipgloss.NewStyle().Foreground(colorDimmed)
	statusRunningStyle = lipgloss.NewStyle().Foreground(colorMedium)
	statusDoneStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	statusFailedStyle  = lipgloss.NewStyle().Foreground(colorHigh)

	dividerStyle = lipgloss.NewStyle().Foreground(colorBorder)
	helpStyle    = lipgloss.NewStyle().Foreground(colorDimmed)
)

const (
	indicatorPending = "○"
	indicatorDone    = "✓"
	indicatorFailed  = "✗"
)

func renderDivider(width int) string {
	line := make([]rune, width)
	for i := range line {
		line[i] = '─'
	}
	return dividerStyle.Render(string(line))
}
