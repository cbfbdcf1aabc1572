package report

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	accent  = lipgloss.Color("#F97316") // Orange
	success = lipgloss.Color("#22C55E") // Green
	failure = lipgloss.Color("#F43F5E") // Rose
	text    = lipgloss.Color("#F8FAFC") // White
	textDim = lipgloss.Color("#94A3B8") // Slate
	border  = lipgloss.Color("#334155") // Slate
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(primary)

var dimStyle = lipgloss.NewStyle().
	Foreground(textDim)

var bodyStyle = lipgloss.NewStyle().
	Foreground(text)

var okStyle = lipgloss.NewStyle().
	Foreground(success).
	Bold(true)

var failStyle = lipgloss.NewStyle().
	Foreground(failure).
	Bold(true)

var warnStyle = lipgloss.NewStyle().
	Foreground(accent)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(border).
	Padding(0, 1)
