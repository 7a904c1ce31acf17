// Package style provides shared UI styling primitives: the colors and
// icons used for verdict and log rendering across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Slate  = lipgloss.Color("#667085")
	Dim    = lipgloss.Color("#98A2B3")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dash    = "-"
)

// Verdict styles.
var (
	Pass    = lipgloss.NewStyle().Foreground(Green)
	Fail    = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Skipped = lipgloss.NewStyle().Foreground(Yellow)
	Muted   = lipgloss.NewStyle().Foreground(Dim)
)
