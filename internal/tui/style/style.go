// Package style defines lipgloss styles for the TUI.
package style

import "github.com/charmbracelet/lipgloss"

// Names omit a "Style" suffix: style.Title reads better than
// style.TitleStyle. lipgloss styles are values and safe to share.
var (
	// Title is used for the app header and card titles.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	// Subtitle is used for secondary text.
	Subtitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// Success is used for the detected language.
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	// Error is used for the error region and toasts.
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	// Warning is used for the recording indicator.
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	// Card frames one result region.
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	// Toast frames a transient notice.
	Toast = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("196")).
		Foreground(lipgloss.Color("196")).
		Padding(0, 1)

	// ActiveTab marks the visible panel in the tab bar.
	ActiveTab = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("205"))

	// InactiveTab is used for the hidden panel in the tab bar.
	InactiveTab = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	// Help is used for keyboard shortcut hints.
	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	// Key is used for highlighting keyboard keys.
	Key = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	// Progress is used for level meters.
	Progress = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	// Label is used for inline labels (e.g., "File:", "Confidence:").
	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	// Muted is used for de-emphasized text (placeholders, file paths).
	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))
)
