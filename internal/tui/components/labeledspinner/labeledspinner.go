// Package labeledspinner provides a spinner with a title, a subtitle and
// the time spent spinning.
package labeledspinner

import (
	"fmt"
	"strings"
	"time"

	"github.com/alkime/scribe/internal/tui/style"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model displays a spinner with title, subtitle, and help text. The TUI
// uses it as the loader while a submission is in flight.
type Model struct {
	Spinner  spinner.Model
	Title    string
	Subtitle string
	Help     string

	// first tick after Reset, and time since
	start   time.Time
	elapsed time.Duration
}

// New creates a new labeled spinner with the given configuration.
func New(s spinner.Spinner, title, subtitle, help string) Model {
	sp := spinner.New()
	sp.Spinner = s

	return Model{
		Spinner:  sp,
		Title:    title,
		Subtitle: subtitle,
		Help:     help,
	}
}

// Init returns the initial command for the spinner.
func (ls Model) Init() tea.Cmd {
	return ls.Spinner.Tick
}

// Reset restarts the elapsed counter. The next tick is time zero.
func (ls Model) Reset() Model {
	ls.start = time.Time{}
	ls.elapsed = 0

	return ls
}

// Elapsed returns the time between the first and latest tick.
func (ls Model) Elapsed() time.Duration {
	return ls.elapsed
}

// Update handles spinner tick messages.
func (ls Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	if tickMsg, ok := teaMsg.(spinner.TickMsg); ok {
		if ls.start.IsZero() {
			ls.start = tickMsg.Time
		}
		ls.elapsed = tickMsg.Time.Sub(ls.start)

		var cmd tea.Cmd
		ls.Spinner, cmd = ls.Spinner.Update(tickMsg)

		return ls, cmd
	}

	return ls, nil
}

// View renders the labeled spinner with static help text.
func (ls Model) View() string {
	return ls.ViewWithHelp(ls.Help)
}

// ViewWithHelp renders the labeled spinner with dynamic help text. Empty
// subtitle or help strings omit their lines, and the elapsed time shows
// once it reaches a second.
func (ls Model) ViewWithHelp(help string) string {
	var sb strings.Builder

	sb.WriteString(ls.Spinner.View())
	sb.WriteString(" ")
	sb.WriteString(style.Title.Render(ls.Title))

	if ls.elapsed >= time.Second {
		sb.WriteString(" ")
		sb.WriteString(style.Muted.Render(fmt.Sprintf("(%s)", ls.elapsed.Truncate(time.Second))))
	}

	if ls.Subtitle != "" {
		sb.WriteString("\n")
		sb.WriteString(style.Subtitle.Render(ls.Subtitle))
	}

	if help != "" {
		sb.WriteString("\n\n")
		sb.WriteString(style.Help.Render(help))
	}

	return sb.String()
}
