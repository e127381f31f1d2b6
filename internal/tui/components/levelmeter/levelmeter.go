// Package levelmeter renders a scrolling input level strip for the
// recording panel.
package levelmeter

import (
	"math"
	"strings"
	"time"

	"github.com/alkime/scribe/internal/tui/style"
	tea "github.com/charmbracelet/bubbletea"
)

// blocks holds the eight fill levels, from empty to full.
var blocks = []rune(" ▁▂▃▄▅▆▇█")

const refreshInterval = 50 * time.Millisecond

// Source supplies the most recent audio samples.
type Source interface {
	Levels() []int16
}

// TickMsg triggers a meter refresh.
type TickMsg struct {
	gen int
}

// Model keeps one peak level per column; the newest is on the right.
type Model struct {
	source  Source
	history []int
	running bool
	gen     int
}

// New creates a meter width columns wide.
func New(source Source, width int) Model {
	return Model{
		source:  source,
		history: make([]int, max(1, width)),
	}
}

// Start clears the strip and begins refreshing.
func (m Model) Start() (Model, tea.Cmd) {
	m.gen++
	m.running = true
	clear(m.history)

	return m, m.tick()
}

// Stop halts refreshing. The last strip stays visible.
func (m Model) Stop() Model {
	m.running = false
	return m
}

// Running reports whether the meter is refreshing.
func (m Model) Running() bool {
	return m.running
}

// Update samples the source on each tick.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || !m.running || tick.gen != m.gen {
		return m, nil
	}

	var level int
	if m.source != nil {
		level = Level(m.source.Levels())
	}

	m.history = append(m.history[1:], level)

	return m, m.tick()
}

// View renders the strip.
func (m Model) View() string {
	var sb strings.Builder
	for _, level := range m.history {
		sb.WriteRune(blocks[level])
	}

	return style.Progress.Render(sb.String())
}

func (m Model) tick() tea.Cmd {
	gen := m.gen

	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return TickMsg{gen: gen}
	})
}

// Level maps the peak amplitude of samples to a block index (0-8). A square
// root curve keeps quiet speech visible.
func Level(samples []int16) int {
	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}

	if peak == 0 {
		return 0
	}

	top := len(blocks) - 1
	level := int(math.Sqrt(math.Min(peak/math.MaxInt16, 1)) * float64(top))

	return min(max(level, 1), top)
}
