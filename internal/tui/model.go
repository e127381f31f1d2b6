// Package tui is the terminal front end of the client. Model implements
// ui.View and forwards key presses to the app.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/app"
	"github.com/alkime/scribe/internal/tui/components/labeledspinner"
	"github.com/alkime/scribe/internal/tui/components/levelmeter"
	"github.com/alkime/scribe/internal/ui"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const meterWidth = 40

// TimerMsg carries the elapsed recording time from the recorder's ticker.
type TimerMsg struct {
	Elapsed time.Duration
}

type recordDoneMsg struct {
	outcome app.RecordOutcome
}

type fileLoadedMsg struct {
	outcome app.FileOutcome
}

type submitDoneMsg struct {
	res *api.Result
	err error
}

type toastExpiredMsg struct {
	seq int
}

// Config holds the dependencies of the TUI.
type Config struct {
	Recorder    app.Recorder
	Transcriber api.Transcriber
	UI          ui.Config

	// Target describes where audio is sent, e.g. the service URL.
	Target string
	Cancel context.CancelFunc
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	app    *app.App
	keys   KeyMap
	target string

	tab        ui.Tab
	input      textinput.Model
	recording  bool
	recordBusy bool
	timer      string
	meter      levelmeter.Model

	preview       *ui.Preview
	loading       bool
	submitEnabled bool
	loader        labeledspinner.Model
	results       *ui.Results
	bar           progress.Model

	toast    string
	toastSeq int
	width    int

	// commands queued by View callbacks during Update
	pending []tea.Cmd
}

// New creates the TUI and the app it drives.
func New(ctx context.Context, config Config) *Model {
	input := textinput.New()
	input.Placeholder = "path/to/audio.wav"
	input.Prompt = "> "

	// recorders that expose sample levels feed the meter
	source, _ := config.Recorder.(levelmeter.Source)

	m := &Model{
		ctx:           ctx,
		cancel:        config.Cancel,
		keys:          DefaultKeyMap(),
		target:        config.Target,
		input:         input,
		timer:         "00:00",
		meter:         levelmeter.New(source, meterWidth),
		submitEnabled: true,
		loader: labeledspinner.New(spinner.Dot,
			"Processing audio",
			"Transcribing, detecting language and translating...",
			""),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(20),
			progress.WithoutPercentage(),
		),
	}

	m.app = app.New(app.Config{
		Recorder:    config.Recorder,
		Transcriber: config.Transcriber,
		View:        m,
		UI:          config.UI,
	})

	return m
}

// App returns the app driven by this model.
func (m *Model) App() *app.App {
	return m.app
}

// Init shows the record panel.
func (m *Model) Init() tea.Cmd {
	m.app.Controller().SwitchTab(ui.TabRecord)

	return m.flush()
}

// Update handles all messages.
func (m *Model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := teaMsg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, m.quit()
		}

		if m.input.Focused() {
			cmd = m.handleInputKey(msg)
		} else {
			cmd = m.handleKey(msg)
		}

	case TimerMsg:
		if m.recording {
			m.app.UpdateTimer(msg.Elapsed)
		}

	case recordDoneMsg:
		m.recordBusy = false
		m.app.ApplyRecord(msg.outcome)

	case fileLoadedMsg:
		m.app.ApplyFile(msg.outcome)

	case submitDoneMsg:
		m.app.FinishSubmit(msg.res, msg.err)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}

	case spinner.TickMsg:
		if m.loading {
			m.loader, cmd = m.loader.Update(msg)
		}

	case levelmeter.TickMsg:
		m.meter, cmd = m.meter.Update(msg)

	default:
		if m.input.Focused() {
			m.input, cmd = m.input.Update(msg)
		}
	}

	return m, tea.Batch(cmd, m.flush())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.NextTab):
		m.app.Controller().SwitchTab(m.tab.Next())
	case key.Matches(msg, m.keys.RecordTab):
		m.app.Controller().SwitchTab(ui.TabRecord)
	case key.Matches(msg, m.keys.UploadTab):
		m.app.Controller().SwitchTab(ui.TabUpload)
	case key.Matches(msg, m.keys.Record) && m.tab == ui.TabRecord:
		return m.toggleRecord()
	case key.Matches(msg, m.keys.Browse) && m.tab == ui.TabUpload:
		return m.input.Focus()
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	return nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Load):
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return nil
		}

		m.input.Blur()

		return m.loadFile(path)
	case key.Matches(msg, m.keys.Blur):
		m.input.Blur()
		return nil
	case key.Matches(msg, m.keys.NextTab):
		m.app.Controller().SwitchTab(m.tab.Next())
		return nil
	case msg.String() == "ctrl+s":
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return cmd
}

func (m *Model) quit() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}

	return tea.Quit
}

func (m *Model) toggleRecord() tea.Cmd {
	if m.recordBusy {
		return nil
	}

	m.recordBusy = true
	a, ctx := m.app, m.ctx

	return func() tea.Msg {
		return recordDoneMsg{outcome: a.ToggleRecord(ctx)}
	}
}

func (m *Model) loadFile(path string) tea.Cmd {
	a, ctx := m.app, m.ctx

	return func() tea.Msg {
		return fileLoadedMsg{outcome: a.LoadFile(ctx, path)}
	}
}

func (m *Model) submit() tea.Cmd {
	clip, ok := m.app.BeginSubmit()
	if !ok {
		return nil
	}

	a, ctx := m.app, m.ctx

	return func() tea.Msg {
		res, err := a.Submit(ctx, clip)
		return submitDoneMsg{res: res, err: err}
	}
}

func (m *Model) flush() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}

	cmds := m.pending
	m.pending = nil

	return tea.Batch(cmds...)
}

// ShowPanel implements ui.View.
func (m *Model) ShowPanel(tab ui.Tab) {
	m.tab = tab

	if tab == ui.TabUpload {
		m.pending = append(m.pending, m.input.Focus())
	} else {
		m.input.Blur()
	}
}

// SetRecording implements ui.View.
func (m *Model) SetRecording(recording bool) {
	if recording == m.recording {
		return
	}

	m.recording = recording

	if recording {
		var cmd tea.Cmd
		m.meter, cmd = m.meter.Start()
		m.pending = append(m.pending, cmd)
	} else {
		m.meter = m.meter.Stop()
	}
}

// SetTimer implements ui.View.
func (m *Model) SetTimer(elapsed string) {
	m.timer = elapsed
}

// ShowPreview implements ui.View.
func (m *Model) ShowPreview(p ui.Preview) {
	m.preview = &p
}

// HidePreview implements ui.View.
func (m *Model) HidePreview() {
	m.preview = nil
}

// SetLoading implements ui.View.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading

	if loading {
		m.loader = m.loader.Reset()
		m.pending = append(m.pending, m.loader.Init())
	}
}

// SetSubmitEnabled implements ui.View.
func (m *Model) SetSubmitEnabled(enabled bool) {
	m.submitEnabled = enabled
}

// ShowResults implements ui.View.
func (m *Model) ShowResults(r ui.Results) {
	m.results = &r
}

// ClearResults implements ui.View.
func (m *Model) ClearResults() {
	m.results = nil
}

// ShowToast implements ui.View. Only the latest toast's timer dismisses it.
func (m *Model) ShowToast(msg string, ttl time.Duration) {
	m.toast = msg
	m.toastSeq++
	seq := m.toastSeq

	m.pending = append(m.pending, tea.Tick(ttl, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	}))
}
