package tui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/capture"
	"github.com/alkime/scribe/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// outputChecker provides helpers for testing teatest output.
type outputChecker struct {
	intervl, timeout time.Duration
}

func defaultChecker() outputChecker {
	return outputChecker{
		intervl: 100 * time.Millisecond,
		timeout: 3 * time.Second,
	}
}

func (o outputChecker) check(t *testing.T, tm *teatest.TestModel, checkFunc func(buf []byte) bool) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), checkFunc,
		teatest.WithCheckInterval(o.intervl),
		teatest.WithDuration(o.timeout))
}

func (o outputChecker) checkString(t *testing.T, tm *teatest.TestModel, substr string) {
	t.Helper()
	o.check(t, tm, func(buf []byte) bool {
		return bytes.Contains(buf, []byte(substr))
	})
}

// mockRecorder implements app.Recorder; the app calls it from commands.
type mockRecorder struct {
	mu        sync.Mutex
	recording bool
	capture   *capture.Capture
}

func (m *mockRecorder) RequestPermission(context.Context) error { return nil }

func (m *mockRecorder) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recording = true
	return true
}

func (m *mockRecorder) Stop(context.Context) (*capture.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recording = false
	return m.capture, nil
}

func (m *mockRecorder) IsRecording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recording
}

func (m *mockRecorder) Cleanup() {}

// mockTranscriber implements api.Transcriber.
type mockTranscriber struct {
	result *api.Result
	err    error
}

func (m *mockTranscriber) Transcribe(context.Context, *capture.Capture) (*api.Result, error) {
	return m.result, m.err
}

func wavBytes(t *testing.T, d time.Duration) []byte {
	t.Helper()

	cfg := audio.EncoderConfig{Format: audio.FormatWAV}.WithDefaults()
	data, err := audio.Encode(cfg, make([]byte, int(d.Seconds()*float64(cfg.SampleRate))*2))
	require.NoError(t, err)

	return data
}

func newTestModel(t *testing.T, rec *mockRecorder, tr *mockTranscriber) *Model {
	t.Helper()

	return New(context.Background(), Config{
		Recorder:    rec,
		Transcriber: tr,
		UI:          ui.Config{PreviewDir: t.TempDir()},
		Target:      "http://localhost:5000/transcribe",
	})
}

func ptr[T any](v T) *T {
	return &v
}

func TestModel_RecordAndSubmit(t *testing.T) {
	rec := &mockRecorder{
		capture: capture.New("recording_1700000000000.wav", capture.ContentTypeWAV, wavBytes(t, time.Second)),
	}
	tr := &mockTranscriber{result: &api.Result{
		Transcription:         ptr("hello world"),
		DetectedLanguage:      "en",
		Confidence:            ptr(0.97),
		LanguageProbabilities: map[string]float64{"en": 0.97, "hi": 0.03},
	}}

	tm := teatest.NewTestModel(t, newTestModel(t, rec, tr), teatest.WithInitialTermSize(120, 50))
	checker := defaultChecker()

	checker.checkString(t, tm, "Ready to record")

	tm.Send(tea.KeyMsg{Type: tea.KeySpace})
	checker.checkString(t, tm, "Recording 00:00")

	tm.Send(TimerMsg{Elapsed: 3 * time.Second})
	checker.checkString(t, tm, "00:03")

	tm.Send(tea.KeyMsg{Type: tea.KeySpace})
	checker.checkString(t, tm, "recording_1700000000000.wav")

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	checker.checkString(t, tm, "Confidence: 97.00%")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	final, ok := tm.FinalModel(t).(*Model)
	require.True(t, ok)
	require.NotNil(t, final.results)
	assert.Equal(t, "hello world", final.results.Transcription)
	assert.Equal(t, "en", final.results.Language)
	require.Len(t, final.results.Probabilities, 2)
	assert.Equal(t, "en", final.results.Probabilities[0].Language)
	assert.True(t, final.submitEnabled)
}

func TestModel_UploadAndRateLimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, wavBytes(t, 2*time.Second), 0o600))

	tr := &mockTranscriber{err: api.ErrRateLimitedRemote}

	tm := teatest.NewTestModel(t, newTestModel(t, &mockRecorder{}, tr), teatest.WithInitialTermSize(160, 50))
	checker := defaultChecker()

	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	checker.checkString(t, tm, "Audio file:")

	tm.Type(path)
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	checker.checkString(t, tm, "Preview:")

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	checker.checkString(t, tm, "Too many requests. Please try again later.")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	final, ok := tm.FinalModel(t).(*Model)
	require.True(t, ok)
	require.NotNil(t, final.preview)
	assert.Equal(t, "clip.wav", final.preview.Name)
	require.NotNil(t, final.results)
	assert.True(t, final.results.Failed())
}

func TestModel_SubmitWithoutCapture(t *testing.T) {
	m := newTestModel(t, &mockRecorder{}, &mockTranscriber{})
	m.Init()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})

	assert.NotNil(t, cmd, "toast timer should be scheduled")
	assert.Equal(t, ui.MsgNoCapture, m.toast)
	require.NotNil(t, m.results)
	assert.Equal(t, ui.MsgNoCapture, m.results.Err)
}

func TestModel_ToastExpiresOnlyForLatest(t *testing.T) {
	m := newTestModel(t, &mockRecorder{}, &mockTranscriber{})

	m.ShowToast("first", time.Second)
	m.ShowToast("second", time.Second)
	require.Len(t, m.pending, 2)

	m.Update(toastExpiredMsg{seq: 1})
	assert.Equal(t, "second", m.toast)

	m.Update(toastExpiredMsg{seq: 2})
	assert.Empty(t, m.toast)
}

func TestModel_TypingInPathDoesNotQuit(t *testing.T) {
	m := newTestModel(t, &mockRecorder{}, &mockTranscriber{})
	m.Init()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	require.Equal(t, ui.TabUpload, m.tab)
	require.True(t, m.input.Focused())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, "qs", m.input.Value())
	assert.Empty(t, m.toast, "typing s must not submit")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.input.Focused())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ui.TabRecord, m.tab)
}

func TestModel_RecordKeyIgnoredWhileBusy(t *testing.T) {
	m := newTestModel(t, &mockRecorder{}, &mockTranscriber{})
	m.Init()

	_, first := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.NotNil(t, first)
	assert.True(t, m.recordBusy)

	_, second := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Nil(t, second)

	m.Update(recordDoneMsg{outcome: m.app.ToggleRecord(context.Background())})
	assert.False(t, m.recordBusy)
	assert.True(t, m.recording)
	assert.Contains(t, m.View(), "Recording 00:00")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "10.0 MB", formatBytes(10<<20))
}
