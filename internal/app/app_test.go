package app_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/app"
	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/capture"
	"github.com/alkime/scribe/internal/recorder"
	"github.com/alkime/scribe/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	permissionErr error
	recording     bool
	capture       *capture.Capture
	stopErr       error
	cleanups      int
}

func (f *fakeRecorder) RequestPermission(context.Context) error { return f.permissionErr }

func (f *fakeRecorder) Start() bool {
	f.recording = true
	return true
}

func (f *fakeRecorder) Stop(context.Context) (*capture.Capture, error) {
	f.recording = false
	return f.capture, f.stopErr
}

func (f *fakeRecorder) IsRecording() bool { return f.recording }

func (f *fakeRecorder) Cleanup() { f.cleanups++ }

type fakeTranscriber struct {
	calls  atomic.Int32
	result *api.Result
	err    error
}

func (f *fakeTranscriber) Transcribe(context.Context, *capture.Capture) (*api.Result, error) {
	f.calls.Add(1)
	return f.result, f.err
}

type fakeView struct {
	calls     []string
	recording bool
	preview   *ui.Preview
	results   *ui.Results
	toasts    []string
}

func (f *fakeView) log(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeView) ShowPanel(tab ui.Tab) { f.log("panel:%s", tab) }

func (f *fakeView) SetRecording(recording bool) {
	f.recording = recording
	f.log("recording:%t", recording)
}

func (f *fakeView) SetTimer(elapsed string) { f.log("timer:%s", elapsed) }

func (f *fakeView) ShowPreview(p ui.Preview) {
	f.preview = &p
	f.log("preview:%s", p.Name)
}

func (f *fakeView) HidePreview() { f.preview = nil }

func (f *fakeView) SetLoading(loading bool) { f.log("loading:%t", loading) }

func (f *fakeView) SetSubmitEnabled(enabled bool) { f.log("submit:%t", enabled) }

func (f *fakeView) ShowResults(r ui.Results) {
	f.results = &r
	f.log("results")
}

func (f *fakeView) ClearResults() {
	f.results = nil
	f.log("clear-results")
}

func (f *fakeView) ShowToast(msg string, _ time.Duration) {
	f.toasts = append(f.toasts, msg)
}

func wavCapture(t *testing.T, d time.Duration) *capture.Capture {
	t.Helper()

	cfg := audio.EncoderConfig{Format: audio.FormatWAV}.WithDefaults()
	pcm := make([]byte, int(d.Seconds()*float64(cfg.SampleRate))*2)

	data, err := audio.Encode(cfg, pcm)
	require.NoError(t, err)

	return capture.New("recording_1700000000000.wav", capture.ContentTypeWAV, data)
}

func newApp(t *testing.T, rec app.Recorder, tr api.Transcriber) (*app.App, *fakeView) {
	t.Helper()

	view := &fakeView{}
	a := app.New(app.Config{
		Recorder:    rec,
		Transcriber: tr,
		View:        view,
		UI:          ui.Config{PreviewDir: t.TempDir()},
	})

	return a, view
}

func TestApp_RecordStartResetsResults(t *testing.T) {
	rec := &fakeRecorder{}
	a, view := newApp(t, rec, &fakeTranscriber{})
	ctx := context.Background()

	a.Controller().ShowError("old")
	a.ApplyRecord(a.ToggleRecord(ctx))

	assert.True(t, rec.recording)
	assert.True(t, view.recording)
	assert.Nil(t, view.results)
}

func TestApp_RecordStopShowsPreview(t *testing.T) {
	rec := &fakeRecorder{recording: true, capture: wavCapture(t, time.Second)}
	a, view := newApp(t, rec, &fakeTranscriber{})

	out := a.ToggleRecord(context.Background())
	require.NoError(t, out.Err)
	assert.InDelta(t, time.Second.Seconds(), out.Duration.Seconds(), 0.01)

	a.ApplyRecord(out)

	assert.False(t, view.recording)
	require.NotNil(t, view.preview)
	assert.Equal(t, "recording_1700000000000.wav", view.preview.Name)
	assert.Same(t, rec.capture, a.Controller().Current())
}

func TestApp_RecordingTooLong(t *testing.T) {
	rec := &fakeRecorder{recording: true, capture: wavCapture(t, 121*time.Second)}
	a, view := newApp(t, rec, &fakeTranscriber{})

	a.ApplyRecord(a.ToggleRecord(context.Background()))

	assert.Nil(t, a.Controller().Current())
	require.NotNil(t, view.results)
	assert.Equal(t, ui.MsgDurationExceeded, view.results.Err)
	assert.Contains(t, view.toasts, ui.MsgDurationExceeded)
}

func TestApp_MP3RecordingTooLong(t *testing.T) {
	// MP3 payloads carry no readable duration; the recorder reports it
	clip := capture.New("recording_1700000000000.mp3", capture.ContentTypeMP3, []byte("mp3 frames"))
	clip.Duration = 180 * time.Second

	rec := &fakeRecorder{recording: true, capture: clip}
	a, view := newApp(t, rec, &fakeTranscriber{})

	out := a.ToggleRecord(context.Background())
	assert.Equal(t, 180*time.Second, out.Duration)

	a.ApplyRecord(out)

	assert.Nil(t, a.Controller().Current())
	require.NotNil(t, view.results)
	assert.Equal(t, ui.MsgDurationExceeded, view.results.Err)
	assert.Contains(t, view.toasts, ui.MsgDurationExceeded)
}

func TestApp_PermissionDenied(t *testing.T) {
	rec := &fakeRecorder{permissionErr: fmt.Errorf("%w: no device", recorder.ErrPermissionDenied)}
	a, view := newApp(t, rec, &fakeTranscriber{})

	a.ApplyRecord(a.ToggleRecord(context.Background()))

	assert.False(t, rec.recording)
	assert.False(t, view.recording)
	assert.Contains(t, view.toasts, ui.MsgPermissionDenied)
}

func TestApp_NoRecorder(t *testing.T) {
	a, view := newApp(t, nil, &fakeTranscriber{})

	out := a.ToggleRecord(context.Background())
	require.ErrorIs(t, out.Err, app.ErrRecordingUnavailable)

	a.ApplyRecord(out)
	assert.NotEmpty(t, view.toasts)

	a.Shutdown()
}

func TestApp_SelectFileFromDisk(t *testing.T) {
	a, view := newApp(t, nil, &fakeTranscriber{})

	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, wavCapture(t, 2*time.Second).Data, 0o600))

	out := a.LoadFile(context.Background(), path)
	require.NoError(t, out.Err)
	assert.Equal(t, "audio/wav", out.File.ContentType)
	assert.InDelta(t, 2.0, out.Duration.Seconds(), 0.01)

	require.True(t, a.ApplyFile(out))
	require.NotNil(t, view.preview)
	assert.Equal(t, "clip.wav", view.preview.Name)
}

func TestApp_SelectMissingFile(t *testing.T) {
	a, view := newApp(t, nil, &fakeTranscriber{})

	ok := a.SelectFile(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))

	assert.False(t, ok)
	assert.Nil(t, a.Controller().Current())
	require.Len(t, view.toasts, 1)
	assert.Contains(t, view.toasts[0], "file not found")
}

func TestApp_SubmitDisplaysResults(t *testing.T) {
	text := "namaskar"
	tr := &fakeTranscriber{result: &api.Result{Transcription: &text, DetectedLanguage: "Marathi"}}
	rec := &fakeRecorder{recording: true, capture: wavCapture(t, time.Second)}
	a, view := newApp(t, rec, tr)
	ctx := context.Background()

	a.ApplyRecord(a.ToggleRecord(ctx))
	require.True(t, a.SubmitAndWait(ctx))

	assert.Equal(t, int32(1), tr.calls.Load())
	require.NotNil(t, view.results)
	assert.Equal(t, "namaskar", view.results.Transcription)
	assert.Equal(t, "Marathi", view.results.Language)
	assert.False(t, a.Controller().Submitting())
}

func TestApp_DuplicateSubmitSendsOnce(t *testing.T) {
	tr := &fakeTranscriber{result: &api.Result{}}
	rec := &fakeRecorder{recording: true, capture: wavCapture(t, time.Second)}
	a, _ := newApp(t, rec, tr)
	ctx := context.Background()

	a.ApplyRecord(a.ToggleRecord(ctx))

	clip, ok := a.BeginSubmit()
	require.True(t, ok)

	_, again := a.BeginSubmit()
	assert.False(t, again)

	res, err := a.Submit(ctx, clip)
	a.FinishSubmit(res, err)

	assert.Equal(t, int32(1), tr.calls.Load())
}

func TestApp_SubmitFailureShowsError(t *testing.T) {
	tr := &fakeTranscriber{err: &api.TransportError{Err: errors.New("connection refused")}}
	rec := &fakeRecorder{recording: true, capture: wavCapture(t, time.Second)}
	a, view := newApp(t, rec, tr)
	ctx := context.Background()

	a.ApplyRecord(a.ToggleRecord(ctx))
	assert.False(t, a.SubmitAndWait(ctx))

	require.NotNil(t, view.results)
	assert.Equal(t, "Network error: connection refused", view.results.Err)
	assert.Contains(t, view.toasts, "Network error: connection refused")
}

func TestApp_SubmitWithoutCapture(t *testing.T) {
	tr := &fakeTranscriber{}
	a, view := newApp(t, nil, tr)

	assert.False(t, a.SubmitAndWait(context.Background()))
	assert.Zero(t, tr.calls.Load())
	assert.Equal(t, []string{ui.MsgNoCapture}, view.toasts)
}

func TestApp_ShutdownReleasesResources(t *testing.T) {
	rec := &fakeRecorder{recording: true, capture: wavCapture(t, time.Second)}
	a, _ := newApp(t, rec, &fakeTranscriber{})

	a.ApplyRecord(a.ToggleRecord(context.Background()))
	preview := a.Controller().Preview()
	require.NotNil(t, preview)
	path := preview.Path
	require.FileExists(t, path)

	a.Shutdown()

	assert.Equal(t, 1, rec.cleanups)
	assert.NoFileExists(t, path)
}
