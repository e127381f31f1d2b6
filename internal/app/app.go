// Package app wires the recorder, the transcriber and the UI controller into
// the record, preview, submit and display sequence.
//
// Each user action is split in two: an effect that may block (device I/O,
// disk, network) and is safe to run off the event loop, and an Apply step
// that updates the controller and must run on the event loop.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/capture"
	"github.com/alkime/scribe/internal/ui"
	"github.com/alkime/scribe/internal/validate"
)

// ErrRecordingUnavailable is returned when no capture device was configured.
var ErrRecordingUnavailable = errors.New("recording is not available")

// Recorder is the part of recorder.Recorder the app drives.
type Recorder interface {
	RequestPermission(ctx context.Context) error
	Start() bool
	Stop(ctx context.Context) (*capture.Capture, error)
	IsRecording() bool
	Cleanup()
}

// Config configures an App. Recorder may be nil when only files are used.
type Config struct {
	Recorder    Recorder
	Transcriber api.Transcriber
	View        ui.View
	UI          ui.Config
}

// App owns the long-lived components for one interactive session.
type App struct {
	recorder    Recorder
	transcriber api.Transcriber
	controller  *ui.Controller
}

// New creates the app and its controller.
func New(config Config) *App {
	return &App{
		recorder:    config.Recorder,
		transcriber: config.Transcriber,
		controller:  ui.NewController(config.View, config.UI),
	}
}

// Controller exposes the UI controller.
func (a *App) Controller() *ui.Controller {
	return a.controller
}

// RecordOutcome is the result of a record toggle.
type RecordOutcome struct {
	Started  bool
	Capture  *capture.Capture
	Duration time.Duration
	Err      error
}

// ToggleRecord stops an active recording, or opens the microphone and starts
// one. Stopping also reports the duration of the new capture: the length the
// recorder measured, else whatever the payload metadata says.
func (a *App) ToggleRecord(ctx context.Context) RecordOutcome {
	if a.recorder == nil {
		return RecordOutcome{Err: ErrRecordingUnavailable}
	}

	if a.recorder.IsRecording() {
		audio, err := a.recorder.Stop(ctx)
		if err != nil || audio == nil {
			return RecordOutcome{Err: err}
		}

		d := audio.Duration
		if d == 0 {
			d = validate.Duration(ctx, audio)
		}

		return RecordOutcome{Capture: audio, Duration: d}
	}

	if err := a.recorder.RequestPermission(ctx); err != nil {
		return RecordOutcome{Err: err}
	}

	if !a.recorder.Start() {
		return RecordOutcome{}
	}

	return RecordOutcome{Started: true}
}

// ApplyRecord renders a record toggle outcome.
func (a *App) ApplyRecord(o RecordOutcome) {
	switch {
	case o.Err != nil:
		slog.Warn("recording failed", "error", o.Err)
		a.controller.SetRecording(false)
		a.controller.ShowError(ui.ErrorMessage(o.Err))
	case o.Started:
		a.controller.SetRecording(true)
		a.controller.ResetResults()
	case o.Capture != nil:
		a.controller.SetRecording(false)

		if err := validate.CheckDuration(o.Duration); err != nil {
			a.controller.ShowError(ui.ErrorMessage(err))
			return
		}

		slog.Info("recording captured",
			"name", o.Capture.Name,
			"bytes", o.Capture.Size(),
			"duration", o.Duration)
		a.controller.HandleAudioCapture(o.Capture, o.Duration)
	default:
		a.controller.SetRecording(false)
	}
}

// UpdateTimer forwards the elapsed recording time.
func (a *App) UpdateTimer(elapsed time.Duration) {
	a.controller.UpdateTimer(elapsed)
}

// FileOutcome is the result of loading a file from disk.
type FileOutcome struct {
	File     *validate.File
	Duration time.Duration
	Err      error
}

// LoadFile reads path and, for files that pass validation, their duration.
func (a *App) LoadFile(ctx context.Context, path string) FileOutcome {
	f, err := validate.FromPath(path)
	if err != nil {
		return FileOutcome{Err: err}
	}

	var d time.Duration
	if validate.Validate(f).Valid {
		d = validate.Duration(ctx, f.Capture())
	}

	return FileOutcome{File: f, Duration: d}
}

// ApplyFile hands a loaded file to the controller. It reports whether the
// file became the current capture.
func (a *App) ApplyFile(o FileOutcome) bool {
	if o.Err != nil {
		slog.Warn("file selection failed", "error", o.Err)
		a.controller.ShowToast(o.Err.Error())

		return false
	}

	return a.controller.HandleFileSelection(o.File, o.Duration)
}

// SelectFile loads and applies path in one step.
func (a *App) SelectFile(ctx context.Context, path string) bool {
	return a.ApplyFile(a.LoadFile(ctx, path))
}

// BeginSubmit guards against duplicate submissions and returns the capture
// to send.
func (a *App) BeginSubmit() (*capture.Capture, bool) {
	return a.controller.BeginSubmit()
}

// Submit sends the capture. It blocks until the backend answers.
func (a *App) Submit(ctx context.Context, audio *capture.Capture) (*api.Result, error) {
	start := time.Now()

	res, err := a.transcriber.Transcribe(ctx, audio)
	if err != nil {
		slog.Warn("submission failed", "name", audio.Name, "error", err)
		return nil, err
	}

	slog.Info("submission complete",
		"name", audio.Name,
		"language", res.DetectedLanguage,
		"elapsed", time.Since(start))

	return res, nil
}

// FinishSubmit renders the submission outcome.
func (a *App) FinishSubmit(res *api.Result, err error) {
	a.controller.FinishSubmit(res, err)
}

// SubmitAndWait runs a whole submission on the calling goroutine. It reports
// whether results were displayed.
func (a *App) SubmitAndWait(ctx context.Context) bool {
	audio, ok := a.BeginSubmit()
	if !ok {
		return false
	}

	res, err := a.Submit(ctx, audio)
	a.FinishSubmit(res, err)

	return err == nil
}

// Shutdown releases the microphone and the preview handle.
func (a *App) Shutdown() {
	if a.recorder != nil {
		a.recorder.Cleanup()
	}

	a.controller.Close()
}
