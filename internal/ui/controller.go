package ui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/capture"
	"github.com/alkime/scribe/internal/recorder"
	"github.com/alkime/scribe/internal/validate"
	"github.com/alkime/scribe/pkg/collections"
)

// DefaultToastTTL is how long a toast stays on screen.
const DefaultToastTTL = 5 * time.Second

// Config configures a Controller.
type Config struct {
	// PreviewDir receives preview files; empty means os.TempDir.
	PreviewDir string
	ToastTTL   time.Duration
}

// Controller owns all visible state. It is not safe for concurrent use:
// callers drive it from a single event loop.
type Controller struct {
	view   View
	config Config

	tab        Tab
	current    *capture.Capture
	preview    *Preview
	submitting bool
}

// NewController creates a controller rendering to view.
func NewController(view View, config Config) *Controller {
	if config.ToastTTL <= 0 {
		config.ToastTTL = DefaultToastTTL
	}

	return &Controller{
		view:   view,
		config: config,
	}
}

// Tab returns the visible panel.
func (c *Controller) Tab() Tab {
	return c.tab
}

// Current returns the capture that would be submitted, if any.
func (c *Controller) Current() *capture.Capture {
	return c.current
}

// Preview returns the preview of the current capture, if any.
func (c *Controller) Preview() *Preview {
	return c.preview
}

// Submitting reports whether a submission is outstanding.
func (c *Controller) Submitting() bool {
	return c.submitting
}

// SwitchTab shows exactly one of the record and upload panels.
func (c *Controller) SwitchTab(tab Tab) {
	c.tab = tab
	c.view.ShowPanel(tab)
}

// SetRecording toggles the recording indicator.
func (c *Controller) SetRecording(recording bool) {
	c.view.SetRecording(recording)
	if recording {
		c.view.SetTimer(recorder.FormatElapsed(0))
	}
}

// UpdateTimer renders the elapsed recording time.
func (c *Controller) UpdateTimer(elapsed time.Duration) {
	c.view.SetTimer(recorder.FormatElapsed(elapsed))
}

// HandleFileSelection accepts a chosen file. Invalid files only raise a toast
// and leave the current capture in place. A valid file replaces the current
// capture; previous results are cleared before its preview is shown.
func (c *Controller) HandleFileSelection(f *validate.File, duration time.Duration) bool {
	res := validate.Validate(f)
	if !res.Valid {
		c.view.ShowToast(res.Reason, c.config.ToastTTL)
		return false
	}

	if err := validate.CheckDuration(duration); err != nil {
		c.ShowError(ErrorMessage(err))
		return false
	}

	c.revokePreview()
	c.ResetResults()
	c.setCurrent(f.Capture(), duration)

	return true
}

// HandleAudioCapture accepts a finished recording as the current capture.
func (c *Controller) HandleAudioCapture(audio *capture.Capture, duration time.Duration) {
	if audio == nil {
		return
	}

	c.revokePreview()
	c.setCurrent(audio, duration)
}

func (c *Controller) setCurrent(audio *capture.Capture, duration time.Duration) {
	p, err := newPreview(c.config.PreviewDir, audio, duration)
	if err != nil {
		// the capture can still be submitted without a playable copy
		slog.Warn("preview unavailable", "name", audio.Name, "error", err)
	}

	c.current = audio
	c.preview = p
	c.view.ShowPreview(*p)
}

func (c *Controller) revokePreview() {
	if c.preview == nil {
		return
	}

	if err := c.preview.Revoke(); err != nil {
		slog.Warn("failed to revoke preview", "error", err)
	}

	c.preview = nil
	c.view.HidePreview()
}

// ResetResults hides the result regions and restores their placeholders.
func (c *Controller) ResetResults() {
	c.view.ClearResults()
}

// ShowLoader switches the result area to the in-flight state.
func (c *Controller) ShowLoader() {
	c.view.SetLoading(true)
}

// HideLoader leaves the in-flight state.
func (c *Controller) HideLoader() {
	c.view.SetLoading(false)
}

// BeginSubmit starts a submission and returns the capture to send. It
// returns false when a submission is already outstanding (ignored) or when
// there is nothing to send (an error is shown).
func (c *Controller) BeginSubmit() (*capture.Capture, bool) {
	if c.submitting {
		return nil, false
	}

	if c.current == nil {
		c.ShowError(MsgNoCapture)
		return nil, false
	}

	c.submitting = true
	c.view.SetSubmitEnabled(false)
	c.ShowLoader()

	return c.current, true
}

// FinishSubmit ends the outstanding submission and renders its outcome.
func (c *Controller) FinishSubmit(res *api.Result, err error) {
	c.HideLoader()
	c.submitting = false
	c.view.SetSubmitEnabled(true)

	if err != nil {
		c.ShowError(ErrorMessage(err))
		return
	}

	c.DisplayResults(res)
}

// DisplayResults renders a service response into the three regions.
func (c *Controller) DisplayResults(res *api.Result) {
	c.view.ShowResults(FormatResults(res))
}

// ShowError puts msg in the error region and raises a toast.
func (c *Controller) ShowError(msg string) {
	c.view.ShowResults(Results{
		Err:         msg,
		Language:    MsgNoLanguage,
		Translation: MsgNoTranslation,
	})
	c.view.ShowToast(msg, c.config.ToastTTL)
}

// ShowToast raises a transient notice without touching the result regions.
func (c *Controller) ShowToast(msg string) {
	c.view.ShowToast(msg, c.config.ToastTTL)
}

// Close releases the preview handle.
func (c *Controller) Close() {
	c.revokePreview()
	c.current = nil
}

// FormatResults converts a service response into display text. Absent
// fields fall back to their placeholders.
func FormatResults(res *api.Result) Results {
	if res == nil {
		res = &api.Result{}
	}

	out := Results{
		Transcription: MsgNoTranscription,
		Language:      res.DetectedLanguage,
		Confidence:    FormatConfidence(res.Confidence),
		Translation:   MsgNoTranslation,
	}

	if res.Transcription != nil && *res.Transcription != "" {
		out.Transcription = *res.Transcription
	}

	if res.Translation != nil && *res.Translation != "" {
		out.Translation = *res.Translation
	}

	if out.Language == "" {
		out.Language = MsgUnknownLanguage
	}

	for _, e := range collections.SortedByValueDesc(res.LanguageProbabilities) {
		out.Probabilities = append(out.Probabilities, Probability{
			Language: e.Key,
			Value:    e.Value,
			Percent:  fmt.Sprintf("%.1f%%", e.Value*100),
		})
	}

	return out
}

// FormatConfidence renders a 0-1 confidence with two decimals.
func FormatConfidence(confidence *float64) string {
	if confidence == nil {
		return "Confidence: " + MsgConfidenceFallback
	}

	return fmt.Sprintf("Confidence: %.2f%%", *confidence*100)
}
