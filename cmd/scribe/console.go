package main

import (
	"fmt"
	"io"
	"time"

	"github.com/alkime/scribe/internal/ui"
)

// consoleView prints controller output for the non-interactive transcribe
// command. Panels, timers and button state have no console equivalent.
type consoleView struct {
	out io.Writer
	err io.Writer
}

var _ ui.View = (*consoleView)(nil)

func (v *consoleView) ShowPanel(ui.Tab)      {}
func (v *consoleView) SetRecording(bool)     {}
func (v *consoleView) SetTimer(string)       {}
func (v *consoleView) HidePreview()          {}
func (v *consoleView) SetSubmitEnabled(bool) {}
func (v *consoleView) ClearResults()         {}

func (v *consoleView) ShowPreview(p ui.Preview) {
	fmt.Fprintf(v.err, "Loaded %s (%s, %d bytes", p.Name, p.ContentType, p.Size)
	if p.Duration > 0 {
		fmt.Fprintf(v.err, ", %s", p.Duration.Round(time.Second))
	}
	fmt.Fprintln(v.err, ")")
}

func (v *consoleView) SetLoading(loading bool) {
	if loading {
		fmt.Fprintln(v.err, "Processing audio...")
	}
}

func (v *consoleView) ShowToast(msg string, _ time.Duration) {
	fmt.Fprintf(v.err, "error: %s\n", msg)
}

// ShowResults writes the three result regions. Failures are reported through
// the toast, so only successful results reach stdout.
func (v *consoleView) ShowResults(r ui.Results) {
	if r.Failed() {
		return
	}

	fmt.Fprintln(v.out, "Transcription:")
	fmt.Fprintf(v.out, "  %s\n\n", r.Transcription)

	fmt.Fprintln(v.out, "Detected Language:")
	fmt.Fprintf(v.out, "  %s\n", r.Language)
	if r.Confidence != "" {
		fmt.Fprintf(v.out, "  %s\n", r.Confidence)
	}
	for _, p := range r.Probabilities {
		fmt.Fprintf(v.out, "  %-12s %s\n", p.Language, p.Percent)
	}
	fmt.Fprintln(v.out)

	fmt.Fprintln(v.out, "English Translation:")
	fmt.Fprintf(v.out, "  %s\n", r.Translation)
}
