// Package ui holds the platform-free presentation logic: which panel is
// visible, the current capture and its preview, the submit guard and the
// rendering of results and errors. A View implementation puts it on screen.
package ui

import "time"

// Tab selects the visible entry panel.
type Tab int

const (
	TabRecord Tab = iota
	TabUpload
)

func (t Tab) String() string {
	if t == TabUpload {
		return "upload"
	}

	return "record"
}

// Next returns the other tab.
func (t Tab) Next() Tab {
	if t == TabRecord {
		return TabUpload
	}

	return TabRecord
}

// Probability is one rendered row of the language probability list.
type Probability struct {
	Language string
	Value    float64
	Percent  string
}

// Results is the content of the three result regions.
type Results struct {
	Transcription string
	Language      string
	Confidence    string
	Probabilities []Probability
	Translation   string

	// Err replaces the transcription when the submission failed.
	Err string
}

// Failed reports whether the results describe an error.
func (r Results) Failed() bool {
	return r.Err != ""
}

// View renders controller state. Implementations must not block.
type View interface {
	ShowPanel(tab Tab)
	SetRecording(recording bool)
	SetTimer(elapsed string)
	ShowPreview(p Preview)
	HidePreview()
	SetLoading(loading bool)
	SetSubmitEnabled(enabled bool)
	ShowResults(r Results)
	ClearResults()
	ShowToast(msg string, ttl time.Duration)
}
