package api

import (
	"context"

	"github.com/alkime/scribe/internal/capture"
)

// Result is the service response. Every field may be missing.
type Result struct {
	Transcription         *string            `json:"transcription,omitempty"`
	DetectedLanguage      string             `json:"detected_language"`
	Confidence            *float64           `json:"confidence,omitempty"`
	LanguageProbabilities map[string]float64 `json:"language_probabilities,omitempty"`
	Translation           *string            `json:"translation,omitempty"`
}

// Transcriber submits a capture and returns the analysis.
type Transcriber interface {
	Transcribe(ctx context.Context, c *capture.Capture) (*Result, error)
}

// errorBody is the JSON shape of a failed response.
type errorBody struct {
	Error string `json:"error"`
}
