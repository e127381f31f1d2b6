package ui

import (
	"errors"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/recorder"
	"github.com/alkime/scribe/internal/validate"
)

// User-facing texts.
const (
	MsgNoCapture          = "Please record or upload an audio file first"
	MsgRateLimitedLocal   = "Please wait a few seconds before submitting again."
	MsgRateLimitedRemote  = "Too many requests. Please try again later."
	MsgDurationExceeded   = "Recording is too long. Maximum duration is 2 minutes."
	MsgPermissionDenied   = "Please allow microphone access to record audio."
	MsgPayloadTooLarge    = "File too large. Maximum size is 10MB."
	MsgNoAudioCaptured    = "No audio was captured. Please try recording again."
	MsgProcessingFailed   = "Failed to process audio"
	MsgNoTranscription    = "No transcription available"
	MsgNoTranslation      = "No translation available"
	MsgNoLanguage         = "No language detected"
	MsgUnknownLanguage    = "Unknown"
	MsgConfidenceFallback = "High"
)

// ErrorMessage maps an error from the recorder, validator or API client to
// the text shown to the user.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		svcErr       *api.ServiceError
		transportErr *api.TransportError
	)

	switch {
	case errors.Is(err, api.ErrRateLimitedLocal):
		return MsgRateLimitedLocal
	case errors.Is(err, api.ErrRateLimitedRemote):
		return MsgRateLimitedRemote
	case errors.Is(err, validate.ErrDurationExceeded):
		return MsgDurationExceeded
	case errors.Is(err, recorder.ErrPermissionDenied):
		return MsgPermissionDenied
	case errors.Is(err, recorder.ErrNoAudio):
		return MsgNoAudioCaptured
	case errors.Is(err, api.ErrPayloadTooLarge):
		return MsgPayloadTooLarge
	case errors.Is(err, api.ErrNoAudio):
		return MsgNoCapture
	case errors.As(err, &svcErr):
		if svcErr.Message == "" {
			return api.DefaultServiceMessage
		}

		return svcErr.Message
	case errors.As(err, &transportErr):
		return "Network error: " + transportErr.Err.Error()
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return MsgProcessingFailed
}
