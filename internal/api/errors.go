package api

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimitedLocal is returned when a request is attempted before the
	// minimum interval has passed. No network call is made.
	ErrRateLimitedLocal = errors.New("rate limited: please wait before submitting again")
	// ErrRateLimitedRemote is returned when the service answers 429.
	ErrRateLimitedRemote = errors.New("rate limited by transcription service")
	// ErrPayloadTooLarge is returned when the payload exceeds the size ceiling.
	ErrPayloadTooLarge = errors.New("audio payload too large")
	// ErrNoAudio is returned when there is nothing to submit.
	ErrNoAudio = errors.New("no audio to submit")
)

// DefaultServiceMessage is used when the service does not explain a failure.
const DefaultServiceMessage = "Failed to transcribe audio"

// ServiceError is a non-success response from the transcription service.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// TransportError wraps a network-level failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
