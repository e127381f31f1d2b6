// Package api talks to the remote transcription service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"github.com/alkime/scribe/internal/capture"
	"github.com/alkime/scribe/internal/validate"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Endpoint names the service route audio is posted to.
type Endpoint string

const (
	// EndpointTranscribe returns transcription, language and translation.
	EndpointTranscribe Endpoint = "transcribe"
	// EndpointClassify returns only the language classification.
	EndpointClassify Endpoint = "classify"
)

// ParseEndpoint maps a flag value to an Endpoint.
func ParseEndpoint(s string) (Endpoint, error) {
	switch Endpoint(s) {
	case EndpointTranscribe, "":
		return EndpointTranscribe, nil
	case EndpointClassify:
		return EndpointClassify, nil
	default:
		return "", fmt.Errorf("invalid endpoint %q: must be 'transcribe' or 'classify'", s)
	}
}

// formField is the multipart field carrying the audio.
const formField = "audio"

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL     string
	Endpoint    Endpoint
	HTTPClient  *http.Client
	Clock       clockwork.Clock
	MinInterval time.Duration
}

// Client posts captures to the transcription service. It is safe for
// concurrent use, but the throttle allows only one attempt per interval.
type Client struct {
	url        string
	httpClient *http.Client
	clock      clockwork.Clock
	throttle   *throttle
}

// NewClient creates a new service client.
func NewClient(config ClientConfig) *Client {
	if config.Endpoint == "" {
		config.Endpoint = EndpointTranscribe
	}
	if config.HTTPClient == nil {
		// no client-side timeout: the transport decides
		config.HTTPClient = &http.Client{}
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}

	return &Client{
		url:        strings.TrimRight(config.BaseURL, "/") + "/" + string(config.Endpoint),
		httpClient: config.HTTPClient,
		clock:      config.Clock,
		throttle:   newThrottle(config.Clock, config.MinInterval),
	}
}

// URL returns the full endpoint URL.
func (c *Client) URL() string {
	return c.url
}

// Transcribe posts the capture and decodes the service response.
func (c *Client) Transcribe(ctx context.Context, audio *capture.Capture) (*Result, error) {
	if err := c.throttle.attempt(); err != nil {
		return nil, err
	}

	if err := checkPayload(audio); err != nil {
		return nil, err
	}

	body, contentType, err := c.buildBody(audio)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	logger := slog.With("request_id", requestID, "url", c.url)
	logger.Info("submitting audio", "name", audio.Name, "bytes", audio.Size())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("API Error", "error", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		logger.Warn("service rate limited request")
		return nil, ErrRateLimitedRemote
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		svcErr := decodeServiceError(resp)
		logger.Error("API Error", "status", resp.StatusCode, "error", svcErr.Message)

		return nil, svcErr
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("invalid service response", "error", err)
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    "Invalid response from transcription service",
		}
	}

	logger.Info("audio processed", "language", result.DetectedLanguage)

	return &result, nil
}

// buildBody writes the multipart form with a timestamped file name so
// intermediaries never serve a cached response.
func (c *Client) buildBody(audio *capture.Capture) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	ext := audio.Ext()
	if !slices.Contains(validate.AllowedExtensions, ext) {
		ext = "wav"
	}

	contentType := audio.ContentType
	if contentType == "" {
		contentType = capture.ContentTypeWAV
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
		formField, capture.RecordingName(c.clock.Now(), ext)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}

	if _, err := io.Copy(part, audio.Reader()); err != nil {
		return nil, "", fmt.Errorf("failed to write audio to form: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}

// checkPayload re-validates what the UI already checked.
func checkPayload(audio *capture.Capture) error {
	if audio == nil || audio.Size() == 0 {
		return ErrNoAudio
	}

	if audio.Size() > validate.MaxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, audio.Size(), validate.MaxSize)
	}

	return nil
}

func decodeServiceError(resp *http.Response) *ServiceError {
	svcErr := &ServiceError{StatusCode: resp.StatusCode, Message: DefaultServiceMessage}

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if !errors.Is(err, io.EOF) {
			slog.Debug("unparsable error body", "status", resp.StatusCode, "error", err)
		}

		return svcErr
	}

	if body.Error != "" {
		svcErr.Message = body.Error
	}

	return svcErr
}
