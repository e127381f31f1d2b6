package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alkime/scribe/internal/api"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/audio/transcriptions"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newAnthropicServer(t *testing.T, hits *atomic.Int32, text string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant",`+
			`"model":"claude-sonnet-4-5-20250929","content":[{"type":"text","text":"`+text+`"}],`+
			`"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestNewDirect_RequiresOpenAIKey(t *testing.T) {
	d, err := api.NewDirect(api.DirectConfig{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
	assert.Nil(t, d)
}

func TestDirect_TranscribeAndTranslate(t *testing.T) {
	var translations atomic.Int32
	oa := newOpenAIServer(t, http.StatusOK, `{"text":" namaskar ","language":"marathi","duration":1.5}`)
	an := newAnthropicServer(t, &translations, "hello")

	d, err := api.NewDirect(api.DirectConfig{
		OpenAIAPIKey:     "test-openai",
		AnthropicAPIKey:  "test-anthropic",
		OpenAIBaseURL:    oa.URL + "/",
		AnthropicBaseURL: an.URL + "/",
		Clock:            clockwork.NewFakeClock(),
	})
	require.NoError(t, err)

	res, err := d.Transcribe(context.Background(), wavCapture())
	require.NoError(t, err)

	require.NotNil(t, res.Transcription)
	assert.Equal(t, "namaskar", *res.Transcription)
	assert.Equal(t, "Marathi", res.DetectedLanguage)
	require.NotNil(t, res.Translation)
	assert.Equal(t, "hello", *res.Translation)
	assert.Equal(t, int32(1), translations.Load())
}

func TestDirect_EnglishSkipsTranslation(t *testing.T) {
	var translations atomic.Int32
	oa := newOpenAIServer(t, http.StatusOK, `{"text":"hello","language":"english"}`)
	an := newAnthropicServer(t, &translations, "hello")

	d, err := api.NewDirect(api.DirectConfig{
		OpenAIAPIKey:     "test-openai",
		AnthropicAPIKey:  "test-anthropic",
		OpenAIBaseURL:    oa.URL + "/",
		AnthropicBaseURL: an.URL + "/",
	})
	require.NoError(t, err)

	res, err := d.Transcribe(context.Background(), wavCapture())
	require.NoError(t, err)
	assert.Nil(t, res.Translation)
	assert.Zero(t, translations.Load())
}

func TestDirect_NoAnthropicKeySkipsTranslation(t *testing.T) {
	oa := newOpenAIServer(t, http.StatusOK, `{"text":"namaskar","language":"marathi"}`)

	d, err := api.NewDirect(api.DirectConfig{
		OpenAIAPIKey:  "test-openai",
		OpenAIBaseURL: oa.URL + "/",
	})
	require.NoError(t, err)

	res, err := d.Transcribe(context.Background(), wavCapture())
	require.NoError(t, err)
	assert.Nil(t, res.Translation)
}

func TestDirect_RateLimits(t *testing.T) {
	oa := newOpenAIServer(t, http.StatusTooManyRequests,
		`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`)

	clock := clockwork.NewFakeClock()
	d, err := api.NewDirect(api.DirectConfig{
		OpenAIAPIKey:  "test-openai",
		OpenAIBaseURL: oa.URL + "/",
		Clock:         clock,
	})
	require.NoError(t, err)

	_, err = d.Transcribe(context.Background(), wavCapture())
	require.ErrorIs(t, err, api.ErrRateLimitedRemote)

	_, err = d.Transcribe(context.Background(), wavCapture())
	require.ErrorIs(t, err, api.ErrRateLimitedLocal)
}

func TestDirect_ServiceError(t *testing.T) {
	oa := newOpenAIServer(t, http.StatusBadRequest,
		`{"error":{"message":"Invalid file format.","type":"invalid_request_error","code":null}}`)

	d, err := api.NewDirect(api.DirectConfig{
		OpenAIAPIKey:  "test-openai",
		OpenAIBaseURL: oa.URL + "/",
	})
	require.NoError(t, err)

	_, err = d.Transcribe(context.Background(), wavCapture())

	var svcErr *api.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, "Invalid file format.", svcErr.Message)
}
