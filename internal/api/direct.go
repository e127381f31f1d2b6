package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alkime/scribe/internal/capture"
	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jonboulle/clockwork"
	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
)

// TranslationSystemPrompt instructs the model to return only the translation.
const TranslationSystemPrompt = "You are a translator. Convert the given text to English. " +
	"Only return the translation, nothing else."

// DirectConfig configures a Direct backend.
type DirectConfig struct {
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Base URLs override the SDK defaults (used by tests and proxies).
	OpenAIBaseURL    string
	AnthropicBaseURL string

	Clock       clockwork.Clock
	MinInterval time.Duration
}

// Direct transcribes with OpenAI Whisper and translates with Anthropic,
// without going through the transcription service.
type Direct struct {
	openai    openai.Client
	anthropic anthropic.Client
	model     anthropic.Model
	translate bool
	throttle  *throttle
}

// NewDirect creates the direct backend. Translation is skipped when no
// Anthropic key is configured.
func NewDirect(config DirectConfig) (*Direct, error) {
	if config.OpenAIAPIKey == "" {
		return nil, errors.New("API key required: set OPENAI_API_KEY or run 'scribe config set-key openai <key>'")
	}

	// no automatic retries anywhere
	oaOpts := []openaiopt.RequestOption{
		openaiopt.WithAPIKey(config.OpenAIAPIKey),
		openaiopt.WithMaxRetries(0),
	}
	if config.OpenAIBaseURL != "" {
		oaOpts = append(oaOpts, openaiopt.WithBaseURL(config.OpenAIBaseURL))
	}

	antOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(config.AnthropicAPIKey),
		anthropicopt.WithMaxRetries(0),
	}
	if config.AnthropicBaseURL != "" {
		antOpts = append(antOpts, anthropicopt.WithBaseURL(config.AnthropicBaseURL))
	}

	return &Direct{
		openai:    openai.NewClient(oaOpts...),
		anthropic: anthropic.NewClient(antOpts...),
		model:     anthropic.ModelClaudeSonnet4_5_20250929,
		translate: config.AnthropicAPIKey != "",
		throttle:  newThrottle(config.Clock, config.MinInterval),
	}, nil
}

// namedReader lets the SDK pick up a file name for the multipart upload.
type namedReader struct {
	*bytes.Reader
	name string
}

func (n namedReader) Name() string { return n.name }

// verboseTranscription holds the verbose_json fields not modelled by the SDK.
type verboseTranscription struct {
	Language string `json:"language"`
}

// Transcribe implements Transcriber.
func (d *Direct) Transcribe(ctx context.Context, audio *capture.Capture) (*Result, error) {
	if err := d.throttle.attempt(); err != nil {
		return nil, err
	}

	if err := checkPayload(audio); err != nil {
		return nil, err
	}

	resp, err := d.openai.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           namedReader{Reader: bytes.NewReader(audio.Data), name: audio.Name},
		Model:          openai.AudioModelWhisper1,
		ResponseFormat: openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	var verbose verboseTranscription
	if raw := resp.RawJSON(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &verbose); err != nil {
			slog.Debug("failed to parse verbose transcription", "error", err)
		}
	}

	text := strings.TrimSpace(resp.Text)
	result := &Result{
		Transcription:    &text,
		DetectedLanguage: displayLanguage(verbose.Language),
	}

	if d.translate && text != "" && !strings.EqualFold(verbose.Language, "english") {
		translation, err := d.translateText(ctx, text)
		if err != nil {
			// the transcription is still worth showing
			slog.Warn("translation failed", "error", err)
		} else {
			result.Translation = &translation
		}
	}

	return result, nil
}

func (d *Direct) translateText(ctx context.Context, text string) (string, error) {
	resp, err := d.anthropic.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     d.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: TranslationSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to translate via Anthropic API: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", errors.New("empty response from Anthropic API")
	}

	textBlock, ok := resp.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", errors.New("unexpected response type from Anthropic API")
	}

	return strings.TrimSpace(textBlock.Text), nil
}

// mapOpenAIError folds SDK errors into the client error taxonomy.
func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 {
			return ErrRateLimitedRemote
		}

		msg := apiErr.Message
		if msg == "" {
			msg = DefaultServiceMessage
		}

		return &ServiceError{StatusCode: apiErr.StatusCode, Message: msg}
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	return &TransportError{Err: err}
}

// displayLanguage capitalizes Whisper's lower-case language names.
func displayLanguage(lang string) string {
	if lang == "" {
		return ""
	}

	return strings.ToUpper(lang[:1]) + lang[1:]
}
