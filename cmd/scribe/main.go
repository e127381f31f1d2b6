package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/app"
	"github.com/alkime/scribe/internal/audio"
	"github.com/alkime/scribe/internal/config"
	"github.com/alkime/scribe/internal/keyring"
	"github.com/alkime/scribe/internal/logger"
	"github.com/alkime/scribe/internal/recorder"
	"github.com/alkime/scribe/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	backendService = "service"
	backendDirect  = "direct"
)

// Globals are flags shared by every command. Empty values fall back to the
// environment (see config.Client).
type Globals struct {
	Env      string `flag:"" help:"Target environment: development or production"`
	APIURL   string `flag:"" name:"api-url" help:"Transcription service base URL (overrides the environment default)"`
	Endpoint string `flag:"" help:"Service endpoint: transcribe or classify"`
	Backend  string `flag:"" help:"Backend: service (transcription service) or direct (OpenAI + Anthropic)"`
	Format   string `flag:"" help:"Recording format: wav or mp3"`
	LogFile  string `flag:"" name:"log-file" help:"Log file for the terminal UI (default: user cache dir)"`
}

// CLI defines the scribe command structure.
type CLI struct {
	Globals

	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"1" help:"Launch terminal UI to record or upload audio"`

	// Subcommands
	Transcribe TranscribeCmd `cmd:"" help:"Transcribe an audio file and print the results"`
	Devices    DevicesCmd    `cmd:"" help:"List available audio devices"`
	Config     ConfigCmd     `cmd:"" help:"Manage configuration"`
}

// settings merges flags over the environment.
func (g *Globals) settings() (*config.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if g.Env != "" {
		cfg.Env = strings.ToLower(g.Env)
	}
	if g.Endpoint != "" {
		cfg.Endpoint = g.Endpoint
	}
	if g.Backend != "" {
		cfg.Backend = g.Backend
	}
	if g.Format != "" {
		cfg.Format = g.Format
	}
	if g.APIURL != "" {
		// an explicit URL applies to whichever environment is selected
		cfg.LocalAPIURL = g.APIURL
		cfg.ProductionAPIURL = g.APIURL
	}

	return cfg, nil
}

// newTranscriber builds the configured backend and a short description of
// where audio goes.
func newTranscriber(cfg *config.Client) (api.Transcriber, string, error) {
	switch cfg.Backend {
	case backendService, "":
		baseURL, err := cfg.APIBaseURL()
		if err != nil {
			return nil, "", err
		}

		endpoint, err := api.ParseEndpoint(cfg.Endpoint)
		if err != nil {
			return nil, "", err
		}

		client := api.NewClient(api.ClientConfig{
			BaseURL:  baseURL,
			Endpoint: endpoint,
		})

		return client, client.URL(), nil

	case backendDirect:
		direct, err := api.NewDirect(api.DirectConfig{
			OpenAIAPIKey:    keyring.Resolve(keyring.OpenAI, cfg.OpenAIAPIKey),
			AnthropicAPIKey: keyring.Resolve(keyring.Anthropic, cfg.AnthropicAPIKey),
		})
		if err != nil {
			return nil, "", err
		}

		return direct, "OpenAI + Anthropic", nil

	default:
		return nil, "", fmt.Errorf("invalid backend %q: must be '%s' or '%s'", cfg.Backend, backendService, backendDirect)
	}
}

// TUICmd is the default command that runs the TUI.
type TUICmd struct{}

// Run executes the TUI command.
func (c *TUICmd) Run(g *Globals) error {
	cfg, err := g.settings()
	if err != nil {
		return err
	}

	// the TUI owns the terminal, so logs go to a file
	logPath := g.LogFile
	if logPath == "" {
		logPath = logger.DefaultLogFile()
	}

	logFile, err := logger.OpenLogFile(logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger.SetupCLI(logFile, logger.Level(cfg.Env, cfg.LogLevel))

	transcriber, target, err := newTranscriber(cfg)
	if err != nil {
		return err
	}

	format, err := audio.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := recorder.New(audio.NewDevice(audio.DefaultDeviceConfig()), recorder.Config{
		Encoder: audio.EncoderConfig{Format: format},
	})

	m := tui.New(ctx, tui.Config{
		Recorder:    rec,
		Transcriber: transcriber,
		Target:      target,
		Cancel:      cancel,
	})
	// always release the microphone and preview file
	defer m.App().Shutdown()

	p := tea.NewProgram(m)

	rec.SetTimerFunc(func(elapsed time.Duration) {
		p.Send(tui.TimerMsg{Elapsed: elapsed})
	})

	slog.Info("starting scribe", "env", cfg.Env, "backend", cfg.Backend, "target", target, "format", format)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	fmt.Println("\nfinished. bye!")

	return nil
}

// TranscribeCmd submits one file without the TUI.
type TranscribeCmd struct {
	File string `arg:"" required:"" type:"existingfile" help:"Audio file (wav, mp3 or ogg)"`
}

// Run executes the transcribe command.
func (c *TranscribeCmd) Run(g *Globals) error {
	cfg, err := g.settings()
	if err != nil {
		return err
	}

	logger.SetupCLI(os.Stderr, logger.Level(cfg.Env, cfg.LogLevel))

	transcriber, target, err := newTranscriber(cfg)
	if err != nil {
		return err
	}

	slog.Debug("transcribing file", "file", c.File, "target", target)

	a := app.New(app.Config{
		Transcriber: transcriber,
		View:        &consoleView{out: os.Stdout, err: os.Stderr},
	})
	defer a.Shutdown()

	ctx := context.Background()

	if !a.SelectFile(ctx, c.File) {
		return errors.New("audio file rejected")
	}

	if !a.SubmitAndWait(ctx) {
		return errors.New("transcription failed")
	}

	return nil
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run() error {
	slog.Info("Enumerating audio devices...")

	adev := audio.NewDevice(nil)
	devices, err := adev.EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetKey   SetKeyCmd   `cmd:"" help:"Store an API key in system keychain"`
	ListKeys ListKeysCmd `cmd:"" name:"list-keys" help:"Show which API keys are configured"`
}

// SetKeyCmd stores an API key in the system keychain.
type SetKeyCmd struct {
	Service string `arg:"" enum:"openai,anthropic" help:"Service name (openai or anthropic)"`
	Secret  string `arg:"" help:"API key value"`
}

// Run executes the set-key command.
func (c *SetKeyCmd) Run() error {
	if strings.TrimSpace(c.Secret) == "" {
		return errors.New("API key cannot be empty")
	}

	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Set(apiKey, c.Secret); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("%s API key stored in keychain\n", c.Service)

	return nil
}

// ListKeysCmd shows which API keys are configured.
type ListKeysCmd struct{}

// Run executes the list-keys command.
//
//nolint:unparam // error return required by Kong interface
func (c *ListKeysCmd) Run() error {
	allSet := true

	for _, apiKey := range keyring.AllAPIKeys() {
		if keyring.IsSet(apiKey) {
			fmt.Printf("%s: configured\n", apiKey.DisplayName())
		} else {
			fmt.Printf("%s: not set\n", apiKey.DisplayName())
			allSet = false
		}
	}

	if !allSet {
		fmt.Println("\nRun 'scribe config set-key <service> <key>' to configure.")
	}

	return nil
}

func main() {
	// Set up text-based logger for CLI output
	logger.SetupCLI(os.Stderr, slog.LevelInfo)

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("scribe"),
		kong.Description("Record or upload speech, then transcribe, detect its language and translate it to English."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
