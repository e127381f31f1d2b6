// Package config loads server and client settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvDevelopment targets the local transcription service.
	EnvDevelopment = "development"
	// EnvProduction represents the production environment.
	EnvProduction = "production"

	// DefaultLocalAPIURL is where the transcription service listens in development.
	DefaultLocalAPIURL = "http://localhost:5000"
)

// BuildEnv, when set at build time, replaces the development default:
//
//	go build -ldflags "-X github.com/alkime/scribe/internal/config.BuildEnv=production"
//
// SCRIBE_ENV still wins when set.
var BuildEnv string

// Server holds the static server configuration.
type Server struct {
	Env  string `envconfig:"SCRIBE_ENV" default:"development"`
	Port string `envconfig:"PORT" default:"3002"`

	// PublicDir serves assets from disk instead of the embedded page.
	PublicDir string `envconfig:"PUBLIC_DIR"`

	// The embedded page posts to the same service the CLI uses.
	LocalAPIURL      string `envconfig:"LOCAL_API_URL" default:"http://localhost:5000"`
	ProductionAPIURL string `envconfig:"PRODUCTION_API_URL"`
	Endpoint         string `envconfig:"SCRIBE_ENDPOINT" default:"transcribe"`

	// Security settings
	HSTSMaxAge int      `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string   `envconfig:"CSP_MODE" default:"relaxed"`
	ConnectSrc []string `envconfig:"CSP_CONNECT_SRC" default:"http://localhost:5000"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Client holds the CLI configuration. Flags override these values.
type Client struct {
	Env              string `envconfig:"SCRIBE_ENV" default:"development"`
	LocalAPIURL      string `envconfig:"LOCAL_API_URL" default:"http://localhost:5000"`
	ProductionAPIURL string `envconfig:"PRODUCTION_API_URL"`
	Endpoint         string `envconfig:"SCRIBE_ENDPOINT" default:"transcribe"`
	Backend          string `envconfig:"SCRIBE_BACKEND" default:"service"`
	Format           string `envconfig:"SCRIBE_FORMAT" default:"wav"`

	// Direct backend credentials; the keychain is consulted when empty.
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadServer loads the server configuration.
func LoadServer() (*Server, error) {
	loadDotEnv()

	var cfg Server
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	cfg.Env = resolveEnv(cfg.Env)

	return &cfg, nil
}

// LoadClient loads the client configuration.
func LoadClient() (*Client, error) {
	loadDotEnv()

	var cfg Client
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	cfg.Env = resolveEnv(cfg.Env)

	return &cfg, nil
}

// IsProduction reports whether the server runs in production.
func (s *Server) IsProduction() bool {
	return s.Env == EnvProduction
}

// IsProduction reports whether the client targets production.
func (c *Client) IsProduction() bool {
	return c.Env == EnvProduction
}

// APIBaseURL returns the transcription service URL for the environment.
func (c *Client) APIBaseURL() (string, error) {
	return apiBaseURL(c.IsProduction(), c.LocalAPIURL, c.ProductionAPIURL)
}

// FormAction returns the URL the embedded page submits audio to.
func (s *Server) FormAction() (string, error) {
	base, err := apiBaseURL(s.IsProduction(), s.LocalAPIURL, s.ProductionAPIURL)
	if err != nil {
		return "", err
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = "transcribe"
	}

	return strings.TrimRight(base, "/") + "/" + endpoint, nil
}

func apiBaseURL(production bool, local, remote string) (string, error) {
	if !production {
		if local == "" {
			return DefaultLocalAPIURL, nil
		}

		return local, nil
	}

	if remote == "" {
		return "", errors.New("PRODUCTION_API_URL must be set in production")
	}

	return remote, nil
}

// loadDotEnv reads .env when present (optional for development).
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}
}

func resolveEnv(env string) string {
	if _, set := os.LookupEnv("SCRIBE_ENV"); !set && BuildEnv != "" {
		env = BuildEnv
	}

	return strings.ToLower(strings.TrimSpace(env))
}

// BuildCSP constructs Content Security Policy based on mode. connectSrc
// lists the origins the page may send audio to.
func BuildCSP(mode string, connectSrc ...string) string {
	targets := strings.TrimSpace("'self' " + strings.Join(connectSrc, " "))

	if mode == "strict" {
		return "default-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'; " +
			"media-src 'self' blob:; " +
			"connect-src " + targets + "; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action " + targets
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"media-src 'self' blob:; " +
		"connect-src " + targets + "; " +
		"img-src 'self' data:"
}
