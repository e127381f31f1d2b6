package server_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alkime/scribe/internal/config"
	"github.com/alkime/scribe/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Server {
	return &config.Server{
		Env:         "test",
		Port:        "3002",
		LocalAPIURL: "http://localhost:5000",
		HSTSMaxAge:  31536000,
		CSPMode:     "relaxed",
		ConnectSrc:  []string{"http://localhost:5000"},
		LogLevel:    "info",
	}
}

func newServer(t *testing.T, cfg *config.Server) *server.Server {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	srv, err := server.New(cfg, logger)
	require.NoError(t, err)

	return srv
}

func get(t *testing.T, srv *server.Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := get(t, newServer(t, testConfig()), "/health")

	assert.Equal(t, http.StatusOK, w.Code, "Health endpoint should return 200 OK")
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "scribe")
}

func TestRootServesIndex(t *testing.T) {
	w := get(t, newServer(t, testConfig()), "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `name="audio"`)
	assert.Contains(t, w.Body.String(), `action="http://localhost:5000/transcribe"`)
}

func TestProductionFormAction(t *testing.T) {
	cfg := testConfig()
	cfg.Env = config.EnvProduction
	cfg.ProductionAPIURL = "https://api.example.com"
	cfg.Endpoint = "classify"

	w := get(t, newServer(t, cfg), "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="https://api.example.com/classify"`)
	assert.NotContains(t, w.Body.String(), "localhost")
	assert.Contains(t, w.Header().Get("Content-Security-Policy"),
		"connect-src 'self' http://localhost:5000 https://api.example.com")
}

func TestProductionRequiresAPIURL(t *testing.T) {
	cfg := testConfig()
	cfg.Env = config.EnvProduction

	srv, err := server.New(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRODUCTION_API_URL")
	assert.Nil(t, srv)
}

func TestStaticAsset(t *testing.T) {
	w := get(t, newServer(t, testConfig()), "/style.css")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
}

func TestUnknownPath(t *testing.T) {
	w := get(t, newServer(t, testConfig()), "/nope.js")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	w := get(t, newServer(t, testConfig()), "/")

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "connect-src 'self' http://localhost:5000")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"), "no HSTS outside production")
}

func TestPublicDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>custom page</p>"), 0o600))

	cfg := testConfig()
	cfg.PublicDir = dir

	w := get(t, newServer(t, cfg), "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "custom page")
}
