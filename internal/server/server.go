// Package server hosts the static web page.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/alkime/scribe/internal/config"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// Server represents the HTTP server
type Server struct {
	config *config.Server
	logger *slog.Logger
	router *gin.Engine
	action string
}

// New creates a new Server instance
func New(cfg *config.Server, logger *slog.Logger) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	action, err := cfg.FormAction()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve form action: %w", err)
	}

	files, err := assets(cfg.PublicDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load static assets: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	server := &Server{
		config: cfg,
		logger: logger,
		router: router,
		action: action,
	}

	setupSecurityMiddleware(router, cfg, withOrigin(cfg.ConnectSrc, action), logger)

	if err := server.setupRoutes(files); err != nil {
		return nil, err
	}

	return server, nil
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the HTTP server
func Run(s *Server) error {
	s.logger.Info("Server listening",
		"port", s.config.Port,
		"url", "http://localhost:"+s.config.Port+"/",
		"form_action", s.action,
	)

	return s.router.Run(":" + s.config.Port)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(files static.ServeFileSystem) error {
	s.router.GET("/health", s.handleHealth)

	// a PUBLIC_DIR brings its own index.html
	if s.config.PublicDir == "" {
		tmpl, err := pageTemplates()
		if err != nil {
			return fmt.Errorf("failed to parse page template: %w", err)
		}

		s.router.SetHTMLTemplate(tmpl)
		s.router.GET("/", s.handleIndex)
	}

	// Static files win over NoRoute
	s.router.Use(static.Serve("/", files))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return nil
}

// handleIndex renders the upload page pointed at the transcription service.
func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Action": s.action,
	})
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "scribe",
	})
}

// withOrigin appends the origin of target to sources unless already listed.
func withOrigin(sources []string, target string) []string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return sources
	}

	origin := u.Scheme + "://" + u.Host
	if slices.Contains(sources, origin) {
		return sources
	}

	return append(slices.Clone(sources), origin)
}
