package main

import (
	"log"

	"github.com/alkime/scribe/internal/config"
	"github.com/alkime/scribe/internal/logger"
	"github.com/alkime/scribe/internal/server"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg := logger.SetupServer(cfg)

	lg.Info("Starting scribe static server",
		"env", cfg.Env,
		"port", cfg.Port,
		"public_dir", cfg.PublicDir,
	)

	srv, err := server.New(cfg, lg)
	if err != nil {
		lg.Error("Failed to create server", "error", err)
		log.Fatalf("Fatal: %v", err)
	}

	if err := server.Run(srv); err != nil {
		lg.Error("Failed to start server", "error", err)
		log.Fatalf("Fatal: %v", err)
	}
}
