package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"

	"cvgen/internal/app"
	u "cvgen/internal/utils"
)

func main() {
	// Load .env if present; in production the environment comes from the
	// unit file or container runtime.
	_ = godotenv.Load()

	cfg := u.LoadConfig()
	applyEnvOverrides(&cfg)

	u.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)

	idleConnsClosed := make(chan struct{})

	app := app.SetupApp(cfg)

	startServer(app, cfg, idleConnsClosed)
	<-idleConnsClosed
}

// applyEnvOverrides lets common deployment env vars win over the config file.
func applyEnvOverrides(cfg *u.Config) {
	if v := os.Getenv("TEMPLATES_DIR"); v != "" {
		cfg.Latex.TemplatesDir = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Latex.OutputDir = v
	}
	if v := os.Getenv("PDFLATEX_BIN"); v != "" {
		cfg.Latex.Command = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = ":" + v
	}
}

// startServer starts the Fiber app and listens for shutdown signals
func startServer(app *fiber.App, cfg u.Config, idleConnsClosed chan struct{}) {
	go func() {
		if err := app.Listen(cfg.Server.Host + cfg.Server.Port); err != nil {
			u.Error("Server error", "error", err)
		}
	}()

	// Listen for OS termination signals
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint

	u.Warn("Shutdown signal received, closing server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		u.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	u.Info("Server stopped cleanly")
}
