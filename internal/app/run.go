package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"weekgrid/internal/common/logging"
	"weekgrid/internal/config"
	"weekgrid/internal/handlers"
	"weekgrid/internal/middleware"
	"weekgrid/internal/server"
)

// Run is the main entry point for the application
func Run() error {
	// Load environment variables
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize logging
	logging.InitGlobalLogger(cfg.LogLevel)
	defer logging.MustSync()

	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	logging.Info("Starting week grid server",
		logging.String("port", cfg.Port),
		logging.Int("min_hour", cfg.MinHour),
		logging.Int("max_hour", cfg.MaxHour),
		logging.Int("visible_days", cfg.VisibleDays),
	)

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	h := handlers.New(app.View, app.Store, app.Logger)
	srv := server.New(middleware.LoggingMiddleware(h.Router()), cfg.Port)
	if err := srv.Start(); err != nil {
		logging.Error("Server failed to start", err)
		return err
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logging.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err)
		return err
	}

	logging.Info("Server exited")
	return nil
}
