package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/engleong-lee/stash/internal/api"
	"github.com/engleong-lee/stash/internal/app"
	"github.com/engleong-lee/stash/internal/config"
	"github.com/engleong-lee/stash/internal/logging"
)

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Logger
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Development: cfg.LogDev})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %s\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Components
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	if v, err := a.DB.SchemaVersion(context.Background()); err == nil {
		logger.Info("storage ready", zap.String("path", cfg.DBPath), zap.Int("version", v))
	}
	if !a.Ollama.CheckAvailable(context.Background()) {
		logger.Warn("ollama not reachable at startup, names will fall back", zap.String("url", cfg.OllamaBaseURL))
	}

	// Router
	router := api.NewRouter(a.Router, a.Sessions, a.Ollama, a.Claude, a.Metrics, cfg.APIKey, logger.Named("http"))

	// Server
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("stash server starting", zap.String("addr", addr), zap.String("browser", cfg.Browser))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}
