// Command server runs the dynamic columns HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dcolumn/internal/app"
	"dcolumn/internal/config"
	v1 "dcolumn/internal/infrastructure/http/v1"
	"dcolumn/internal/infrastructure/http/v1/handlers"
	"dcolumn/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal(context.Background(), "config load failed", "error", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		logger.Fatal(context.Background(), "logger init failed", "error", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	if err := run(ctx, cfg, log); err != nil {
		log.WithContext(ctx).Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	router := v1.NewRouter(cfg, log, v1.Handlers{
		Health:      handlers.NewHealthHandler(a.Pool),
		Auth:        handlers.NewAuthHandler(a.Auth),
		Columns:     handlers.NewDynamicColumnHandler(a.Columns),
		Collections: handlers.NewCollectionHandler(a.Collections, a.Store),
		Books:       handlers.NewBooksHandler(a.Books),
		Validator:   a.Auth,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithContext(ctx).Infow("server listening", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.WithContext(ctx).Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
