package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financas/internal/cache"
	"financas/internal/cli"
	"financas/internal/config"
	apphttp "financas/internal/http"
	"financas/internal/log"
	"financas/internal/session"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)

	books := session.NewRegistry(res.Store, session.Options{
		CacheSize:         cfg.SessionCacheSize,
		TTL:               cfg.SessionTTL,
		DefaultCardBudget: cfg.CardBudget(),
		Events:            res.Events,
		Logger:            logger,
	})

	caches := cache.NewManager()
	caches.Register(books.Cache())
	caches.StartCleanup(5 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, books, apphttp.Options{
		Currency: cfg.Currency,
		Logger:   logger,
		Ready:    readiness(res.Store),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	})

	logger.Info("Starting financas server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"events", res.Events != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully", "open_books", len(books.Open()))
}

// readiness pings the store when it supports it.
func readiness(store any) func(context.Context) error {
	p, ok := store.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return p.Ping
}
