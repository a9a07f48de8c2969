// gig-server is the record service gig clients sync against.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gigtrack/gig/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	addr := envOr("GIG_SERVER_ADDR", ":8080")
	dataDir := envOr("GIG_SERVER_DATA_DIR", "./data")
	apiKey := os.Getenv("GIG_SERVER_API_KEY")
	if apiKey == "" {
		slog.Warn("GIG_SERVER_API_KEY not set, running without authentication")
	}

	storage, err := server.OpenStorage(dataDir)
	if err != nil {
		slog.Error("open storage", "err", err)
		os.Exit(1)
	}
	defer storage.Close()

	srv := &http.Server{
		Addr:         addr,
		Handler:      server.New(storage, apiKey).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("serve", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
