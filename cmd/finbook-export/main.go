// finbook-export writes a versioned JSON snapshot of the full ledger to a
// file or stdout.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"finbook/internal/backend"
	"finbook/internal/config"
	"finbook/internal/export"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	out := flag.String("out", "", "output file (default: stdout)")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := backend.Open(cfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doc, err := export.Build(ctx, store.Store, cfg.UserID, time.Now())
	if err != nil {
		logger.Error("Failed to build snapshot", "error", err)
		os.Exit(1)
	}

	raw, err := export.Marshal(doc)
	if err != nil {
		logger.Error("Failed to marshal snapshot", "error", err)
		os.Exit(1)
	}

	if *out == "" {
		if _, err := os.Stdout.Write(append(raw, '\n')); err != nil {
			logger.Error("Failed to write snapshot", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := os.WriteFile(*out, raw, 0644); err != nil {
		logger.Error("Failed to write snapshot file", "error", err, "path", *out)
		os.Exit(1)
	}
}
