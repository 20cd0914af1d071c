package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tmnn7/endsig/internal/config"
	"github.com/tmnn7/endsig/internal/github"
	"github.com/tmnn7/endsig/internal/logging"
	"github.com/tmnn7/endsig/internal/signature"
)

var (
	loadDotEnv   = godotenv.Load
	newStore     = github.NewCommentStore
	setupLogging = logging.Setup
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		slog.Error("endsig failed", "err", err)
		stop()
		os.Exit(1)
	}
}

// run performs one signing pass over the configured repository. Individual
// update failures are reported in the output, not returned.
func run(ctx context.Context, out io.Writer) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.Level())

	slog.Info("starting signature pass", "repo", cfg.Repo, "backend", cfg.Backend, "dry_run", cfg.DryRun)

	store, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize comment store: %w", err)
	}

	appender := signature.NewAppender(store, cfg.Repo).
		WithOutput(out).
		WithDryRun(cfg.DryRun)

	if _, err := appender.Run(ctx); err != nil {
		return err
	}
	return nil
}
