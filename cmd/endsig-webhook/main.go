package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/tmnn7/endsig/internal/config"
	"github.com/tmnn7/endsig/internal/github"
	"github.com/tmnn7/endsig/internal/logging"
	"github.com/tmnn7/endsig/internal/signature"
	"github.com/tmnn7/endsig/internal/webhook"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotEnv   = godotenv.Load
	newStore     = github.NewCommentStore
	setupLogging = logging.Setup
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, net.Listen); err != nil {
		slog.Error("webhook server failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, listen func(network, addr string) (net.Listener, error)) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateWebhook(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.Level())

	store, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize comment store: %w", err)
	}

	appender := signature.NewAppender(store, cfg.Repo).
		WithOutput(io.Discard).
		WithDryRun(cfg.DryRun)
	handler := webhook.NewHandler(cfg.WebhookSecret, cfg.Repo, appender)

	ln, err := listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := &http.Server{
		Handler:           newRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("webhook server listening", "addr", ln.Addr().String(), "repo", cfg.Repo, "backend", cfg.Backend)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down webhook server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newRouter(handler *webhook.Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/webhook", handler.Handle).Methods(http.MethodPost)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return r
}
