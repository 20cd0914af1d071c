package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tmnn7/endsig/internal/config"
	"github.com/tmnn7/endsig/internal/github"
	"github.com/tmnn7/endsig/internal/logging"
	"github.com/tmnn7/endsig/internal/signature"
)

const serverVersion = "v1.0.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	// stdout carries the MCP protocol; logs go to stderr.
	logging.Setup(cfg.Level())

	store, err := github.NewCommentStore(cfg)
	if err != nil {
		slog.Error("failed to initialize comment store", "err", err)
		os.Exit(1)
	}

	tools := &Tools{
		store: store,
		repo:  cfg.Repo,
		appender: signature.NewAppender(store, cfg.Repo).
			WithOutput(io.Discard).
			WithDryRun(cfg.DryRun),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting signature MCP server", "version", serverVersion, "repo", cfg.Repo)
	if err := newServer(tools).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		slog.Error("server error", "err", err)
		stop()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newServer(tools *Tools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "endsig-signature-server",
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_character",
		Description: "Detect which character wrote a comment body and whether it already ends in a signature block",
	}, tools.HandleDetectCharacter)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sign_comment",
		Description: "Append the author character's signature block to an issue comment if it has none",
	}, tools.HandleSignComment)

	return server
}
