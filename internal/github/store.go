package github

import (
	"fmt"
	"log/slog"

	"github.com/google/go-github/v66/github"
	"github.com/tmnn7/endsig/internal/config"
)

// NewCommentStore builds the configured backend, throttled to the
// configured update interval.
func NewCommentStore(cfg *config.Config) (CommentStore, error) {
	var store CommentStore

	switch cfg.Backend {
	case config.BackendGH:
		slog.Debug("using gh CLI backend", "repo", cfg.Repo, "token", cfg.GitHubToken != "")
		store = NewGHClient(cfg.GitHubToken)
	case config.BackendAPI:
		var tokens TokenSource = StaticToken(cfg.GitHubToken)
		if cfg.UsesApp() {
			tokens = &AppAuth{AppID: cfg.GitHubAppID, PrivateKey: cfg.GitHubPrivateKey}
		}
		slog.Debug("using REST backend", "repo", cfg.Repo, "app", cfg.UsesApp())
		store = NewAPIClient(github.NewClient(NewTokenHTTPClient(tokens, cfg.Repo)))
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}

	return NewThrottledStore(store, cfg.UpdateInterval), nil
}
