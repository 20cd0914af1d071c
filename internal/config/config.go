package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backends for reaching the comment store.
const (
	BackendGH  = "gh"
	BackendAPI = "api"
)

// Config holds all configuration for the endsig tools
type Config struct {
	// Target repository ("owner/name")
	Repo string `env:"ENDSIG_REPO" envDefault:"SimHacker/tmnn7-8"`

	// Comment store backend: "gh" (gh CLI) or "api" (REST)
	Backend string `env:"ENDSIG_BACKEND" envDefault:"gh"`

	// Credentials. The gh backend uses gh's own login unless GITHUB_TOKEN is
	// set; the api backend needs a token or GitHub App credentials.
	GitHubToken      string `env:"GITHUB_TOKEN"`
	GitHubAppID      string `env:"GITHUB_APP_ID"`
	GitHubPrivateKey string `env:"GITHUB_PRIVATE_KEY"`

	// Behaviour
	DryRun         bool          `env:"ENDSIG_DRY_RUN"`
	UpdateInterval time.Duration `env:"ENDSIG_UPDATE_INTERVAL" envDefault:"1s"`
	LogLevel       string        `env:"ENDSIG_LOG_LEVEL" envDefault:"info"`

	// Webhook server
	Port          int    `env:"PORT" envDefault:"8000"`
	WebhookSecret string `env:"ENDSIG_WEBHOOK_SECRET"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.GitHubPrivateKey = normalizePrivateKey(cfg.GitHubPrivateKey)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UsesApp reports whether GitHub App credentials are configured.
func (c *Config) UsesApp() bool {
	return c.GitHubAppID != "" && c.GitHubPrivateKey != ""
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ValidateWebhook checks the settings only the webhook server needs.
func (c *Config) ValidateWebhook() error {
	if c.WebhookSecret == "" {
		return fmt.Errorf("ENDSIG_WEBHOOK_SECRET is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	return nil
}

func normalizePrivateKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") {
		trimmed = strings.TrimPrefix(trimmed, "\"")
		trimmed = strings.TrimSuffix(trimmed, "\"")
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") {
		trimmed = strings.TrimPrefix(trimmed, "'")
		trimmed = strings.TrimSuffix(trimmed, "'")
	}

	trimmed = strings.ReplaceAll(trimmed, "\r\n", "\n")
	trimmed = strings.ReplaceAll(trimmed, "\r", "\n")
	if strings.Contains(trimmed, "\\n") {
		trimmed = strings.ReplaceAll(trimmed, "\\r", "")
		trimmed = strings.ReplaceAll(trimmed, "\\n", "\n")
	}

	return trimmed
}

// validate checks that all required configuration is present
func (c *Config) validate() error {
	if err := c.validateRepo(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if c.UpdateInterval < 0 {
		return fmt.Errorf("ENDSIG_UPDATE_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateRepo() error {
	parts := strings.Split(c.Repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("ENDSIG_REPO must be owner/name, got %q", c.Repo)
	}
	return nil
}

func (c *Config) validateBackend() error {
	if (c.GitHubAppID == "") != (c.GitHubPrivateKey == "") {
		return fmt.Errorf("GITHUB_APP_ID and GITHUB_PRIVATE_KEY must be set together")
	}

	switch c.Backend {
	case BackendGH:
		if c.UsesApp() {
			return fmt.Errorf("GitHub App credentials require ENDSIG_BACKEND=api")
		}
		return nil
	case BackendAPI:
		if c.GitHubToken == "" && !c.UsesApp() {
			return fmt.Errorf("GITHUB_TOKEN or GitHub App credentials are required for the api backend")
		}
		return nil
	default:
		return fmt.Errorf("invalid backend: %s (must be 'gh' or 'api')", c.Backend)
	}
}
