package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v66/github"
)

// TokenSource hands out a GitHub API token for a repository.
type TokenSource interface {
	Token(ctx context.Context, repo string) (string, error)
}

// StaticToken is a fixed personal access or Actions token.
type StaticToken string

// Token returns the token itself.
func (s StaticToken) Token(ctx context.Context, repo string) (string, error) {
	if s == "" {
		return "", errors.New("no GitHub token configured")
	}
	return string(s), nil
}

// AppAuth holds GitHub App authentication configuration
type AppAuth struct {
	AppID      string
	PrivateKey string

	// BaseURL overrides the API root, mainly for tests.
	BaseURL    *url.URL
	HTTPClient *http.Client

	mu     sync.Mutex
	tokens map[string]*InstallationToken
}

// InstallationToken represents a GitHub App installation access token
type InstallationToken struct {
	Token     string
	ExpiresAt time.Time
}

// GenerateJWT creates a JWT token for GitHub App authentication
func (a *AppAuth) GenerateJWT() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(a.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	appID, err := strconv.ParseInt(a.AppID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid app ID: %w", err)
	}

	// Backdate issuance to absorb clock drift with GitHub.
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Minute)),
		Issuer:    strconv.FormatInt(appID, 10),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}

	return signedToken, nil
}

// Token returns a cached installation token for repo, minting a new one
// when the cached token is missing or about to expire.
func (a *AppAuth) Token(ctx context.Context, repo string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if tok, ok := a.tokens[repo]; ok && time.Until(tok.ExpiresAt) > time.Minute {
		return tok.Token, nil
	}

	tok, err := a.GetInstallationToken(ctx, repo)
	if err != nil {
		return "", err
	}
	if a.tokens == nil {
		a.tokens = make(map[string]*InstallationToken)
	}
	a.tokens[repo] = tok
	return tok.Token, nil
}

// GetInstallationToken gets an installation access token for a repository
func (a *AppAuth) GetInstallationToken(ctx context.Context, repo string) (*InstallationToken, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	jwtToken, err := a.GenerateJWT()
	if err != nil {
		return nil, err
	}

	httpClient := a.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	client := github.NewClient(httpClient).WithAuthToken(jwtToken)
	if a.BaseURL != nil {
		client.BaseURL = a.BaseURL
	}

	installation, _, err := client.Apps.FindRepositoryInstallation(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get installation: %w", err)
	}

	token, _, err := client.Apps.CreateInstallationToken(ctx, installation.GetID(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &InstallationToken{
		Token:     token.GetToken(),
		ExpiresAt: token.GetExpiresAt().Time,
	}, nil
}

// tokenTransport authenticates every request with a token for one repository.
type tokenTransport struct {
	source TokenSource
	repo   string
	base   http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token(req.Context(), t.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(req)
}

// NewTokenHTTPClient returns an HTTP client that authenticates against
// repo with tokens from source.
func NewTokenHTTPClient(source TokenSource, repo string) *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &tokenTransport{
			source: source,
			repo:   repo,
			base:   http.DefaultTransport,
		},
	}
}
