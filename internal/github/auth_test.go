package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	ghtesting "github.com/tmnn7/endsig/internal/github/testing"
)

func generateTestKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return key, string(pem.EncodeToMemory(block))
}

func TestGenerateJWT(t *testing.T) {
	key, pemKey := generateTestKey(t)

	tests := []struct {
		name       string
		appID      string
		privateKey string
		shouldErr  bool
	}{
		{name: "valid app ID", appID: "123456", privateKey: pemKey},
		{name: "invalid app ID", appID: "not-a-number", privateKey: pemKey, shouldErr: true},
		{name: "invalid key", appID: "123456", privateKey: "not a key", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &AppAuth{AppID: tt.appID, PrivateKey: tt.privateKey}
			signed, err := auth.GenerateJWT()
			if (err != nil) != tt.shouldErr {
				t.Fatalf("GenerateJWT() error = %v, shouldErr %v", err, tt.shouldErr)
			}
			if tt.shouldErr {
				return
			}

			claims := &jwt.RegisteredClaims{}
			parsed, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
				return &key.PublicKey, nil
			})
			if err != nil || !parsed.Valid {
				t.Fatalf("token does not verify: %v", err)
			}
			if claims.Issuer != tt.appID {
				t.Errorf("issuer = %q, want %q", claims.Issuer, tt.appID)
			}
			if claims.ExpiresAt.Sub(claims.IssuedAt.Time) > 10*time.Minute {
				t.Errorf("token lifetime exceeds GitHub's 10 minute limit")
			}
		})
	}
}

func TestAppAuth_TokenIsCached(t *testing.T) {
	_, pemKey := generateTestKey(t)
	_, srv, cleanup := ghtesting.NewMockGitHubClient(nil)
	defer cleanup()

	auth := &AppAuth{AppID: "7", PrivateKey: pemKey, BaseURL: srv.BaseURL()}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tok, err := auth.Token(ctx, "owner/repo")
		if err != nil {
			t.Fatalf("Token() error: %v", err)
		}
		if tok != "ghs_installation" {
			t.Fatalf("Token() = %q", tok)
		}
	}

	// One installation lookup plus one token exchange.
	if len(srv.Auth) != 2 {
		t.Errorf("expected 2 API requests, got %d", len(srv.Auth))
	}
	for _, h := range srv.Auth {
		if len(h) < len("Bearer ") || h[:7] != "Bearer " {
			t.Errorf("app request not JWT-authenticated: %q", h)
		}
	}
}

func TestAppAuth_InvalidRepo(t *testing.T) {
	_, pemKey := generateTestKey(t)
	auth := &AppAuth{AppID: "7", PrivateKey: pemKey}

	if _, err := auth.Token(context.Background(), "bad"); err == nil {
		t.Fatal("expected error for invalid repo")
	}
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token(context.Background(), "o/r")
	if err != nil || tok != "abc" {
		t.Errorf("Token() = %q, %v", tok, err)
	}
	if _, err := StaticToken("").Token(context.Background(), "o/r"); err == nil {
		t.Error("empty token should error")
	}
}

func TestNewTokenHTTPClient_SetsAuthorization(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer ts.Close()

	client := NewTokenHTTPClient(StaticToken("xyz"), "o/r")
	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if got != "Bearer xyz" {
		t.Errorf("Authorization = %q, want Bearer xyz", got)
	}
}

func TestNewTokenHTTPClient_TokenError(t *testing.T) {
	client := NewTokenHTTPClient(StaticToken(""), "o/r")
	if _, err := client.Get("http://127.0.0.1:1"); err == nil {
		t.Fatal("expected token error")
	}
}
