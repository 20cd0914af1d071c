package github

import (
	"testing"
	"time"

	"github.com/tmnn7/endsig/internal/config"
)

func TestNewCommentStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		check   func(*testing.T, CommentStore)
		wantErr bool
	}{
		{
			name: "gh backend",
			cfg:  config.Config{Repo: "o/r", Backend: config.BackendGH, GitHubToken: "t", UpdateInterval: time.Second},
			check: func(t *testing.T, s CommentStore) {
				ts := s.(*ThrottledStore)
				if _, ok := ts.CommentStore.(*GHClient); !ok {
					t.Errorf("inner store = %T, want *GHClient", ts.CommentStore)
				}
			},
		},
		{
			name: "api backend",
			cfg:  config.Config{Repo: "o/r", Backend: config.BackendAPI, GitHubToken: "t"},
			check: func(t *testing.T, s CommentStore) {
				ts := s.(*ThrottledStore)
				if _, ok := ts.CommentStore.(*APIClient); !ok {
					t.Errorf("inner store = %T, want *APIClient", ts.CommentStore)
				}
			},
		},
		{
			name:    "unknown backend",
			cfg:     config.Config{Repo: "o/r", Backend: "ftp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewCommentStore(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCommentStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, store)
			}
		})
	}
}
