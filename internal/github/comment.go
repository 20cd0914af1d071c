package github

import (
	"context"
	"fmt"
	"strings"
)

// Comment is an issue comment as seen by the signature tooling.
type Comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// CommentStore lists, reads and edits the issue comments of a repository.
type CommentStore interface {
	// ListComments returns every issue comment of repo ("owner/name"),
	// in the order the pages are served.
	ListComments(ctx context.Context, repo string) ([]Comment, error)

	// GetComment returns a single comment by ID.
	GetComment(ctx context.Context, repo string, id int64) (Comment, error)

	// UpdateComment replaces the body of a comment.
	UpdateComment(ctx context.Context, repo string, id int64, body string) error
}

// SplitRepo splits "owner/name" into its two parts.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", repo)
	}
	return parts[0], parts[1], nil
}
