package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v66/github"
)

const listPageSize = 100

// APIClient is a CommentStore backed by the GitHub REST API.
type APIClient struct {
	client *github.Client
}

// NewAPIClient wraps a go-github client. Authentication is the client's
// concern; see NewTokenHTTPClient.
func NewAPIClient(client *github.Client) *APIClient {
	return &APIClient{client: client}
}

// ListComments lists every issue comment of repo page by page.
func (c *APIClient) ListComments(ctx context.Context, repo string) ([]Comment, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}

	var comments []Comment
	for {
		var page []*github.IssueComment
		var resp *github.Response
		err := retryWithBackoff(ctx, func() error {
			var err error
			// Issue number 0 lists the comments of every issue in the repository.
			page, resp, err = c.client.Issues.ListComments(ctx, owner, name, 0, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list comments (page %d): %w", opts.Page, err)
		}

		for _, ic := range page {
			if ic == nil || ic.ID == nil {
				continue
			}
			comments = append(comments, Comment{ID: ic.GetID(), Body: ic.GetBody()})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// GetComment retrieves a single comment
func (c *APIClient) GetComment(ctx context.Context, repo string, id int64) (Comment, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return Comment{}, err
	}

	var ic *github.IssueComment
	err = retryWithBackoff(ctx, func() error {
		var err error
		ic, _, err = c.client.Issues.GetComment(ctx, owner, name, id)
		return err
	})
	if err != nil {
		return Comment{}, fmt.Errorf("failed to get comment: %w", err)
	}
	return Comment{ID: ic.GetID(), Body: ic.GetBody()}, nil
}

// UpdateComment replaces a comment body. It is never retried.
func (c *APIClient) UpdateComment(ctx context.Context, repo string, id int64, body string) error {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return err
	}

	_, _, err = c.client.Issues.EditComment(ctx, owner, name, id, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}
