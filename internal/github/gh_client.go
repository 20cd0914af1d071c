package github

import (
	"bufio"
	"bytes"
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

// commentsJQ flattens every page of the comments listing into one
// {"id":..,"body":..} object per line.
const commentsJQ = `.[] | {id: .id, body: .body}`

// GHClient is a CommentStore backed by the gh CLI, which owns the
// credentials. When a token is configured it is handed to gh as GH_TOKEN.
type GHClient struct {
	runner CommandRunner
}

// NewGHClient creates a gh-backed store. An empty token leaves gh's own
// authentication in charge.
func NewGHClient(token string) *GHClient {
	runner := &RealCommandRunner{}
	if token != "" {
		runner.Env = []string{"GH_TOKEN=" + token}
	}
	return &GHClient{runner: runner}
}

// NewGHClientWithRunner creates a gh-backed store on top of runner.
func NewGHClientWithRunner(runner CommandRunner) *GHClient {
	return &GHClient{runner: runner}
}

// ListComments lists all issue comments of repo, following pagination.
func (c *GHClient) ListComments(ctx context.Context, repo string) ([]Comment, error) {
	if _, _, err := SplitRepo(repo); err != nil {
		return nil, err
	}

	var comments []Comment
	err := retryWithBackoff(ctx, func() error {
		output, err := c.runner.Run(ctx, "gh",
			"api", fmt.Sprintf("repos/%s/issues/comments", repo),
			"--paginate",
			"--jq", commentsJQ,
		)
		if err != nil {
			return fmt.Errorf("gh api list failed: %w", err)
		}
		comments = parseCommentLines(output)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// GetComment retrieves a single comment
func (c *GHClient) GetComment(ctx context.Context, repo string, id int64) (Comment, error) {
	var comment Comment
	err := retryWithBackoff(ctx, func() error {
		output, err := c.runner.Run(ctx, "gh",
			"api", fmt.Sprintf("repos/%s/issues/comments/%d", repo, id),
		)
		if err != nil {
			return fmt.Errorf("gh api get failed: %w", err)
		}

		parsed, ok := parseComment(output)
		if !ok {
			return fmt.Errorf("failed to parse comment %d", id)
		}
		comment = parsed
		return nil
	})
	return comment, err
}

// UpdateComment replaces a comment body. It is never retried.
func (c *GHClient) UpdateComment(ctx context.Context, repo string, id int64, body string) error {
	_, err := c.runner.Run(ctx, "gh",
		"api", "-X", "PATCH",
		fmt.Sprintf("repos/%s/issues/comments/%d", repo, id),
		"-f", "body="+body,
	)
	if err != nil {
		return fmt.Errorf("gh api update failed: %w", err)
	}
	return nil
}

// parseCommentLines decodes one comment per line. Lines that are not a JSON
// object with a numeric id and a string body are dropped.
func parseCommentLines(output []byte) []Comment {
	var comments []Comment
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if comment, ok := parseComment(line); ok {
			comments = append(comments, comment)
		}
	}
	return comments
}

func parseComment(raw []byte) (Comment, bool) {
	if !gjson.ValidBytes(raw) {
		return Comment{}, false
	}
	result := gjson.ParseBytes(raw)
	id := result.Get("id")
	body := result.Get("body")
	if id.Type != gjson.Number || body.Type != gjson.String {
		return Comment{}, false
	}
	return Comment{ID: id.Int(), Body: body.String()}, true
}

// MockGHClient is a mock CommentStore for testing
type MockGHClient struct {
	ListCommentsFunc  func(repo string) ([]Comment, error)
	GetCommentFunc    func(repo string, id int64) (Comment, error)
	UpdateCommentFunc func(repo string, id int64, body string) error

	// Track calls
	ListCommentsCalls []string
	GetCommentCalls   []struct {
		Repo string
		ID   int64
	}
	UpdateCommentCalls []struct {
		Repo string
		ID   int64
		Body string
	}
}

// NewMockGHClient creates a new mock gh client
func NewMockGHClient() *MockGHClient {
	return &MockGHClient{}
}

// ListComments mock implementation
func (m *MockGHClient) ListComments(ctx context.Context, repo string) ([]Comment, error) {
	m.ListCommentsCalls = append(m.ListCommentsCalls, repo)

	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(repo)
	}

	return nil, nil
}

// GetComment mock implementation
func (m *MockGHClient) GetComment(ctx context.Context, repo string, id int64) (Comment, error) {
	m.GetCommentCalls = append(m.GetCommentCalls, struct {
		Repo string
		ID   int64
	}{repo, id})

	if m.GetCommentFunc != nil {
		return m.GetCommentFunc(repo, id)
	}

	return Comment{ID: id, Body: "mock comment body"}, nil
}

// UpdateComment mock implementation
func (m *MockGHClient) UpdateComment(ctx context.Context, repo string, id int64, body string) error {
	m.UpdateCommentCalls = append(m.UpdateCommentCalls, struct {
		Repo string
		ID   int64
		Body string
	}{repo, id, body})

	if m.UpdateCommentFunc != nil {
		return m.UpdateCommentFunc(repo, id, body)
	}

	return nil
}
