package github

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestParseCommentLines(t *testing.T) {
	output := strings.Join([]string{
		`{"id":1,"body":"first"}`,
		``,
		`not json at all`,
		`{"id":"2","body":"string id"}`,
		`{"id":3,"body":null}`,
		`{"id":4,"body":"multi\nline [*daFlute*]"}`,
		`{"body":"missing id"}`,
		`{"id":5,"body":""}`,
	}, "\n")

	got := parseCommentLines([]byte(output))
	want := []Comment{
		{ID: 1, Body: "first"},
		{ID: 4, Body: "multi\nline [*daFlute*]"},
		{ID: 5, Body: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseCommentLines() = %+v, want %+v", got, want)
	}
}

func TestGHClient_ListComments(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.RunFunc = func(name string, args ...string) ([]byte, error) {
		return []byte("{\"id\":10,\"body\":\"a\"}\n{\"id\":11,\"body\":\"b\"}\n"), nil
	}
	client := NewGHClientWithRunner(runner)

	comments, err := client.ListComments(context.Background(), "owner/repo")
	if err != nil {
		t.Fatalf("ListComments() error: %v", err)
	}
	if len(comments) != 2 || comments[0].ID != 10 || comments[1].Body != "b" {
		t.Errorf("ListComments() = %+v", comments)
	}

	wantArgs := []string{"api", "repos/owner/repo/issues/comments", "--paginate", "--jq", commentsJQ}
	if len(runner.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(runner.Calls))
	}
	if runner.Calls[0].Name != "gh" || !reflect.DeepEqual(runner.Calls[0].Args, wantArgs) {
		t.Errorf("call = %s %v, want gh %v", runner.Calls[0].Name, runner.Calls[0].Args, wantArgs)
	}
}

func TestGHClient_ListComments_InvalidRepo(t *testing.T) {
	runner := NewMockCommandRunner()
	client := NewGHClientWithRunner(runner)

	if _, err := client.ListComments(context.Background(), "not-a-repo"); err == nil {
		t.Fatal("expected error for invalid repo")
	}
	if len(runner.Calls) != 0 {
		t.Errorf("gh should not be invoked, got %d calls", len(runner.Calls))
	}
}

func TestGHClient_ListComments_Failure(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.RunFunc = func(name string, args ...string) ([]byte, error) {
		return nil, &CommandError{Name: name, Err: errors.New("exit status 1"), Stderr: "HTTP 404: Not Found"}
	}
	client := NewGHClientWithRunner(runner)

	_, err := client.ListComments(context.Background(), "owner/repo")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("error = %v, want stderr included", err)
	}
	if len(runner.Calls) != 1 {
		t.Errorf("non-retryable error should not be retried, got %d calls", len(runner.Calls))
	}
}

func TestGHClient_GetComment(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.RunFunc = func(name string, args ...string) ([]byte, error) {
		return []byte(`{"id":77,"body":"hello","user":{"login":"x"}}`), nil
	}
	client := NewGHClientWithRunner(runner)

	comment, err := client.GetComment(context.Background(), "owner/repo", 77)
	if err != nil {
		t.Fatalf("GetComment() error: %v", err)
	}
	if comment.ID != 77 || comment.Body != "hello" {
		t.Errorf("GetComment() = %+v", comment)
	}
	if got := runner.Calls[0].Args[1]; got != "repos/owner/repo/issues/comments/77" {
		t.Errorf("path = %q", got)
	}
}

func TestGHClient_UpdateComment(t *testing.T) {
	runner := NewMockCommandRunner()
	client := NewGHClientWithRunner(runner)

	body := "Hello\n\n— 🎭📜 [*daFlute*](https://example.com/daFlute)"
	if err := client.UpdateComment(context.Background(), "owner/repo", 42, body); err != nil {
		t.Fatalf("UpdateComment() error: %v", err)
	}

	want := []string{"api", "-X", "PATCH", "repos/owner/repo/issues/comments/42", "-f", "body=" + body}
	if !reflect.DeepEqual(runner.Calls[0].Args, want) {
		t.Errorf("args = %q, want %q", runner.Calls[0].Args, want)
	}
}

func TestGHClient_UpdateComment_NotRetried(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.RunFunc = func(name string, args ...string) ([]byte, error) {
		return nil, fmt.Errorf("connection reset by peer")
	}
	client := NewGHClientWithRunner(runner)

	err := client.UpdateComment(context.Background(), "owner/repo", 42, "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "gh api update failed") {
		t.Errorf("error = %v", err)
	}
	if len(runner.Calls) != 1 {
		t.Errorf("updates must not be retried, got %d calls", len(runner.Calls))
	}
}

func TestNewGHClient_Token(t *testing.T) {
	client := NewGHClient("tok")
	runner, ok := client.runner.(*RealCommandRunner)
	if !ok {
		t.Fatalf("runner type = %T", client.runner)
	}
	if !reflect.DeepEqual(runner.Env, []string{"GH_TOKEN=tok"}) {
		t.Errorf("Env = %v", runner.Env)
	}

	client = NewGHClient("")
	if env := client.runner.(*RealCommandRunner).Env; len(env) != 0 {
		t.Errorf("Env = %v, want empty", env)
	}
}

func TestMockGHClient_TracksCalls(t *testing.T) {
	mock := NewMockGHClient()
	mock.UpdateCommentFunc = func(repo string, id int64, body string) error {
		if id == 999 {
			return fmt.Errorf("comment not found")
		}
		return nil
	}

	ctx := context.Background()
	if err := mock.UpdateComment(ctx, "owner/repo", 1, "body"); err != nil {
		t.Errorf("UpdateComment() unexpected error: %v", err)
	}
	if err := mock.UpdateComment(ctx, "owner/repo", 999, "body"); err == nil {
		t.Error("UpdateComment() should return error for comment 999")
	}
	if _, err := mock.ListComments(ctx, "owner/repo"); err != nil {
		t.Errorf("ListComments() unexpected error: %v", err)
	}
	c, _ := mock.GetComment(ctx, "owner/repo", 5)
	if c.ID != 5 {
		t.Errorf("GetComment() id = %d, want 5", c.ID)
	}

	if len(mock.UpdateCommentCalls) != 2 || len(mock.ListCommentsCalls) != 1 || len(mock.GetCommentCalls) != 1 {
		t.Errorf("unexpected call tracking: %d/%d/%d", len(mock.UpdateCommentCalls), len(mock.ListCommentsCalls), len(mock.GetCommentCalls))
	}
}
