package github

import (
	"context"
	"testing"
	"time"
)

func TestThrottledStore_PacesUpdates(t *testing.T) {
	mock := NewMockGHClient()
	store := NewThrottledStore(mock, 30*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := store.UpdateComment(ctx, "o/r", int64(i), "b"); err != nil {
			t.Fatalf("UpdateComment() error: %v", err)
		}
	}

	// Burst of one: the first update is immediate, the next two wait.
	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Errorf("updates finished in %v, expected pacing", elapsed)
	}
	if len(mock.UpdateCommentCalls) != 3 {
		t.Errorf("expected 3 updates, got %d", len(mock.UpdateCommentCalls))
	}
}

func TestThrottledStore_ReadsPassThrough(t *testing.T) {
	mock := NewMockGHClient()
	store := NewThrottledStore(mock, time.Hour)

	if _, err := store.ListComments(context.Background(), "o/r"); err != nil {
		t.Fatalf("ListComments() error: %v", err)
	}
	if len(mock.ListCommentsCalls) != 1 {
		t.Errorf("ListComments not delegated")
	}
}

func TestThrottledStore_CanceledContext(t *testing.T) {
	mock := NewMockGHClient()
	store := NewThrottledStore(mock, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	if err := store.UpdateComment(ctx, "o/r", 1, "b"); err != nil {
		t.Fatalf("first update should pass: %v", err)
	}
	cancel()

	if err := store.UpdateComment(ctx, "o/r", 2, "b"); err == nil {
		t.Fatal("expected error with canceled context")
	}
	if len(mock.UpdateCommentCalls) != 1 {
		t.Errorf("canceled update reached the store")
	}
}

func TestThrottledStore_Disabled(t *testing.T) {
	mock := NewMockGHClient()
	store := NewThrottledStore(mock, 0)

	start := time.Now()
	for i := 0; i < 10; i++ {
		_ = store.UpdateComment(context.Background(), "o/r", int64(i), "b")
	}
	if time.Since(start) > time.Second {
		t.Error("unthrottled store should not wait")
	}
}
