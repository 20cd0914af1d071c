package github

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ThrottledStore paces comment updates through a rate limiter. Reads pass
// straight through.
type ThrottledStore struct {
	CommentStore
	limiter *rate.Limiter
}

// NewThrottledStore allows at most one update per interval. A non-positive
// interval disables throttling.
func NewThrottledStore(store CommentStore, interval time.Duration) *ThrottledStore {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &ThrottledStore{
		CommentStore: store,
		limiter:      rate.NewLimiter(limit, 1),
	}
}

// UpdateComment waits for the limiter, then updates.
func (s *ThrottledStore) UpdateComment(ctx context.Context, repo string, id int64, body string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return s.CommentStore.UpdateComment(ctx, repo, id, body)
}
