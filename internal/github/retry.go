package github

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Retry configuration for read operations. Updates are never retried.
var (
	defaultMaxRetries   = 3
	defaultInitialDelay = 1 * time.Second
)

// retryWithBackoff executes a function with exponential backoff retry
func retryWithBackoff(ctx context.Context, fn func() error) error {
	return retryWithBackoffCustom(ctx, defaultMaxRetries, defaultInitialDelay, fn)
}

// retryWithBackoffCustom allows custom retry configuration
func retryWithBackoffCustom(ctx context.Context, maxRetries int, initialDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying", "attempt", attempt+1, "max", maxRetries+1, "delay", delay)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}

		lastErr = fn()
		if lastErr == nil {
			if attempt > 0 {
				slog.Info("retry succeeded", "attempt", attempt+1)
			}
			return nil
		}

		if ctx.Err() != nil {
			return lastErr
		}

		if !isRetryableError(lastErr) {
			return lastErr
		}

		if attempt < maxRetries {
			slog.Warn("retryable error", "attempt", attempt+1, "max", maxRetries+1, "err", lastErr)
		}
	}

	slog.Error("all attempts failed", "attempts", maxRetries+1, "err", lastErr)
	return lastErr
}

// isRetryableError determines if an error should trigger a retry
// Returns true for transient network errors, false for permanent errors
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"eof",
		"timeout",
		"connection refused",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"502 bad gateway",
		"503 service unavailable",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
