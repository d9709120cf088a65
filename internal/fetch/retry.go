package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// withRetry runs fn up to maxRetries times with a single fixed delay between
// attempts. Each failure is logged; the final attempt's error is returned
// wrapped in ErrFetchFailed.
func withRetry(ctx context.Context, logger *slog.Logger, maxRetries int, delay time.Duration, url string, fn func() (*RawPage, error)) (*RawPage, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		page, err := fn()
		if err == nil {
			return page, nil
		}

		lastErr = err
		logger.Warn("fetch attempt failed",
			"url", url,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err)
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrFetchFailed, url, maxRetries, lastErr)
}
