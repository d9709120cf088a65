package throttle

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces the fixed inter-request delay between fetches. Every
// fetch, successful or not, waits the full delay before returning control.
type Limiter struct {
	delay time.Duration
	mu    sync.Mutex
}

func New(delay time.Duration) *Limiter {
	return &Limiter{delay: delay}
}

// Wait sleeps the configured delay, or returns early if ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	delay := l.delay
	l.mu.Unlock()

	if delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (l *Limiter) SetDelay(delay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.delay = delay
}

func (l *Limiter) Delay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delay
}
