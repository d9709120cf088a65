package fetch

import (
	"context"
	"errors"
	"time"
)

var (
	ErrFetchFailed = errors.New("fetch failed")
	ErrBadStatus   = errors.New("unexpected response status")
)

// Method records how a page body was obtained.
type Method string

const (
	MethodHTTP    Method = "http"
	MethodBrowser Method = "browser"
)

// RawPage is a fetched HTML body plus the URL it came from. Discarded after
// parsing.
type RawPage struct {
	URL       string
	HTML      string
	Method    Method
	FetchedAt time.Time
}

// Fetcher retrieves raw HTML for a URL. Implementations throttle themselves:
// every Fetch, successful or not, sleeps the configured request delay before
// returning.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*RawPage, error)
	Close() error
}

type Options struct {
	Timeout      time.Duration
	RequestDelay time.Duration
	RetryDelay   time.Duration
	SettleDelay  time.Duration
	MaxRetries   int
	UserAgent    string
}

func DefaultOptions() *Options {
	return &Options{
		Timeout:      30 * time.Second,
		RequestDelay: 10 * time.Second,
		RetryDelay:   5 * time.Second,
		SettleDelay:  10 * time.Second,
		MaxRetries:   3,
	}
}
