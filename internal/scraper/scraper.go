// Package scraper drives the listing pipeline: discover detail URLs from
// inventory pages, fetch and parse each listing, and collect the records.
package scraper

import (
	"errors"
	"log/slog"

	"github.com/buslane/bus-scraper/internal/fetch"
	"github.com/buslane/bus-scraper/internal/parser"
)

var (
	ErrNoListingsFound = errors.New("no listings found")
	ErrNoSeedURL       = errors.New("no seed URL configured")
)

// Options configures a scraper run.
type Options struct {
	// BaseURL is the inventory page discovery starts from.
	BaseURL string
	// PaginationPattern is an fmt verb pattern appended as a query string
	// for pages past the first, e.g. "page=%d".
	PaginationPattern string
	// MinListings stops pagination early once this many unique detail
	// URLs have accumulated.
	MinListings int
	// MaxPages bounds how many inventory pages are fetched.
	MaxPages int
	// FollowDepth is how many link-following levels discovery runs. Most
	// sites link detail pages directly (depth 1); sites whose inventory
	// index links to category pages need depth 2.
	FollowDepth int
}

func DefaultOptions() Options {
	return Options{
		PaginationPattern: "page=%d",
		MinListings:       30,
		MaxPages:          10,
		FollowDepth:       1,
	}
}

// Scraper owns the fetcher session for the duration of a run. It is not
// safe for concurrent use; the pipeline is strictly sequential.
type Scraper struct {
	fetcher  fetch.Fetcher
	registry *parser.Registry
	opts     Options
	logger   *slog.Logger
}

func New(fetcher fetch.Fetcher, registry *parser.Registry, opts Options) *Scraper {
	if opts.PaginationPattern == "" {
		opts.PaginationPattern = "page=%d"
	}
	if opts.FollowDepth < 1 {
		opts.FollowDepth = 1
	}
	return &Scraper{
		fetcher:  fetcher,
		registry: registry,
		opts:     opts,
		logger:   slog.Default().With("component", "scraper"),
	}
}

// Close releases the fetcher and whatever session it holds. Safe to call
// after a failed run.
func (s *Scraper) Close() error {
	return s.fetcher.Close()
}
