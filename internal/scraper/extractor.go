package scraper

import (
	"context"

	"github.com/buslane/bus-scraper/internal/models"
)

// Status classifies what happened to a single listing URL.
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Result is the outcome of scraping one listing URL. Failed results carry
// the error that caused them; empty results parsed fine but yielded no
// usable data.
type Result struct {
	URL    string
	Status Status
	Record *models.ListingRecord
	Err    error
}

// ScrapeListing fetches and parses a single listing page. Fetch and parse
// failures never propagate: they are logged and folded into the result so
// one bad listing cannot end a run.
func (s *Scraper) ScrapeListing(ctx context.Context, url string) Result {
	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Error("listing fetch failed", "url", url, "error", err)
		return Result{URL: url, Status: StatusFailed, Err: err}
	}

	p := s.registry.Lookup(url)
	rec, err := p.ParseListing(raw.HTML, url)
	if err != nil {
		s.logger.Error("listing parse failed", "url", url, "error", err)
		return Result{URL: url, Status: StatusFailed, Err: err}
	}

	if rec == nil || rec.IsEmpty() {
		s.logger.Warn("listing yielded no data", "url", url)
		return Result{URL: url, Status: StatusEmpty}
	}

	return Result{URL: url, Status: StatusOK, Record: rec}
}
