package scraper

import (
	"context"
	"os"
	"strings"

	"github.com/buslane/bus-scraper/internal/models"
)

// RunOptions parameterizes a single scraping run.
type RunOptions struct {
	// SeedURL overrides the configured base URL for this run.
	SeedURL string
	// CustomURLs bypasses discovery entirely; the listed URLs are scraped
	// in the given order.
	CustomURLs []string
	// Limit truncates the URL set before extraction starts. Zero means
	// no limit.
	Limit int
	// MaxPages overrides the configured pagination bound for this run.
	MaxPages int
}

// RunSummary accounts for every URL a run touched.
type RunSummary struct {
	URLs   int
	OK     int
	Empty  int
	Failed int
	Err    error
}

// ScrapeAllListings runs the full pipeline: discover (or take the custom
// URL list), then extract each listing sequentially. Only listings that
// produced data are returned; empty and failed URLs are counted in the
// summary.
func (s *Scraper) ScrapeAllListings(ctx context.Context, opts RunOptions) ([]models.ListingRecord, RunSummary) {
	var urls []string
	if len(opts.CustomURLs) > 0 {
		s.logger.Info("using custom URL list", "count", len(opts.CustomURLs))
		urls = opts.CustomURLs
	} else {
		seed := opts.SeedURL
		if seed == "" {
			seed = s.opts.BaseURL
		}
		if seed == "" {
			s.logger.Error("no seed URL configured and no custom URLs given")
			return []models.ListingRecord{}, RunSummary{Err: ErrNoSeedURL}
		}
		urls = s.DiscoverURLs(ctx, seed, opts.MaxPages)
	}

	if opts.Limit > 0 && len(urls) > opts.Limit {
		s.logger.Info("limiting run", "found", len(urls), "limit", opts.Limit)
		urls = urls[:opts.Limit]
	}

	summary := RunSummary{URLs: len(urls)}
	records := make([]models.ListingRecord, 0, len(urls))

	for i, url := range urls {
		if ctx.Err() != nil {
			s.logger.Warn("run cancelled", "processed", i, "total", len(urls))
			summary.Err = ctx.Err()
			break
		}

		result := s.ScrapeListing(ctx, url)
		switch result.Status {
		case StatusOK:
			records = append(records, *result.Record)
			summary.OK++
		case StatusEmpty:
			summary.Empty++
		case StatusFailed:
			summary.Failed++
		}

		if (i+1)%10 == 0 {
			s.logger.Info("scraping progress", "processed", i+1, "total", len(urls), "stored", len(records))
		}
	}

	s.logger.Info("run finished",
		"urls", summary.URLs, "ok", summary.OK, "empty", summary.Empty, "failed", summary.Failed)
	return records, summary
}

// ScrapeFromFile reads one URL per non-blank line from path and scrapes
// them as a custom URL list. An unreadable file is logged and yields an
// empty result rather than an error.
func (s *Scraper) ScrapeFromFile(ctx context.Context, path string, opts RunOptions) ([]models.ListingRecord, RunSummary) {
	urls, err := readURLFile(path)
	if err != nil {
		s.logger.Error("failed to read URL file", "path", path, "error", err)
		return []models.ListingRecord{}, RunSummary{Err: err}
	}
	if len(urls) == 0 {
		s.logger.Warn("URL file contains no URLs", "path", path)
		return []models.ListingRecord{}, RunSummary{}
	}

	s.logger.Info("scraping URLs from file", "path", path, "count", len(urls))
	opts.CustomURLs = urls
	return s.ScrapeAllListings(ctx, opts)
}

func readURLFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	return urls, nil
}
