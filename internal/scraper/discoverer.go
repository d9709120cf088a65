package scraper

import (
	"context"
	"fmt"
)

// DiscoverURLs walks the paginated inventory starting at seed and returns
// the unique detail URLs found, insertion order preserved. Pagination stops
// when maxPages pages have been fetched, when the accumulated count reaches
// MinListings, when a page yields no links, or when a fetch fails —
// whatever was accumulated so far is always returned.
func (s *Scraper) DiscoverURLs(ctx context.Context, seed string, maxPages int) []string {
	if maxPages <= 0 {
		maxPages = s.opts.MaxPages
	}

	urls := make([]string, 0)
	seen := make(map[string]struct{})

	for page := 1; page <= maxPages; page++ {
		pageURL := seed
		if page > 1 {
			pageURL = seed + "?" + fmt.Sprintf(s.opts.PaginationPattern, page)
		}

		s.logger.Info("fetching inventory page", "page", page, "url", pageURL)

		links, err := s.listingLinks(ctx, pageURL, s.opts.FollowDepth)
		if err != nil {
			s.logger.Error("inventory page fetch failed, stopping pagination",
				"page", page, "url", pageURL, "error", err)
			break
		}
		if len(links) == 0 {
			s.logger.Warn("no listings on page, assuming last page", "page", page, "url", pageURL)
			break
		}

		for _, link := range links {
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			urls = append(urls, link)
		}

		s.logger.Info("inventory page processed", "page", page, "found", len(links), "total", len(urls))

		if s.opts.MinListings > 0 && len(urls) >= s.opts.MinListings {
			s.logger.Info("minimum listing count reached", "total", len(urls), "min", s.opts.MinListings)
			break
		}
	}

	if len(urls) == 0 {
		s.logger.Warn("discovery found no listings", "seed", seed)
	}
	return urls
}

// listingLinks fetches pageURL and extracts its listing links. With depth
// above 1 the extracted links are treated as intermediate category pages
// and followed one more level; a failed or empty intermediate page is
// skipped rather than aborting the whole page.
func (s *Scraper) listingLinks(ctx context.Context, pageURL string, depth int) ([]string, error) {
	raw, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	p := s.registry.Lookup(pageURL)
	links, err := p.ParseListingPage(raw.HTML, pageURL)
	if err != nil {
		return nil, err
	}

	if depth <= 1 {
		return links, nil
	}

	urls := make([]string, 0)
	seen := make(map[string]struct{})
	for _, link := range links {
		children, err := s.listingLinks(ctx, link, depth-1)
		if err != nil {
			s.logger.Warn("category page fetch failed, skipping", "url", link, "error", err)
			continue
		}
		for _, child := range children {
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			urls = append(urls, child)
		}
	}
	return urls, nil
}
