package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/buslane/bus-scraper/internal/browser"
	"github.com/buslane/bus-scraper/internal/throttle"
)

// BrowserFetcher fetches through a single long-lived browser session and
// returns the rendered document source. It takes ownership of the session;
// Close tears it down.
type BrowserFetcher struct {
	browser *browser.Browser
	page    playwright.Page
	limiter *throttle.Limiter
	opts    *Options
	logger  *slog.Logger
}

func NewBrowserFetcher(b *browser.Browser, opts *Options) (*BrowserFetcher, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	page, err := b.NewPage()
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserFetcher{
		browser: b,
		page:    page,
		limiter: throttle.New(opts.RequestDelay),
		opts:    opts,
		logger:  slog.Default().With("component", "browser_fetcher"),
	}, nil
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*RawPage, error) {
	return withRetry(ctx, f.logger, f.opts.MaxRetries, f.opts.RetryDelay, url, func() (*RawPage, error) {
		page, err := f.fetchOnce(ctx, url)
		if werr := f.limiter.Wait(ctx); werr != nil {
			return nil, werr
		}
		return page, err
	})
}

func (f *BrowserFetcher) fetchOnce(ctx context.Context, url string) (*RawPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := f.browser.Navigate(f.page, url, f.opts.SettleDelay); err != nil {
		return nil, err
	}

	html, err := f.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}

	return &RawPage{
		URL:       url,
		HTML:      html,
		Method:    MethodBrowser,
		FetchedAt: time.Now(),
	}, nil
}

func (f *BrowserFetcher) Close() error {
	if f.page != nil {
		f.page.Close()
	}
	return f.browser.Close()
}
