package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	useragent "github.com/EDDYCJY/fake-useragent"
	"github.com/go-resty/resty/v2"

	"github.com/buslane/bus-scraper/internal/throttle"
)

// HTTPFetcher retrieves pages with plain GET requests. Good enough for
// server-rendered inventory sites; JavaScript-heavy sites need BrowserFetcher.
type HTTPFetcher struct {
	client  *resty.Client
	limiter *throttle.Limiter
	opts    *Options
	logger  *slog.Logger
}

func NewHTTPFetcher(opts *Options) *HTTPFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	if jar, err := cookiejar.New(nil); err == nil {
		client.SetCookieJar(jar)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	ua := opts.UserAgent
	if ua == "" {
		ua = useragent.Chrome()
	}
	client.SetHeader("User-Agent", ua)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")

	return &HTTPFetcher{
		client:  client,
		limiter: throttle.New(opts.RequestDelay),
		opts:    opts,
		logger:  slog.Default().With("component", "http_fetcher"),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*RawPage, error) {
	return withRetry(ctx, f.logger, f.opts.MaxRetries, f.opts.RetryDelay, url, func() (*RawPage, error) {
		page, err := f.fetchOnce(ctx, url)
		// Throttle applies whether or not the request succeeded.
		if werr := f.limiter.Wait(ctx); werr != nil {
			return nil, werr
		}
		return page, err
	})
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (*RawPage, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %d for %s", ErrBadStatus, resp.StatusCode(), url)
	}

	return &RawPage{
		URL:       url,
		HTML:      string(resp.Body()),
		Method:    MethodHTTP,
		FetchedAt: time.Now(),
	}, nil
}

func (f *HTTPFetcher) Close() error {
	return nil
}
