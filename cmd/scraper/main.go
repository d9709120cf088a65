package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/buslane/bus-scraper/internal/browser"
	"github.com/buslane/bus-scraper/internal/config"
	"github.com/buslane/bus-scraper/internal/database"
	"github.com/buslane/bus-scraper/internal/fetch"
	"github.com/buslane/bus-scraper/internal/models"
	"github.com/buslane/bus-scraper/internal/parser"
	"github.com/buslane/bus-scraper/internal/scraper"
	"github.com/buslane/bus-scraper/internal/storage"
	"github.com/buslane/bus-scraper/internal/validate"
	"github.com/buslane/bus-scraper/pkg/logger"
)

func main() {
	var (
		urlList    = flag.String("urls", "", "comma-separated listing URLs to scrape (bypasses discovery)")
		urlFile    = flag.String("url-file", "", "file with one listing URL per line (bypasses discovery)")
		useBrowser = flag.Bool("browser", false, "fetch pages with the headless browser instead of plain HTTP")
		limit      = flag.Int("limit", 0, "maximum number of listings to scrape (0 = no limit)")
		maxPages   = flag.Int("pages", 0, "maximum inventory pages to paginate (0 = configured default)")
		configFile = flag.String("config", "", "YAML config file overlaid on environment config")
		outputDir  = flag.String("output", "", "directory for the JSON dump and report")
		persist    = flag.Bool("db", false, "persist results to Postgres")
		headless   = flag.Bool("headless", true, "run the browser headless")
	)
	flag.Parse()

	if *urlList != "" && *urlFile != "" {
		fmt.Fprintln(os.Stderr, "-urls and -url-file are mutually exclusive")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if *configFile != "" {
		if err := cfg.ApplyFile(*configFile); err != nil {
			fmt.Fprintln(os.Stderr, "failed to apply config file:", err)
			os.Exit(1)
		}
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *useBrowser {
		cfg.Scraper.UseBrowser = true
	}
	cfg.Browser.Headless = *headless
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, runParams{
		urls:     splitURLs(*urlList),
		urlFile:  *urlFile,
		limit:    *limit,
		maxPages: *maxPages,
		persist:  *persist,
	}); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type runParams struct {
	urls     []string
	urlFile  string
	limit    int
	maxPages int
	persist  bool
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, params runParams) error {
	fetcher, err := buildFetcher(cfg)
	if err != nil {
		return fmt.Errorf("failed to build fetcher: %w", err)
	}

	s := scraper.New(fetcher, parser.NewRegistry(), scraper.Options{
		BaseURL:           cfg.Scraper.BaseURL,
		PaginationPattern: cfg.Scraper.PaginationPattern,
		MinListings:       cfg.Scraper.MinListings,
		MaxPages:          cfg.Scraper.MaxPages,
		FollowDepth:       cfg.Scraper.FollowDepth,
	})
	defer func() {
		if err := s.Close(); err != nil {
			log.Error("failed to close scraper", "error", err)
		}
	}()

	opts := scraper.RunOptions{
		CustomURLs: params.urls,
		Limit:      params.limit,
		MaxPages:   params.maxPages,
	}

	var (
		records []models.ListingRecord
		summary scraper.RunSummary
	)
	if params.urlFile != "" {
		records, summary = s.ScrapeFromFile(ctx, params.urlFile, opts)
	} else {
		records, summary = s.ScrapeAllListings(ctx, opts)
	}
	if summary.Err != nil {
		return summary.Err
	}

	valid := make([]models.ListingRecord, 0, len(records))
	invalid := 0
	for i := range records {
		rec := &records[i]
		validate.Clean(rec)
		if problems := validate.Validate(rec); len(problems) > 0 {
			log.Warn("dropping invalid listing", "url", rec.Vehicle.SourceURL, "problems", problems)
			invalid++
			continue
		}
		valid = append(valid, *rec)
	}

	writer, err := storage.NewWriter(cfg.Output.Dir)
	if err != nil {
		return err
	}

	dumpPath, err := writer.SaveListings(valid)
	if err != nil {
		return err
	}
	log.Info("listings saved", "path", dumpPath, "count", len(valid))

	stored, skipped := len(valid), invalid
	if params.persist {
		var dupes int
		stored, dupes, err = persistListings(ctx, cfg, log, valid)
		if err != nil {
			return err
		}
		skipped += dupes
	}

	report := storage.NewReport(valid, summary.URLs, skipped, summary.Failed)
	report.TotalStored = stored
	reportPath, err := writer.SaveReport(report)
	if err != nil {
		return err
	}
	log.Info("report saved", "path", reportPath)

	fmt.Printf("Scraped %d URLs: %d ok, %d empty, %d failed, %d invalid, %d stored\n",
		summary.URLs, summary.OK, summary.Empty, summary.Failed, invalid, stored)
	return nil
}

// buildFetcher picks plain HTTP or the headless browser per config.
func buildFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	opts := &fetch.Options{
		Timeout:      cfg.Scraper.Timeout,
		RequestDelay: cfg.Scraper.RequestDelay,
		RetryDelay:   cfg.Scraper.RetryDelay,
		SettleDelay:  cfg.Browser.SettleDelay,
		MaxRetries:   cfg.Scraper.MaxRetries,
		UserAgent:    cfg.Scraper.UserAgent,
	}

	if !cfg.Scraper.UseBrowser {
		return fetch.NewHTTPFetcher(opts), nil
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Scraper.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		return nil, err
	}
	return fetch.NewBrowserFetcher(b, opts)
}

// persistListings stores the records, skipping rows the dedupe rules reject.
func persistListings(ctx context.Context, cfg *config.Config, log *slog.Logger, records []models.ListingRecord) (stored, skipped int, err error) {
	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		MaxConns: 5,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return 0, 0, err
	}

	store := database.NewVehicleStore(db)
	for i := range records {
		_, inserted, err := store.InsertListing(ctx, &records[i], nil)
		if err != nil {
			log.Error("failed to store listing", "url", records[i].Vehicle.SourceURL, "error", err)
			skipped++
			continue
		}
		if inserted {
			stored++
		} else {
			log.Info("duplicate listing skipped", "url", records[i].Vehicle.SourceURL)
			skipped++
		}
	}
	return stored, skipped, nil
}

func splitURLs(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}
