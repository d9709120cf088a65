package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/buslane/bus-scraper/internal/api"
	"github.com/buslane/bus-scraper/internal/browser"
	"github.com/buslane/bus-scraper/internal/config"
	"github.com/buslane/bus-scraper/internal/database"
	"github.com/buslane/bus-scraper/internal/events"
	"github.com/buslane/bus-scraper/internal/fetch"
	"github.com/buslane/bus-scraper/internal/jobs"
	"github.com/buslane/bus-scraper/internal/parser"
	"github.com/buslane/bus-scraper/internal/scraper"
	"github.com/buslane/bus-scraper/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "YAML config file overlaid on environment config")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *configFile != "" {
		if err := cfg.ApplyFile(*configFile); err != nil {
			logger.New("info", "json").Error("failed to apply config file", "error", err)
			os.Exit(1)
		}
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database connection
	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		MaxConns: 10,
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Redis client for the outbox relay
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	relay := database.NewRelay(db, redisClient, log, database.RelayConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
	})
	go func() {
		if err := relay.Start(ctx); err != nil && err != context.Canceled {
			log.Error("relay stopped with error", "error", err)
		}
	}()

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		log.Error("failed to build fetcher", "error", err)
		os.Exit(1)
	}

	s := scraper.New(fetcher, parser.NewRegistry(), scraper.Options{
		BaseURL:           cfg.Scraper.BaseURL,
		PaginationPattern: cfg.Scraper.PaginationPattern,
		MinListings:       cfg.Scraper.MinListings,
		MaxPages:          cfg.Scraper.MaxPages,
		FollowDepth:       cfg.Scraper.FollowDepth,
	})
	defer s.Close()

	publisher := events.NewPublisher(db, log)
	jobManager := jobs.NewManager(db, s, publisher, log)
	go jobManager.StartWorker(ctx)

	handlers := api.NewHandlers(jobManager, database.NewVehicleStore(db), log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		pendingCount, _ := relay.GetPendingCount(r.Context())
		deadLetterCount, _ := relay.GetDeadLetterCount(r.Context())

		health := map[string]interface{}{
			"status": "ok",
			"outbox": map[string]interface{}{
				"pending":     pendingCount,
				"dead_letter": deadLetterCount,
			},
		}

		status := http.StatusOK
		if pendingCount > 1000 {
			health["status"] = "warning"
			health["message"] = "High number of pending outbox events"
		}
		if deadLetterCount > 100 {
			health["status"] = "error"
			health["message"] = "High number of dead letter events"
			status = http.StatusServiceUnavailable
		}

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jobs", handlers.CreateJob)
		r.Get("/jobs", handlers.ListJobs)
		r.Get("/jobs/{jobID}", handlers.GetJob)
		r.Get("/vehicles", handlers.ListVehicles)
		r.Get("/vehicles/{vehicleID}", handlers.GetVehicle)
		r.Get("/stats", handlers.GetStats)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

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
