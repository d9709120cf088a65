package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/buslane/bus-scraper/internal/database"
	"github.com/buslane/bus-scraper/internal/events"
	"github.com/buslane/bus-scraper/internal/scraper"
)

var ErrJobNotFound = errors.New("job not found")

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Manager creates scrape jobs and runs them through the scraper.
type Manager struct {
	db        *database.DB
	store     *database.VehicleStore
	scraper   *scraper.Scraper
	publisher *events.Publisher
	logger    *slog.Logger
}

func NewManager(db *database.DB, s *scraper.Scraper, publisher *events.Publisher, logger *slog.Logger) *Manager {
	return &Manager{
		db:        db,
		store:     database.NewVehicleStore(db),
		scraper:   s,
		publisher: publisher,
		logger:    logger.With("component", "job_manager"),
	}
}

// Job represents one scraping run request and its progress.
type Job struct {
	ID              uuid.UUID  `json:"id"`
	SeedURL         string     `json:"seed_url,omitempty"`
	CustomURLs      []string   `json:"custom_urls,omitempty"`
	MaxPages        int        `json:"max_pages"`
	Limit           int        `json:"limit"`
	Status          string     `json:"status"`
	ListingsFound   int        `json:"listings_found"`
	ListingsStored  int        `json:"listings_stored"`
	ListingsSkipped int        `json:"listings_skipped"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// CreateJobRequest carries the caller-supplied job parameters.
type CreateJobRequest struct {
	SeedURL    string   `json:"seed_url"`
	CustomURLs []string `json:"custom_urls"`
	MaxPages   int      `json:"max_pages"`
	Limit      int      `json:"limit"`
}

// Stats summarizes jobs and stored vehicles.
type Stats struct {
	TotalJobs     int     `json:"total_jobs"`
	PendingJobs   int     `json:"pending_jobs"`
	RunningJobs   int     `json:"running_jobs"`
	CompletedJobs int     `json:"completed_jobs"`
	FailedJobs    int     `json:"failed_jobs"`
	TotalVehicles int64   `json:"total_vehicles"`
	SuccessRate   float64 `json:"success_rate"`
}

// CreateJob queues a new scraping job.
func (m *Manager) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	if req.SeedURL == "" && len(req.CustomURLs) == 0 {
		return nil, fmt.Errorf("job needs a seed URL or custom URLs")
	}

	job := &Job{
		ID:         uuid.New(),
		SeedURL:    req.SeedURL,
		CustomURLs: req.CustomURLs,
		MaxPages:   req.MaxPages,
		Limit:      req.Limit,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	query := `
		INSERT INTO scrape_jobs
		(id, seed_url, custom_urls, max_pages, listing_limit, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := m.db.Exec(ctx, query,
		job.ID, job.SeedURL, job.CustomURLs, job.MaxPages, job.Limit, job.Status, job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	m.logger.Info("job created", "id", job.ID, "seed_url", job.SeedURL, "custom_urls", len(job.CustomURLs))
	return job, nil
}

const jobColumns = `
	id, seed_url, custom_urls, max_pages, listing_limit, status,
	listings_found, listings_stored, listings_skipped,
	error_message, created_at, started_at, finished_at`

// GetJob retrieves a job by ID
func (m *Manager) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	row := m.db.QueryRow(ctx,
		"SELECT"+jobColumns+" FROM scrape_jobs WHERE id = $1", jobID)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs lists recent jobs, newest first.
func (m *Manager) ListJobs(ctx context.Context) ([]*Job, error) {
	rows, err := m.db.Query(ctx,
		"SELECT"+jobColumns+" FROM scrape_jobs ORDER BY created_at DESC LIMIT 100")
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return jobs, nil
}

// GetStats retrieves job and vehicle statistics
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	query := `
		SELECT
			COUNT(*) as total_jobs,
			COUNT(CASE WHEN status = 'pending' THEN 1 END) as pending_jobs,
			COUNT(CASE WHEN status = 'running' THEN 1 END) as running_jobs,
			COUNT(CASE WHEN status = 'completed' THEN 1 END) as completed_jobs,
			COUNT(CASE WHEN status = 'failed' THEN 1 END) as failed_jobs
		FROM scrape_jobs
	`

	err := m.db.QueryRow(ctx, query).Scan(
		&stats.TotalJobs, &stats.PendingJobs, &stats.RunningJobs,
		&stats.CompletedJobs, &stats.FailedJobs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if stats.TotalJobs > 0 {
		stats.SuccessRate = float64(stats.CompletedJobs) / float64(stats.TotalJobs) * 100
	}

	total, err := m.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalVehicles = total

	return stats, nil
}

func scanJob(row pgx.Row) (*Job, error) {
	job := &Job{}
	var errMsg *string
	err := row.Scan(
		&job.ID, &job.SeedURL, &job.CustomURLs, &job.MaxPages, &job.Limit, &job.Status,
		&job.ListingsFound, &job.ListingsStored, &job.ListingsSkipped,
		&errMsg, &job.CreatedAt, &job.StartedAt, &job.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	if errMsg != nil {
		job.Error = *errMsg
	}
	return job, nil
}

// updateJobStatus updates the status of a job
func (m *Manager) updateJobStatus(ctx context.Context, jobID uuid.UUID, status string, jobErr error) error {
	now := time.Now()

	var query string
	var args []interface{}

	switch {
	case status == StatusRunning:
		query = `UPDATE scrape_jobs SET status = $1, started_at = $2 WHERE id = $3`
		args = []interface{}{status, now, jobID}
	case status == StatusFailed && jobErr != nil:
		query = `UPDATE scrape_jobs SET status = $1, finished_at = $2, error_message = $3 WHERE id = $4`
		args = []interface{}{status, now, jobErr.Error(), jobID}
	case status == StatusCompleted:
		query = `UPDATE scrape_jobs SET status = $1, finished_at = $2 WHERE id = $3`
		args = []interface{}{status, now, jobID}
	default:
		query = `UPDATE scrape_jobs SET status = $1 WHERE id = $2`
		args = []interface{}{status, jobID}
	}

	_, execErr := m.db.Exec(ctx, query, args...)
	return execErr
}

// updateJobProgress updates job progress counters
func (m *Manager) updateJobProgress(ctx context.Context, jobID uuid.UUID, found, stored, skipped int) error {
	query := `
		UPDATE scrape_jobs
		SET listings_found = $1, listings_stored = $2, listings_skipped = $3
		WHERE id = $4
	`
	_, err := m.db.Exec(ctx, query, found, stored, skipped, jobID)
	return err
}
