package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/buslane/bus-scraper/internal/events"
	"github.com/buslane/bus-scraper/internal/models"
	"github.com/buslane/bus-scraper/internal/scraper"
	"github.com/buslane/bus-scraper/internal/validate"
)

// StartWorker polls for pending jobs and runs them one at a time. Jobs are
// never run concurrently: the scraper's fetcher session is sequential.
func (m *Manager) StartWorker(ctx context.Context) {
	m.logger.Info("job worker started")

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("job worker stopping")
			return
		case <-ticker.C:
			m.processNextJob(ctx)
		}
	}
}

// claimNextJob picks the oldest pending job and flips it to running, using
// FOR UPDATE SKIP LOCKED inside a transaction so multiple server instances
// never claim the same job.
func (m *Manager) claimNextJob(ctx context.Context) (*Job, bool) {
	var job *Job
	err := m.db.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT`+jobColumns+`
			FROM scrape_jobs
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED`)

		claimed, err := scanJob(row)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE scrape_jobs SET status = $1, started_at = $2 WHERE id = $3`,
			StatusRunning, time.Now(), claimed.ID)
		if err != nil {
			return err
		}

		job = claimed
		return nil
	})
	if err != nil {
		if !queueEmpty(err) {
			m.logger.Error("failed to claim job", "error", err)
		}
		return nil, false
	}
	return job, true
}

// queueEmpty reports whether a claim failure just means no pending jobs.
func queueEmpty(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// processNextJob claims and runs the next pending job, if any.
func (m *Manager) processNextJob(ctx context.Context) {
	job, ok := m.claimNextJob(ctx)
	if !ok {
		return
	}

	m.logger.Info("processing job", "id", job.ID, "seed_url", job.SeedURL)

	if err := m.runJob(ctx, job); err != nil {
		m.logger.Error("job failed", "id", job.ID, "error", err)
		if updateErr := m.updateJobStatus(ctx, job.ID, StatusFailed, err); updateErr != nil {
			m.logger.Error("failed to mark job as failed", "id", job.ID, "error", updateErr)
		}
		return
	}

	if err := m.updateJobStatus(ctx, job.ID, StatusCompleted, nil); err != nil {
		m.logger.Error("failed to mark job as completed", "id", job.ID, "error", err)
	}

	m.logger.Info("job completed", "id", job.ID)
}

// runJob executes the pipeline for one job and stores the results.
func (m *Manager) runJob(ctx context.Context, job *Job) error {
	records, summary := m.scraper.ScrapeAllListings(ctx, scraper.RunOptions{
		SeedURL:    job.SeedURL,
		CustomURLs: job.CustomURLs,
		Limit:      job.Limit,
		MaxPages:   job.MaxPages,
	})
	if summary.Err != nil {
		return summary.Err
	}

	stored, skipped := 0, 0
	for i := range records {
		rec := &records[i]

		validate.Clean(rec)
		if problems := validate.Validate(rec); len(problems) > 0 {
			m.logger.Warn("skipping invalid listing",
				"url", rec.Vehicle.SourceURL, "problems", problems)
			skipped++
			continue
		}

		inserted, err := m.storeListing(ctx, rec)
		if err != nil {
			m.logger.Error("failed to store listing",
				"url", rec.Vehicle.SourceURL, "error", err)
			skipped++
			continue
		}
		if inserted {
			stored++
		} else {
			skipped++
		}

		if err := m.updateJobProgress(ctx, job.ID, summary.URLs, stored, skipped); err != nil {
			m.logger.Error("failed to update progress", "id", job.ID, "error", err)
		}
	}

	if err := m.updateJobProgress(ctx, job.ID, summary.URLs, stored, skipped); err != nil {
		m.logger.Error("failed to update progress", "id", job.ID, "error", err)
	}

	m.logger.Info("job processing complete",
		"id", job.ID, "found", summary.URLs, "stored", stored, "skipped", skipped)
	return nil
}

// storeListing inserts one record and publishes the VEHICLE_LISTED event
// in the same transaction.
func (m *Manager) storeListing(ctx context.Context, rec *models.ListingRecord) (bool, error) {
	_, inserted, err := m.store.InsertListing(ctx, rec, func(tx pgx.Tx, vehicleID uuid.UUID) error {
		payload := events.NewVehicleListedPayload(vehicleID, rec)
		return m.publisher.PublishVehicleListedTx(ctx, tx, payload)
	})
	return inserted, err
}
