package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the tables this service owns. Statements are
// idempotent; there is no migration tooling beyond this.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY,
		title VARCHAR(256) NOT NULL,
		year VARCHAR(10),
		make VARCHAR(25),
		model VARCHAR(50),
		engine VARCHAR(60),
		transmission VARCHAR(60),
		mileage VARCHAR(100),
		passengers VARCHAR(60),
		wheelchair VARCHAR(60),
		color VARCHAR(60),
		interior_color VARCHAR(60),
		exterior_color VARCHAR(60),
		gvwr VARCHAR(60),
		vin VARCHAR(60),
		price VARCHAR(30),
		cprice VARCHAR(30),
		location VARCHAR(30),
		us_region VARCHAR(10) DEFAULT 'OTHER',
		airconditioning VARCHAR(10),
		description TEXT,
		source VARCHAR(100),
		source_url VARCHAR(1000) NOT NULL,
		published BOOLEAN DEFAULT TRUE,
		scraped BOOLEAN DEFAULT TRUE,
		draft BOOLEAN DEFAULT FALSE,
		scraped_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_source_url ON vehicles (source_url)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_vin ON vehicles (vin)`,
	`CREATE TABLE IF NOT EXISTS vehicle_overview (
		id UUID PRIMARY KEY,
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		main_description TEXT,
		interior_description TEXT,
		exterior_description TEXT,
		features TEXT,
		specs TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_overview_vehicle_id ON vehicle_overview (vehicle_id)`,
	`CREATE TABLE IF NOT EXISTS vehicle_images (
		id UUID PRIMARY KEY,
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		name VARCHAR(100),
		url VARCHAR(1000) NOT NULL,
		description VARCHAR(256),
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_images_vehicle_id ON vehicle_images (vehicle_id)`,
	`CREATE TABLE IF NOT EXISTS scrape_jobs (
		id UUID PRIMARY KEY,
		seed_url VARCHAR(1000),
		custom_urls TEXT[],
		max_pages INTEGER NOT NULL DEFAULT 0,
		listing_limit INTEGER NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		listings_found INTEGER NOT NULL DEFAULT 0,
		listings_stored INTEGER NOT NULL DEFAULT 0,
		listings_skipped INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scrape_jobs_status ON scrape_jobs (status)`,
	`CREATE TABLE IF NOT EXISTS outbox_event (
		id UUID PRIMARY KEY,
		aggregate_type VARCHAR(50) NOT NULL,
		aggregate_id VARCHAR(100) NOT NULL,
		event_type VARCHAR(50) NOT NULL,
		payload JSONB NOT NULL,
		target_stream VARCHAR(100) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		retry_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ,
		next_retry_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_event_status ON outbox_event (status, next_retry_at)`,
}

// EnsureSchema creates any missing tables and indexes.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
