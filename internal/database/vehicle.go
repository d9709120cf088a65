package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/buslane/bus-scraper/internal/models"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleStore persists scraped listings.
type VehicleStore struct {
	db *DB
}

func NewVehicleStore(db *DB) *VehicleStore {
	return &VehicleStore{db: db}
}

// Vehicle is one stored listing row.
type Vehicle struct {
	ID        uuid.UUID
	models.Vehicle
	CreatedAt time.Time
}

// InsertListing stores one listing with its overview and images in a
// single transaction, deduplicating against existing rows. A listing is
// skipped when a row with the same source URL exists — except for Daimler
// URLs, which reuse listing slots for different coaches, so only the VIN
// check applies there — or when a row carries the same non-empty VIN.
// The returned bool reports whether a row was inserted; onInsert, when
// non-nil, runs inside the same transaction (used for outbox events).
func (s *VehicleStore) InsertListing(ctx context.Context, rec *models.ListingRecord,
	onInsert func(tx pgx.Tx, vehicleID uuid.UUID) error) (uuid.UUID, bool, error) {

	var id uuid.UUID
	inserted := false

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		v := &rec.Vehicle

		if dedupeBySourceURL(v.SourceURL) {
			var existing uuid.UUID
			err := tx.QueryRow(ctx,
				"SELECT id FROM vehicles WHERE source_url = $1", v.SourceURL).Scan(&existing)
			if err == nil {
				id = existing
				return nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to check source url: %w", err)
			}
		}

		if v.VIN != "" {
			var existing uuid.UUID
			err := tx.QueryRow(ctx,
				"SELECT id FROM vehicles WHERE vin = $1", v.VIN).Scan(&existing)
			if err == nil {
				id = existing
				return nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to check vin: %w", err)
			}
		}

		id = uuid.New()
		scrapedAt := v.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = time.Now()
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO vehicles (
				id, title, year, make, model, engine, transmission, mileage,
				passengers, wheelchair, color, interior_color, exterior_color,
				gvwr, vin, price, cprice, location, us_region, airconditioning,
				description, source, source_url, published, scraped, draft, scraped_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
				$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
			)`,
			id, v.Title, v.Year, v.Make, v.Model, v.Engine, v.Transmission, v.Mileage,
			v.Passengers, v.Wheelchair, v.Color, v.InteriorColor, v.ExteriorColor,
			v.GVWR, v.VIN, v.Price, v.CPrice, v.Location, regionOrOther(v.USRegion), v.Airconditioning,
			v.Description, v.Source, v.SourceURL, v.Published, v.Scraped, v.Draft, scrapedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert vehicle: %w", err)
		}

		if !rec.Overview.IsZero() {
			o := &rec.Overview
			_, err = tx.Exec(ctx, `
				INSERT INTO vehicle_overview (
					id, vehicle_id, main_description, interior_description,
					exterior_description, features, specs
				) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				uuid.New(), id, o.MainDescription, o.InteriorDescription,
				o.ExteriorDescription, o.Features, o.Specs,
			)
			if err != nil {
				return fmt.Errorf("failed to insert overview: %w", err)
			}
		}

		for _, img := range rec.Images {
			_, err = tx.Exec(ctx, `
				INSERT INTO vehicle_images (id, vehicle_id, name, url, description, position)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				uuid.New(), id, img.Name, img.URL, img.Description, img.Index,
			)
			if err != nil {
				return fmt.Errorf("failed to insert image: %w", err)
			}
		}

		inserted = true
		if onInsert != nil {
			return onInsert(tx, id)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, inserted, nil
}

// dedupeBySourceURL reports whether the source-URL duplicate check applies
// to url. Daimler reuses listing slots for different coaches, so their URLs
// dedupe by VIN only.
func dedupeBySourceURL(url string) bool {
	return !strings.Contains(strings.ToLower(url), "daimler")
}

const vehicleColumns = `
	id, title, year, make, model, engine, transmission, mileage,
	passengers, wheelchair, color, interior_color, exterior_color,
	gvwr, vin, price, cprice, location, us_region, airconditioning,
	description, source, source_url, published, scraped, draft,
	scraped_at, created_at`

// Get returns one stored vehicle by ID.
func (s *VehicleStore) Get(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	row := s.db.pool.QueryRow(ctx,
		"SELECT"+vehicleColumns+" FROM vehicles WHERE id = $1", id)

	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return v, nil
}

// List returns stored vehicles, newest first.
func (s *VehicleStore) List(ctx context.Context, limit, offset int) ([]*Vehicle, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.pool.Query(ctx,
		"SELECT"+vehicleColumns+" FROM vehicles ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return vehicles, nil
}

// Count returns the number of stored vehicles.
func (s *VehicleStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}
	return count, nil
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	v := &Vehicle{}
	err := row.Scan(
		&v.ID, &v.Title, &v.Year, &v.Make, &v.Model, &v.Engine, &v.Transmission, &v.Mileage,
		&v.Passengers, &v.Wheelchair, &v.Color, &v.InteriorColor, &v.ExteriorColor,
		&v.GVWR, &v.VIN, &v.Price, &v.CPrice, &v.Location, &v.USRegion, &v.Airconditioning,
		&v.Description, &v.Source, &v.SourceURL, &v.Published, &v.Scraped, &v.Draft,
		&v.ScrapedAt, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func regionOrOther(region string) string {
	if region == "" {
		return "OTHER"
	}
	return region
}
