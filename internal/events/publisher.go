package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/buslane/bus-scraper/internal/database"
	"github.com/buslane/bus-scraper/internal/models"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeVehicleListed is published when a new vehicle listing is stored
	EventTypeVehicleListed EventType = "VEHICLE_LISTED"
)

// VehicleListedPayload is the payload for VEHICLE_LISTED events.
type VehicleListedPayload struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Timestamp  time.Time `json:"timestamp"`
	VehicleID  string    `json:"vehicle_id"`
	Title      string    `json:"title"`
	Year       string    `json:"year,omitempty"`
	Make       string    `json:"make,omitempty"`
	Model      string    `json:"model,omitempty"`
	Price      string    `json:"price,omitempty"`
	VIN        string    `json:"vin,omitempty"`
	USRegion   string    `json:"us_region,omitempty"`
	Source     string    `json:"source"`
	SourceURL  string    `json:"source_url"`
	ImageCount int       `json:"image_count"`
}

// NewVehicleListedPayload builds the event payload from a stored record.
func NewVehicleListedPayload(vehicleID uuid.UUID, rec *models.ListingRecord) *VehicleListedPayload {
	return &VehicleListedPayload{
		VehicleID:  vehicleID.String(),
		Title:      rec.Vehicle.Title,
		Year:       rec.Vehicle.Year,
		Make:       rec.Vehicle.Make,
		Model:      rec.Vehicle.Model,
		Price:      rec.Vehicle.Price,
		VIN:        rec.Vehicle.VIN,
		USRegion:   rec.Vehicle.USRegion,
		Source:     rec.Vehicle.Source,
		SourceURL:  rec.Vehicle.SourceURL,
		ImageCount: len(rec.Images),
	}
}

// Publisher writes listing events through the transactional outbox.
type Publisher struct {
	db     *database.DB
	outbox *database.OutboxRepository
	logger *slog.Logger
}

func NewPublisher(db *database.DB, logger *slog.Logger) *Publisher {
	return &Publisher{
		db:     db,
		outbox: database.NewOutboxRepository(db),
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishVehicleListedTx inserts a VEHICLE_LISTED event into the outbox
// inside tx, so the event commits together with the vehicle row.
func (p *Publisher) PublishVehicleListedTx(ctx context.Context, tx pgx.Tx, payload *VehicleListedPayload) error {
	outboxEvent, err := p.buildEvent(payload)
	if err != nil {
		return err
	}

	if err := p.outbox.InsertWithTx(ctx, tx, outboxEvent); err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	p.logger.Info("event published to outbox",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"vehicle_id", payload.VehicleID,
		"outbox_id", outboxEvent.ID,
	)
	return nil
}

// PublishVehicleListed publishes in its own transaction, for callers that
// are not already inside one.
func (p *Publisher) PublishVehicleListed(ctx context.Context, payload *VehicleListedPayload) error {
	err := p.db.WithTx(ctx, func(tx pgx.Tx) error {
		return p.PublishVehicleListedTx(ctx, tx, payload)
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *Publisher) buildEvent(payload *VehicleListedPayload) (*database.OutboxEvent, error) {
	if payload.EventID == "" {
		payload.EventID = uuid.New().String()
	}
	if payload.EventType == "" {
		payload.EventType = string(EventTypeVehicleListed)
	}
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &database.OutboxEvent{
		AggregateType: "vehicle",
		AggregateID:   payload.VehicleID,
		EventType:     payload.EventType,
		Payload:       data,
		TargetStream:  database.DefaultStream,
	}, nil
}
