package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buslane/bus-scraper/internal/database"
	"github.com/buslane/bus-scraper/internal/models"
)

// MockTx is a mock for database transaction
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return pgconn.CommandTag{}, args.Error(0)
}

func (m *MockTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	mockArgs := m.Called(ctx, sql, args)
	if mockArgs.Get(0) == nil {
		return nil, mockArgs.Error(1)
	}
	return mockArgs.Get(0).(pgx.Rows), mockArgs.Error(1)
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	mockArgs := m.Called(ctx, sql, args)
	return mockArgs.Get(0).(pgx.Row)
}

func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	args := m.Called(ctx, b)
	return args.Get(0).(pgx.BatchResults)
}

func (m *MockTx) LargeObjects() pgx.LargeObjects {
	args := m.Called()
	return args.Get(0).(pgx.LargeObjects)
}

func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	args := m.Called(ctx, name, sql)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pgconn.StatementDescription), args.Error(1)
}

func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	args := m.Called(ctx, tableName, columnNames, rowSrc)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTx) Conn() *pgx.Conn {
	m.Called()
	return nil
}

func newTestPublisher() *Publisher {
	return &Publisher{
		outbox: database.NewOutboxRepository(nil),
		logger: slog.Default(),
	}
}

func listedRecord() *models.ListingRecord {
	rec := models.NewListingRecord("rossbus.com", "https://www.rossbus.com/2015-blue-bird-vision")
	rec.Vehicle.Title = "2015 Blue Bird Vision"
	rec.Vehicle.Year = "2015"
	rec.Vehicle.Make = "Blue"
	rec.Vehicle.Model = "Bird Vision"
	rec.Vehicle.Price = "$45,000"
	rec.Vehicle.VIN = "1BAKGCPA5FF304917"
	rec.Vehicle.USRegion = "NORTHEAST"
	rec.Images = append(rec.Images, models.Image{Name: "bus_image_0", URL: "https://www.rossbus.com/img/0.jpg"})
	return rec
}

func TestNewVehicleListedPayload(t *testing.T) {
	vehicleID := uuid.New()
	rec := listedRecord()

	payload := NewVehicleListedPayload(vehicleID, rec)

	assert.Equal(t, vehicleID.String(), payload.VehicleID)
	assert.Equal(t, "2015 Blue Bird Vision", payload.Title)
	assert.Equal(t, "2015", payload.Year)
	assert.Equal(t, "Blue", payload.Make)
	assert.Equal(t, "Bird Vision", payload.Model)
	assert.Equal(t, "$45,000", payload.Price)
	assert.Equal(t, "1BAKGCPA5FF304917", payload.VIN)
	assert.Equal(t, "NORTHEAST", payload.USRegion)
	assert.Equal(t, "rossbus.com", payload.Source)
	assert.Equal(t, "https://www.rossbus.com/2015-blue-bird-vision", payload.SourceURL)
	assert.Equal(t, 1, payload.ImageCount)
}

func TestBuildEventSeedsDefaults(t *testing.T) {
	p := newTestPublisher()
	payload := NewVehicleListedPayload(uuid.New(), listedRecord())

	event, err := p.buildEvent(payload)
	require.NoError(t, err)

	// Unset identity fields are filled in.
	_, parseErr := uuid.Parse(payload.EventID)
	assert.NoError(t, parseErr)
	assert.Equal(t, string(EventTypeVehicleListed), payload.EventType)
	assert.False(t, payload.Timestamp.IsZero())

	assert.Equal(t, "vehicle", event.AggregateType)
	assert.Equal(t, payload.VehicleID, event.AggregateID)
	assert.Equal(t, string(EventTypeVehicleListed), event.EventType)
	assert.Equal(t, database.DefaultStream, event.TargetStream)
}

func TestBuildEventKeepsPresetValues(t *testing.T) {
	p := newTestPublisher()
	presetTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	payload := NewVehicleListedPayload(uuid.New(), listedRecord())
	payload.EventID = "preset-event-id"
	payload.EventType = "VEHICLE_RELISTED"
	payload.Timestamp = presetTime

	event, err := p.buildEvent(payload)
	require.NoError(t, err)

	assert.Equal(t, "preset-event-id", payload.EventID)
	assert.Equal(t, "VEHICLE_RELISTED", payload.EventType)
	assert.Equal(t, presetTime, payload.Timestamp)
	assert.Equal(t, "VEHICLE_RELISTED", event.EventType)
}

func TestBuildEventPayloadShape(t *testing.T) {
	p := newTestPublisher()
	vehicleID := uuid.New()

	event, err := p.buildEvent(NewVehicleListedPayload(vehicleID, listedRecord()))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))

	assert.Equal(t, "VEHICLE_LISTED", decoded["event_type"])
	assert.Equal(t, vehicleID.String(), decoded["vehicle_id"])
	assert.Equal(t, "2015 Blue Bird Vision", decoded["title"])
	assert.Equal(t, "rossbus.com", decoded["source"])
	assert.Equal(t, "https://www.rossbus.com/2015-blue-bird-vision", decoded["source_url"])
	assert.Equal(t, float64(1), decoded["image_count"])
	assert.NotEmpty(t, decoded["event_id"])
	assert.NotEmpty(t, decoded["timestamp"])
}

func TestPublishVehicleListedTx(t *testing.T) {
	t.Run("inserts the event into the outbox within the transaction", func(t *testing.T) {
		p := newTestPublisher()
		tx := &MockTx{}

		var insertSQL string
		var insertArgs []interface{}
		tx.On("Exec", mock.Anything, mock.MatchedBy(func(sql string) bool {
			insertSQL = sql
			return true
		}), mock.MatchedBy(func(args []interface{}) bool {
			insertArgs = args
			return true
		})).Return(nil)

		payload := NewVehicleListedPayload(uuid.New(), listedRecord())
		err := p.PublishVehicleListedTx(context.Background(), tx, payload)
		require.NoError(t, err)

		tx.AssertExpectations(t)
		assert.Contains(t, insertSQL, "INSERT INTO outbox_event")
		require.Len(t, insertArgs, 10)
		assert.Equal(t, "vehicle", insertArgs[1])
		assert.Equal(t, payload.VehicleID, insertArgs[2])
		assert.Equal(t, "VEHICLE_LISTED", insertArgs[3])
		assert.Equal(t, database.DefaultStream, insertArgs[5])
	})

	t.Run("propagates insert failure", func(t *testing.T) {
		p := newTestPublisher()
		tx := &MockTx{}
		tx.On("Exec", mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError)

		payload := NewVehicleListedPayload(uuid.New(), listedRecord())
		err := p.PublishVehicleListedTx(context.Background(), tx, payload)
		assert.Error(t, err)
	})
}
