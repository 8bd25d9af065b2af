package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stationgames/trivia-backend/internal/model"
)

// TelemetryRepository stores client telemetry events.
type TelemetryRepository struct {
	pool *pgxpool.Pool
}

// NewTelemetryRepository creates a new TelemetryRepository.
func NewTelemetryRepository(pool *pgxpool.Pool) *TelemetryRepository {
	return &TelemetryRepository{pool: pool}
}

// AppendBatch inserts many telemetry events in one round trip.
func (r *TelemetryRepository) AppendBatch(ctx context.Context, events []model.TelemetryEvent) error {
	if len(events) == 0 {
		return nil
	}

	userIDs := make([]*uuid.UUID, len(events))
	sessionIDs := make([]*uuid.UUID, len(events))
	eventTypes := make([]string, len(events))
	properties := make([][]byte, len(events))
	clientTimes := make([]*time.Time, len(events))

	for i, e := range events {
		userIDs[i] = e.UserID
		sessionIDs[i] = e.SessionID
		eventTypes[i] = e.EventType
		properties[i] = e.Properties
		clientTimes[i] = e.ClientTime
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO telemetry_events (user_id, session_id, event_type, properties, client_time)
		 SELECT * FROM UNNEST(
		   $1::uuid[], $2::uuid[], $3::text[], $4::jsonb[], $5::timestamptz[]
		 )`,
		userIDs, sessionIDs, eventTypes, properties, clientTimes)
	return err
}
