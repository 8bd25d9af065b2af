package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/model"
)

// TelemetryService accepts client event batches and queues them for the
// telemetry worker. Accepting is fire-and-forget: a queue failure is logged
// and the events are dropped rather than failing the request.
type TelemetryService struct {
	rdb *redis.Client
}

// NewTelemetryService creates a new TelemetryService.
func NewTelemetryService(rdb *redis.Client) *TelemetryService {
	return &TelemetryService{rdb: rdb}
}

// Track converts the submitted events and pushes them onto the persistence
// queue. It returns the number of events accepted.
func (s *TelemetryService) Track(ctx context.Context, req *model.TrackTelemetryRequest) int {
	accepted := 0
	for _, in := range req.Events {
		event := model.TelemetryEvent{
			EventType:  in.EventType,
			Properties: in.Properties,
			ClientTime: in.ClientTime,
		}
		if id, err := uuid.Parse(in.UserID); err == nil {
			event.UserID = &id
		}
		if id, err := uuid.Parse(in.SessionID); err == nil {
			event.SessionID = &id
		}

		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if err := s.rdb.RPush(ctx, config.WorkerKey.PersistTelemetryQueue, payload).Err(); err != nil {
			log.Warn().Err(err).Str("event_type", in.EventType).Msg("telemetry queue push failed, dropping event")
			continue
		}
		accepted++
	}
	return accepted
}
