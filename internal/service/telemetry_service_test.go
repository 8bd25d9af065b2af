package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetry_TrackQueuesEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	svc := NewTelemetryService(rdb)

	userID := uuid.NewString()
	accepted := svc.Track(context.Background(), &model.TrackTelemetryRequest{
		Events: []model.TelemetryEventInput{
			{UserID: userID, EventType: "game.started", Properties: json.RawMessage(`{"pool":"default"}`)},
			{EventType: "question.viewed"},
		},
	})
	assert.Equal(t, 2, accepted)

	items, err := rdb.LRange(context.Background(), config.WorkerKey.PersistTelemetryQueue, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, items, 2)

	var event model.TelemetryEvent
	require.NoError(t, json.Unmarshal([]byte(items[0]), &event))
	assert.Equal(t, "game.started", event.EventType)
	require.NotNil(t, event.UserID)
	assert.Equal(t, userID, event.UserID.String())
	assert.JSONEq(t, `{"pool":"default"}`, string(event.Properties))
}
