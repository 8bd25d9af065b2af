package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/model"
)

const (
	TelemetryBatchSize    = 100
	TelemetryBatchTimeout = 5 * time.Second
	TelemetryPollTimeout  = 1 * time.Second
)

// TelemetryStore is the slice of the telemetry repository the worker needs.
type TelemetryStore interface {
	AppendBatch(ctx context.Context, events []model.TelemetryEvent) error
}

// TelemetryWorker drains the telemetry queue and persists events in batches.
// Telemetry is best-effort: a batch that fails twice is dropped, not
// requeued, so a poison event cannot wedge the queue.
type TelemetryWorker struct {
	events TelemetryStore
	rdb    *redis.Client
	log    zerolog.Logger
}

func NewTelemetryWorker(events TelemetryStore, rdb *redis.Client, log zerolog.Logger) *TelemetryWorker {
	return &TelemetryWorker{
		events: events,
		rdb:    rdb,
		log:    log.With().Str("component", "telemetry_worker").Logger(),
	}
}

func (w *TelemetryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("TelemetryWorker started")

	batch := make([]model.TelemetryEvent, 0, TelemetryBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= TelemetryBatchSize || time.Since(lastFlush) >= TelemetryBatchTimeout) {

			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flush(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, TelemetryPollTimeout, config.WorkerKey.PersistTelemetryQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var e model.TelemetryEvent
			if err := json.Unmarshal([]byte(item[1]), &e); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, e)
		}
	}
}

func (w *TelemetryWorker) flush(ctx context.Context, batch []model.TelemetryEvent) {
	if len(batch) == 0 {
		return
	}

	if err := w.events.AppendBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("batch_size", len(batch)).Msg("bulk telemetry insert failed, retrying once")
		if err := w.events.AppendBatch(ctx, batch); err != nil {
			w.log.Error().Err(err).Int("batch_size", len(batch)).Msg("telemetry batch dropped")
		}
	}
}
