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
	AnswerBatchSize    = 50
	AnswerBatchTimeout = 2 * time.Second
	AnswerPollTimeout  = 1 * time.Second
)

// AnswerStore is the slice of the answer repository the worker needs.
type AnswerStore interface {
	Append(ctx context.Context, a *model.AnswerRecord) error
	AppendBatch(ctx context.Context, answers []model.AnswerRecord) error
}

// AnswerLogWorker drains the answer persistence queue and writes records to
// Postgres in batches. The queue decouples the player-facing submit path from
// the audit log write.
type AnswerLogWorker struct {
	answers AnswerStore
	rdb     *redis.Client
	log     zerolog.Logger
}

func NewAnswerLogWorker(answers AnswerStore, rdb *redis.Client, log zerolog.Logger) *AnswerLogWorker {
	return &AnswerLogWorker{
		answers: answers,
		rdb:     rdb,
		log:     log.With().Str("component", "answer_log_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AnswerLogWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AnswerLogWorker started")

	batch := make([]model.AnswerRecord, 0, AnswerBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AnswerBatchSize || time.Since(lastFlush) >= AnswerBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AnswerPollTimeout, config.WorkerKey.PersistAnswersQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var a model.AnswerRecord
			if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, a)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback and requeue
// ----------------------------------------------------------------

func (w *AnswerLogWorker) flushSafe(ctx context.Context, batch []model.AnswerRecord) {
	if len(batch) == 0 {
		return
	}

	if err := w.answers.AppendBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("batch_size", len(batch)).Msg("bulk answer insert failed, using fallback")

		for i := range batch {
			if err := w.answers.Append(ctx, &batch[i]); err != nil {
				w.log.Error().Err(err).Msg("single answer insert failed, requeueing")
				raw, _ := json.Marshal(batch[i])
				w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, raw)
			}
		}
	}
}
