package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tamilprep-backend/internal/config"
	"github.com/stemsi/tamilprep-backend/internal/model"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second

	// Backoff between failed polls while Redis is unreachable.
	ResultRetryBase = 250 * time.Millisecond
	ResultRetryMax  = 10 * time.Second
)

// retryDelay doubles from ResultRetryBase per consecutive failure, capped at ResultRetryMax.
func retryDelay(failures int) time.Duration {
	d := ResultRetryBase
	for i := 1; i < failures && d < ResultRetryMax; i++ {
		d *= 2
	}
	if d > ResultRetryMax {
		d = ResultRetryMax
	}
	return d
}

// AttemptSink persists archived attempts.
type AttemptSink interface {
	BulkInsert(ctx context.Context, attempts []model.PracticeAttempt) error
	Insert(ctx context.Context, a model.PracticeAttempt) error
}

// ResultQueue pushes graded attempts onto the Redis list drained by ResultWorker.
type ResultQueue struct {
	rdb *redis.Client
}

func NewResultQueue(rdb *redis.Client) *ResultQueue {
	return &ResultQueue{rdb: rdb}
}

func (q *ResultQueue) Publish(ctx context.Context, attempt model.PracticeAttempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err()
}

// ResultWorker drains the attempt queue into PostgreSQL in batches.
type ResultWorker struct {
	sink AttemptSink
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewResultWorker(sink AttemptSink, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		sink: sink,
		rdb:  rdb,
		log:  log,
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]model.PracticeAttempt, 0, ResultBatchSize)
	lastFlush := time.Now()
	failures := 0

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if err == redis.Nil || ctx.Err() != nil {
					continue
				}
				failures++
				delay := retryDelay(failures)
				w.log.Error().Err(err).Int("failures", failures).Dur("retry_in", delay).Msg("BLPop error")
				select {
				case <-ctx.Done():
				case <-time.After(delay):
				}
				continue
			}
			failures = 0

			if len(item) < 2 {
				continue
			}

			var a model.PracticeAttempt
			if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, a)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []model.PracticeAttempt) {
	if len(batch) == 0 {
		return
	}

	if err := w.sink.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("bulk attempt insert failed, using fallback")

		for _, a := range batch {
			if err := w.sink.Insert(ctx, a); err != nil {
				w.log.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("single insert failed, requeueing")
				raw, _ := json.Marshal(a)
				w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("size", len(batch)).Msg("Attempts archived")
}
