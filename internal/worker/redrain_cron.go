package worker

// Background goroutine that periodically drains dead-lettered jobs back onto
// their source queue. Low-stock alerts are idempotent (redis dedup key), so
// replaying a parked job after a transient redis hiccup is always safe.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redrainTickInterval = 5 * time.Minute
	redrainBatchSize    = 10
)

// StartDLQRedrain launches the re-drain goroutine. It respects the context
// for graceful shutdown.
func StartDLQRedrain(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(redrainTickInterval)
		defer ticker.Stop()

		log.Info().Msg("dlq redrain: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("dlq redrain: shutting down")
				return
			case <-ticker.C:
				redrainQueue(ctx, rdb, QueueLowStock)
			}
		}
	}()
}

// redrainQueue moves up to redrainBatchSize entries from dlq:{queue} back to
// the queue with their attempt count reset. A batch cap keeps one tick from
// flooding the pool after a long outage.
func redrainQueue(ctx context.Context, rdb *redis.Client, queue string) {
	key := DLQPrefix + queue
	for i := 0; i < redrainBatchSize; i++ {
		raw, err := rdb.RPop(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return
		}
		if err != nil {
			log.Error().Err(err).Str("dlq_key", key).Msg("dlq redrain: pop failed")
			return
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("dlq_key", key).Msg("dlq redrain: dropping unreadable entry")
			continue
		}

		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Msg("dlq redrain: marshal job")
			continue
		}
		if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			// Park it again rather than lose it.
			SendToDLQ(ctx, rdb, queue, entry.JobType, entry.Payload,
				"redrain requeue failed: "+err.Error(), entry.Attempts)
			return
		}
		log.Info().
			Str("queue", queue).
			Str("job_type", entry.JobType).
			Int("previous_attempts", entry.Attempts).
			Msg("dlq redrain: job requeued")
	}
}
