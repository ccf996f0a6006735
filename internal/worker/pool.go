package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueImageSaved = "jobs:image_saved"
	QueueItemEmbed  = "jobs:item_embed"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueImageSaved pushes a per-photo vectorization notify to Redis. The
// caller never waits on the recognizer; a failure here only logs.
func (d *Dispatcher) EnqueueImageSaved(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueImageSaved, "image_saved", payload)
}

// EnqueueItemEmbed pushes a full-item re-embed job to Redis.
func (d *Dispatcher) EnqueueItemEmbed(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueItemEmbed, "item_embed", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, embedWorker *EmbedWorker, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, embedWorker, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, embedWorker *EmbedWorker, id int) {
	queues := []string{QueueImageSaved, QueueItemEmbed}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, embedWorker, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, embedWorker *EmbedWorker, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	switch job.Type {
	case "image_saved":
		embedWorker.ProcessImageSaved(ctx, rdb, job.Payload)
	case "item_embed":
		embedWorker.ProcessItemEmbed(ctx, rdb, job.Payload)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type")
	}
}
