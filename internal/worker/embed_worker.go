package worker

// embed_worker.go
// Processes recognizer notify jobs from both queues. The recognizer is a
// best-effort sidecar: results are logged, never surfaced to the operator,
// and a job that keeps failing lands in the DLQ.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ArapCheruiyot/superkeeper/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxAttempts = 3

// EmbedWorker forwards persisted-image and item-snapshot events to the
// recognizer sidecar with retry and DLQ fallback.
type EmbedWorker struct {
	recognizer *infra.RecognizerClient
}

func NewEmbedWorker(recognizer *infra.RecognizerClient) *EmbedWorker {
	return &EmbedWorker{recognizer: recognizer}
}

// ProcessImageSaved notifies the recognizer that one image slot landed. The
// slot index in the payload is authoritative; it was fixed at capture time.
func (w *EmbedWorker) ProcessImageSaved(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload infra.ImageSavedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("embed_worker: invalid image_saved payload")
		return
	}

	var resp *infra.VectorizeResponse
	err := withRetry(ctx, maxAttempts, func(attempt int) error {
		r, err := w.recognizer.VectorizeItem(ctx, payload)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("item_id", payload.ItemID).
				Int("image_index", payload.ImageIndex).
				Msg("embed_worker: vectorize attempt failed, retrying")
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		SendToDLQ(ctx, rdb, QueueImageSaved, "image_saved", raw, err.Error(), maxAttempts)
		return
	}

	log.Info().
		Str("item_id", payload.ItemID).
		Int("image_index", payload.ImageIndex).
		Str("status", resp.Status).
		Int("embedding_length", resp.EmbeddingLength).
		Msg("embed_worker: image vectorized")
}

// ProcessItemEmbed pushes a full item snapshot to the item embedder.
func (w *EmbedWorker) ProcessItemEmbed(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload infra.ItemEmbedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("embed_worker: invalid item_embed payload")
		return
	}

	err := withRetry(ctx, maxAttempts, func(attempt int) error {
		if err := w.recognizer.EmbedItem(ctx, payload); err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("item_name", payload.ItemName).
				Msg("embed_worker: item embed attempt failed, retrying")
			return err
		}
		return nil
	})
	if err != nil {
		SendToDLQ(ctx, rdb, QueueItemEmbed, "item_embed", raw, err.Error(), maxAttempts)
		return
	}

	log.Info().Str("item_name", payload.ItemName).Msg("embed_worker: item snapshot embedded")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
