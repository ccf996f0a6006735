package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/infra"
	"github.com/ArapCheruiyot/superkeeper/internal/model"
	"github.com/ArapCheruiyot/superkeeper/internal/repository"
	"github.com/ArapCheruiyot/superkeeper/internal/session"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// ImageUploader pushes a captured photo to the hosting service and returns
// its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

// EmbedQueue is the async boundary to the recognizer. Satisfied by
// worker.Dispatcher.
type EmbedQueue interface {
	EnqueueImageSaved(ctx context.Context, payload interface{}) error
	EnqueueItemEmbed(ctx context.Context, payload interface{}) error
}

// CaptureService runs the two-photo intake flow: enter a processing phase,
// upload, persist, notify the recognizer, settle the phase. The upload and
// persist happen while the session sits in a processing phase, which blocks
// the overlay from closing underneath the operation.
type CaptureService interface {
	Begin(sess *session.Session, slot int) error
	Retake(sess *session.Session, slot int) error
	Complete(ctx context.Context, sess *session.Session, filename string, file io.Reader) (*dto.ItemResponse, error)
	Cancel(sess *session.Session) error
	SetPrices(ctx context.Context, sess *session.Session, req dto.SetPricesRequest) (*dto.ItemResponse, error)
}

type captureService struct {
	itemRepo repository.ItemRepository
	uploader ImageUploader
	queue    EmbedQueue
}

func NewCaptureService(itemRepo repository.ItemRepository, uploader ImageUploader, queue EmbedQueue) CaptureService {
	return &captureService{itemRepo: itemRepo, uploader: uploader, queue: queue}
}

// Begin opens the capture for the next empty slot of the current item.
func (s *captureService) Begin(sess *session.Session, slot int) error {
	return sess.StartCapture(slot)
}

// Retake re-opens the capture for an already-filled slot while editing.
func (s *captureService) Retake(sess *session.Session, slot int) error {
	return sess.StartRetake(slot)
}

// Cancel abandons the in-flight capture. Whatever was persisted before the
// capture started is untouched; the phase settles back to its stable value.
func (s *captureService) Cancel(sess *session.Session) error {
	return sess.AbortCapture()
}

// Complete takes the captured file through upload, persist and notify. The
// slot comes from the processing phase, never from the client: the notify
// payload's image index must match the slot that was actually written.
func (s *captureService) Complete(ctx context.Context, sess *session.Session, filename string, file io.Reader) (*dto.ItemResponse, error) {
	item := sess.Item()
	if item == nil {
		return nil, session.ErrNoItemOpen
	}

	var slot int
	switch sess.Phase() {
	case session.PhaseProcessing1:
		slot = 0
	case session.PhaseProcessing2:
		slot = 1
	default:
		return nil, session.ErrCaptureNotActive
	}

	url, err := s.uploader.Upload(ctx, filename, file)
	if err != nil {
		_ = sess.AbortCapture()
		return nil, fmt.Errorf("upload image: %w", err)
	}

	images := append([]string{}, item.Images...)
	if slot < len(images) {
		images[slot] = url // retake replaces in place
	} else {
		images = append(images, url)
	}

	fields := map[string]interface{}{
		"images":     datatypes.NewJSONSlice(images),
		"updated_at": time.Now(),
	}
	// The very first persisted photo also initializes the ledger: stock zero
	// and an empty transaction log, written alongside the image.
	if item.StockTransactions == nil {
		fields["stock"] = 0
		fields["stock_transactions"] = datatypes.NewJSONSlice([]model.StockTransaction{})
	}

	if err := s.itemRepo.UpdateFields(ctx, sess.ShopID, item.ID, fields); err != nil {
		_ = sess.AbortCapture()
		return nil, fmt.Errorf("persist image: %w", err)
	}

	refreshed, err := s.itemRepo.FindByID(ctx, sess.ShopID, item.ID)
	if err != nil {
		_ = sess.AbortCapture()
		return nil, err
	}
	sess.SetItem(refreshed)
	if err := sess.FinishCapture(); err != nil {
		return nil, err
	}

	// Fire-and-forget: the operator never waits on vectorization.
	s.notifyImageSaved(ctx, refreshed, url, slot)

	return dto.ItemToResponse(refreshed), nil
}

// SetPrices records both prices after the second photo lands. Unlike the
// edit save, this touches nothing else on the item.
func (s *captureService) SetPrices(ctx context.Context, sess *session.Session, req dto.SetPricesRequest) (*dto.ItemResponse, error) {
	item := sess.Item()
	if item == nil {
		return nil, session.ErrNoItemOpen
	}

	err := s.itemRepo.UpdateFields(ctx, sess.ShopID, item.ID, map[string]interface{}{
		"buy_price":  req.BuyPrice,
		"sell_price": req.SellPrice,
		"updated_at": time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("set prices: %w", err)
	}

	refreshed, err := s.itemRepo.FindByID(ctx, sess.ShopID, item.ID)
	if err != nil {
		return nil, err
	}
	sess.SetItem(refreshed)
	return dto.ItemToResponse(refreshed), nil
}

func (s *captureService) notifyImageSaved(ctx context.Context, item *model.Item, url string, slot int) {
	if s.queue == nil {
		return
	}
	payload := infra.ImageSavedPayload{
		Event:      "image_saved",
		ImageURL:   url,
		ItemID:     item.ID.String(),
		ShopID:     item.ShopID.String(),
		CategoryID: item.CategoryID.String(),
		ImageIndex: slot,
		Timestamp:  time.Now().UnixMilli(),
	}
	if err := s.queue.EnqueueImageSaved(ctx, payload); err != nil {
		log.Warn().
			Err(err).
			Str("item_id", payload.ItemID).
			Int("image_index", slot).
			Msg("capture: failed to enqueue image_saved notify")
	}
}
