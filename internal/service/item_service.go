package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/infra"
	"github.com/ArapCheruiyot/superkeeper/internal/model"
	"github.com/ArapCheruiyot/superkeeper/internal/repository"
	"github.com/ArapCheruiyot/superkeeper/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrCategoryNotLeaf = errors.New("items can only be added to leaf categories")

// ItemService handles item lifecycle outside of photo capture: creation under
// a leaf category, detail reads, and the edit-mode save.
type ItemService interface {
	Create(ctx context.Context, shopID, categoryID uuid.UUID, name string) (*dto.ItemResponse, error)
	Get(ctx context.Context, shopID, id uuid.UUID) (*dto.ItemResponse, error)
	// GetModel returns the stored record, used to seed the session cache when
	// a detail overlay opens.
	GetModel(ctx context.Context, shopID, id uuid.UUID) (*model.Item, error)
	ListByCategory(ctx context.Context, shopID, categoryID uuid.UUID) ([]dto.ItemSummary, error)

	// SaveEdits persists the edit overlay's fields and leaves edit mode.
	// Toggling edit off IS the save — there is no discard path.
	SaveEdits(ctx context.Context, sess *session.Session, req dto.SaveItemRequest) (*dto.ItemResponse, error)
}

type itemService struct {
	repo         repository.ItemRepository
	categoryRepo repository.CategoryRepository
	queue        EmbedQueue
}

func NewItemService(repo repository.ItemRepository, categoryRepo repository.CategoryRepository, queue EmbedQueue) ItemService {
	return &itemService{repo: repo, categoryRepo: categoryRepo, queue: queue}
}

// Create registers a named item under a leaf category. The photo, prices and
// opening stock all arrive later through the capture flow.
func (s *itemService) Create(ctx context.Context, shopID, categoryID uuid.UUID, name string) (*dto.ItemResponse, error) {
	cat, err := s.categoryRepo.FindByID(ctx, shopID, categoryID)
	if err != nil {
		return nil, notFound(err)
	}
	childCount, err := s.categoryRepo.CountChildren(ctx, shopID, categoryID)
	if err != nil {
		return nil, err
	}
	if childCount > 0 {
		return nil, ErrCategoryNotLeaf
	}
	if existing, err := s.repo.FindByName(ctx, shopID, categoryID, name); err == nil && existing != nil {
		return nil, &DuplicateNameError{ExistingID: existing.ID.String()}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// The item's fullPath extends the category's with its own name.
	ancestors := append([]model.Ancestor{}, cat.Ancestors...)
	ancestors = append(ancestors, model.Ancestor{ID: cat.ID.String(), Name: cat.Name})
	item := &model.Item{
		ShopID:     shopID,
		CategoryID: categoryID,
		Name:       name,
		Ancestors:  ancestors,
		FullPath:   model.JoinPath(ancestors, name),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return dto.ItemToResponse(item), nil
}

func (s *itemService) Get(ctx context.Context, shopID, id uuid.UUID) (*dto.ItemResponse, error) {
	item, err := s.repo.FindByID(ctx, shopID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return dto.ItemToResponse(item), nil
}

func (s *itemService) GetModel(ctx context.Context, shopID, id uuid.UUID) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, shopID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (s *itemService) ListByCategory(ctx context.Context, shopID, categoryID uuid.UUID) ([]dto.ItemSummary, error) {
	items, err := s.repo.ListByCategory(ctx, shopID, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemSummary, 0, len(items))
	for i := range items {
		thumb := ""
		if len(items[i].Images) > 0 {
			thumb = items[i].Images[0]
		}
		out = append(out, dto.ItemSummary{
			ID:         items[i].ID.String(),
			Name:       items[i].Name,
			CategoryID: items[i].CategoryID.String(),
			Thumbnail:  thumb,
		})
	}
	return out, nil
}

// SaveEdits writes the overlay's editable fields. Absent prices coerce to
// zero rather than clearing to null — the save is total, not partial. After a
// save that leaves the item fully captured and fully priced, the recognizer
// gets a fresh item snapshot.
func (s *itemService) SaveEdits(ctx context.Context, sess *session.Session, req dto.SaveItemRequest) (*dto.ItemResponse, error) {
	if !sess.TryAcquire("save") {
		return nil, session.ErrBusy
	}
	defer sess.Release("save")

	current := sess.Item()
	if current == nil {
		return nil, session.ErrNoItemOpen
	}
	if !sess.EditMode() {
		return nil, session.ErrNotEditing
	}

	fields := map[string]interface{}{
		"name":       req.Name,
		"updated_at": time.Now(),
	}
	if req.Name != current.Name {
		if existing, err := s.repo.FindByName(ctx, sess.ShopID, current.CategoryID, req.Name); err == nil && existing != nil && existing.ID != current.ID {
			return nil, &DuplicateNameError{ExistingID: existing.ID.String()}
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// The item's own name ends its fullPath, so a rename rewrites it.
		fields["full_path"] = model.JoinPath(current.Ancestors, req.Name)
	}

	buy := decimal.Zero
	if req.BuyPrice != nil {
		buy = *req.BuyPrice
	}
	sell := decimal.Zero
	if req.SellPrice != nil {
		sell = *req.SellPrice
	}
	fields["buy_price"] = buy
	fields["sell_price"] = sell

	err := s.repo.UpdateFields(ctx, sess.ShopID, current.ID, fields)
	if err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	item, err := s.repo.FindByID(ctx, sess.ShopID, current.ID)
	if err != nil {
		return nil, err
	}
	sess.SetItem(item)
	if err := sess.ExitEdit(); err != nil {
		return nil, err
	}

	if item.HasBothImages() && !item.NeedsPrices() {
		s.enqueueSnapshot(ctx, item)
	}

	return dto.ItemToResponse(item), nil
}

// enqueueSnapshot ships the flattened item to the re-embed queue. Failure to
// enqueue is logged only — a save never fails because the queue is down.
func (s *itemService) enqueueSnapshot(ctx context.Context, item *model.Item) {
	if s.queue == nil {
		return
	}
	payload := itemEmbedPayload(item)
	if err := s.queue.EnqueueItemEmbed(ctx, payload); err != nil {
		log.Warn().Err(err).Str("item_id", item.ID.String()).Msg("item: failed to enqueue embed snapshot")
	}
}

// itemEmbedPayload flattens an item into the recognizer's snapshot shape.
// CategoryPath is the category chain only — the item name travels separately.
// Vector fields stay empty; the recognizer computes them on its side.
func itemEmbedPayload(item *model.Item) infra.ItemEmbedPayload {
	buy := decimal.Zero
	if item.BuyPrice != nil {
		buy = *item.BuyPrice
	}
	sell := decimal.Zero
	if item.SellPrice != nil {
		sell = *item.SellPrice
	}
	categoryPath := ""
	if n := len(item.Ancestors); n > 0 {
		categoryPath = model.JoinPath(item.Ancestors[:n-1], item.Ancestors[n-1].Name)
	}
	return infra.ItemEmbedPayload{
		ShopID:       item.ShopID.String(),
		ItemName:     item.Name,
		CategoryPath: categoryPath,
		BuyingPrice:  buy,
		SellingPrice: sell,
		Images:       item.Images,
		UpdatedAt:    item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
