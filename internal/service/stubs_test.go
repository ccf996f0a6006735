package service_test

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/ArapCheruiyot/superkeeper/internal/infra"
	"github.com/ArapCheruiyot/superkeeper/internal/model"
	"github.com/ArapCheruiyot/superkeeper/internal/repository"
	"github.com/ArapCheruiyot/superkeeper/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubItemRepo is an in-memory ItemRepository. failAppend simulates a
// per-item write failure; failUpdate fails every UpdateFields call.
type stubItemRepo struct {
	items      map[uuid.UUID]*model.Item
	order      []uuid.UUID
	failAppend map[uuid.UUID]error
	failUpdate error
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{
		items:      make(map[uuid.UUID]*model.Item),
		failAppend: make(map[uuid.UUID]error),
	}
}

func (r *stubItemRepo) Create(_ context.Context, i *model.Item) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	cp := *i
	r.items[i.ID] = &cp
	r.order = append(r.order, i.ID)
	return nil
}

func (r *stubItemRepo) FindByID(_ context.Context, shopID, id uuid.UUID) (*model.Item, error) {
	it, ok := r.items[id]
	if !ok || it.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *stubItemRepo) FindByName(_ context.Context, shopID, categoryID uuid.UUID, name string) (*model.Item, error) {
	for _, id := range r.order {
		it := r.items[id]
		if it.ShopID == shopID && it.CategoryID == categoryID && strings.EqualFold(it.Name, name) {
			cp := *it
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubItemRepo) ListByCategory(_ context.Context, shopID, categoryID uuid.UUID) ([]model.Item, error) {
	var out []model.Item
	for _, id := range r.order {
		it := r.items[id]
		if it.ShopID == shopID && it.CategoryID == categoryID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *stubItemRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Item, error) {
	var out []model.Item
	for _, id := range r.order {
		if r.items[id].ShopID == shopID {
			out = append(out, *r.items[id])
		}
	}
	return out, nil
}

func (r *stubItemRepo) CountByCategory(_ context.Context, shopID, categoryID uuid.UUID) (int64, error) {
	var n int64
	for _, it := range r.items {
		if it.ShopID == shopID && it.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *stubItemRepo) UpdateFields(_ context.Context, shopID, id uuid.UUID, fields map[string]interface{}) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	it, ok := r.items[id]
	if !ok || it.ShopID != shopID {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			it.Name = v.(string)
		case "buy_price":
			d := v.(decimal.Decimal)
			it.BuyPrice = &d
		case "sell_price":
			d := v.(decimal.Decimal)
			it.SellPrice = &d
		case "full_path":
			it.FullPath = v.(string)
		case "images":
			it.Images = v.(datatypes.JSONSlice[string])
		case "stock":
			it.Stock = v.(int)
		case "stock_transactions":
			it.StockTransactions = v.(datatypes.JSONSlice[model.StockTransaction])
		case "updated_at":
			it.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r *stubItemRepo) AppendTransaction(_ context.Context, shopID, id uuid.UUID, txn model.StockTransaction) (*model.Item, error) {
	if err := r.failAppend[id]; err != nil {
		return nil, err
	}
	it, ok := r.items[id]
	if !ok || it.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	it.StockTransactions = append(it.StockTransactions, txn)
	it.Stock += txn.Quantity
	it.LastTransactionID = txn.ID
	it.LastStockUpdate = txn.Timestamp
	cp := *it
	return &cp, nil
}

func (r *stubItemRepo) ListByCategoryTx(_ *gorm.DB, shopID, categoryID uuid.UUID) ([]model.Item, error) {
	return r.ListByCategory(context.Background(), shopID, categoryID)
}

func (r *stubItemRepo) UpdatePathsTx(_ *gorm.DB, id uuid.UUID, ancestors []model.Ancestor, fullPath string) error {
	it, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.Ancestors = datatypes.NewJSONSlice(ancestors)
	it.FullPath = fullPath
	return nil
}

func (r *stubItemRepo) DB() *gorm.DB { return nil }

var _ repository.ItemRepository = (*stubItemRepo)(nil)

// stubCategoryRepo is an in-memory CategoryRepository. failUpdatePaths
// simulates a path-rebuild failure mid-rename; renameTxCalls counts name
// writes taking the transactional path.
type stubCategoryRepo struct {
	cats            map[uuid.UUID]*model.Category
	order           []uuid.UUID
	failUpdatePaths map[uuid.UUID]error
	renameTxCalls   int
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{
		cats:            make(map[uuid.UUID]*model.Category),
		failUpdatePaths: make(map[uuid.UUID]error),
	}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.cats[c.ID] = &cp
	r.order = append(r.order, c.ID)
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, shopID, id uuid.UUID) (*model.Category, error) {
	c, ok := r.cats[id]
	if !ok || c.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, shopID uuid.UUID, name string) (*model.Category, error) {
	for _, id := range r.order {
		c := r.cats[id]
		if c.ShopID == shopID && strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Category, error) {
	var out []model.Category
	for _, id := range r.order {
		if r.cats[id].ShopID == shopID {
			out = append(out, *r.cats[id])
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) CountChildren(_ context.Context, shopID, parentID uuid.UUID) (int64, error) {
	var n int64
	for _, c := range r.cats {
		if c.ShopID == shopID && c.ParentID != nil && *c.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

func (r *stubCategoryRepo) RenameTx(_ *gorm.DB, shopID, id uuid.UUID, name string) error {
	r.renameTxCalls++
	c, ok := r.cats[id]
	if !ok || c.ShopID != shopID {
		return gorm.ErrRecordNotFound
	}
	c.Name = name
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, shopID, id uuid.UUID) error {
	c, ok := r.cats[id]
	if !ok || c.ShopID != shopID {
		return gorm.ErrRecordNotFound
	}
	delete(r.cats, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *stubCategoryRepo) UpdatePathsTx(_ *gorm.DB, id uuid.UUID, ancestors []model.Ancestor, fullPath string) error {
	if err := r.failUpdatePaths[id]; err != nil {
		return err
	}
	c, ok := r.cats[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Ancestors = datatypes.NewJSONSlice(ancestors)
	c.FullPath = fullPath
	return nil
}

func (r *stubCategoryRepo) DB() *gorm.DB { return nil }

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// stubQueue records enqueued payloads instead of touching Redis.
type stubQueue struct {
	imageSaved []infra.ImageSavedPayload
	itemEmbeds []infra.ItemEmbedPayload
	err        error
}

func (q *stubQueue) EnqueueImageSaved(_ context.Context, payload interface{}) error {
	if q.err != nil {
		return q.err
	}
	q.imageSaved = append(q.imageSaved, payload.(infra.ImageSavedPayload))
	return nil
}

func (q *stubQueue) EnqueueItemEmbed(_ context.Context, payload interface{}) error {
	if q.err != nil {
		return q.err
	}
	q.itemEmbeds = append(q.itemEmbeds, payload.(infra.ItemEmbedPayload))
	return nil
}

var _ service.EmbedQueue = (*stubQueue)(nil)

// stubUploader returns a deterministic hosted URL per filename.
type stubUploader struct {
	uploads []string
	err     error
}

func (u *stubUploader) Upload(_ context.Context, filename string, _ io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	url := "https://img.example.test/" + filename
	u.uploads = append(u.uploads, url)
	return url, nil
}

var _ service.ImageUploader = (*stubUploader)(nil)

// stubScanner returns a canned recognizer result.
type stubScanner struct {
	match *infra.ScanMatchResult
	err   error
	calls int
}

func (s *stubScanner) Scan(_ context.Context, _ string, _ string) (*infra.ScanMatchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.match, nil
}

var _ service.FrameScanner = (*stubScanner)(nil)
