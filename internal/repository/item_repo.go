package repository

import (
	"context"
	"time"

	"github.com/ArapCheruiyot/superkeeper/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRepository defines the data access contract for items and their
// embedded stock ledgers.
type ItemRepository interface {
	Create(ctx context.Context, i *model.Item) error
	FindByID(ctx context.Context, shopID, id uuid.UUID) (*model.Item, error)
	FindByName(ctx context.Context, shopID, categoryID uuid.UUID, name string) (*model.Item, error)
	ListByCategory(ctx context.Context, shopID, categoryID uuid.UUID) ([]model.Item, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Item, error)
	CountByCategory(ctx context.Context, shopID, categoryID uuid.UUID) (int64, error)

	// UpdateFields applies a partial merge — only the named columns change.
	UpdateFields(ctx context.Context, shopID, id uuid.UUID, fields map[string]interface{}) error

	// AppendTransaction appends one ledger entry and writes the derived stock
	// in the same single persistence operation. The row is locked for the
	// duration so the log and the cached total can never be read apart.
	AppendTransaction(ctx context.Context, shopID, id uuid.UUID, txn model.StockTransaction) (*model.Item, error)

	// Used inside path-rebuild transactions.
	ListByCategoryTx(tx *gorm.DB, shopID, categoryID uuid.UUID) ([]model.Item, error)
	UpdatePathsTx(tx *gorm.DB, id uuid.UUID, ancestors []model.Ancestor, fullPath string) error

	DB() *gorm.DB
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) Create(ctx context.Context, i *model.Item) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *itemRepo) FindByID(ctx context.Context, shopID, id uuid.UUID) (*model.Item, error) {
	var i model.Item
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).First(&i).Error
	return &i, err
}

func (r *itemRepo) FindByName(ctx context.Context, shopID, categoryID uuid.UUID, name string) (*model.Item, error) {
	var i model.Item
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND category_id = ? AND LOWER(name) = LOWER(?)", shopID, categoryID, name).
		First(&i).Error
	return &i, err
}

func (r *itemRepo) ListByCategory(ctx context.Context, shopID, categoryID uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND category_id = ?", shopID, categoryID).
		Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) CountByCategory(ctx context.Context, shopID, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("shop_id = ? AND category_id = ?", shopID, categoryID).Count(&n).Error
	return n, err
}

func (r *itemRepo) UpdateFields(ctx context.Context, shopID, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Item{}).
		Where("shop_id = ? AND id = ?", shopID, id).
		Updates(fields).Error
}

func (r *itemRepo) AppendTransaction(ctx context.Context, shopID, id uuid.UUID, txn model.StockTransaction) (*model.Item, error) {
	var updated model.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("shop_id = ? AND id = ?", shopID, id).First(&item).Error; err != nil {
			return err
		}

		log := append(item.StockTransactions, txn)
		newStock := item.Stock + txn.Quantity

		// Log, derived stock and bookkeeping fields go out in ONE write so a
		// partial failure can never leave them disagreeing.
		if err := tx.Model(&model.Item{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"stock_transactions":  log,
			"stock":               newStock,
			"last_transaction_id": txn.ID,
			"last_stock_update":   txn.Timestamp,
			"updated_at":          time.Now(),
		}).Error; err != nil {
			return err
		}

		item.StockTransactions = log
		item.Stock = newStock
		item.LastTransactionID = txn.ID
		item.LastStockUpdate = txn.Timestamp
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *itemRepo) ListByCategoryTx(tx *gorm.DB, shopID, categoryID uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	err := tx.Where("shop_id = ? AND category_id = ?", shopID, categoryID).Find(&items).Error
	return items, err
}

func (r *itemRepo) UpdatePathsTx(tx *gorm.DB, id uuid.UUID, ancestors []model.Ancestor, fullPath string) error {
	return tx.Model(&model.Item{}).Where("id = ?", id).Updates(map[string]interface{}{
		"ancestors": datatypes.NewJSONSlice(ancestors),
		"full_path": fullPath,
	}).Error
}

func (r *itemRepo) DB() *gorm.DB { return r.db }
