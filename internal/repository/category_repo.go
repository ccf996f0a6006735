package repository

import (
	"context"

	"github.com/ArapCheruiyot/superkeeper/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CategoryRepository defines the data access contract for category-tree nodes.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, shopID, id uuid.UUID) (*model.Category, error)
	// FindByName matches case-insensitively within one shop (duplicate check).
	FindByName(ctx context.Context, shopID uuid.UUID, name string) (*model.Category, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Category, error)
	CountChildren(ctx context.Context, shopID, parentID uuid.UUID) (int64, error)
	Delete(ctx context.Context, shopID, id uuid.UUID) error

	// Used inside path-rebuild transactions — callers pass the tx instance.
	// The name write rides the same transaction as the path rebuilds so a
	// failed rebuild rolls both back together.
	RenameTx(tx *gorm.DB, shopID, id uuid.UUID, name string) error
	UpdatePathsTx(tx *gorm.DB, id uuid.UUID, ancestors []model.Ancestor, fullPath string) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepo{db: db} }

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, shopID, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).First(&c).Error
	return &c, err
}

func (r *categoryRepo) FindByName(ctx context.Context, shopID uuid.UUID, name string) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND LOWER(name) = LOWER(?)", shopID, name).First(&c).Error
	return &c, err
}

func (r *categoryRepo) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Category, error) {
	var cats []model.Category
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).Order("created_at ASC").Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) CountChildren(ctx context.Context, shopID, parentID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("shop_id = ? AND parent_id = ?", shopID, parentID).Count(&n).Error
	return n, err
}

func (r *categoryRepo) RenameTx(tx *gorm.DB, shopID, id uuid.UUID, name string) error {
	return tx.Model(&model.Category{}).
		Where("shop_id = ? AND id = ?", shopID, id).
		Update("name", name).Error
}

func (r *categoryRepo) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		Delete(&model.Category{}).Error
}

func (r *categoryRepo) UpdatePathsTx(tx *gorm.DB, id uuid.UUID, ancestors []model.Ancestor, fullPath string) error {
	return tx.Model(&model.Category{}).Where("id = ?", id).Updates(map[string]interface{}{
		"ancestors": datatypes.NewJSONSlice(ancestors),
		"full_path": fullPath,
	}).Error
}

func (r *categoryRepo) DB() *gorm.DB { return r.db }
