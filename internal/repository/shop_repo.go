package repository

import (
	"context"

	"github.com/ArapCheruiyot/superkeeper/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShopRepository interface {
	// FindOrCreate returns the shop record for an identity, creating an
	// empty-named row on first sign-in.
	FindOrCreate(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	SetName(ctx context.Context, id uuid.UUID, name string) error
}

type shopRepo struct{ db *gorm.DB }

func NewShopRepository(db *gorm.DB) ShopRepository { return &shopRepo{db: db} }

func (r *shopRepo) FindOrCreate(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	shop := model.Shop{ID: id}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&shop).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).First(&shop, "id = ?", id).Error
	return &shop, err
}

func (r *shopRepo) SetName(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).
		Update("name", name).Error
}
