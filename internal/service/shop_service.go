package service

import (
	"context"

	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/repository"

	"github.com/google/uuid"
)

// ShopService bootstraps the shop record on first sign-in and handles the
// one-time naming step.
type ShopService interface {
	Bootstrap(ctx context.Context, shopID uuid.UUID, claimName string) (*dto.ShopResponse, error)
	SetName(ctx context.Context, shopID uuid.UUID, name string) (*dto.ShopResponse, error)
}

type shopService struct {
	repo repository.ShopRepository
}

func NewShopService(repo repository.ShopRepository) ShopService {
	return &shopService{repo: repo}
}

// Bootstrap ensures the shop row exists. A name carried in the token fills
// an unnamed shop; otherwise NeedsName tells the client to prompt for one.
func (s *shopService) Bootstrap(ctx context.Context, shopID uuid.UUID, claimName string) (*dto.ShopResponse, error) {
	shop, err := s.repo.FindOrCreate(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop.Name == "" && claimName != "" {
		if err := s.repo.SetName(ctx, shopID, claimName); err != nil {
			return nil, err
		}
		shop.Name = claimName
	}
	return &dto.ShopResponse{
		ID:        shop.ID.String(),
		Name:      shop.Name,
		NeedsName: shop.Name == "",
	}, nil
}

func (s *shopService) SetName(ctx context.Context, shopID uuid.UUID, name string) (*dto.ShopResponse, error) {
	if err := s.repo.SetName(ctx, shopID, name); err != nil {
		return nil, err
	}
	return &dto.ShopResponse{ID: shopID.String(), Name: name, NeedsName: false}, nil
}
