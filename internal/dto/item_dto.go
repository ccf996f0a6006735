package dto

import (
	"github.com/ArapCheruiyot/superkeeper/internal/model"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateItemRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// SaveItemRequest carries the editable fields of the detail overlay. Missing
// numeric fields coerce to 0 on save, matching the edit-off-always-saves rule.
type SaveItemRequest struct {
	Name      string           `json:"name" validate:"required,min=1,max=120"`
	BuyPrice  *decimal.Decimal `json:"buy_price"`
	SellPrice *decimal.Decimal `json:"sell_price"`
}

type SetPricesRequest struct {
	BuyPrice  decimal.Decimal `json:"buy_price" validate:"min=0"`
	SellPrice decimal.Decimal `json:"sell_price" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

// ItemResponse is the detail-overlay view of an item: images, prices, cached
// stock, and the most recent ledger entries for the stock panel.
type ItemResponse struct {
	ID               string                   `json:"id"`
	Name             string                   `json:"name"`
	CategoryID       string                   `json:"category_id"`
	Ancestors        []model.Ancestor         `json:"ancestors"`
	FullPath         string                   `json:"full_path"`
	Images           []string                 `json:"images"`
	BuyPrice         *decimal.Decimal         `json:"buy_price"`
	SellPrice        *decimal.Decimal         `json:"sell_price"`
	Stock            int                      `json:"stock"`
	TransactionCount int                      `json:"transaction_count"`
	RecentActivity   []model.StockTransaction `json:"recent_activity"`
	NeedsSecondImage bool                     `json:"needs_second_image"`
	NeedsPrices      bool                     `json:"needs_prices"`
	UpdatedAt        int64                    `json:"updated_at"`
}

func ItemToResponse(i *model.Item) *ItemResponse {
	// Stock panel shows the last three entries, newest first.
	recent := make([]model.StockTransaction, 0, 3)
	for n := len(i.StockTransactions) - 1; n >= 0 && len(recent) < 3; n-- {
		recent = append(recent, i.StockTransactions[n])
	}
	return &ItemResponse{
		ID:               i.ID.String(),
		Name:             i.Name,
		CategoryID:       i.CategoryID.String(),
		Ancestors:        i.Ancestors,
		FullPath:         i.FullPath,
		Images:           i.Images,
		BuyPrice:         i.BuyPrice,
		SellPrice:        i.SellPrice,
		Stock:            i.Stock,
		TransactionCount: len(i.StockTransactions),
		RecentActivity:   recent,
		NeedsSecondImage: len(i.Images) == 1,
		NeedsPrices:      i.NeedsPrices(),
		UpdatedAt:        i.UpdatedAt.UnixMilli(),
	}
}
