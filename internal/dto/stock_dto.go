package dto

import "github.com/ArapCheruiyot/superkeeper/internal/model"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RestockRequest adds units to an item's ledger. Quantity must be a positive
// integer; zero or negative restocks are rejected before any write.
type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RestockResponse struct {
	NewStock    int                    `json:"new_stock"`
	Transaction model.StockTransaction `json:"transaction"`
}

type TransactionListResponse struct {
	ItemID       string                   `json:"item_id"`
	Stock        int                      `json:"stock"`
	Transactions []model.StockTransaction `json:"transactions"` // newest first
}
