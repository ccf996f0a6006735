package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ScanRequest carries one encoded video frame. The data-URL prefix the camera
// produces is accepted and stripped before forwarding to the recognizer.
type ScanRequest struct {
	Frame string `json:"frame" validate:"required"`
}

// AcceptMatchRequest turns a presented scan candidate into a cart mutation.
type AcceptMatchRequest struct {
	ItemID     string          `json:"item_id" validate:"required"`
	CategoryID string          `json:"category_id" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	Thumbnail  string          `json:"thumbnail"`
	SellPrice  decimal.Decimal `json:"sell_price"`
	Quantity   int             `json:"quantity" validate:"required,gte=1"`
}

type CompleteSaleRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash mpesa card credit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ScanMatch mirrors the recognizer's best-match payload. A nil Match in
// ScanResponse means no candidate cleared the backend's confidence threshold.
type ScanMatch struct {
	ItemID     string          `json:"item_id"`
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Score      float64         `json:"score"`
	Thumbnail  string          `json:"thumbnail"`
	SellPrice  decimal.Decimal `json:"sellPrice"`
}

type ScanResponse struct {
	Match *ScanMatch `json:"match"`
}

type CartLineResponse struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Thumbnail string          `json:"thumbnail"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Lines []CartLineResponse `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}

// ReceiptResponse is a pure presentation artifact built from what was
// submitted, never re-queried from the store.
type ReceiptResponse struct {
	ReceiptID     string             `json:"receipt_id"`
	Date          string             `json:"date"`
	Time          string             `json:"time"`
	SoldBy        string             `json:"sold_by"`
	PaymentMethod string             `json:"payment_method"`
	Lines         []CartLineResponse `json:"lines"`
	Total         decimal.Decimal    `json:"total"`
}
