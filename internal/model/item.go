package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction types. The ledger knows exactly two kinds of entry.
const (
	TxnStockIn = "stock_in"
	TxnSale    = "sale"
)

// StockTransaction is one immutable entry of an item's stock ledger.
// Quantity is signed: positive for stock-in, negative for sale. Entries are
// append-only — never edited or deleted; corrections are new entries.
type StockTransaction struct {
	ID            string           `json:"id"` // "<kind>_<unixMillis>_<random>"
	Quantity      int              `json:"quantity"`
	Date          string           `json:"date"`
	Timestamp     int64            `json:"timestamp"`
	Type          string           `json:"type"`
	AddedBy       string           `json:"addedBy,omitempty"`
	SoldBy        string           `json:"soldBy,omitempty"`
	SellPrice     *decimal.Decimal `json:"sellPrice,omitempty"`
	TotalAmount   *decimal.Decimal `json:"totalAmount,omitempty"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
	ReceiptID     string           `json:"receiptId,omitempty"`
}

// Item is a sellable record attached to a leaf category. FullPath extends the
// category's path with the item's own name. Stock is a cached
// derivation of the transaction log: stock == sum(stockTransactions.quantity)
// at all times. The two fields are only ever written together, in one
// persistence operation; divergence is an integrity fault, not a repair case.
type Item struct {
	ID         uuid.UUID                     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopID     uuid.UUID                     `gorm:"type:uuid;not null;index"`
	CategoryID uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Name       string                        `gorm:"not null;index"`
	Ancestors  datatypes.JSONSlice[Ancestor] `gorm:"type:jsonb"`
	FullPath   string                        `gorm:"not null"`
	// Images holds at most two hosted URLs, ordered by capture slot.
	Images            datatypes.JSONSlice[string]           `gorm:"type:jsonb"`
	BuyPrice          *decimal.Decimal                      `gorm:"type:decimal(12,2)"`
	SellPrice         *decimal.Decimal                      `gorm:"type:decimal(12,2)"`
	Stock             int                                   `gorm:"not null;default:0"`
	StockTransactions datatypes.JSONSlice[StockTransaction] `gorm:"type:jsonb"`
	LastTransactionID string
	LastStockUpdate   int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Item) TableName() string { return "items" }

// LedgerSum recomputes stock from the log. Used for the post-append
// consistency check, never to overwrite the cached value.
func (i *Item) LedgerSum() int {
	sum := 0
	for _, t := range i.StockTransactions {
		sum += t.Quantity
	}
	return sum
}

// HasBothImages reports whether the two-photo intake is complete.
func (i *Item) HasBothImages() bool { return len(i.Images) >= 2 }

// NeedsPrices reports whether the price-ensure step still applies.
func (i *Item) NeedsPrices() bool { return i.BuyPrice == nil || i.SellPrice == nil }
