package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/model"
	"github.com/ArapCheruiyot/superkeeper/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrZeroDelta       = errors.New("a ledger entry cannot have zero quantity")
)

// SaleMeta carries the sale-only fields of a ledger entry. StockIn entries
// carry none of these.
type SaleMeta struct {
	SoldBy        string
	SellPrice     decimal.Decimal
	PaymentMethod string
	ReceiptID     string
}

// LedgerService owns the append-only stock ledger. Every stock change in the
// system funnels through here: a validated entry is appended and the cached
// stock moves by the entry's signed quantity, in one persistence operation.
type LedgerService interface {
	RecordStockIn(ctx context.Context, shopID, itemID uuid.UUID, quantity int, addedBy string) (*model.Item, *model.StockTransaction, error)
	RecordSale(ctx context.Context, shopID, itemID uuid.UUID, quantity int, meta SaleMeta) (*model.Item, *model.StockTransaction, error)
	ListTransactions(ctx context.Context, shopID, itemID uuid.UUID) (*dto.TransactionListResponse, error)
}

type ledgerService struct {
	itemRepo repository.ItemRepository
}

func NewLedgerService(itemRepo repository.ItemRepository) LedgerService {
	return &ledgerService{itemRepo: itemRepo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// RecordStockIn appends a positive entry. Restocks below one unit are
// rejected before anything touches the store.
func (s *ledgerService) RecordStockIn(ctx context.Context, shopID, itemID uuid.UUID, quantity int, addedBy string) (*model.Item, *model.StockTransaction, error) {
	if quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}
	txn := newTransaction(model.TxnStockIn, quantity)
	txn.AddedBy = addedBy
	return s.append(ctx, shopID, itemID, txn)
}

// RecordSale appends a negative entry of exactly -quantity units. The cached
// stock may go negative; the ledger records what happened at the counter, it
// does not police it.
func (s *ledgerService) RecordSale(ctx context.Context, shopID, itemID uuid.UUID, quantity int, meta SaleMeta) (*model.Item, *model.StockTransaction, error) {
	if quantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}
	txn := newTransaction(model.TxnSale, -quantity)
	txn.SoldBy = meta.SoldBy
	txn.PaymentMethod = meta.PaymentMethod
	txn.ReceiptID = meta.ReceiptID
	price := meta.SellPrice
	total := price.Mul(decimal.NewFromInt(int64(quantity)))
	txn.SellPrice = &price
	txn.TotalAmount = &total
	return s.append(ctx, shopID, itemID, txn)
}

func (s *ledgerService) append(ctx context.Context, shopID, itemID uuid.UUID, txn model.StockTransaction) (*model.Item, *model.StockTransaction, error) {
	if txn.Quantity == 0 {
		return nil, nil, ErrZeroDelta
	}

	updated, err := s.itemRepo.AppendTransaction(ctx, shopID, itemID, txn)
	if err != nil {
		return nil, nil, fmt.Errorf("append ledger entry: %w", err)
	}

	// Post-write consistency probe. A divergence here means an out-of-band
	// write bypassed the single-write rule; it is logged, never auto-repaired.
	if sum := updated.LedgerSum(); sum != updated.Stock {
		log.Warn().
			Str("item_id", itemID.String()).
			Int("stock", updated.Stock).
			Int("ledger_sum", sum).
			Msg("ledger: cached stock diverges from transaction log")
	}

	return updated, &txn, nil
}

// ListTransactions returns the full ledger newest-first plus the cached stock.
func (s *ledgerService) ListTransactions(ctx context.Context, shopID, itemID uuid.UUID) (*dto.TransactionListResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, shopID, itemID)
	if err != nil {
		return nil, err
	}
	txns := make([]model.StockTransaction, len(item.StockTransactions))
	for i, t := range item.StockTransactions {
		txns[len(txns)-1-i] = t
	}
	return &dto.TransactionListResponse{
		ItemID:       item.ID.String(),
		Stock:        item.Stock,
		Transactions: txns,
	}, nil
}

// newTransaction builds an entry with a fresh id and the capture timestamps.
func newTransaction(kind string, quantity int) model.StockTransaction {
	now := time.Now()
	return model.StockTransaction{
		ID:        newTransactionID(kind, now),
		Quantity:  quantity,
		Date:      now.Format("2006-01-02"),
		Timestamp: now.UnixMilli(),
		Type:      kind,
	}
}

// newTransactionID returns "<kind>_<unixMillis>_<6 base36>". The random tail
// keeps ids unique across entries created in the same millisecond.
func newTransactionID(kind string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", kind, now.UnixMilli(), randBase36(6))
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}
