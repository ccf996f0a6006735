package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/infra"
	"github.com/ArapCheruiyot/superkeeper/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty")

// FrameScanner is the visual-match boundary. Satisfied by
// infra.RecognizerClient.
type FrameScanner interface {
	Scan(ctx context.Context, shopID, frame string) (*infra.ScanMatchResult, error)
}

// PartialSaleError reports a checkout where some lines committed and some
// did not. Committed lines have already left the cart; only the failed ones
// remain, so a retry can never double-sell.
type PartialSaleError struct {
	ReceiptID string
	Committed []string
	Failed    []string
}

func (e *PartialSaleError) Error() string {
	return fmt.Sprintf("sale partially completed: %d line(s) failed (%s)", len(e.Failed), strings.Join(e.Failed, ", "))
}

// SalesService drives the scan-to-sell flow: camera session, match
// presentation, cart mutations and checkout. Scan matches are proposals; the
// cart only changes on an explicit accept.
type SalesService interface {
	OpenCamera(sess *session.Session)
	CloseCamera(sess *session.Session)
	Scan(ctx context.Context, sess *session.Session, frame string) (*dto.ScanResponse, error)
	Accept(sess *session.Session, req dto.AcceptMatchRequest) *dto.CartResponse
	RemoveLine(sess *session.Session, itemID string) *dto.CartResponse
	Cart(sess *session.Session) *dto.CartResponse
	CompleteSale(ctx context.Context, sess *session.Session, soldBy string, req dto.CompleteSaleRequest) (*dto.ReceiptResponse, error)
}

type salesService struct {
	scanner FrameScanner
	ledger  LedgerService
}

func NewSalesService(scanner FrameScanner, ledger LedgerService) SalesService {
	return &salesService{scanner: scanner, ledger: ledger}
}

func (s *salesService) OpenCamera(sess *session.Session) { sess.OpenCamera() }

// CloseCamera tears the scan view down. An uncommitted cart is discarded;
// nothing was ever written for it.
func (s *salesService) CloseCamera(sess *session.Session) { sess.CloseCamera() }

// Scan forwards one frame to the recognizer. A second scan while one is in
// flight is refused; the client throttles, the server enforces.
func (s *salesService) Scan(ctx context.Context, sess *session.Session, frame string) (*dto.ScanResponse, error) {
	if !sess.TryAcquire("scan") {
		return nil, session.ErrBusy
	}
	defer sess.Release("scan")

	match, err := s.scanner.Scan(ctx, sess.ShopID.String(), frame)
	if err != nil {
		return nil, fmt.Errorf("scan frame: %w", err)
	}
	if match == nil {
		return &dto.ScanResponse{}, nil
	}
	return &dto.ScanResponse{Match: &dto.ScanMatch{
		ItemID:     match.ItemID,
		CategoryID: match.CategoryID,
		Name:       match.Name,
		Score:      match.Score,
		Thumbnail:  match.Thumbnail,
		SellPrice:  decimal.NewFromFloat(match.SellPrice),
	}}, nil
}

// Accept commits a presented match into the cart, merging by item id. The
// price is frozen as presented; a later price edit does not touch open carts.
func (s *salesService) Accept(sess *session.Session, req dto.AcceptMatchRequest) *dto.CartResponse {
	sess.AddLine(session.CartLine{
		ItemID:     req.ItemID,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Thumbnail:  req.Thumbnail,
		SellPrice:  req.SellPrice,
		Quantity:   req.Quantity,
	})
	return s.Cart(sess)
}

func (s *salesService) RemoveLine(sess *session.Session, itemID string) *dto.CartResponse {
	lines := sess.Lines()
	kept := lines[:0]
	for _, l := range lines {
		if l.ItemID != itemID {
			kept = append(kept, l)
		}
	}
	sess.SetLines(kept)
	return s.Cart(sess)
}

func (s *salesService) Cart(sess *session.Session) *dto.CartResponse {
	lines := sess.Lines()
	out := &dto.CartResponse{Lines: make([]dto.CartLineResponse, 0, len(lines)), Total: decimal.Zero}
	for _, l := range lines {
		out.Lines = append(out.Lines, cartLineToResponse(l))
		out.Total = out.Total.Add(l.Subtotal())
	}
	return out
}

// CompleteSale writes one sale ledger entry per cart line, all sharing one
// receipt id. Lines commit independently: a failure on line N does not roll
// back lines 1..N-1. Committed lines leave the cart immediately either way.
func (s *salesService) CompleteSale(ctx context.Context, sess *session.Session, soldBy string, req dto.CompleteSaleRequest) (*dto.ReceiptResponse, error) {
	if !sess.TryAcquire("checkout") {
		return nil, session.ErrBusy
	}
	defer sess.Release("checkout")

	lines := sess.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	receiptID := newReceiptID(now)

	var failed []session.CartLine
	var committed, failedNames []string
	for _, line := range lines {
		itemID, err := uuid.Parse(line.ItemID)
		if err == nil {
			_, _, err = s.ledger.RecordSale(ctx, sess.ShopID, itemID, line.Quantity, SaleMeta{
				SoldBy:        soldBy,
				SellPrice:     line.SellPrice,
				PaymentMethod: req.PaymentMethod,
				ReceiptID:     receiptID,
			})
		}
		if err != nil {
			log.Error().
				Err(err).
				Str("item_id", line.ItemID).
				Str("receipt_id", receiptID).
				Msg("sales: line failed to commit")
			failed = append(failed, line)
			failedNames = append(failedNames, line.Name)
			continue
		}
		committed = append(committed, line.Name)
	}

	if len(failed) > 0 {
		sess.SetLines(failed)
		return nil, &PartialSaleError{ReceiptID: receiptID, Committed: committed, Failed: failedNames}
	}

	// Receipt is built from what was submitted, never re-read from the store.
	receipt := &dto.ReceiptResponse{
		ReceiptID:     receiptID,
		Date:          now.Format("2006-01-02"),
		Time:          now.Format("15:04"),
		SoldBy:        soldBy,
		PaymentMethod: req.PaymentMethod,
		Lines:         make([]dto.CartLineResponse, 0, len(lines)),
		Total:         decimal.Zero,
	}
	for _, l := range lines {
		receipt.Lines = append(receipt.Lines, cartLineToResponse(l))
		receipt.Total = receipt.Total.Add(l.Subtotal())
	}

	sess.ClearCart()
	sess.CloseCamera()
	return receipt, nil
}

func cartLineToResponse(l session.CartLine) dto.CartLineResponse {
	return dto.CartLineResponse{
		ItemID:    l.ItemID,
		Name:      l.Name,
		Thumbnail: l.Thumbnail,
		SellPrice: l.SellPrice,
		Quantity:  l.Quantity,
		Subtotal:  l.Subtotal(),
	}
}

// newReceiptID returns "RCP-<unixMillis>-<6 upper base36>".
func newReceiptID(now time.Time) string {
	return fmt.Sprintf("RCP-%d-%s", now.UnixMilli(), strings.ToUpper(randBase36(6)))
}
