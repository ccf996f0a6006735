package session

import "github.com/shopspring/decimal"

// CartLine is one distinct item in the sales cart. Quantity aggregates
// repeat scans of the same item; the price is frozen at accept time.
type CartLine struct {
	ItemID     string
	CategoryID string
	Name       string
	Thumbnail  string
	SellPrice  decimal.Decimal
	Quantity   int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.SellPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OpenCamera raises the scan view. The cart survives camera restarts within
// a session but not a close.
func (s *Session) OpenCamera() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameraOpen = true
}

// CloseCamera tears down the scan view and discards any uncommitted cart.
func (s *Session) CloseCamera() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameraOpen = false
	s.cart = nil
}

func (s *Session) CameraOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraOpen
}

// AddLine merges by item id: scanning the same item again bumps the quantity
// rather than adding a duplicate row.
func (s *Session) AddLine(line CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].ItemID == line.ItemID {
			s.cart[i].Quantity += line.Quantity
			return
		}
	}
	s.cart = append(s.cart, line)
}

// Lines returns a copy so callers can iterate without holding the lock.
func (s *Session) Lines() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CartLine, len(s.cart))
	copy(out, s.cart)
	return out
}

// SetLines replaces the cart, used to drop committed lines after a partial
// checkout so a retry cannot double-sell them.
func (s *Session) SetLines(lines []CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = lines
}

func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

func (s *Session) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, l := range s.cart {
		total = total.Add(l.Subtotal())
	}
	return total
}
