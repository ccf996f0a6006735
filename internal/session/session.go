// Package session holds the per-device UI session state: which overlay is
// showing, the cached current item, the capture phase and the sales cart.
// The flow is logically single-threaded (one operator, one device) but HTTP
// requests can still race, so every transition goes through the mutex.
package session

import (
	"errors"
	"sync"

	"github.com/ArapCheruiyot/superkeeper/internal/model"

	"github.com/google/uuid"
)

// State is the overlay machine's position. Item detail is only reachable
// from the category browser and returns there on close; the shared backdrop
// stays up for both.
type State string

const (
	StateClosed         State = "closed"
	StateCategoriesOpen State = "categories_open"
	StateItemDetailOpen State = "item_detail_open"
)

// CapturePhase tracks the two-photo intake flow for the open item. The
// processing phases gate the overlay close action: an in-flight capture must
// not be orphaned by a close.
type CapturePhase string

const (
	PhaseNone        CapturePhase = ""
	PhaseProcessing1 CapturePhase = "processing-image-1"
	PhaseAwaiting2   CapturePhase = "awaiting-image-2"
	PhaseProcessing2 CapturePhase = "processing-image-2"
)

var (
	ErrNotCategoriesOpen = errors.New("category browser is not open")
	ErrNoItemOpen        = errors.New("no item detail is open")
	ErrCaptureInProgress = errors.New("finish image capture first")
	ErrCaptureNotActive  = errors.New("no capture in progress")
	ErrWrongSlot         = errors.New("capture slot does not match item state")
	ErrNotEditing        = errors.New("not in edit mode")
	ErrBusy              = errors.New("operation already in flight")
)

// Session is the mutable state owned by one device's active overlay plus its
// sales camera. Opening a different item replaces the cached item wholesale.
type Session struct {
	mu         sync.Mutex
	ShopID     uuid.UUID
	Device     string
	state      State
	item       *model.Item
	editMode   bool
	phase      CapturePhase
	cart       []CartLine
	cameraOpen bool
	busy       map[string]bool
}

func New(shopID uuid.UUID, device string) *Session {
	return &Session{
		ShopID: shopID,
		Device: device,
		state:  StateClosed,
		busy:   make(map[string]bool),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Phase() CapturePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

// Item returns the cached current item, nil when no detail view is open.
func (s *Session) Item() *model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item
}

// SetItem refreshes the cache after a persistence round-trip.
func (s *Session) SetItem(item *model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.item = item
}

// ── Overlay transitions ──────────────────────────────────────────────────────

// OpenCategories raises the category browser (and the shared backdrop).
func (s *Session) OpenCategories() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseProcessing1 || s.phase == PhaseProcessing2 {
		return ErrCaptureInProgress
	}
	s.state = StateCategoriesOpen
	s.item = nil
	s.editMode = false
	s.phase = PhaseNone
	return nil
}

// OpenItem swaps the category content for an item detail view. The capture
// phase resumes from the item's persisted images: exactly one image lands in
// awaiting-image-2, never back at capture 1.
func (s *Session) OpenItem(item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCategoriesOpen {
		return ErrNotCategoriesOpen
	}
	s.state = StateItemDetailOpen
	s.item = item
	s.editMode = false
	if len(item.Images) == 1 {
		s.phase = PhaseAwaiting2
	} else {
		s.phase = PhaseNone
	}
	return nil
}

// CloseItem returns to the category browser. Refused while a capture is in a
// processing phase so an in-flight upload is never orphaned.
func (s *Session) CloseItem() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateItemDetailOpen {
		return ErrNoItemOpen
	}
	if s.phase == PhaseProcessing1 || s.phase == PhaseProcessing2 {
		return ErrCaptureInProgress
	}
	s.state = StateCategoriesOpen
	s.item = nil
	s.editMode = false
	s.phase = PhaseNone
	return nil
}

// CloseAll is the backdrop-level close: everything comes down. The same
// capture guard applies.
func (s *Session) CloseAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseProcessing1 || s.phase == PhaseProcessing2 {
		return ErrCaptureInProgress
	}
	s.state = StateClosed
	s.item = nil
	s.editMode = false
	s.phase = PhaseNone
	return nil
}

// ── Edit mode ────────────────────────────────────────────────────────────────

// EnterEdit swaps the detail view to editable fields. Nothing persists yet.
func (s *Session) EnterEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateItemDetailOpen {
		return ErrNoItemOpen
	}
	s.editMode = true
	return nil
}

// ExitEdit flips back to view mode. Leaving edit always saves — the caller
// persists first, then calls this; there is no cancel path.
func (s *Session) ExitEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editMode {
		return ErrNotEditing
	}
	s.editMode = false
	return nil
}

// ── Capture phase transitions ────────────────────────────────────────────────

// StartCapture enters the processing phase for a slot. Slot 0 is only valid
// on an item with no images; slot 1 only with exactly one.
func (s *Session) StartCapture(slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateItemDetailOpen || s.item == nil {
		return ErrNoItemOpen
	}
	if s.phase == PhaseProcessing1 || s.phase == PhaseProcessing2 {
		return ErrCaptureInProgress
	}
	switch slot {
	case 0:
		if len(s.item.Images) != 0 {
			return ErrWrongSlot
		}
		s.phase = PhaseProcessing1
	case 1:
		if len(s.item.Images) != 1 {
			return ErrWrongSlot
		}
		s.phase = PhaseProcessing2
	default:
		return ErrWrongSlot
	}
	return nil
}

// StartRetake re-enters a processing phase for an already-filled slot while
// editing. The ledger and the other slot are untouched by a retake.
func (s *Session) StartRetake(slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateItemDetailOpen || s.item == nil {
		return ErrNoItemOpen
	}
	if !s.editMode {
		return ErrNotEditing
	}
	if s.phase == PhaseProcessing1 || s.phase == PhaseProcessing2 {
		return ErrCaptureInProgress
	}
	if slot < 0 || slot >= len(s.item.Images) {
		return ErrWrongSlot
	}
	if slot == 0 {
		s.phase = PhaseProcessing1
	} else {
		s.phase = PhaseProcessing2
	}
	return nil
}

// FinishCapture leaves the processing phase after a successful persist.
func (s *Session) FinishCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseProcessing1 && s.phase != PhaseProcessing2 {
		return ErrCaptureNotActive
	}
	s.settlePhaseLocked()
	return nil
}

// AbortCapture reverts to the stable pre-step phase after a cancellation or
// a failed upload. Prior persisted state is untouched.
func (s *Session) AbortCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseProcessing1 && s.phase != PhaseProcessing2 {
		return ErrCaptureNotActive
	}
	s.settlePhaseLocked()
	return nil
}

// settlePhaseLocked derives the stable phase from the cached item: one
// persisted image means the capture-2 CTA stays up, anything else is idle.
func (s *Session) settlePhaseLocked() {
	if s.item != nil && len(s.item.Images) == 1 {
		s.phase = PhaseAwaiting2
	} else {
		s.phase = PhaseNone
	}
}

// ── In-flight guards ─────────────────────────────────────────────────────────

// TryAcquire marks an operation in flight, mirroring the disabled-button
// pattern: a second submission while one is pending is refused.
func (s *Session) TryAcquire(op string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[op] {
		return false
	}
	s.busy[op] = true
	return true
}

func (s *Session) Release(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, op)
}

// ── Snapshot ─────────────────────────────────────────────────────────────────

// Snapshot is a point-in-time view for rendering.
type Snapshot struct {
	State        State
	CapturePhase CapturePhase
	EditMode     bool
	CartCount    int
	CameraOpen   bool
}

func (s *Session) Snap() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, l := range s.cart {
		count += l.Quantity
	}
	return Snapshot{
		State:        s.state,
		CapturePhase: s.phase,
		EditMode:     s.editMode,
		CartCount:    count,
		CameraOpen:   s.cameraOpen,
	}
}
