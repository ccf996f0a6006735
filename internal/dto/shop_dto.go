package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SetShopNameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ShopResponse flags NeedsName on first sign-in so the client can prompt for
// a shop name before anything else.
type ShopResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NeedsName bool   `json:"needs_name"`
}

// SessionStateResponse reflects the overlay machine after a transition, so
// the client renders from server truth instead of tracking its own copy.
type SessionStateResponse struct {
	State        string `json:"state"`
	CapturePhase string `json:"capture_phase,omitempty"`
	EditMode     bool   `json:"edit_mode"`
	CartCount    int    `json:"cart_count"`
	CameraOpen   bool   `json:"camera_open"`
}
