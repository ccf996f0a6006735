package dto

// CaptureBeginRequest opens the capture flow for one photo slot (0 or 1).
type CaptureBeginRequest struct {
	Slot int `json:"slot" validate:"min=0,max=1"`
}
