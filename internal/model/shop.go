package model

import (
	"time"

	"github.com/google/uuid"
)

// Shop is the tenant root. Every category, item and sale belongs to exactly
// one shop; the id comes from the identity token, never from request bodies.
type Shop struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Shop) TableName() string { return "shops" }
