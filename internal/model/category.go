package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Ancestor is one step of a category's denormalized path, ordered root-first.
type Ancestor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is one node of the per-shop category tree (parent-id adjacency).
// FullPath is always the " > "-joined ancestor names plus the node's own name
// and must be rebuilt for every descendant whenever an ancestor is renamed.
// A category is a leaf iff no other category has it as parent; items may only
// hang off leaves.
type Category struct {
	ID        uuid.UUID                     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShopID    uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Name      string                        `gorm:"not null;index"`
	ParentID  *uuid.UUID                    `gorm:"type:uuid;index"`
	Ancestors datatypes.JSONSlice[Ancestor] `gorm:"type:jsonb"`
	FullPath  string                        `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Category) TableName() string { return "categories" }

// JoinPath builds the canonical fullPath for a node named name under ancestors.
func JoinPath(ancestors []Ancestor, name string) string {
	path := ""
	for _, a := range ancestors {
		path += a.Name + " > "
	}
	return path + name
}
