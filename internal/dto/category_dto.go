package dto

import "github.com/ArapCheruiyot/superkeeper/internal/model"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type RenameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CategoryResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	ParentID  *string          `json:"parent_id"`
	Ancestors []model.Ancestor `json:"ancestors"`
	FullPath  string           `json:"full_path"`
}

// CategoryNode is one node of the rendered tree: subcategories and items are
// mutually exclusive in practice (leaf enforcement), but both slices are
// always present so the renderer never branches on nil.
type CategoryNode struct {
	CategoryResponse
	Subcategories []CategoryNode    `json:"subcategories"`
	Items         []ItemSummary     `json:"items"`
}

type TreeResponse struct {
	Roots []CategoryNode `json:"roots"`
}

// DeleteCategoryResponse reports the non-cascading delete outcome: children
// are left in place and must be re-parented or removed by the caller.
type DeleteCategoryResponse struct {
	Deleted          string `json:"deleted"`
	OrphanedChildren int    `json:"orphaned_children"`
}
