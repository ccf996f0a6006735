package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/model"
	"github.com/ArapCheruiyot/superkeeper/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuplicateName    = errors.New("name already in use")
	ErrCategoryHasItems = errors.New("category already contains items")
	ErrNotFound         = errors.New("not found")
)

// DuplicateNameError carries the id of the record already holding the name so
// the client can offer opening it for rename instead of a dead-end refusal.
// errors.Is(err, ErrDuplicateName) still matches.
type DuplicateNameError struct {
	ExistingID string
}

func (e *DuplicateNameError) Error() string        { return ErrDuplicateName.Error() }
func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// CategoryService manages the per-shop tree: parent-id adjacency plus the
// denormalized ancestors/fullPath on every node and item. Renames rebuild the
// denormalization for the whole affected subtree in one transaction.
type CategoryService interface {
	CreateRoot(ctx context.Context, shopID uuid.UUID, name string) (*dto.CategoryResponse, error)
	CreateSub(ctx context.Context, shopID, parentID uuid.UUID, name string) (*dto.CategoryResponse, error)
	Rename(ctx context.Context, shopID, id uuid.UUID, name string) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, shopID, id uuid.UUID) (*dto.DeleteCategoryResponse, error)
	Tree(ctx context.Context, shopID uuid.UUID) (*dto.TreeResponse, error)
}

type categoryService struct {
	repo     repository.CategoryRepository
	itemRepo repository.ItemRepository
}

func NewCategoryService(repo repository.CategoryRepository, itemRepo repository.ItemRepository) CategoryService {
	return &categoryService{repo: repo, itemRepo: itemRepo}
}

// CreateRoot adds a top-level category. Names are unique per shop,
// case-insensitively, across the whole tree.
func (s *categoryService) CreateRoot(ctx context.Context, shopID uuid.UUID, name string) (*dto.CategoryResponse, error) {
	name = strings.TrimSpace(name)
	if err := s.checkDuplicate(ctx, shopID, name, uuid.Nil); err != nil {
		return nil, err
	}
	cat := &model.Category{
		ShopID:   shopID,
		Name:     name,
		FullPath: name,
	}
	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return categoryToResponse(cat), nil
}

// CreateSub nests a category under parentID. A category holding items cannot
// gain subcategories — items only ever hang off leaves.
func (s *categoryService) CreateSub(ctx context.Context, shopID, parentID uuid.UUID, name string) (*dto.CategoryResponse, error) {
	name = strings.TrimSpace(name)
	parent, err := s.repo.FindByID(ctx, shopID, parentID)
	if err != nil {
		return nil, notFound(err)
	}
	itemCount, err := s.itemRepo.CountByCategory(ctx, shopID, parentID)
	if err != nil {
		return nil, err
	}
	if itemCount > 0 {
		return nil, ErrCategoryHasItems
	}
	if err := s.checkDuplicate(ctx, shopID, name, uuid.Nil); err != nil {
		return nil, err
	}

	ancestors := append([]model.Ancestor{}, parent.Ancestors...)
	ancestors = append(ancestors, model.Ancestor{ID: parent.ID.String(), Name: parent.Name})
	cat := &model.Category{
		ShopID:    shopID,
		Name:      name,
		ParentID:  &parent.ID,
		Ancestors: ancestors,
		FullPath:  model.JoinPath(ancestors, name),
	}
	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("create subcategory: %w", err)
	}
	return categoryToResponse(cat), nil
}

// Rename changes a node's name and transitively rebuilds ancestors and
// fullPath for every descendant category and item. All paths land in one
// transaction so a reader never sees a half-renamed subtree.
func (s *categoryService) Rename(ctx context.Context, shopID, id uuid.UUID, name string) (*dto.CategoryResponse, error) {
	name = strings.TrimSpace(name)
	cat, err := s.repo.FindByID(ctx, shopID, id)
	if err != nil {
		return nil, notFound(err)
	}
	if cat.Name == name {
		return categoryToResponse(cat), nil
	}
	if err := s.checkDuplicate(ctx, shopID, name, id); err != nil {
		return nil, err
	}

	// The child map is assembled outside the transaction; tree structure is
	// not changing here, only names and derived paths.
	all, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	children := make(map[uuid.UUID][]*model.Category)
	for i := range all {
		if all[i].ParentID != nil {
			children[*all[i].ParentID] = append(children[*all[i].ParentID], &all[i])
		}
	}

	cat.Name = name
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.RenameTx(tx, shopID, id, name); err != nil {
			return err
		}
		return s.rebuildSubtree(tx, shopID, cat, cat.Ancestors, children)
	})
	if err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}

	cat.FullPath = model.JoinPath(cat.Ancestors, name)
	return categoryToResponse(cat), nil
}

// rebuildSubtree rewrites the denormalized path of cat, its items, and
// recursively every descendant. ancestors is cat's own ancestor chain.
func (s *categoryService) rebuildSubtree(tx *gorm.DB, shopID uuid.UUID, cat *model.Category, ancestors []model.Ancestor, children map[uuid.UUID][]*model.Category) error {
	fullPath := model.JoinPath(ancestors, cat.Name)
	if err := s.repo.UpdatePathsTx(tx, cat.ID, ancestors, fullPath); err != nil {
		return err
	}

	// Items carry their category as the last ancestor; their fullPath ends
	// with the item's own name.
	withSelf := append(append([]model.Ancestor{}, ancestors...), model.Ancestor{ID: cat.ID.String(), Name: cat.Name})
	items, err := s.itemRepo.ListByCategoryTx(tx, shopID, cat.ID)
	if err != nil {
		return err
	}
	for i := range items {
		itemPath := model.JoinPath(withSelf, items[i].Name)
		if err := s.itemRepo.UpdatePathsTx(tx, items[i].ID, withSelf, itemPath); err != nil {
			return err
		}
	}

	for _, child := range children[cat.ID] {
		if err := s.rebuildSubtree(tx, shopID, child, withSelf, children); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a single node. It never cascades: children stay in place
// and the response reports how many were left parentless.
func (s *categoryService) Delete(ctx context.Context, shopID, id uuid.UUID) (*dto.DeleteCategoryResponse, error) {
	if _, err := s.repo.FindByID(ctx, shopID, id); err != nil {
		return nil, notFound(err)
	}
	orphans, err := s.repo.CountChildren(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, shopID, id); err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	return &dto.DeleteCategoryResponse{
		Deleted:          id.String(),
		OrphanedChildren: int(orphans),
	}, nil
}

// Tree assembles the full browse structure for one shop in two queries.
func (s *categoryService) Tree(ctx context.Context, shopID uuid.UUID) (*dto.TreeResponse, error) {
	cats, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	itemsByCat := make(map[uuid.UUID][]dto.ItemSummary)
	for i := range items {
		thumb := ""
		if len(items[i].Images) > 0 {
			thumb = items[i].Images[0]
		}
		itemsByCat[items[i].CategoryID] = append(itemsByCat[items[i].CategoryID], dto.ItemSummary{
			ID:         items[i].ID.String(),
			Name:       items[i].Name,
			CategoryID: items[i].CategoryID.String(),
			Thumbnail:  thumb,
		})
	}

	nodes := make(map[uuid.UUID]*dto.CategoryNode, len(cats))
	for i := range cats {
		nodes[cats[i].ID] = &dto.CategoryNode{
			CategoryResponse: *categoryToResponse(&cats[i]),
			Subcategories:    []dto.CategoryNode{},
			Items:            itemsByCat[cats[i].ID],
		}
		if nodes[cats[i].ID].Items == nil {
			nodes[cats[i].ID].Items = []dto.ItemSummary{}
		}
	}

	// Children attach bottom-up; ListByShop orders by created_at so a parent
	// always precedes its children when iterating in reverse is not needed —
	// attach after all nodes exist instead.
	var roots []dto.CategoryNode
	var attach func(id uuid.UUID) dto.CategoryNode
	childIDs := make(map[uuid.UUID][]uuid.UUID)
	for i := range cats {
		if cats[i].ParentID != nil {
			childIDs[*cats[i].ParentID] = append(childIDs[*cats[i].ParentID], cats[i].ID)
		}
	}
	attach = func(id uuid.UUID) dto.CategoryNode {
		n := *nodes[id]
		for _, cid := range childIDs[id] {
			n.Subcategories = append(n.Subcategories, attach(cid))
		}
		return n
	}
	for i := range cats {
		if cats[i].ParentID == nil {
			roots = append(roots, attach(cats[i].ID))
		}
	}
	if roots == nil {
		roots = []dto.CategoryNode{}
	}
	return &dto.TreeResponse{Roots: roots}, nil
}

func (s *categoryService) checkDuplicate(ctx context.Context, shopID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, shopID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != self {
		return &DuplicateNameError{ExistingID: existing.ID.String()}
	}
	return nil
}

func categoryToResponse(c *model.Category) *dto.CategoryResponse {
	var parent *string
	if c.ParentID != nil {
		p := c.ParentID.String()
		parent = &p
	}
	return &dto.CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		ParentID:  parent,
		Ancestors: c.Ancestors,
		FullPath:  c.FullPath,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
