package service_test

import (
	"context"
	"testing"

	"github.com/ArapCheruiyot/superkeeper/internal/model"
	"github.com/ArapCheruiyot/superkeeper/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCategorySvc() (service.CategoryService, *stubCategoryRepo, *stubItemRepo) {
	catRepo := newStubCategoryRepo()
	itemRepo := newStubItemRepo()
	return service.NewCategoryService(catRepo, itemRepo), catRepo, itemRepo
}

func TestCreateSub_BuildsAncestorsAndFullPath(t *testing.T) {
	svc, _, _ := buildCategorySvc()
	shopID := uuid.New()

	root, err := svc.CreateRoot(context.Background(), shopID, "Drinks")
	require.NoError(t, err)
	assert.Equal(t, "Drinks", root.FullPath)
	assert.Empty(t, root.Ancestors)

	sub, err := svc.CreateSub(context.Background(), shopID, uuid.MustParse(root.ID), "Sodas")
	require.NoError(t, err)
	assert.Equal(t, "Drinks > Sodas", sub.FullPath)
	require.Len(t, sub.Ancestors, 1)
	assert.Equal(t, root.ID, sub.Ancestors[0].ID)
	assert.Equal(t, "Drinks", sub.Ancestors[0].Name)
}

func TestCreate_RefusesDuplicateNamesCaseInsensitive(t *testing.T) {
	svc, _, _ := buildCategorySvc()
	shopID := uuid.New()

	first, err := svc.CreateRoot(context.Background(), shopID, "Drinks")
	require.NoError(t, err)

	_, err = svc.CreateRoot(context.Background(), shopID, "drinks")
	assert.ErrorIs(t, err, service.ErrDuplicateName)

	// The refusal names the holder so the client can offer a rename.
	var dup *service.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.ExistingID)
}

func TestCreateSub_RefusedWhenParentHoldsItems(t *testing.T) {
	svc, _, itemRepo := buildCategorySvc()
	shopID := uuid.New()

	root, err := svc.CreateRoot(context.Background(), shopID, "Snacks")
	require.NoError(t, err)
	rootID := uuid.MustParse(root.ID)

	_ = itemRepo.Create(context.Background(), &model.Item{
		ShopID: shopID, CategoryID: rootID, Name: "Crisps",
	})

	_, err = svc.CreateSub(context.Background(), shopID, rootID, "Sweet")
	assert.ErrorIs(t, err, service.ErrCategoryHasItems)
}

func TestRename_RebuildsDescendantPathsTransitively(t *testing.T) {
	svc, catRepo, itemRepo := buildCategorySvc()
	shopID := uuid.New()

	root, _ := svc.CreateRoot(context.Background(), shopID, "Food")
	mid, _ := svc.CreateSub(context.Background(), shopID, uuid.MustParse(root.ID), "Grains")
	leaf, _ := svc.CreateSub(context.Background(), shopID, uuid.MustParse(mid.ID), "Rice")
	leafID := uuid.MustParse(leaf.ID)

	item := &model.Item{
		ShopID:     shopID,
		CategoryID: leafID,
		Name:       "Basmati 1kg",
		Ancestors: []model.Ancestor{
			{ID: root.ID, Name: "Food"},
			{ID: mid.ID, Name: "Grains"},
			{ID: leaf.ID, Name: "Rice"},
		},
		FullPath: "Food > Grains > Rice > Basmati 1kg",
	}
	require.NoError(t, itemRepo.Create(context.Background(), item))

	renamed, err := svc.Rename(context.Background(), shopID, uuid.MustParse(root.ID), "Groceries")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", renamed.FullPath)

	storedMid, _ := catRepo.FindByID(context.Background(), shopID, uuid.MustParse(mid.ID))
	assert.Equal(t, "Groceries > Grains", storedMid.FullPath)
	assert.Equal(t, "Groceries", storedMid.Ancestors[0].Name)

	storedLeaf, _ := catRepo.FindByID(context.Background(), shopID, leafID)
	assert.Equal(t, "Groceries > Grains > Rice", storedLeaf.FullPath)

	storedItem, _ := itemRepo.FindByID(context.Background(), shopID, item.ID)
	assert.Equal(t, "Groceries > Grains > Rice > Basmati 1kg", storedItem.FullPath)
	require.Len(t, storedItem.Ancestors, 3)
	assert.Equal(t, "Groceries", storedItem.Ancestors[0].Name)
	assert.Equal(t, "Rice", storedItem.Ancestors[2].Name)
}

func TestRename_RefusesNameAlreadyTaken(t *testing.T) {
	svc, _, _ := buildCategorySvc()
	shopID := uuid.New()

	_, _ = svc.CreateRoot(context.Background(), shopID, "Drinks")
	other, _ := svc.CreateRoot(context.Background(), shopID, "Snacks")

	_, err := svc.Rename(context.Background(), shopID, uuid.MustParse(other.ID), "Drinks")
	assert.ErrorIs(t, err, service.ErrDuplicateName)
}

func TestRename_NameWriteSharesRebuildTransaction(t *testing.T) {
	svc, catRepo, _ := buildCategorySvc()
	shopID := uuid.New()

	root, _ := svc.CreateRoot(context.Background(), shopID, "Food")
	rootID := uuid.MustParse(root.ID)

	// A failing path rebuild must surface through Rename so the enclosing
	// transaction can roll the name write back with it.
	catRepo.failUpdatePaths[rootID] = assert.AnError
	_, err := svc.Rename(context.Background(), shopID, rootID, "Groceries")
	require.Error(t, err)
	assert.Equal(t, 1, catRepo.renameTxCalls)

	catRepo.failUpdatePaths = map[uuid.UUID]error{}
	renamed, err := svc.Rename(context.Background(), shopID, rootID, "Pantry")
	require.NoError(t, err)
	assert.Equal(t, "Pantry", renamed.FullPath)
	assert.Equal(t, 2, catRepo.renameTxCalls)
}

func TestDelete_NeverCascades(t *testing.T) {
	svc, catRepo, _ := buildCategorySvc()
	shopID := uuid.New()

	root, _ := svc.CreateRoot(context.Background(), shopID, "Household")
	_, _ = svc.CreateSub(context.Background(), shopID, uuid.MustParse(root.ID), "Cleaning")
	_, _ = svc.CreateSub(context.Background(), shopID, uuid.MustParse(root.ID), "Kitchen")

	resp, err := svc.Delete(context.Background(), shopID, uuid.MustParse(root.ID))
	require.NoError(t, err)
	assert.Equal(t, root.ID, resp.Deleted)
	assert.Equal(t, 2, resp.OrphanedChildren)

	// Children survive the parent.
	remaining, _ := catRepo.ListByShop(context.Background(), shopID)
	assert.Len(t, remaining, 2)
}

func TestTree_NestsCategoriesAndAttachesItems(t *testing.T) {
	svc, _, itemRepo := buildCategorySvc()
	shopID := uuid.New()

	root, _ := svc.CreateRoot(context.Background(), shopID, "Drinks")
	sub, _ := svc.CreateSub(context.Background(), shopID, uuid.MustParse(root.ID), "Sodas")
	subID := uuid.MustParse(sub.ID)

	_ = itemRepo.Create(context.Background(), &model.Item{
		ShopID:     shopID,
		CategoryID: subID,
		Name:       "Cola 500ml",
		Images:     []string{"https://img.example.test/cola.jpg"},
	})

	tree, err := svc.Tree(context.Background(), shopID)
	require.NoError(t, err)
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, "Drinks", tree.Roots[0].Name)
	require.Len(t, tree.Roots[0].Subcategories, 1)

	sodas := tree.Roots[0].Subcategories[0]
	assert.Equal(t, "Sodas", sodas.Name)
	require.Len(t, sodas.Items, 1)
	assert.Equal(t, "Cola 500ml", sodas.Items[0].Name)
	assert.Equal(t, "https://img.example.test/cola.jpg", sodas.Items[0].Thumbnail)
}
