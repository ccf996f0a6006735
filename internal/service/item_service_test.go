package service_test

import (
	"context"
	"testing"

	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/model"
	"github.com/ArapCheruiyot/superkeeper/internal/service"
	"github.com/ArapCheruiyot/superkeeper/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildItemSvc() (service.ItemService, *stubItemRepo, *stubCategoryRepo, *stubQueue) {
	itemRepo := newStubItemRepo()
	catRepo := newStubCategoryRepo()
	queue := &stubQueue{}
	return service.NewItemService(itemRepo, catRepo, queue), itemRepo, catRepo, queue
}

func seedLeaf(catRepo *stubCategoryRepo, shopID uuid.UUID, name string) *model.Category {
	cat := &model.Category{ShopID: shopID, Name: name, FullPath: name}
	_ = catRepo.Create(context.Background(), cat)
	return cat
}

func TestCreateItem_ExtendsCategoryPathWithOwnName(t *testing.T) {
	svc, _, catRepo, _ := buildItemSvc()
	shopID := uuid.New()
	leaf := seedLeaf(catRepo, shopID, "Sodas")

	resp, err := svc.Create(context.Background(), shopID, leaf.ID, "Cola 500ml")
	require.NoError(t, err)

	assert.Equal(t, "Sodas > Cola 500ml", resp.FullPath)
	require.Len(t, resp.Ancestors, 1)
	assert.Equal(t, leaf.ID.String(), resp.Ancestors[0].ID)
	assert.Empty(t, resp.Images)
	assert.True(t, resp.NeedsPrices)
}

func TestCreateItem_RefusedUnderNonLeaf(t *testing.T) {
	svc, _, catRepo, _ := buildItemSvc()
	shopID := uuid.New()
	parent := seedLeaf(catRepo, shopID, "Drinks")
	child := &model.Category{ShopID: shopID, Name: "Sodas", ParentID: &parent.ID, FullPath: "Drinks > Sodas"}
	_ = catRepo.Create(context.Background(), child)

	_, err := svc.Create(context.Background(), shopID, parent.ID, "Cola 500ml")
	assert.ErrorIs(t, err, service.ErrCategoryNotLeaf)
}

func TestCreateItem_RefusesDuplicateNameInCategory(t *testing.T) {
	svc, _, catRepo, _ := buildItemSvc()
	shopID := uuid.New()
	leaf := seedLeaf(catRepo, shopID, "Sodas")

	_, err := svc.Create(context.Background(), shopID, leaf.ID, "Cola 500ml")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), shopID, leaf.ID, "cola 500ml")
	assert.ErrorIs(t, err, service.ErrDuplicateName)
}

func TestSaveEdits_AlwaysSavesAndCoercesMissingPrices(t *testing.T) {
	svc, itemRepo, catRepo, _ := buildItemSvc()
	shopID := uuid.New()
	leaf := seedLeaf(catRepo, shopID, "Sodas")
	created, err := svc.Create(context.Background(), shopID, leaf.ID, "Cola 500ml")
	require.NoError(t, err)
	itemID := uuid.MustParse(created.ID)

	sess := session.New(shopID, "dev-1")
	require.NoError(t, sess.OpenCategories())
	stored, _ := itemRepo.FindByID(context.Background(), shopID, itemID)
	require.NoError(t, sess.OpenItem(stored))
	require.NoError(t, sess.EnterEdit())

	sell := decimal.NewFromInt(60)
	resp, err := svc.SaveEdits(context.Background(), sess, dto.SaveItemRequest{
		Name:      "Cola 500ml Bottle",
		SellPrice: &sell, // buy price omitted
	})
	require.NoError(t, err)

	assert.Equal(t, "Cola 500ml Bottle", resp.Name)
	assert.Equal(t, "Sodas > Cola 500ml Bottle", resp.FullPath) // rename rewrites the path tail
	require.NotNil(t, resp.BuyPrice)
	assert.Equal(t, "0", resp.BuyPrice.String()) // omitted coerces to zero
	assert.Equal(t, "60", resp.SellPrice.String())

	// Toggling edit off saved and left edit mode; the cache follows.
	assert.False(t, sess.EditMode())
	assert.Equal(t, "Cola 500ml Bottle", sess.Item().Name)
}

func TestSaveEdits_RefusedWhileSaveInFlight(t *testing.T) {
	svc, itemRepo, catRepo, _ := buildItemSvc()
	shopID := uuid.New()
	leaf := seedLeaf(catRepo, shopID, "Sodas")
	created, _ := svc.Create(context.Background(), shopID, leaf.ID, "Krest 300ml")
	itemID := uuid.MustParse(created.ID)

	sess := session.New(shopID, "dev-1")
	require.NoError(t, sess.OpenCategories())
	stored, _ := itemRepo.FindByID(context.Background(), shopID, itemID)
	require.NoError(t, sess.OpenItem(stored))
	require.NoError(t, sess.EnterEdit())

	// A save already in flight holds the guard; the double submission bounces.
	require.True(t, sess.TryAcquire("save"))
	sell := decimal.NewFromInt(50)
	_, err := svc.SaveEdits(context.Background(), sess, dto.SaveItemRequest{Name: "Krest 300ml", SellPrice: &sell})
	assert.ErrorIs(t, err, session.ErrBusy)
	assert.True(t, sess.EditMode()) // nothing saved, still editing

	sess.Release("save")
	_, err = svc.SaveEdits(context.Background(), sess, dto.SaveItemRequest{Name: "Krest 300ml", SellPrice: &sell})
	require.NoError(t, err)
	assert.False(t, sess.EditMode())
}

func TestSaveEdits_RequiresEditMode(t *testing.T) {
	svc, itemRepo, catRepo, _ := buildItemSvc()
	shopID := uuid.New()
	leaf := seedLeaf(catRepo, shopID, "Sodas")
	created, _ := svc.Create(context.Background(), shopID, leaf.ID, "Fanta 500ml")
	itemID := uuid.MustParse(created.ID)

	sess := session.New(shopID, "dev-1")
	require.NoError(t, sess.OpenCategories())
	stored, _ := itemRepo.FindByID(context.Background(), shopID, itemID)
	require.NoError(t, sess.OpenItem(stored))

	sell := decimal.NewFromInt(60)
	_, err := svc.SaveEdits(context.Background(), sess, dto.SaveItemRequest{Name: "Fanta", SellPrice: &sell})
	assert.ErrorIs(t, err, session.ErrNotEditing)
}

func TestSaveEdits_EnqueuesSnapshotWhenFullyCaptured(t *testing.T) {
	svc, itemRepo, catRepo, queue := buildItemSvc()
	shopID := uuid.New()
	leaf := seedLeaf(catRepo, shopID, "Sodas")

	item := &model.Item{
		ShopID:     shopID,
		CategoryID: leaf.ID,
		Name:       "Sprite 500ml",
		Ancestors:  []model.Ancestor{{ID: leaf.ID.String(), Name: "Sodas"}},
		FullPath:   "Sodas > Sprite 500ml",
		Images:     []string{"https://img.example.test/a.jpg", "https://img.example.test/b.jpg"},
	}
	require.NoError(t, itemRepo.Create(context.Background(), item))

	sess := session.New(shopID, "dev-1")
	require.NoError(t, sess.OpenCategories())
	stored, _ := itemRepo.FindByID(context.Background(), shopID, item.ID)
	require.NoError(t, sess.OpenItem(stored))
	require.NoError(t, sess.EnterEdit())

	buy, sell := decimal.NewFromInt(40), decimal.NewFromInt(60)
	_, err := svc.SaveEdits(context.Background(), sess, dto.SaveItemRequest{
		Name: "Sprite 500ml", BuyPrice: &buy, SellPrice: &sell,
	})
	require.NoError(t, err)

	require.Len(t, queue.itemEmbeds, 1)
	snapshot := queue.itemEmbeds[0]
	assert.Equal(t, "Sprite 500ml", snapshot.ItemName)
	assert.Equal(t, "Sodas", snapshot.CategoryPath)
	assert.Len(t, snapshot.Images, 2)
	assert.Equal(t, "60", snapshot.SellingPrice.String())
}

func TestSaveEdits_NoSnapshotWhileIntakeIncomplete(t *testing.T) {
	svc, itemRepo, catRepo, queue := buildItemSvc()
	shopID := uuid.New()
	leaf := seedLeaf(catRepo, shopID, "Sodas")
	created, _ := svc.Create(context.Background(), shopID, leaf.ID, "Stoney 300ml")
	itemID := uuid.MustParse(created.ID)

	sess := session.New(shopID, "dev-1")
	require.NoError(t, sess.OpenCategories())
	stored, _ := itemRepo.FindByID(context.Background(), shopID, itemID)
	require.NoError(t, sess.OpenItem(stored))
	require.NoError(t, sess.EnterEdit())

	buy, sell := decimal.NewFromInt(25), decimal.NewFromInt(45)
	_, err := svc.SaveEdits(context.Background(), sess, dto.SaveItemRequest{
		Name: "Stoney 300ml", BuyPrice: &buy, SellPrice: &sell,
	})
	require.NoError(t, err)

	// No images yet — the recognizer has nothing to re-embed.
	assert.Empty(t, queue.itemEmbeds)
}
