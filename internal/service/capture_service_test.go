package service_test

import (
	"context"
	"strings"
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

func buildCaptureSvc() (service.CaptureService, *stubItemRepo, *stubUploader, *stubQueue) {
	repo := newStubItemRepo()
	uploader := &stubUploader{}
	queue := &stubQueue{}
	return service.NewCaptureService(repo, uploader, queue), repo, uploader, queue
}

func openItemSession(t *testing.T, repo *stubItemRepo, shopID uuid.UUID, itemID uuid.UUID) *session.Session {
	t.Helper()
	sess := session.New(shopID, "dev-1")
	require.NoError(t, sess.OpenCategories())
	item, err := repo.FindByID(context.Background(), shopID, itemID)
	require.NoError(t, err)
	require.NoError(t, sess.OpenItem(item))
	return sess
}

func TestCaptureFirstPhoto_PersistsImageAndInitializesLedger(t *testing.T) {
	svc, repo, _, queue := buildCaptureSvc()
	shopID := uuid.New()
	item := &model.Item{ShopID: shopID, CategoryID: uuid.New(), Name: "Torch"}
	require.NoError(t, repo.Create(context.Background(), item))

	sess := openItemSession(t, repo, shopID, item.ID)
	require.NoError(t, svc.Begin(sess, 0))
	assert.Equal(t, session.PhaseProcessing1, sess.Phase())

	resp, err := svc.Complete(context.Background(), sess, "torch-front.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	require.Len(t, resp.Images, 1)
	assert.Equal(t, 0, resp.Stock)
	assert.Equal(t, 0, resp.TransactionCount)
	assert.True(t, resp.NeedsSecondImage)

	// First persist also initializes the ledger fields.
	stored, _ := repo.FindByID(context.Background(), shopID, item.ID)
	assert.NotNil(t, stored.StockTransactions)
	assert.Empty(t, stored.StockTransactions)

	// One photo in, the flow parks on the second-capture prompt.
	assert.Equal(t, session.PhaseAwaiting2, sess.Phase())

	require.Len(t, queue.imageSaved, 1)
	notify := queue.imageSaved[0]
	assert.Equal(t, "image_saved", notify.Event)
	assert.Equal(t, 0, notify.ImageIndex)
	assert.Equal(t, item.ID.String(), notify.ItemID)
	assert.Equal(t, shopID.String(), notify.ShopID)
}

func TestCaptureSecondPhoto_CompletesIntake(t *testing.T) {
	svc, repo, _, queue := buildCaptureSvc()
	shopID := uuid.New()
	item := &model.Item{
		ShopID: shopID, CategoryID: uuid.New(), Name: "Torch",
		Images: []string{"https://img.example.test/front.jpg"},
	}
	require.NoError(t, repo.Create(context.Background(), item))

	sess := openItemSession(t, repo, shopID, item.ID)
	// Re-opening an item with one image resumes at the second capture.
	assert.Equal(t, session.PhaseAwaiting2, sess.Phase())

	// Slot 0 is already filled; only slot 1 is valid now.
	assert.ErrorIs(t, svc.Begin(sess, 0), session.ErrWrongSlot)
	require.NoError(t, svc.Begin(sess, 1))
	assert.Equal(t, session.PhaseProcessing2, sess.Phase())

	resp, err := svc.Complete(context.Background(), sess, "back.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	require.Len(t, resp.Images, 2)
	assert.False(t, resp.NeedsSecondImage)
	assert.Equal(t, session.PhaseNone, sess.Phase())

	require.Len(t, queue.imageSaved, 1)
	assert.Equal(t, 1, queue.imageSaved[0].ImageIndex)
}

func TestCapture_UploadFailureLeavesItemUntouched(t *testing.T) {
	svc, repo, uploader, queue := buildCaptureSvc()
	shopID := uuid.New()
	item := &model.Item{ShopID: shopID, CategoryID: uuid.New(), Name: "Kettle"}
	require.NoError(t, repo.Create(context.Background(), item))

	sess := openItemSession(t, repo, shopID, item.ID)
	require.NoError(t, svc.Begin(sess, 0))

	uploader.err = assert.AnError
	_, err := svc.Complete(context.Background(), sess, "kettle.jpg", strings.NewReader("jpeg-bytes"))
	require.Error(t, err)

	// Nothing persisted, nothing notified, phase back to stable.
	stored, _ := repo.FindByID(context.Background(), shopID, item.ID)
	assert.Empty(t, stored.Images)
	assert.Nil(t, stored.StockTransactions)
	assert.Empty(t, queue.imageSaved)
	assert.Equal(t, session.PhaseNone, sess.Phase())
}

func TestCapture_CloseRefusedWhileProcessing(t *testing.T) {
	svc, repo, _, _ := buildCaptureSvc()
	shopID := uuid.New()
	item := &model.Item{ShopID: shopID, CategoryID: uuid.New(), Name: "Thermos"}
	require.NoError(t, repo.Create(context.Background(), item))

	sess := openItemSession(t, repo, shopID, item.ID)
	require.NoError(t, svc.Begin(sess, 0))

	assert.ErrorIs(t, sess.CloseItem(), session.ErrCaptureInProgress)
	assert.ErrorIs(t, sess.CloseAll(), session.ErrCaptureInProgress)

	// After cancelling, the overlay closes normally.
	require.NoError(t, svc.Cancel(sess))
	require.NoError(t, sess.CloseItem())
	assert.Equal(t, session.StateCategoriesOpen, sess.State())
}

func TestCapture_CancelRestoresStablePhase(t *testing.T) {
	svc, repo, _, queue := buildCaptureSvc()
	shopID := uuid.New()
	item := &model.Item{
		ShopID: shopID, CategoryID: uuid.New(), Name: "Thermos",
		Images: []string{"https://img.example.test/a.jpg"},
	}
	require.NoError(t, repo.Create(context.Background(), item))

	sess := openItemSession(t, repo, shopID, item.ID)
	require.NoError(t, svc.Begin(sess, 1))
	require.NoError(t, svc.Cancel(sess))

	// One image persisted, so back to awaiting the second.
	assert.Equal(t, session.PhaseAwaiting2, sess.Phase())
	assert.Empty(t, queue.imageSaved)
}

func TestRetake_ReplacesSlotInPlace(t *testing.T) {
	svc, repo, _, queue := buildCaptureSvc()
	shopID := uuid.New()
	item := &model.Item{
		ShopID: shopID, CategoryID: uuid.New(), Name: "Blender",
		Images: []string{"https://img.example.test/old-front.jpg", "https://img.example.test/back.jpg"},
		Stock:  4,
		StockTransactions: []model.StockTransaction{
			{ID: "stock_in_1_aaaaaa", Quantity: 4, Type: model.TxnStockIn},
		},
	}
	require.NoError(t, repo.Create(context.Background(), item))

	sess := openItemSession(t, repo, shopID, item.ID)

	// Retakes are an edit-mode action.
	assert.ErrorIs(t, svc.Retake(sess, 0), session.ErrNotEditing)
	require.NoError(t, sess.EnterEdit())
	require.NoError(t, svc.Retake(sess, 0))

	resp, err := svc.Complete(context.Background(), sess, "new-front.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	require.Len(t, resp.Images, 2)
	assert.Equal(t, "https://img.example.test/new-front.jpg", resp.Images[0])
	assert.Equal(t, "https://img.example.test/back.jpg", resp.Images[1])

	// The ledger never moves on a retake.
	assert.Equal(t, 4, resp.Stock)
	assert.Equal(t, 1, resp.TransactionCount)

	require.Len(t, queue.imageSaved, 1)
	assert.Equal(t, 0, queue.imageSaved[0].ImageIndex)
}

func TestSetPrices_RecordsBothPrices(t *testing.T) {
	svc, repo, _, _ := buildCaptureSvc()
	shopID := uuid.New()
	item := &model.Item{
		ShopID: shopID, CategoryID: uuid.New(), Name: "Iron Box",
		Images: []string{"https://img.example.test/a.jpg", "https://img.example.test/b.jpg"},
	}
	require.NoError(t, repo.Create(context.Background(), item))

	sess := openItemSession(t, repo, shopID, item.ID)
	resp, err := svc.SetPrices(context.Background(), sess, dto.SetPricesRequest{
		BuyPrice:  decimal.NewFromInt(800),
		SellPrice: decimal.NewFromInt(1200),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.BuyPrice)
	require.NotNil(t, resp.SellPrice)
	assert.Equal(t, "800", resp.BuyPrice.String())
	assert.Equal(t, "1200", resp.SellPrice.String())
	assert.False(t, resp.NeedsPrices)

	// The session cache follows the persisted record.
	cached := sess.Item()
	require.NotNil(t, cached.SellPrice)
	assert.Equal(t, "1200", cached.SellPrice.String())
}
