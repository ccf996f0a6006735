package router

import (
	"time"

	"github.com/ArapCheruiyot/superkeeper/internal/config"
	"github.com/ArapCheruiyot/superkeeper/internal/handler"
	"github.com/ArapCheruiyot/superkeeper/internal/infra"
	"github.com/ArapCheruiyot/superkeeper/internal/middleware"
	"github.com/ArapCheruiyot/superkeeper/internal/repository"
	"github.com/ArapCheruiyot/superkeeper/internal/service"
	"github.com/ArapCheruiyot/superkeeper/internal/session"
	"github.com/ArapCheruiyot/superkeeper/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, registry *session.Registry) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	recognizer := infra.NewRecognizerClient(cfg.RecognizerURL)
	imageHost := infra.NewImageHostClient(cfg.ImageHostURL, cfg.ImageUploadPreset)

	// ── Repositories ─────────────────────────────────────────────────────────
	shopRepo := repository.NewShopRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	itemRepo := repository.NewItemRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	shopSvc := service.NewShopService(shopRepo)
	categorySvc := service.NewCategoryService(categoryRepo, itemRepo)
	itemSvc := service.NewItemService(itemRepo, categoryRepo, dispatcher)
	ledgerSvc := service.NewLedgerService(itemRepo)
	captureSvc := service.NewCaptureService(itemRepo, imageHost, dispatcher)
	salesSvc := service.NewSalesService(recognizer, ledgerSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	shopH := handler.NewShopHandler(shopSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	itemsH := handler.NewItemsHandler(itemSvc, registry)
	stockH := handler.NewStockHandler(ledgerSvc)
	sessionH := handler.NewSessionHandler(registry, itemSvc)
	captureH := handler.NewCaptureHandler(captureSvc, registry)
	salesH := handler.NewSalesHandler(salesSvc, registry)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, recognizer))

	// Protected routes — one token per shop owner
	v1 := r.Group("/v1", middleware.ShopAuth(cfg.JWTSecret))
	{
		v1.POST("/shop/bootstrap", shopH.Bootstrap)
		v1.PUT("/shop/name", shopH.SetName)

		v1.GET("/session", sessionH.State)
		v1.POST("/session/overlay/categories", sessionH.OpenCategories)
		v1.POST("/session/overlay/close", sessionH.CloseAll)
		v1.POST("/session/items/:id/open", sessionH.OpenItem)
		v1.POST("/session/item/close", sessionH.CloseItem)
		v1.POST("/session/item/edit", sessionH.EnterEdit)

		v1.POST("/categories", categoriesH.CreateRoot)
		v1.GET("/categories/tree", categoriesH.Tree)
		v1.POST("/categories/:id/subcategories", categoriesH.CreateSub)
		v1.PATCH("/categories/:id", categoriesH.Rename)
		v1.DELETE("/categories/:id", categoriesH.Delete)
		v1.POST("/categories/:id/items", itemsH.Create)
		v1.GET("/categories/:id/items", itemsH.ListByCategory)

		v1.GET("/items/:id", itemsH.Get)
		v1.PUT("/items/:id", itemsH.Save)
		v1.POST("/items/:id/restock", stockH.Restock)
		v1.GET("/items/:id/transactions", stockH.Transactions)

		v1.POST("/capture/begin", captureH.Begin)
		v1.POST("/capture/retake", captureH.Retake)
		v1.POST("/capture/complete", captureH.Complete)
		v1.POST("/capture/cancel", captureH.Cancel)
		v1.POST("/capture/prices", captureH.SetPrices)

		v1.POST("/sales/camera/open", salesH.OpenCamera)
		v1.POST("/sales/camera/close", salesH.CloseCamera)
		v1.POST("/sales/scan", salesH.Scan)
		v1.GET("/sales/cart", salesH.Cart)
		v1.POST("/sales/cart/accept", salesH.Accept)
		v1.DELETE("/sales/cart/:itemId", salesH.RemoveLine)
		v1.POST("/sales/checkout", salesH.Checkout)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
