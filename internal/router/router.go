package router

import (
	"time"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/config"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/handler"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/middleware"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/repository"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/service"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	areaRepo := repository.NewAreaRepository(db)
	mesaRepo := repository.NewMesaRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	ledger := service.NewStockLedger(stockRepo)
	areas := service.NewAreaInventory(areaRepo)
	resolver := service.NewRecipeResolver(productRepo)
	planner := service.NewAllocationPlanner(areas, ledger)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	coordinator := service.NewOrderCoordinator(cfg, mesaRepo, sessionRepo, orderRepo, productRepo, historyRepo, resolver, planner, ledger, areas, dispatcher)
	reversals := service.NewReversalEngine(cfg, orderRepo, productRepo, historyRepo, resolver, planner, ledger, areas)
	stockSvc := service.NewStockService(cfg, stockRepo, areaRepo, productRepo, historyRepo, ledger, areas)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ordersH := handler.NewOrdersHandler(coordinator, reversals)
	sessionsH := handler.NewSessionsHandler(coordinator)
	stockH := handler.NewStockHandler(stockSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", ordersH.PlaceOrder)
		v1.DELETE("/orders/:id", ordersH.CancelOrder)
		v1.DELETE("/items/:id", ordersH.CancelItem)
		v1.PATCH("/items/:id/quantity", ordersH.AdjustItemQuantity)

		v1.POST("/sessions/claim", sessionsH.ClaimSession)
		v1.POST("/sessions/:id/close", sessionsH.CloseSession)

		v1.POST("/stock/replenish", stockH.Replenish)
		v1.GET("/stock/:productId", stockH.Availability)
		v1.GET("/stock/:productId/history", stockH.History)
		v1.POST("/areas/:id/replenish", stockH.TransferToArea)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
