// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fishledger/internal/core/security"
	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/ledger"
	"fishledger/internal/domain/registers/stock"
	"fishledger/internal/domain/reports"
	"fishledger/internal/infrastructure/http/v1/handlers"
	"fishledger/internal/infrastructure/http/v1/middleware"
	"fishledger/pkg/logger"
)

// MetricsExporter observes requests and serves the scrape endpoint.
type MetricsExporter interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	Ledger  *ledger.Service
	Stock   *stock.Service
	Reports *reports.Service

	// Policy guards read-only report routes. Defaults to security.PermissionPolicy.
	Policy security.Policy

	// Metrics is optional; /metrics is mounted only when set.
	Metrics MetricsExporter

	// HealthChecks are probed by /health/ready.
	HealthChecks map[string]handlers.Pinger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Policy == nil {
		cfg.Policy = security.PermissionPolicy{}
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Caller())

	purchaseHandler := handlers.NewPurchaseHandler(cfg.Ledger)
	saleHandler := handlers.NewSaleHandler(cfg.Ledger)
	receiptHandler := handlers.NewReceiptHandler(cfg.Ledger)
	expenseHandler := handlers.NewExpenseHandler(cfg.Ledger)
	documentHandler := handlers.NewDocumentHandler(cfg.Ledger)

	purchases := api.Group("/purchases")
	{
		purchases.POST("", purchaseHandler.Create)
		purchases.GET("/:id", purchaseHandler.Get)
		purchases.POST("/:id/receipts", receiptHandler.Issue(receipt.OwnerPurchase))
		purchases.GET("/:id/receipts", receiptHandler.List(receipt.OwnerPurchase))
		purchases.POST("/:id/send", documentHandler.Send(receipt.OwnerPurchase))
	}

	sales := api.Group("/sales")
	{
		sales.POST("", saleHandler.Create)
		sales.GET("/:id", saleHandler.Get)
		sales.DELETE("/:id", saleHandler.Delete)
		sales.GET("/:id/balance", saleHandler.Balance)
		sales.POST("/:id/payments", saleHandler.RecordPayment)
		sales.POST("/:id/receipts", receiptHandler.Issue(receipt.OwnerSale))
		sales.GET("/:id/receipts", receiptHandler.List(receipt.OwnerSale))
		sales.POST("/:id/send", documentHandler.Send(receipt.OwnerSale))
	}

	receipts := api.Group("/receipts")
	{
		receipts.GET("/:id", receiptHandler.Get)
		receipts.POST("/:id/void", receiptHandler.Void)
		receipts.POST("/:id/reissue", receiptHandler.Reissue)
	}

	api.POST("/expenses", expenseHandler.Create)

	stockHandler := handlers.NewStockHandler(cfg.Stock)
	stockGroup := api.Group("/stock")
	{
		stockGroup.GET("", stockHandler.Current)
		stockGroup.GET("/lots", stockHandler.Lots)
		stockGroup.GET("/reconcile", stockHandler.Reconcile)
		stockGroup.GET("/export", stockHandler.Export)
	}

	reportsHandler := handlers.NewReportsHandler(cfg.Reports)
	reportGroup := api.Group("/reports")
	reportGroup.Use(middleware.RequirePermission(cfg.Policy, security.PermReadReports))
	{
		reportGroup.GET("/margin", reportsHandler.Margin)
		reportGroup.GET("/margin/export", reportsHandler.MarginExport)
	}

	return router
}
