package http

import (
	"github.com/gin-gonic/gin"
	"github.com/printshop/backend/internal/infrastructure/auth"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"github.com/printshop/backend/internal/interfaces/http/handler"
	"github.com/printshop/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// RouterConfig bundles the handlers and cross-cutting dependencies of
// the HTTP surface
type RouterConfig struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService

	System    *handler.SystemHandler
	Clients   *handler.ClientHandler
	Inventory *handler.InventoryHandler
	Products  *handler.ProductHandler
	Quotes    *handler.QuoteHandler
	Orders    *handler.OrderHandler
	Projects  *handler.ProjectHandler
	Webhooks  *handler.WebhookHandler
}

// NewRouter builds the gin engine with all routes mounted. Public
// intake routes (quote submission, token redemption, checkout, webhook)
// carry no authentication; everything else requires a staff token.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.Config.HTTP.TrustedProxies)
	}

	engine.Use(
		middleware.RequestID(cfg.Logger),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.CORS(cfg.Config.HTTP),
		middleware.BodyLimit(cfg.Config.HTTP.MaxBodySize),
	)

	engine.GET("/health", cfg.System.Health)
	engine.GET("/ready", cfg.System.Ready)

	v1 := engine.Group("/api/v1")

	public := v1.Group("/public")
	{
		public.POST("/quotes", cfg.Quotes.Submit)
		public.POST("/quotes/:id/assets/:asset_id/confirm", cfg.Quotes.ConfirmAsset)
		// Token links arrive from email clients as plain GETs; POST
		// stays for programmatic callers.
		public.GET("/quotes/accept/:token", cfg.Quotes.Accept)
		public.POST("/quotes/accept/:token", cfg.Quotes.Accept)
		public.GET("/quotes/reject/:token", cfg.Quotes.Reject)
		public.POST("/quotes/reject/:token", cfg.Quotes.Reject)
		public.POST("/checkout", cfg.Orders.Checkout)
		public.POST("/orders/:id/confirm-return", cfg.Orders.ConfirmReturn)
	}

	v1.POST("/webhooks/payment", cfg.Webhooks.HandlePayment)

	staff := v1.Group("", middleware.JWTAuth(cfg.JWTService))
	{
		clients := staff.Group("/clients")
		{
			clients.POST("/resolve", cfg.Clients.Resolve)
			clients.GET("", cfg.Clients.List)
			clients.GET("/:id", cfg.Clients.Get)
			clients.PUT("/:id", cfg.Clients.Update)
			clients.DELETE("/:id", cfg.Clients.Delete)
		}

		inventory := staff.Group("/inventory")
		{
			inventory.POST("", cfg.Inventory.Create)
			inventory.GET("", cfg.Inventory.List)
			inventory.GET("/low-stock", cfg.Inventory.ListLowStock)
			inventory.GET("/usage", cfg.Inventory.UsageHistory)
			inventory.GET("/:id", cfg.Inventory.Get)
			inventory.PUT("/:id", cfg.Inventory.Update)
			inventory.DELETE("/:id", cfg.Inventory.Delete)
			inventory.POST("/:id/increment", cfg.Inventory.Increment)
			inventory.POST("/:id/decrement", cfg.Inventory.Decrement)
		}

		products := staff.Group("/products")
		{
			products.POST("", cfg.Products.Create)
			products.GET("", cfg.Products.List)
			products.GET("/:id", cfg.Products.Get)
			products.PUT("/:id/price", cfg.Products.UpdatePrice)
			products.PUT("/:id/active", cfg.Products.SetActive)
		}

		quotes := staff.Group("/quotes")
		{
			quotes.GET("", cfg.Quotes.List)
			quotes.GET("/:id", cfg.Quotes.Get)
			quotes.PUT("/:id/status", cfg.Quotes.SetStatus)
			quotes.POST("/:id/reply", cfg.Quotes.Reply)
			quotes.POST("/:id/convert", cfg.Quotes.Convert)
		}

		orders := staff.Group("/orders")
		{
			orders.GET("", cfg.Orders.List)
			orders.GET("/:id", cfg.Orders.Get)
			orders.POST("/:id/cancel", cfg.Orders.Cancel)
			orders.POST("/:id/fulfill", cfg.Orders.Fulfill)
		}

		projects := staff.Group("/projects")
		{
			projects.POST("", cfg.Projects.Create)
			projects.GET("", cfg.Projects.List)
			projects.GET("/:id", cfg.Projects.Get)
			projects.POST("/:id/complete", cfg.Projects.Complete)
		}
	}

	return engine
}
