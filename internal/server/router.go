package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/PeeapDev/merchant-backend/internal/handlers"
	"github.com/PeeapDev/merchant-backend/internal/middleware"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	SSEHandler         *handlers.SSEHandler
	ProductHandler     *handlers.ProductHandler
	SupplierHandler    *handlers.SupplierHandler
	TicketingHandler   *handlers.TicketingHandler
	OrderHandler       *handlers.OrderHandler
	CashSessionHandler *handlers.CashSessionHandler
	LoyaltyHandler     *handlers.LoyaltyHandler
	WalletHandler      *handlers.WalletHandler
	StorefrontHandler  *handlers.StorefrontHandler
	SchoolHandler      *handlers.SchoolHandler
	SyncHandler        *handlers.SyncHandler
	StaffHandler       *handlers.StaffHandler
	CustomerHandler    *handlers.CustomerHandler
	RegisterHandler    *handlers.RegisterHandler
	JobsHandler        *handlers.JobsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("merchant-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	// Public storefront catalog for the marketplace page.
	router.GET("/store/:slug", cfg.StorefrontHandler.PublicCatalog)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)

	// Products & stock
	protected.POST("/products", cfg.ProductHandler.Create)
	protected.GET("/products", cfg.ProductHandler.List)
	protected.GET("/stock/low", cfg.ProductHandler.LowStock)
	protected.GET("/products/:id", cfg.ProductHandler.Get)
	protected.PATCH("/products/:id", cfg.ProductHandler.Update)
	protected.POST("/products/:id/stock", cfg.ProductHandler.AdjustStock)
	protected.GET("/products/:id/stock", cfg.ProductHandler.StockHistory)

	// Suppliers & purchase orders
	protected.POST("/suppliers", cfg.SupplierHandler.Create)
	protected.GET("/suppliers", cfg.SupplierHandler.List)
	protected.PATCH("/suppliers/:id", cfg.SupplierHandler.Update)
	protected.POST("/purchase-orders", cfg.SupplierHandler.CreatePurchaseOrder)
	protected.GET("/purchase-orders", cfg.SupplierHandler.ListPurchaseOrders)
	protected.GET("/purchase-orders/:id/lines", cfg.SupplierHandler.GetPurchaseOrderLines)
	protected.POST("/purchase-orders/:id/place", cfg.SupplierHandler.PlacePurchaseOrder)
	protected.POST("/purchase-orders/:id/receive", cfg.SupplierHandler.ReceivePurchaseOrder)
	protected.POST("/purchase-orders/:id/cancel", cfg.SupplierHandler.CancelPurchaseOrder)

	// Ticketed events
	protected.POST("/events", cfg.TicketingHandler.CreateEvent)
	protected.GET("/events", cfg.TicketingHandler.ListEvents)
	protected.POST("/events/:id/publish", cfg.TicketingHandler.PublishEvent)
	protected.POST("/events/:id/cancel", cfg.TicketingHandler.CancelEvent)
	protected.POST("/events/:id/ticket-types", cfg.TicketingHandler.CreateTicketType)
	protected.GET("/events/:id/ticket-types", cfg.TicketingHandler.ListTicketTypes)
	protected.POST("/tickets/redeem", cfg.TicketingHandler.RedeemTicket)

	// Checkout & orders
	protected.POST("/checkout", cfg.OrderHandler.Checkout)
	protected.GET("/orders", cfg.OrderHandler.List)
	protected.GET("/kitchen", cfg.OrderHandler.KitchenQueue)
	protected.GET("/orders/:id", cfg.OrderHandler.Get)
	protected.POST("/orders/:id/transition", cfg.OrderHandler.Transition)
	protected.POST("/orders/:id/bump", cfg.OrderHandler.Bump)
	protected.POST("/orders/:id/recall", cfg.OrderHandler.Recall)
	protected.POST("/orders/:id/cancel", cfg.OrderHandler.Cancel)

	// Registers & cash sessions
	protected.POST("/registers", cfg.RegisterHandler.Create)
	protected.GET("/registers", cfg.RegisterHandler.List)
	protected.POST("/cash-sessions", cfg.CashSessionHandler.Open)
	protected.GET("/cash-sessions", cfg.CashSessionHandler.List)
	protected.GET("/cash-sessions/:id", cfg.CashSessionHandler.Get)
	protected.POST("/cash-sessions/:id/adjust", cfg.CashSessionHandler.Adjust)
	protected.POST("/cash-sessions/:id/close", cfg.CashSessionHandler.Close)
	protected.GET("/cash-sessions/:id/adjustments", cfg.CashSessionHandler.ListAdjustments)

	// Customers & loyalty
	protected.POST("/customers", cfg.CustomerHandler.Create)
	protected.GET("/customers", cfg.CustomerHandler.List)
	protected.GET("/customers/:id", cfg.CustomerHandler.Get)
	protected.PATCH("/customers/:id", cfg.CustomerHandler.Update)
	protected.GET("/loyalty/settings", cfg.LoyaltyHandler.GetSettings)
	protected.GET("/loyalty/accounts/:id", cfg.LoyaltyHandler.GetAccount)
	protected.GET("/loyalty/accounts/:id/transactions", cfg.LoyaltyHandler.ListTransactions)

	// Wallets
	protected.GET("/wallet", cfg.WalletHandler.GetMine)
	protected.GET("/wallet/:id/entries", cfg.WalletHandler.ListEntries)
	protected.POST("/wallets/transfer", cfg.WalletHandler.Transfer)
	protected.POST("/wallets/topup", cfg.WalletHandler.Topup)

	// Storefront
	protected.GET("/storefront", cfg.StorefrontHandler.GetMine)
	protected.PUT("/storefront", cfg.StorefrontHandler.Update)

	// Schools
	protected.POST("/schools", cfg.SchoolHandler.Apply)
	protected.GET("/schools", cfg.SchoolHandler.List)
	protected.GET("/school-applications", cfg.SchoolHandler.ListPending)

	// Offline sync
	protected.POST("/sync/devices", cfg.SyncHandler.RegisterDevice)
	protected.GET("/sync/devices", cfg.SyncHandler.ListDevices)
	protected.POST("/sync/push", cfg.SyncHandler.Push)
	protected.GET("/sync/pull", cfg.SyncHandler.Pull)

	// Jobs
	protected.GET("/jobs/:id", cfg.JobsHandler.Get)

	// ===============
	// || Managers  ||
	// ===============
	managers := protected.Group("/")
	managers.Use(cfg.AuthMiddleware.RequireRole(types.RoleOwner, types.RoleManager))
	managers.PUT("/loyalty/settings", cfg.LoyaltyHandler.UpdateSettings)
	managers.POST("/loyalty/accounts/:id/adjust", cfg.LoyaltyHandler.Adjust)
	managers.POST("/wallets/reverse", cfg.WalletHandler.Reverse)
	managers.POST("/schools/:id/approve", cfg.SchoolHandler.Approve)
	managers.POST("/schools/:id/reject", cfg.SchoolHandler.Reject)
	managers.POST("/schools/:id/activate", cfg.SchoolHandler.Activate)
	managers.POST("/staff", cfg.StaffHandler.Invite)
	managers.GET("/staff", cfg.StaffHandler.List)
	managers.POST("/jobs", cfg.JobsHandler.Enqueue)

	// ===============
	// || Owners    ||
	// ===============
	owners := protected.Group("/")
	owners.Use(cfg.AuthMiddleware.RequireRole(types.RoleOwner))
	owners.POST("/staff/:id/role", cfg.StaffHandler.SetRole)
	owners.POST("/staff/:id/deactivate", cfg.StaffHandler.Deactivate)
	owners.POST("/staff/:id/reactivate", cfg.StaffHandler.Reactivate)

	return router
}
