package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/PeeapDev/merchant-backend/internal/config"
	"github.com/PeeapDev/merchant-backend/internal/db"
	"github.com/PeeapDev/merchant-backend/internal/handlers"
	"github.com/PeeapDev/merchant-backend/internal/jobs"
	"github.com/PeeapDev/merchant-backend/internal/jobs/pos"
	"github.com/PeeapDev/merchant-backend/internal/jobs/runtime"
	"github.com/PeeapDev/merchant-backend/internal/jobs/worker"
	"github.com/PeeapDev/merchant-backend/internal/middleware"
	"github.com/PeeapDev/merchant-backend/internal/observability"
	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/realtime"
	"github.com/PeeapDev/merchant-backend/internal/realtime/bus"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/server"
	"github.com/PeeapDev/merchant-backend/internal/services"
	"github.com/PeeapDev/merchant-backend/internal/sse"
	"github.com/PeeapDev/merchant-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Tracing (no-op unless OTEL_ENABLED is set)
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "merchant-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Tax config
	taxRates, err := config.LoadTaxRates(log)
	if err != nil {
		log.Error("Could not load tax rates", "error", err)
		os.Exit(1)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	merchantRepo := repos.NewMerchantRepo(thePG, log)
	staffRepo := repos.NewStaffRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	productRepo := repos.NewProductRepo(thePG, log)
	stockMovementRepo := repos.NewStockMovementRepo(thePG, log)
	supplierRepo := repos.NewSupplierRepo(thePG, log)
	purchaseOrderRepo := repos.NewPurchaseOrderRepo(thePG, log)
	eventRepo := repos.NewEventRepo(thePG, log)
	ticketTypeRepo := repos.NewTicketTypeRepo(thePG, log)
	ticketRepo := repos.NewTicketRepo(thePG, log)
	orderRepo := repos.NewOrderRepo(thePG, log)
	orderItemRepo := repos.NewOrderItemRepo(thePG, log)
	paymentRepo := repos.NewPaymentRepo(thePG, log)
	registerRepo := repos.NewRegisterRepo(thePG, log)
	cashSessionRepo := repos.NewCashSessionRepo(thePG, log)
	customerRepo := repos.NewCustomerRepo(thePG, log)
	loyaltyRepo := repos.NewLoyaltyRepo(thePG, log)
	walletRepo := repos.NewWalletRepo(thePG, log)
	storefrontRepo := repos.NewStorefrontRepo(thePG, log)
	schoolRepo := repos.NewSchoolRepo(thePG, log)
	syncDeviceRepo := repos.NewSyncDeviceRepo(thePG, log)
	syncOpRepo := repos.NewSyncOpRepo(thePG, log)
	cartDraftRepo := repos.NewCartDraftRepo(thePG, log)
	jobRunRepo := repos.NewJobRunRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// When REDIS_ADDR is set the instance publishes through Redis and
	// forwards bus traffic into its local hub, so events reach clients
	// connected to any replica.
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: sseHub}
	if os.Getenv("REDIS_ADDR") != "" {
		redisBus, err := bus.NewRedisBus(log)
		if err != nil {
			log.Error("Could not init Redis bus", "error", err)
			os.Exit(1)
		}
		if err := redisBus.StartForwarder(context.Background(), func(m realtime.SSEMessage) {
			sseHub.Broadcast(m)
		}); err != nil {
			log.Error("Could not start Redis bus forwarder", "error", err)
			os.Exit(1)
		}
		emitter = &services.RedisEmitter{Bus: redisBus}
	}
	orderNotifier := services.NewOrderNotifier(emitter)
	stockNotifier := services.NewStockNotifier(emitter)
	jobNotifier := services.NewJobNotifier(emitter)

	// Services
	log.Info("Setting up Services from main...")
	avatarService, err := services.NewAvatarService(log)
	if err != nil {
		log.Error("Could not init AvatarService", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(thePG, log, merchantRepo, staffRepo, userTokenRepo, walletRepo, avatarService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	productService := services.NewProductService(thePG, log, productRepo, stockMovementRepo, stockNotifier)
	supplierService := services.NewSupplierService(thePG, log, supplierRepo, purchaseOrderRepo, productRepo, stockMovementRepo)
	ticketingService := services.NewTicketingService(thePG, log, eventRepo, ticketTypeRepo, ticketRepo, emitter)
	orderService := services.NewOrderService(thePG, log, orderRepo, orderItemRepo, orderNotifier)
	walletService := services.NewWalletService(thePG, log, walletRepo, customerRepo, schoolRepo)
	loyaltyService := services.NewLoyaltyService(thePG, log, loyaltyRepo)
	checkoutService := services.NewCheckoutService(
		thePG,
		log,
		orderRepo,
		orderItemRepo,
		paymentRepo,
		productRepo,
		stockMovementRepo,
		eventRepo,
		ticketTypeRepo,
		ticketRepo,
		cashSessionRepo,
		loyaltyService,
		walletService,
		taxRates,
		orderNotifier,
		stockNotifier,
	)
	cashSessionService := services.NewCashSessionService(thePG, log, cashSessionRepo, registerRepo, paymentRepo, emitter)
	storefrontService := services.NewStorefrontService(thePG, log, storefrontRepo, productRepo, stockMovementRepo, eventRepo)
	schoolService := services.NewSchoolService(thePG, log, schoolRepo, walletService)
	jobsService := jobs.NewService(thePG, log, jobRunRepo)
	syncService := services.NewSyncService(
		thePG,
		log,
		syncDeviceRepo,
		syncOpRepo,
		cartDraftRepo,
		productRepo,
		ticketTypeRepo,
		orderRepo,
		loyaltyRepo,
		checkoutService,
		orderService,
		jobsService,
		emitter,
	)
	staffService := services.NewStaffService(thePG, log, staffRepo, avatarService)
	customerService := services.NewCustomerService(thePG, log, customerRepo)
	registerService := services.NewRegisterService(thePG, log, registerRepo)

	// Background jobs
	log.Info("Setting up job worker from main...")
	registry := runtime.NewRegistry()
	registry.Register(jobs.TypeSyncReconcile, pos.NewSyncReconcileHandler(syncService))
	registry.Register(jobs.TypeStockAlerts, pos.NewStockAlertsHandler(productRepo, stockMovementRepo, stockNotifier))
	jobWorker := worker.NewWorker(thePG, log, jobRunRepo, registry, jobNotifier)
	jobWorker.Start(context.Background())

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	sseHandler := handlers.NewSSEHandler(sseHub)
	productHandler := handlers.NewProductHandler(productService)
	supplierHandler := handlers.NewSupplierHandler(supplierService)
	ticketingHandler := handlers.NewTicketingHandler(ticketingService)
	orderHandler := handlers.NewOrderHandler(orderService, checkoutService)
	cashSessionHandler := handlers.NewCashSessionHandler(cashSessionService)
	loyaltyHandler := handlers.NewLoyaltyHandler(loyaltyService)
	walletHandler := handlers.NewWalletHandler(walletService)
	storefrontHandler := handlers.NewStorefrontHandler(storefrontService)
	schoolHandler := handlers.NewSchoolHandler(schoolService)
	syncHandler := handlers.NewSyncHandler(syncService)
	staffHandler := handlers.NewStaffHandler(staffService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	registerHandler := handlers.NewRegisterHandler(registerService)
	jobsHandler := handlers.NewJobsHandler(jobsService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		SSEHandler:         sseHandler,
		ProductHandler:     productHandler,
		SupplierHandler:    supplierHandler,
		TicketingHandler:   ticketingHandler,
		OrderHandler:       orderHandler,
		CashSessionHandler: cashSessionHandler,
		LoyaltyHandler:     loyaltyHandler,
		WalletHandler:      walletHandler,
		StorefrontHandler:  storefrontHandler,
		SchoolHandler:      schoolHandler,
		SyncHandler:        syncHandler,
		StaffHandler:       staffHandler,
		CustomerHandler:    customerHandler,
		RegisterHandler:    registerHandler,
		JobsHandler:        jobsHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
