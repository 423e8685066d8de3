package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/powergrid/backend/internal/application/billing"
	financeapp "github.com/powergrid/backend/internal/application/finance"
	identityapp "github.com/powergrid/backend/internal/application/identity"
	notificationapp "github.com/powergrid/backend/internal/application/notification"
	tariffapp "github.com/powergrid/backend/internal/application/tariff"
	worktrackingapp "github.com/powergrid/backend/internal/application/worktracking"
	"github.com/powergrid/backend/internal/infrastructure/auth"
	"github.com/powergrid/backend/internal/infrastructure/cache"
	"github.com/powergrid/backend/internal/infrastructure/config"
	"github.com/powergrid/backend/internal/infrastructure/event"
	"github.com/powergrid/backend/internal/infrastructure/logger"
	"github.com/powergrid/backend/internal/infrastructure/notify"
	"github.com/powergrid/backend/internal/infrastructure/persistence"
	"github.com/powergrid/backend/internal/interfaces/http/handler"
	"github.com/powergrid/backend/internal/interfaces/http/middleware"
	"github.com/powergrid/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting PowerGrid Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	tariffRepo := persistence.NewGormTariffRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	readingRepo := persistence.NewGormMeterReadingRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	complaintRepo := persistence.NewGormComplaintRepository(db.DB)
	workOrderRepo := persistence.NewGormWorkOrderRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Tariff cache: prefer Redis, fall back to in-process when unreachable
	var tariffCache tariffapp.Cache
	redisCache, err := cache.NewRedisTariffCache(cfg.Redis, cfg.Cache.TariffTTL, log)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory tariff cache", zap.Error(err))
		tariffCache = cache.NewInMemoryTariffCache(cfg.Cache.TariffTTL)
	} else {
		tariffCache = redisCache
		log.Info("Redis tariff cache connected",
			zap.Duration("ttl", cfg.Cache.TariffTTL),
		)
	}

	// Notification sink writes inbox rows and fans out to admins
	notifier := notify.NewInboxSink(notificationRepo, userRepo, log)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, customerRepo, jwtService, log)
	tariffService := tariffapp.NewTariffService(tariffRepo, tariffCache, log)
	billingService := billingapp.NewBillingService(billRepo, readingRepo, customerRepo, tariffService, notifier, log)
	paymentService := financeapp.NewPaymentService(paymentRepo, billRepo, customerRepo, notifier, log)
	complaintService := worktrackingapp.NewComplaintService(complaintRepo, workOrderRepo, customerRepo, notifier, log)
	workOrderService := worktrackingapp.NewWorkOrderService(workOrderRepo, complaintRepo, customerRepo, notifier, log)
	notificationService := notificationapp.NewNotificationService(notificationRepo)

	// Initialize event bus with the audit subscriber
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	tariffService.SetEventPublisher(eventBus)
	billingService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	complaintService.SetEventPublisher(eventBus)
	workOrderService.SetEventPublisher(eventBus)

	// Background overdue sweep flips issued bills past their due date
	sweepDone := make(chan struct{})
	if cfg.Billing.OverdueSweepEnabled {
		go runOverdueSweep(billingService, cfg.Billing.OverdueSweepInterval, sweepDone, log)
		log.Info("Overdue sweep enabled",
			zap.Duration("interval", cfg.Billing.OverdueSweepInterval),
		)
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	tariffHandler := handler.NewTariffHandler(tariffService)
	billingHandler := handler.NewBillingHandler(billingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	complaintHandler := handler.NewComplaintHandler(complaintService)
	workOrderHandler := handler.NewWorkOrderHandler(workOrderService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first so recovery and logging can tag entries
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	protected := middleware.Auth(jwtService)
	staff := middleware.RequireStaff()
	admin := middleware.RequireAdmin()

	// Public authentication endpoints
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)

	// Tariff management and resolution
	tariffRoutes := router.NewDomainGroup("tariff", "/tariffs")
	tariffRoutes.Use(protected)
	tariffRoutes.POST("", admin, tariffHandler.Create)
	tariffRoutes.GET("", tariffHandler.List)
	tariffRoutes.GET("/resolve", tariffHandler.Resolve)
	tariffRoutes.GET("/:id", tariffHandler.Get)

	// Meter readings and bills
	billingRoutes := router.NewDomainGroup("billing", "")
	billingRoutes.Use(protected)
	billingRoutes.POST("/readings", staff, billingHandler.RecordReading)
	billingRoutes.POST("/bills", staff, billingHandler.GenerateBill)
	billingRoutes.POST("/bills/:id/cancel", admin, billingHandler.Cancel)
	billingRoutes.GET("/bills/:id", billingHandler.Get)
	billingRoutes.GET("/customers/:id/bills", billingHandler.ListForCustomer)
	billingRoutes.GET("/customers/:id/bills/preview", billingHandler.Preview)

	// Payments and receipts
	financeRoutes := router.NewDomainGroup("finance", "")
	financeRoutes.Use(protected)
	financeRoutes.POST("/payments", paymentHandler.Apply)
	financeRoutes.GET("/payments/:id", paymentHandler.Get)
	financeRoutes.GET("/receipts/:number", paymentHandler.Receipt)
	financeRoutes.GET("/customers/:id/payments", paymentHandler.ListForCustomer)

	// Complaints and work orders
	worktrackingRoutes := router.NewDomainGroup("worktracking", "")
	worktrackingRoutes.Use(protected)
	worktrackingRoutes.POST("/complaints", complaintHandler.Submit)
	worktrackingRoutes.GET("/complaints/queue", staff, complaintHandler.Queue)
	worktrackingRoutes.GET("/complaints/:id", complaintHandler.Get)
	worktrackingRoutes.PATCH("/complaints/:id", staff, complaintHandler.Update)
	worktrackingRoutes.GET("/customers/:id/complaints", complaintHandler.ListForCustomer)
	worktrackingRoutes.POST("/work-orders", staff, workOrderHandler.Create)
	worktrackingRoutes.GET("/work-orders/queue", staff, workOrderHandler.Queue)
	worktrackingRoutes.GET("/work-orders/:id", staff, workOrderHandler.Get)
	worktrackingRoutes.PATCH("/work-orders/:id", staff, workOrderHandler.Update)
	worktrackingRoutes.GET("/employees/:id/work-orders", staff, workOrderHandler.ListForEmployee)

	// In-app notification inbox
	notificationRoutes := router.NewDomainGroup("notification", "/notifications")
	notificationRoutes.Use(protected)
	notificationRoutes.GET("", notificationHandler.List)
	notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
	notificationRoutes.POST("/mark-all-read", notificationHandler.MarkAllRead)

	// System endpoints
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(authRoutes).
		Register(tariffRoutes).
		Register(billingRoutes).
		Register(financeRoutes).
		Register(worktrackingRoutes).
		Register(notificationRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runOverdueSweep periodically marks issued bills past their due date as
// overdue until done is closed
func runOverdueSweep(billingService *billingapp.BillingService, interval time.Duration, done <-chan struct{}, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			count, err := billingService.SweepOverdue(ctx)
			cancel()
			if err != nil {
				log.Error("Overdue sweep failed", zap.Error(err))
				continue
			}
			if count > 0 {
				log.Info("Overdue sweep completed", zap.Int("bills_marked", count))
			}
		}
	}
}
