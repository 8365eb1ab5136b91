package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	bulkapp "github.com/marketplace/portal/internal/application/bulk"
	catalogapp "github.com/marketplace/portal/internal/application/catalog"
	identityapp "github.com/marketplace/portal/internal/application/identity"
	onboardingapp "github.com/marketplace/portal/internal/application/onboarding"
	promotionapp "github.com/marketplace/portal/internal/application/promotion"
	reportapp "github.com/marketplace/portal/internal/application/report"
	storefrontapp "github.com/marketplace/portal/internal/application/storefront"
	tradeapp "github.com/marketplace/portal/internal/application/trade"
	"github.com/marketplace/portal/internal/domain/catalog"
	"github.com/marketplace/portal/internal/domain/trade"
	"github.com/marketplace/portal/internal/infrastructure/auth"
	"github.com/marketplace/portal/internal/infrastructure/backend"
	"github.com/marketplace/portal/internal/infrastructure/cache"
	"github.com/marketplace/portal/internal/infrastructure/config"
	"github.com/marketplace/portal/internal/infrastructure/export"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"github.com/marketplace/portal/internal/infrastructure/persistence"
	"github.com/marketplace/portal/internal/infrastructure/storage"
	"github.com/marketplace/portal/internal/infrastructure/telemetry"
	"github.com/marketplace/portal/internal/interfaces/http/handler"
	"github.com/marketplace/portal/internal/interfaces/http/middleware"
	"github.com/marketplace/portal/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ConfigFor(cfg.App.Env)
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	otelCore := providers.ZapCore(logger.ParseLevel(cfg.Log.Level))
	log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, otelCore)
	}))

	log.Info("Starting marketplace portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), 200*time.Millisecond)),
		persistence.WithTracing(cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to prepare database schema", zap.Error(err))
	}
	if db.IsPostgres() {
		log.Info("Database connected; run cmd/migrate to apply schema changes")
	}

	sessions, err := cache.NewSessionStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create onboarding session store", zap.Error(err))
	}
	defer func() {
		_ = sessions.Close()
	}()

	var archive bulkapp.Archive = storage.DisabledArchive{}
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3Archive(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize import archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			log.Warn("Import archive bucket check failed", zap.String("bucket", s3Archive.Bucket()), zap.Error(err))
		}
		archive = s3Archive
	}

	api, err := backend.NewClient(cfg.Backend, backend.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create backend client", zap.Error(err))
	}

	pricing := catalog.PricingPolicy{
		RentRatio:      decimal.NewFromFloat(cfg.Pricing.RentRatio),
		CommissionRate: decimal.NewFromFloat(cfg.Pricing.CommissionRate),
	}
	productService := catalogapp.NewProductService(api.Products(), pricing)
	onboardingService := onboardingapp.NewService(sessions, api.Vendors(), api.KYC(), onboardingapp.Config{
		SessionTTL:     cfg.Onboarding.SessionTTL,
		ResendCooldown: cfg.Onboarding.OTPResendCooldown,
	})
	bulkService := bulkapp.NewService(api.Bulk(),
		persistence.NewGormImportHistoryRepository(db.DB),
		archive,
		export.NewPreflight(),
		export.NewReports(),
	)
	orderService := tradeapp.NewOrderService(api.Orders(), trade.ReturnPolicy{Window: cfg.Orders.ReturnWindow})

	checks := map[string]handler.HealthChecker{"database": db}
	if pinger, ok := sessions.(cache.Pinger); ok {
		checks["sessions"] = pinger
	}
	handlers := router.Handlers{
		Health:     handler.NewHealthHandler(version, checks),
		Storefront: handler.NewStorefrontHandler(storefrontapp.NewService(api.Homepage()), productService),
		Onboarding: handler.NewOnboardingHandler(onboardingService),
		Order:      handler.NewOrderHandler(orderService),
		Product:    handler.NewProductHandler(productService),
		Bulk:       handler.NewBulkHandler(bulkService),
		Team:       handler.NewTeamHandler(identityapp.NewTeamService(api.Admins())),
		Offer:      handler.NewOfferHandler(promotionapp.NewOfferService(api.Offers())),
		Report:     handler.NewReportHandler(reportapp.NewService(api.Reports())),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     providers.TracingEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(providers.Meter("marketplace-portal/http"), log))
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()
	engine.Use(middleware.SecureWithConfig(security))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize))

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	otpLimiter := middleware.NewRateLimiter(cfg.HTTP.OTPRateLimit, time.Minute)
	limiters = append(limiters, otpLimiter)
	defer func() {
		for _, l := range limiters {
			l.Stop()
		}
	}()

	// probes hit /health without the version prefix
	engine.GET("/health", handlers.Health.Health)

	guards := router.Guards{
		Tokens:     auth.NewJWTService(cfg.JWT),
		OTPLimiter: otpLimiter,
	}
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.Portal(handlers, guards)...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
