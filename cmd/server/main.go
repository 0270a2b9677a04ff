package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	closingapp "github.com/resto/backend/internal/application/closing"
	settingsapp "github.com/resto/backend/internal/application/settings"
	"github.com/resto/backend/internal/domain/settings"
	"github.com/resto/backend/internal/infrastructure/cache"
	"github.com/resto/backend/internal/infrastructure/config"
	"github.com/resto/backend/internal/infrastructure/event"
	"github.com/resto/backend/internal/infrastructure/logger"
	"github.com/resto/backend/internal/infrastructure/persistence"
	"github.com/resto/backend/internal/interfaces/http/handler"
	"github.com/resto/backend/internal/interfaces/http/middleware"
	"github.com/resto/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//	@title			Resto Backend API
//	@version		1.0
//	@description	Restaurant back-office API for cash-drawer reconciliation and branch configuration

//	@contact.name	API Support
//	@contact.url	https://github.com/resto/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Resto Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
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
	closingRepo := persistence.NewGormClosingRecordRepository(db.DB, nil)
	branchSettingsRepo := persistence.NewGormBranchSettingsRepository(db.DB)

	// Redis is optional infrastructure: without it the process still runs,
	// with an uncached settings repository and no cross-process propagation.
	var (
		settingsRepo settings.BranchSettingsRepository = branchSettingsRepo
		cachedRepo   *cache.CachedBranchSettingsRepository
		broadcaster  *cache.RedisConfigBroadcaster
	)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	redisErr := redisClient.Ping(pingCtx).Err()
	cancelPing()
	if redisErr != nil {
		log.Warn("Redis unavailable, running without settings cache and broadcast",
			zap.String("addr", cfg.Redis.Addr()), zap.Error(redisErr))
		_ = redisClient.Close()
	} else {
		cachedRepo = cache.NewCachedBranchSettingsRepository(
			branchSettingsRepo,
			redisClient,
			cache.WithSettingsTTL(cfg.Settings.CacheTTL),
			cache.WithSettingsCacheLogger(log),
		)
		settingsRepo = cachedRepo
		broadcaster = cache.NewRedisConfigBroadcasterWithClient(
			redisClient,
			cache.WithBroadcastChannel(cfg.Settings.BroadcastChannel),
			cache.WithBroadcastLogger(log),
		)
		defer func() {
			if err := broadcaster.Close(); err != nil {
				log.Error("Error closing config broadcaster", zap.Error(err))
			}
		}()
		log.Info("Redis connected",
			zap.String("addr", cfg.Redis.Addr()),
			zap.String("broadcast_channel", cfg.Settings.BroadcastChannel))
	}

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	closingService := closingapp.NewService(
		closingRepo,
		settingsRepo,
		eventBus,
		nil,
		closingapp.Config{
			SaveRetryDelay:  cfg.Closing.SaveRetryDelay,
			ColdStartGrace:  cfg.Closing.ColdStartGrace,
			PostSaveSilence: cfg.Closing.PostSaveSilence,
		},
		log,
	)

	var settingsService *settingsapp.Service
	if broadcaster != nil {
		settingsService = settingsapp.NewService(settingsRepo, eventBus, broadcaster, log)
	} else {
		settingsService = settingsapp.NewService(settingsRepo, eventBus, nil, log)
	}

	// Float target changes fan into open closing sessions
	eventBus.Subscribe(closingService)
	log.Info("Event handlers registered",
		zap.Strings("closing_events", closingService.EventTypes()))

	// Listen for configuration updates from other processes
	subscribeCtx, cancelSubscribe := context.WithCancel(context.Background())
	defer cancelSubscribe()
	if broadcaster != nil {
		go func() {
			err := broadcaster.Subscribe(subscribeCtx, func(msg settings.ConfigUpdateMessage) {
				if cachedRepo != nil {
					cachedRepo.Invalidate(subscribeCtx, msg.BranchID)
				}
				settingsService.HandleRemoteUpdate(subscribeCtx, msg)
			})
			if err != nil && subscribeCtx.Err() == nil {
				log.Error("Config broadcast subscription ended", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	closingHandler := handler.NewClosingHandler(closingService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Branch - Extract and validate the branch header
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	branchConfig := middleware.DefaultBranchConfig()
	branchConfig.Logger = log
	engine.Use(middleware.BranchMiddlewareWithConfig(branchConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Closing domain (editing sessions for end-of-shift reconciliation)
	closingRoutes := router.NewDomainGroup("closing", "/closing")
	closingRoutes.POST("/sessions", closingHandler.OpenSession)
	closingRoutes.GET("/sessions/:id", closingHandler.GetState)
	closingRoutes.DELETE("/sessions/:id", closingHandler.CloseSession)
	closingRoutes.PUT("/sessions/:id/counts", closingHandler.RecordCount)
	closingRoutes.PUT("/sessions/:id/withdrawals", closingHandler.OverrideWithdrawal)
	closingRoutes.POST("/sessions/:id/resuggest", closingHandler.Resuggest)
	closingRoutes.POST("/sessions/:id/clear", closingHandler.ClearCounts)
	closingRoutes.PUT("/sessions/:id/payments", closingHandler.UpdatePayments)
	closingRoutes.PUT("/sessions/:id/remark", closingHandler.SetRemark)
	closingRoutes.PUT("/sessions/:id/float-target", closingHandler.SetFloatTarget)
	closingRoutes.PUT("/sessions/:id/live", closingHandler.SetLiveMode)
	closingRoutes.POST("/sessions/:id/save", closingHandler.Save)
	closingRoutes.POST("/sessions/:id/reload", closingHandler.Reload)

	// Settings domain (per-branch configuration)
	settingsRoutes := router.NewDomainGroup("settings", "/branches")
	settingsRoutes.GET("/:branchID/settings", settingsHandler.GetBranchSettings)
	settingsRoutes.PUT("/:branchID/settings/float-target", settingsHandler.UpdateFloatTarget)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(closingRoutes).
		Register(settingsRoutes).
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
