package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	attachmentapp "github.com/farmops/backend/internal/application/attachment"
	expenseapp "github.com/farmops/backend/internal/application/expense"
	ledgerapp "github.com/farmops/backend/internal/application/ledger"
	"github.com/farmops/backend/internal/infrastructure/auth"
	"github.com/farmops/backend/internal/infrastructure/cache"
	"github.com/farmops/backend/internal/infrastructure/config"
	"github.com/farmops/backend/internal/infrastructure/logger"
	"github.com/farmops/backend/internal/infrastructure/persistence"
	"github.com/farmops/backend/internal/infrastructure/storage"
	"github.com/farmops/backend/internal/interfaces/http/handler"
	"github.com/farmops/backend/internal/interfaces/http/middleware"
	"github.com/farmops/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
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

	log.Info("Starting FarmOps Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
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
	claimRepo := persistence.NewGormClaimRepository(db.DB)
	approverRepo := persistence.NewGormApproverRepository(db.DB)
	paymentHeaderRepo := persistence.NewGormPaymentHeaderRepository(db.DB)

	// Object storage for receipt and proof uploads
	var objectStorage attachmentapp.ObjectStorageService
	switch cfg.Storage.Provider {
	case "s3":
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage ready",
			zap.String("provider", "s3"),
			zap.String("bucket", cfg.Storage.Bucket),
		)
	default:
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Using stub object storage; uploaded attachments are not persisted")
	}
	attachmentService := attachmentapp.NewService(objectStorage, attachmentapp.DefaultServiceConfig())

	// Claim read cache. Redis when enabled, in-process otherwise.
	var claimCache expenseapp.ClaimCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisClaimCache(cache.RedisClaimCacheConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Cache.TTL,
		}, log)
		if err != nil {
			log.Warn("Redis unavailable, falling back to in-memory claim cache", zap.Error(err))
			claimCache = cache.NewInMemoryClaimCache(cfg.Cache.TTL)
		} else {
			claimCache = redisCache
			log.Info("Redis claim cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
		}
	} else {
		claimCache = cache.NewInMemoryClaimCache(cfg.Cache.TTL)
	}

	// Initialize application services
	claimService := expenseapp.NewClaimService(claimRepo, approverRepo, paymentHeaderRepo, db, attachmentService, claimCache)
	paymentService := ledgerapp.NewPaymentService(paymentHeaderRepo, claimRepo, db, attachmentService)

	// JWT service for API authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	claimHandler := handler.NewClaimHandler(claimService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	systemHandler := handler.NewSystemHandler(db.Ping)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.AccessLog(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning, registered before JWT)
	engine.GET("/health", healthHandler(db))

	// API routes require a valid token except for the system probes
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
			"/api/v1/system/ready",
		},
		Logger: log,
	}))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(claimHandler).
		Register(paymentHandler).
		Register(attachmentHandler).
		Register(systemHandler)
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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.FromGin(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
