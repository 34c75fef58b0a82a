package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/abdelrhman06/session-audit-api/internal/audit"
	"github.com/abdelrhman06/session-audit-api/internal/cache"
	"github.com/abdelrhman06/session-audit-api/internal/database"
	"github.com/abdelrhman06/session-audit-api/internal/encoding"
	"github.com/abdelrhman06/session-audit-api/internal/errors"
	"github.com/abdelrhman06/session-audit-api/internal/fieldconfig"
	"github.com/abdelrhman06/session-audit-api/internal/middleware"
	"github.com/abdelrhman06/session-audit-api/internal/monitoring"
	"github.com/abdelrhman06/session-audit-api/internal/ratelimit"
	"github.com/abdelrhman06/session-audit-api/internal/retention"
	"github.com/abdelrhman06/session-audit-api/internal/security"
	"github.com/abdelrhman06/session-audit-api/internal/stats"
)

type config struct {
	dataDir       string
	port          string
	jwtSecret     string
	adminUsername string
	adminPassword string
	redisAddr     string
	redisPassword string
	redisDB       int
	retentionDays int
}

func loadConfig() config {
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	retentionDays := retention.DefaultRetentionDays
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retentionDays = n
		}
	}

	return config{
		dataDir:       getEnvOrDefault("DATA_DIR", "./data"),
		port:          getEnvOrDefault("PORT", "8080"),
		jwtSecret:     getEnvOrDefault("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
		adminUsername: getEnvOrDefault("ADMIN_USERNAME", "admin"),
		adminPassword: getEnvOrDefault("ADMIN_PASSWORD", "admin"),
		redisAddr:     os.Getenv("REDIS_ADDR"),
		redisPassword: os.Getenv("REDIS_PASSWORD"),
		redisDB:       redisDB,
		retentionDays: retentionDays,
	}
}

// application holds every service the HTTP layer depends on
type application struct {
	cfg         config
	db          *database.DB
	fields      *fieldconfig.Store
	admin       *database.AdminService
	stats       *stats.Service
	audits      *audit.Service
	metrics     *monitoring.Metrics
	logger      *monitoring.Logger
	cache       *cache.Cache
	redis       *ratelimit.RedisClient
	limiter     *ratelimit.RateLimiter
	compression *middleware.CompressionMiddleware
	secmw       *security.SecurityMiddleware
	retention   *retention.Service
}

func newApplication(cfg config) (*application, error) {
	db, err := database.NewDB(cfg.dataDir)
	if err != nil {
		return nil, err
	}

	fields, err := fieldconfig.NewStore(db.DB)
	if err != nil {
		db.Close()
		return nil, err
	}

	repo := database.NewRepository(db)
	statsService := stats.NewService(db)
	auditService := audit.NewService(repo, fields, statsService)
	adminService := database.NewAdminService(cfg.adminUsername, cfg.adminPassword, cfg.jwtSecret)

	metrics := monitoring.NewMetrics()

	redisClient, err := ratelimit.NewRedisClient(cfg.redisAddr, cfg.redisPassword, cfg.redisDB)
	if err != nil {
		slog.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}

	return &application{
		cfg:         cfg,
		db:          db,
		fields:      fields,
		admin:       adminService,
		stats:       statsService,
		audits:      auditService,
		metrics:     metrics,
		logger:      monitoring.NewLogger(),
		cache:       cache.NewCache(15 * time.Minute),
		redis:       redisClient,
		limiter:     ratelimit.NewRateLimiter(redisClient, ratelimit.DefaultConfig(), metrics),
		compression: middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
		secmw:       security.NewSecurityMiddleware(security.DefaultSecurityConfig()),
		retention:   retention.NewService(db, cfg.retentionDays),
	}, nil
}

func (app *application) close() {
	app.stats.StopAutoRefresh()
	app.retention.Stop()
	if app.redis != nil {
		errors.SafeClose(app.redis, "redis")
	}
	errors.SafeClose(app.db, "database")
}

func setupRouter(app *application) *gin.Engine {
	r := gin.New()

	r.Use(app.compression.Handler())
	r.Use(monitoring.MonitoringMiddleware(app.metrics, app.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(app.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(security.SecurityHeadersMiddleware())
	r.Use(app.secmw.RequestTimeout)
	r.Use(app.secmw.ValidateContentType)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = security.DefaultSecurityConfig().AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.Use(app.limiter.IPRateLimitMiddleware())
	r.Use(app.limiter.AdminRateLimitMiddleware())
	r.Use(app.cache.Middleware(app.metrics))

	r.GET("/health", app.handleHealth)

	r.POST("/score", app.handleScore)

	audits := r.Group("/audits")
	{
		audits.POST("", app.limiter.EndpointRateLimitMiddleware("submit_audit", 30), app.handleSubmitAudit)
		audits.GET("", app.handleListAudits)
		audits.GET("/export", app.handleExportAudits)
		audits.GET("/:id", app.handleGetAudit)
		audits.PATCH("/:id", app.adminAuthRequired(), app.handleUpdateAudit)
		audits.DELETE("/:id", app.adminAuthRequired(), app.handleDeleteAudit)
	}

	r.GET("/stats", app.handleStatistics)
	r.GET("/fields", app.handleListFields)

	r.POST("/admin/login", app.handleAdminLogin)

	admin := r.Group("/admin", app.adminAuthRequired())
	{
		admin.GET("/fields", app.handleListFields)
		admin.POST("/fields", app.handleCreateField)
		admin.PUT("/fields/:name", app.handleUpsertField)
		admin.DELETE("/fields/:name", app.handleDeleteField)
		admin.POST("/fields/reset", app.handleResetFields)
		admin.GET("/fields/export", app.handleExportFields)
		admin.POST("/fields/import", app.handleImportFields)
		admin.GET("/ratelimits", app.limiter.HandleAdminRateLimits())
		admin.POST("/ratelimits/invalidate/:ip", app.limiter.HandleAdminInvalidateIP())
		admin.GET("/retention", app.handleRetentionStats)
		admin.POST("/retention/cleanup", app.handleRetentionCleanup)
	}

	r.GET("/retention/policy", app.handleRetentionPolicy)

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.metrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"response_cache": app.cache.Stats(),
			"stats_cache":    app.stats.GetCacheStats(),
		})
	})

	r.GET("/pools/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "database",
			"stats": app.db.GetPoolStats(),
		})
	})

	r.GET("/pools/compression", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "compression",
			"stats": app.compression.GetStats(),
		})
	})

	r.GET("/pools/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "json",
			"stats": encoding.GlobalStats(),
		})
	})

	r.GET("/ratelimit/status", app.limiter.HandleRateLimitStatus())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	app, err := newApplication(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.close()

	// Warm the statistics cache and keep it fresh in the background
	go func() {
		slog.Info("Warming up statistics cache")
		app.stats.WarmCache()
		app.stats.StartAutoRefresh(10 * time.Minute)
	}()

	app.retention.StartScheduledCleanup()

	r := setupRouter(app)

	srv := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
