package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/wager-analytics/internal/application/services"
	"github.com/bimakw/wager-analytics/internal/config"
	"github.com/bimakw/wager-analytics/internal/domain/analytics"
	"github.com/bimakw/wager-analytics/internal/infrastructure/cache"
	"github.com/bimakw/wager-analytics/internal/infrastructure/database"
	"github.com/bimakw/wager-analytics/internal/infrastructure/reference"
	"github.com/bimakw/wager-analytics/internal/presentation/handlers"
	"github.com/bimakw/wager-analytics/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting wager-analytics API",
		zap.Int("port", cfg.API.Port),
		zap.String("timezone", cfg.Engine.Timezone),
	)

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Connect to Redis cache, falling back to an in-process cache
	var store cache.Store
	redisCache, err := cache.NewRedisCache(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, using in-process cache", zap.Error(err))
		store = cache.NewMemoryCache(cfg.API.CacheTTL, 2*cfg.API.CacheTTL)
	} else {
		defer redisCache.Close()
		store = redisCache
	}

	// Engine setup
	aliases, err := reference.LoadAliases(cfg.Engine.AliasesFile)
	if err != nil {
		logger.Fatal("Failed to load alias tables", zap.Error(err))
	}
	location, err := cfg.Engine.Location()
	if err != nil {
		logger.Fatal("Invalid engine timezone", zap.Error(err))
	}
	classifier := analytics.NewClassifier(aliases)

	// Create repositories
	recordRepo := database.NewRecordRepo(db.DB())

	// Create services
	metricsService := services.NewMetricsService(recordRepo, classifier, store, cfg.API.CacheTTL, location, logger)
	ingestService := services.NewIngestService(recordRepo, classifier, store, cfg.Ingest, logger)

	// Create handlers
	metricsHandler := handlers.NewMetricsHandler(metricsService, logger)
	batchHandler := handlers.NewBatchHandler(ingestService, logger)
	healthHandler := handlers.NewHealthHandler(db, store, recordRepo)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.API.CORSOrigins))

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))
		metricsHandler.RegisterRoutes(r)
		batchHandler.RegisterRoutes(r)
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       cfg.API.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func setupLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
