package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/catalog"
	"github.com/arenadeck/deckscout/internal/config"
	handler "github.com/arenadeck/deckscout/internal/delivery/http"
	"github.com/arenadeck/deckscout/internal/jobs"
	"github.com/arenadeck/deckscout/internal/pool"
	"github.com/arenadeck/deckscout/internal/publisher"
	"github.com/arenadeck/deckscout/internal/repository/postgres"
	redisrepo "github.com/arenadeck/deckscout/internal/repository/redis"
	"github.com/arenadeck/deckscout/internal/scorer"
	"github.com/arenadeck/deckscout/internal/scryfall"
	"github.com/arenadeck/deckscout/internal/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting deckscout server")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to PostgreSQL
	dbPool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()
	if err := dbPool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping PostgreSQL", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis
	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Invalid Redis URL", zap.Error(err))
	}
	rdb := goredis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to ping Redis", zap.Error(err))
	}
	logger.Info("Connected to Redis")

	// Event publisher (optional)
	var events publisher.Publisher
	if cfg.RabbitMQ.Enabled {
		events, err = publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Fatal("Failed to initialize RabbitMQ publisher", zap.Error(err))
		}
		defer events.Close()
		logger.Info("Connected to RabbitMQ")
	}

	// Repositories
	deckRepo := postgres.NewDeckRepository(dbPool)
	setRepo := postgres.NewSetRepository(dbPool)
	resultStore := redisrepo.NewResultStore(rdb)

	// Upstream card catalog behind the two-tier cache
	upstream := scryfall.NewClient(cfg.Scryfall.BaseURL, cfg.Scryfall.Timeout, logger)
	cardCache := catalog.NewCache(upstream,
		cfg.Cache.SetCatalogTTL, cfg.Cache.CardPoolTTL, cfg.Cache.CardPoolCapacity, logger)

	// Scorer subprocess
	scorerProc := scorer.NewProcess(cfg.Scorer.Command, []string{cfg.Scorer.Script},
		cfg.Scorer.GracePeriod, logger)

	// Job registry on a bounded worker pool
	workerPool := pool.New(cfg.Jobs.PoolSize, logger)
	registry := jobs.NewRegistry(ctx, workerPool, logger)

	// Use cases
	recommendUC := usecase.NewRecommendUsecase(deckRepo, setRepo, cardCache, scorerProc,
		cfg.Scorer.Deadline, logger)
	recommendationSvc := usecase.NewRecommendationService(registry, recommendUC, resultStore, events, logger)
	deckUC := usecase.NewDeckUsecase(deckRepo, setRepo, logger)
	setUC := usecase.NewSetUsecase(setRepo, logger)

	// Router
	router := handler.NewRouter(&handler.RouterDeps{
		RecommendationSvc: recommendationSvc,
		DeckUC:            deckUC,
		SetUC:             setUC,
		Logger:            logger,
		RateLimitPerMin:   cfg.Server.RateLimit,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Cancel in-flight jobs and wait for workers to wind down
	cancel()
	workerPool.Wait()

	logger.Info("Server stopped")
}
