package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/delivery/http/middleware"
	"github.com/arenadeck/deckscout/internal/usecase"
)

// maxBodyBytes caps request bodies; deck lists are small.
const maxBodyBytes = 1 << 20 // 1 MB

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	RecommendationSvc *usecase.RecommendationService
	DeckUC            *usecase.DeckUsecase
	SetUC             *usecase.SetUsecase
	Logger            *zap.Logger
	RateLimitPerMin   int
}

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(deps *RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.BodySizeLimit(maxBodyBytes))

	// Metrics endpoint (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Health check (no rate limiting)
		healthHandler := NewHealthHandler(deps.Logger)
		v1.GET("/health", healthHandler.Health)

		limited := v1.Group("")
		if deps.RateLimitPerMin > 0 {
			limited.Use(middleware.RateLimiter(deps.RateLimitPerMin))
		}

		// Decks
		deckHandler := NewDeckHandler(deps.DeckUC, deps.Logger)
		limited.GET("/decks", deckHandler.List)
		limited.GET("/decks/:id", deckHandler.GetByID)
		limited.POST("/decks", deckHandler.Save)
		limited.PUT("/decks/:id", deckHandler.Save)
		limited.DELETE("/decks/:id", deckHandler.Delete)

		// Sets
		setHandler := NewSetHandler(deps.SetUC, deps.Logger)
		limited.GET("/sets", setHandler.List)
		limited.GET("/sets/:id", setHandler.GetByID)
		limited.POST("/sets", setHandler.Save)
		limited.DELETE("/sets/:id", setHandler.Delete)

		// Recommendations
		recHandler := NewRecommendationHandler(deps.RecommendationSvc, deps.Logger)
		limited.POST("/recommendations/deck/:id", recHandler.Recommend)
		limited.POST("/recommendations/cancel", recHandler.Cancel)
		limited.GET("/recommendations/latest", recHandler.Latest)

		// WebSocket for real-time job progress
		wsHandler := NewWebSocketHandler(deps.RecommendationSvc, deps.Logger)
		v1.GET("/recommendations/stream", wsHandler.Stream)
	}

	return router
}
