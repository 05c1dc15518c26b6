package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/usecase"
)

// principalHeader identifies the requesting user. The principal is passed
// explicitly down the call chain; nothing reads it from ambient state.
const principalHeader = "X-Principal"

func principalFrom(c *gin.Context) (string, bool) {
	p := c.GetHeader(principalHeader)
	if p == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + principalHeader + " header"})
		return "", false
	}
	return p, true
}

// RecommendationHandler handles HTTP requests for card recommendations.
type RecommendationHandler struct {
	svc    *usecase.RecommendationService
	logger *zap.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(svc *usecase.RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{svc: svc, logger: logger}
}

// Recommend handles POST /api/v1/recommendations/deck/:id. It submits a job
// for the principal (superseding any running one) and waits for the result.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	deckID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deck ID"})
		return
	}

	handle := h.svc.SubmitRecommendation(principal, deckID)

	cards, err := handle.Wait(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrJobCancelled):
			// Superseded or explicitly cancelled; not a failure.
			c.JSON(http.StatusOK, gin.H{
				"job_id": handle.ID,
				"status": domain.StatusCancelled,
			})
		case errors.Is(err, domain.ErrDeckNotFound), errors.Is(err, domain.ErrSetNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNotDualColor), errors.Is(err, domain.ErrUnknownSetCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrUpstream):
			// Internal detail stays in the logs.
			c.JSON(http.StatusBadGateway, gin.H{"error": "Card catalog temporarily unavailable"})
		case errors.Is(err, domain.ErrScorer):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed"})
		case c.Request.Context().Err() != nil:
			// Client went away; the job keeps running and lands in the
			// result store.
			return
		default:
			h.logger.Error("Recommendation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": handle.ID,
		"status": domain.StatusSucceeded,
		"cards":  cards,
	})
}

// Cancel handles POST /api/v1/recommendations/cancel.
func (h *RecommendationHandler) Cancel(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	h.svc.CancelRecommendation(principal)
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// Latest handles GET /api/v1/recommendations/latest.
func (h *RecommendationHandler) Latest(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	result, err := h.svc.LatestResult(c.Request.Context(), principal)
	if err != nil {
		if errors.Is(err, domain.ErrNoResult) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No recommendation available"})
			return
		}
		h.logger.Error("Result lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}
