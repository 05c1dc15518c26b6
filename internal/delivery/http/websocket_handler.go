package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/usecase"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development; restrict in production
	},
}

// WebSocketHandler streams recommendation job progress in real time.
type WebSocketHandler struct {
	svc    *usecase.RecommendationService
	logger *zap.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(svc *usecase.RecommendationService, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{svc: svc, logger: logger}
}

// Stream handles GET /api/v1/recommendations/stream (WebSocket upgrade).
// It follows the principal's live job until it reaches a terminal state.
func (h *WebSocketHandler) Stream(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	handle, ok := h.svc.LiveJob(principal)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No recommendation job running"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("WebSocket connection opened",
		zap.String("principal", principal),
		zap.String("job_id", handle.ID.String()),
	)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-handle.Done():
			cards, jobErr := handle.Wait(c.Request.Context())
			msg := gin.H{
				"job_id": handle.ID,
				"status": handle.Status(),
			}
			if jobErr != nil && handle.Status() == domain.StatusFailed {
				msg["error"] = "Recommendation failed"
			}
			if cards != nil {
				msg["cards"] = cards
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
			}
			return
		case <-ticker.C:
			msg := gin.H{
				"job_id": handle.ID,
				"status": handle.Status(),
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
				return
			}
		}
	}
}
