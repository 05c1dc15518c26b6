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

// DeckHandler handles HTTP requests for deck CRUD.
type DeckHandler struct {
	deckUC *usecase.DeckUsecase
	logger *zap.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(deckUC *usecase.DeckUsecase, logger *zap.Logger) *DeckHandler {
	return &DeckHandler{deckUC: deckUC, logger: logger}
}

// List handles GET /api/v1/decks
func (h *DeckHandler) List(c *gin.Context) {
	decks, err := h.deckUC.List(c.Request.Context())
	if err != nil {
		h.logger.Error("List decks failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, decks)
}

// GetByID handles GET /api/v1/decks/:id
func (h *DeckHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deck ID"})
		return
	}

	deck, err := h.deckUC.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDeckNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
			return
		}
		h.logger.Error("Get deck failed", zap.Error(err), zap.Int("deck_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, deck)
}

// Save handles POST /api/v1/decks and PUT /api/v1/decks/:id
func (h *DeckHandler) Save(c *gin.Context) {
	var deck domain.Deck
	if err := c.ShouldBindJSON(&deck); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if idStr := c.Param("id"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deck ID"})
			return
		}
		deck.ID = id
	}

	saved, err := h.deckUC.Save(c.Request.Context(), &deck)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDeck):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSetNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Deck references an unknown set"})
		case errors.Is(err, domain.ErrDeckNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
		default:
			h.logger.Error("Save deck failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Delete handles DELETE /api/v1/decks/:id
func (h *DeckHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deck ID"})
		return
	}

	if err := h.deckUC.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrDeckNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
			return
		}
		h.logger.Error("Delete deck failed", zap.Error(err), zap.Int("deck_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}
