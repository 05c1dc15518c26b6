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

// SetHandler handles HTTP requests for set registrations.
type SetHandler struct {
	setUC  *usecase.SetUsecase
	logger *zap.Logger
}

// NewSetHandler creates a new SetHandler.
func NewSetHandler(setUC *usecase.SetUsecase, logger *zap.Logger) *SetHandler {
	return &SetHandler{setUC: setUC, logger: logger}
}

// List handles GET /api/v1/sets
func (h *SetHandler) List(c *gin.Context) {
	sets, err := h.setUC.List(c.Request.Context())
	if err != nil {
		h.logger.Error("List sets failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, sets)
}

// GetByID handles GET /api/v1/sets/:id
func (h *SetHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid set ID"})
		return
	}

	set, err := h.setUC.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Set not found"})
			return
		}
		h.logger.Error("Get set failed", zap.Error(err), zap.Int("set_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, set)
}

// Save handles POST /api/v1/sets
func (h *SetHandler) Save(c *gin.Context) {
	var set domain.MtgSet
	if err := c.ShouldBindJSON(&set); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	saved, err := h.setUC.Save(c.Request.Context(), &set)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSet) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Save set failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Delete handles DELETE /api/v1/sets/:id
func (h *SetHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid set ID"})
		return
	}

	if err := h.setUC.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Set not found"})
			return
		}
		h.logger.Error("Delete set failed", zap.Error(err), zap.Int("set_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}
