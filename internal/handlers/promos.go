package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/models"
)

// CreatePromo - POST /api/admin/promos
// Создать промокод (только admin)
func (h *Handlers) CreatePromo(c *gin.Context) {
	var req models.CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	promo, err := h.services.Promos.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to create promo code")
		return
	}

	c.JSON(http.StatusCreated, promo)
}
