package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"busline/internal/service"
)

// ListTrips - GET /api/trips
// Получить список рейсов
func (h *Handlers) ListTrips(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	response, err := h.services.Trips.List(c.Request.Context(), service.TripQuery{
		Query:       c.Query("query"),
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        c.Query("date"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to list trips")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetTrip - GET /api/trips/:id
func (h *Handlers) GetTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	trip, err := h.services.Trips.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to get trip")
		return
	}

	c.JSON(http.StatusOK, trip)
}

// GetTripSeats - GET /api/trips/:id/seats
// Занятые места рейса
func (h *Handlers) GetTripSeats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	response, err := h.services.Trips.Seats(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to get seats")
		return
	}

	c.JSON(http.StatusOK, response)
}
