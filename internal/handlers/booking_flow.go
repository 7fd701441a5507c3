package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "busline/internal/errors"
	"busline/internal/models"
)

// StartBooking - POST /api/booking/start
// Начать бронирование рейса
func (h *Handlers) StartBooking(c *gin.Context) {
	var req models.StartBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := appSession(c)
	if sess == nil {
		return
	}

	trip, err := h.services.Trips.GetByID(c.Request.Context(), req.TripID)
	if err != nil {
		handleServiceError(c, err, "Failed to get trip")
		return
	}

	if err := sess.Flow.Start(*trip, req.PassengerCount); err != nil {
		handleServiceError(c, err, "Failed to start booking")
		return
	}

	c.JSON(http.StatusOK, sess.Flow.Snapshot())
}

// UpdateSeats - PUT /api/booking/seats
func (h *Handlers) UpdateSeats(c *gin.Context) {
	var req models.UpdateSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := appSession(c)
	if sess == nil {
		return
	}

	sess.Flow.UpdateSeats(req.Seats)
	c.JSON(http.StatusOK, sess.Flow.Snapshot())
}

// UpdatePassengers - PUT /api/booking/passengers
func (h *Handlers) UpdatePassengers(c *gin.Context) {
	var req models.UpdatePassengersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := appSession(c)
	if sess == nil {
		return
	}

	sess.Flow.UpdatePassengerDetails(req.Passengers)
	c.JSON(http.StatusOK, sess.Flow.Snapshot())
}

// ApplyPromo - POST /api/booking/promo
// Отказ по промокоду возвращается как значение, бронирование не меняется
func (h *Handlers) ApplyPromo(c *gin.Context) {
	var req models.ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := appSession(c)
	if sess == nil {
		return
	}

	discount, err := sess.Flow.ApplyPromoCode(c.Request.Context(), req.Code)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, models.ApplyPromoResponse{Success: true, Discount: discount})
	case apperrors.IsPromoRejection(err):
		c.JSON(http.StatusOK, models.ApplyPromoResponse{Success: false, Error: err.Error()})
	default:
		handleServiceError(c, err, "Failed to apply promo code")
	}
}

// GetBookingFlow - GET /api/booking
func (h *Handlers) GetBookingFlow(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	c.JSON(http.StatusOK, sess.Flow.Snapshot())
}

// CancelBookingFlow - DELETE /api/booking
func (h *Handlers) CancelBookingFlow(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	sess.Flow.Reset()
	c.Status(http.StatusNoContent)
}
