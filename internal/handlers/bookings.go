package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/middleware"
	"busline/internal/tickets"
)

// ListBookings - GET /api/bookings
// Получить список бронирований пользователя
func (h *Handlers) ListBookings(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	bookings, err := h.services.Bookings.List(c.Request.Context(), identity.ID)
	if err != nil {
		handleServiceError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// DownloadTicket - GET /api/bookings/:id/ticket
// Электронный билет в PDF
func (h *Handlers) DownloadTicket(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	ctx := c.Request.Context()
	id, ok := pathID(c)
	if !ok {
		return
	}

	booking, err := h.services.Bookings.GetOwned(ctx, identity.ID, id)
	if err != nil {
		handleServiceError(c, err, "Failed to get booking")
		return
	}

	trip, err := h.services.Trips.GetByID(ctx, booking.ScheduleID)
	if err != nil {
		handleServiceError(c, err, "Failed to get trip")
		return
	}

	pdf, filename, err := tickets.BuildETicket(booking, trip)
	if err != nil {
		handleServiceError(c, err, "Failed to render ticket")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
