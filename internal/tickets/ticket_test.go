package tickets

import (
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busline/internal/models"
)

func TestBuildETicket(t *testing.T) {
	booking := &models.Booking{
		ID:             "3f2b7c1a-0d5e-4a8b-9c6d-1e2f3a4b5c6d",
		PassengerName:  "Ada Obi",
		SeatNumber:     "A1",
		TotalAmount:    100,
		DiscountAmount: 10,
		PromoCode:      pointer.ToString("SAVE10"),
		Status:         models.BookingStatusConfirmed,
	}
	trip := &models.Trip{
		ID:            "T1",
		Origin:        "Lagos",
		Destination:   "Abuja",
		DepartureTime: time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC),
		BusPlate:      "LAG-123",
	}

	pdf, filename, err := BuildETicket(booking, trip)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
	assert.Equal(t, "ticket_3F2B7C1A_A1.pdf", filename)
}

func TestBuildETicketRequiresTrip(t *testing.T) {
	_, _, err := BuildETicket(&models.Booking{}, nil)
	assert.Error(t, err)
}

func TestSafeFilenamePart(t *testing.T) {
	assert.Equal(t, "A_1", safeFilenamePart("A/1"))
	assert.Equal(t, "x", safeFilenamePart(""))
}
