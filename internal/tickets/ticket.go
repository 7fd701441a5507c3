package tickets

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"busline/internal/models"
)

// BuildETicket renders a one-page PDF ticket for a single booked seat and
// returns it together with a download filename.
func BuildETicket(booking *models.Booking, trip *models.Trip) ([]byte, string, error) {
	if booking == nil || trip == nil {
		return nil, "", fmt.Errorf("booking and trip are required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Booking ref : " + bookingRef(booking.ID),
		"Passenger   : " + safe(booking.PassengerName, "-"),
		"ID number   : " + safe(booking.PassengerIDNumber, "-"),
		"Route       : " + safe(trip.Origin, "-") + " - " + safe(trip.Destination, "-"),
		"Departure   : " + trip.DepartureTime.Format("2006-01-02 15:04"),
		"Bus         : " + safe(trip.BusPlate, "-") + " " + trip.BusModel,
		"Seat        : " + safe(booking.SeatNumber, "-"),
		"Fare        : " + formatMoney(booking.TotalAmount),
	}
	if booking.DiscountAmount > 0 {
		lines = append(lines, "Discount    : "+formatMoney(booking.DiscountAmount))
		lines = append(lines, "Paid        : "+formatMoney(booking.TotalAmount-booking.DiscountAmount))
	}
	if booking.PromoCode != nil {
		lines = append(lines, "Promo code  : "+*booking.PromoCode)
	}
	lines = append(lines, "Status      : "+booking.Status)

	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This ticket is valid for one passenger and one seat. Present it at boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render ticket: %w", err)
	}

	filename := fmt.Sprintf("ticket_%s_%s.pdf", safeFilenamePart(bookingRef(booking.ID)), safeFilenamePart(booking.SeatNumber))
	return buf.Bytes(), filename, nil
}

// bookingRef is the short form printed on tickets.
func bookingRef(id string) string {
	ref := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return ref
}

func safe(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
