package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"busline/internal/logger"
	"busline/internal/middleware"
	"busline/internal/models"
)

// APIValidator - smoke-проверка публичных эндпоинтов запущенного сервиса
type APIValidator struct {
	baseURL   string
	client    *http.Client
	sessionID string
}

func NewAPIValidator(baseURL string) *APIValidator {
	return &APIValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ValidateAll walks an anonymous device through trips, booking flow and cart.
func (v *APIValidator) ValidateAll() error {
	logger.Get().Info("Starting API validation", "base_url", v.baseURL)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"health", v.validateHealth},
		{"app session", v.validateAppSession},
		{"auth", v.validateAnonymousAuth},
		{"trips and booking", v.validateTripsAndBooking},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s validation failed: %w", step.name, err)
		}
		logger.Get().Info("Validation step passed", "step", step.name)
	}

	logger.Get().Info("All endpoints passed validation")
	return nil
}

func (v *APIValidator) validateHealth() error {
	return v.expect(http.MethodGet, "/health", nil, http.StatusOK, nil)
}

func (v *APIValidator) validateAppSession() error {
	var resp models.AppSessionResponse
	if err := v.expect(http.MethodPost, "/api/app-sessions", nil, http.StatusCreated, &resp); err != nil {
		return err
	}
	if resp.ID == "" {
		return fmt.Errorf("POST /api/app-sessions: expected non-empty id")
	}
	v.sessionID = resp.ID
	return nil
}

func (v *APIValidator) validateAnonymousAuth() error {
	if err := v.expect(http.MethodGet, "/api/auth/me", nil, http.StatusUnauthorized, nil); err != nil {
		return err
	}
	return v.expect(http.MethodPost, "/api/cart/checkout", nil, http.StatusUnauthorized, nil)
}

func (v *APIValidator) validateTripsAndBooking() error {
	var trips models.ListTripsResponse
	if err := v.expect(http.MethodGet, "/api/trips?pageSize=5", nil, http.StatusOK, &trips); err != nil {
		return err
	}
	if len(trips.Trips) == 0 {
		logger.Get().Warn("No trips available, skipping booking flow checks")
		return v.expect(http.MethodGet, "/api/cart", nil, http.StatusOK, nil)
	}

	trip := trips.Trips[0]
	if err := v.expect(http.MethodGet, "/api/trips/"+trip.ID, nil, http.StatusOK, nil); err != nil {
		return err
	}
	if err := v.expect(http.MethodGet, "/api/trips/"+trip.ID+"/seats", nil, http.StatusOK, nil); err != nil {
		return err
	}

	var flow models.BookingFlow
	start := models.StartBookingRequest{TripID: trip.ID, PassengerCount: 1}
	if err := v.expect(http.MethodPost, "/api/booking/start", start, http.StatusOK, &flow); err != nil {
		return err
	}
	if flow.TotalAmount != trip.Fare {
		return fmt.Errorf("POST /api/booking/start: expected total %.2f, got %.2f", trip.Fare, flow.TotalAmount)
	}

	if err := v.expect(http.MethodPut, "/api/booking/seats", models.UpdateSeatsRequest{Seats: []string{"1"}}, http.StatusOK, nil); err != nil {
		return err
	}
	passengers := models.UpdatePassengersRequest{Passengers: []models.PassengerInfo{{FullName: "Validation Passenger"}}}
	if err := v.expect(http.MethodPut, "/api/booking/passengers", passengers, http.StatusOK, nil); err != nil {
		return err
	}

	var promo models.ApplyPromoResponse
	if err := v.expect(http.MethodPost, "/api/booking/promo", models.ApplyPromoRequest{Code: "NO-SUCH-CODE"}, http.StatusOK, &promo); err != nil {
		return err
	}
	if promo.Success {
		return fmt.Errorf("POST /api/booking/promo: unknown code was accepted")
	}

	var item models.CartItem
	if err := v.expect(http.MethodPost, "/api/cart/items", nil, http.StatusCreated, &item); err != nil {
		return err
	}

	var cart models.CartResponse
	if err := v.expect(http.MethodGet, "/api/cart", nil, http.StatusOK, &cart); err != nil {
		return err
	}
	if len(cart.Items) != 1 || cart.Total != item.Amount {
		return fmt.Errorf("GET /api/cart: expected one item totalling %.2f", item.Amount)
	}

	return v.expect(http.MethodDelete, "/api/cart/items/"+item.ID, nil, http.StatusNoContent, nil)
}

func (v *APIValidator) expect(method, path string, body any, wantStatus int, out any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequest(method, v.baseURL+path, &payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.sessionID != "" {
		req.Header.Set(middleware.AppSessionHeader, v.sessionID)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s %s: expected %d, got %d", method, path, wantStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
		}
	}
	return nil
}

// RunValidation запускает валидацию API
func RunValidation(baseURL string) error {
	return NewAPIValidator(baseURL).ValidateAll()
}
