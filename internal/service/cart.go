package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "busline/internal/errors"
	"busline/internal/models"
)

// Cart is the ordered list of finalized booking flows of one app session.
type Cart struct {
	flow *BookingFlow
	now  func() time.Time

	mu    sync.Mutex
	items []models.CartItem
}

func NewCart(flow *BookingFlow) *Cart {
	return &Cart{flow: flow, now: time.Now, items: []models.CartItem{}}
}

// Add snapshots the booking flow into a new item and resets the flow.
func (c *Cart) Add() (models.CartItem, error) {
	state := c.flow.take()
	if state.Trip == nil {
		return models.CartItem{}, apperrors.ErrNoBookingInProgress
	}

	item := models.CartItem{
		ID:             uuid.New().String(),
		Trip:           *state.Trip,
		Seats:          state.SelectedSeats,
		Passengers:     state.PassengerDetails,
		Amount:         state.TotalAmount,
		DiscountAmount: state.DiscountAmount,
		PromoCode:      state.PromoCode,
		AddedAt:        c.now(),
	}

	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()

	return item, nil
}

// Remove deletes the item with id; unknown ids are ignored.
func (c *Cart) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []models.CartItem{}
}

// Total is the sum of item amounts.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, item := range c.items {
		total += item.Amount
	}
	return total
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartItem{}, c.items...)
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
