package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/models"
)

// GetCart - GET /api/cart
func (h *Handlers) GetCart(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{Items: sess.Cart.Items(), Total: sess.Cart.Total()})
}

// AddToCart - POST /api/cart/items
// Перенести текущее бронирование в корзину
func (h *Handlers) AddToCart(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	item, err := sess.Cart.Add()
	if err != nil {
		handleServiceError(c, err, "Failed to add to cart")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// RemoveFromCart - DELETE /api/cart/items/:id
// Отсутствующий id не является ошибкой
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	sess.Cart.Remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ClearCart - DELETE /api/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	sess.Cart.Clear()
	c.Status(http.StatusNoContent)
}

// Checkout - POST /api/cart/checkout
// Оформить все позиции корзины
func (h *Handlers) Checkout(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	bookings, err := sess.Checkout(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to create bookings")
		return
	}

	c.JSON(http.StatusCreated, models.CheckoutResponse{Bookings: bookings, Count: len(bookings)})
}
