package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"busline/internal/auth"
	apperrors "busline/internal/errors"
	"busline/internal/external"
	"busline/internal/logger"
	"busline/internal/middleware"
	"busline/internal/service"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// appSession достает сессию устройства; без нее маршруты /api не вызываются.
func appSession(c *gin.Context) *service.AppSession {
	sess := middleware.GetAppSession(c)
	if sess == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": middleware.AppSessionHeader + " header is required"})
	}
	return sess
}

// pathID возвращает параметр :id, если это UUID; иначе отвечает 400.
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return "", false
	}
	return id, true
}

// handleServiceError maps service errors to HTTP responses. Unknown errors
// are logged and answered with fallback.
func handleServiceError(c *gin.Context, err error, fallback string) {
	var authErr *external.AuthError
	if errors.As(err, &authErr) {
		status := authErr.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": authErr.Message})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, auth.ErrNoSession),
		errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrInvalidPassengerCount),
		errors.Is(err, apperrors.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNoBookingInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrSeatPassengerMismatch),
		apperrors.IsPromoRejection(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.WithContext(c.Request.Context()).Error(fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
