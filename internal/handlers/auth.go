package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/logger"
	"busline/internal/models"
)

// CreateAppSession - POST /api/app-sessions
// Выдать идентификатор сессии устройства
func (h *Handlers) CreateAppSession(c *gin.Context) {
	c.JSON(http.StatusCreated, models.AppSessionResponse{ID: h.services.AppSessions.NewID()})
}

// SignUp - POST /api/auth/signup
// Регистрация
func (h *Handlers) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := appSession(c)
	if sess == nil {
		return
	}

	if err := sess.Store.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName, req.Phone); err != nil {
		handleServiceError(c, err, "Failed to sign up")
		return
	}

	// Identity stays nil while the provider waits for email confirmation.
	c.JSON(http.StatusCreated, models.AuthResponse{User: sess.Store.Identity()})
}

// SignIn - POST /api/auth/signin
// Вход по email и паролю
func (h *Handlers) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := appSession(c)
	if sess == nil {
		return
	}

	identity, err := sess.Store.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err, "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{User: identity})
}

// SignOut - POST /api/auth/signout
// Выход; локальная сессия очищается в любом случае
func (h *Handlers) SignOut(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	if err := sess.Store.SignOut(c.Request.Context()); err != nil {
		logger.WithContext(c.Request.Context()).Warn("Provider sign out failed", "error", err)
	}

	c.Status(http.StatusOK)
}

// RefreshSession - POST /api/auth/refresh
func (h *Handlers) RefreshSession(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	if err := sess.Store.RefreshSession(c.Request.Context()); err != nil {
		handleServiceError(c, err, "Failed to refresh session")
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{User: sess.Store.Identity()})
}

// ReloadUser - POST /api/auth/reload
// Перечитать пользователя и профиль
func (h *Handlers) ReloadUser(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	identity, err := sess.Store.ReloadUser(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to reload user")
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{User: identity})
}

// ResetPassword - POST /api/auth/reset-password
func (h *Handlers) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := appSession(c)
	if sess == nil {
		return
	}

	if err := sess.Store.ResetPassword(c.Request.Context(), req.Email, req.RedirectTo); err != nil {
		handleServiceError(c, err, "Failed to request password reset")
		return
	}

	c.Status(http.StatusOK)
}

// Me - GET /api/auth/me
// Текущий пользователь
func (h *Handlers) Me(c *gin.Context) {
	sess := appSession(c)
	if sess == nil {
		return
	}

	identity := sess.Store.Identity()
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{User: identity})
}
