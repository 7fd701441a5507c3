package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "busline/internal/errors"
	"busline/internal/logger"
	"busline/internal/models"
	"busline/internal/service"
)

const AppSessionHeader = "X-App-Session"

// Ключи gin.Context
const (
	appSessionKey   = "app_session"
	appSessionIDKey = "app_session_id"
	identityKey     = "identity"
	userIDKey       = "user_id"
)

// AppSessionResolver is satisfied by *service.AppSessionRegistry.
type AppSessionResolver interface {
	Get(ctx context.Context, id string) (*service.AppSession, error)
}

// AppSession attaches the device's app session named by the X-App-Session
// header. Requests without a valid id are rejected.
func AppSession(resolver AppSessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(AppSessionHeader)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": AppSessionHeader + " header is required"})
			return
		}

		ctx := logger.ContextWithAppSession(c.Request.Context(), id)
		sess, err := resolver.Get(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidInput) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + AppSessionHeader + " header"})
				return
			}
			logger.WithContext(ctx).Error("Failed to resolve app session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve app session"})
			return
		}

		if identity := sess.Store.Identity(); identity != nil {
			c.Set(userIDKey, identity.ID)
			ctx = logger.ContextWithUserID(ctx, identity.ID)
		}

		c.Set(appSessionKey, sess)
		c.Set(appSessionIDKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetAppSession returns the app session attached by AppSession.
func GetAppSession(c *gin.Context) *service.AppSession {
	v, ok := c.Get(appSessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*service.AppSession)
	return sess
}

// RequireIdentity rejects requests from devices that are not signed in.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetAppSession(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		identity := sess.Store.Identity()
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(identityKey, identity)
		c.Set(userIDKey, identity.ID)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), identity.ID))
		c.Next()
	}
}

// RequireRole must run after RequireIdentity.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIdentity(c).HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*models.Identity)
	return identity
}
