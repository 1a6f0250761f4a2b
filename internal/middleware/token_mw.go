package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"star_studio/internal/logging"
	"star_studio/internal/model"
	"star_studio/internal/service"

	"github.com/gin-gonic/gin"
)

const AuthUserKey = "authUser"

// TokenAuthenticator resolves a token key to its owner
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, key string) (*model.User, error)
}

// TokenAuthMiddleware requires "Authorization: Token <key>" (or "Bearer <key>")
// and stores the owning user's ID under AuthUserKey
func TokenAuthMiddleware(auth TokenAuthenticator, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}
		scheme := strings.ToLower(parts[0])
		if scheme != "token" && scheme != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		user, err := auth.AuthenticateToken(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token."})
				return
			}
			logger.Error(c.Request.Context(), "token authentication failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			return
		}

		c.Set(AuthUserKey, user.ID)
		c.Next()
	}
}

// AuthUserID returns the user ID stored by TokenAuthMiddleware
func AuthUserID(c *gin.Context) (int64, error) {
	userIDVal, exists := c.Get(AuthUserKey)
	if !exists {
		return 0, errors.New("user ID not found in context")
	}
	userID, ok := userIDVal.(int64)
	if !ok {
		return 0, errors.New("invalid user ID type in context")
	}
	return userID, nil
}
