package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bsrBe/yearBook/models"
	"github.com/bsrBe/yearBook/repository"
	"github.com/bsrBe/yearBook/utils"
)

// CookieName is the cookie carrying the session token.
const CookieName = "cookieToken"

// ContextUserKey is the gin context key holding the authenticated user.
const ContextUserKey = "currentUser"

// Auth verifies the session cookie, resolves the user it names, and
// stores the user (password hash never serialized) in the Gin context.
// Any failure ends the request with 401.
func Auth(secret []byte, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err != nil || tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized, no token"})
			c.Abort()
			return
		}

		claims, err := utils.ParseSessionToken(tokenStr, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized, token failed"})
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.FindByID(ctx, claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized, token failed"})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireRole ensures the authenticated user has the given role.
// Mount after Auth.
func RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != required {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
