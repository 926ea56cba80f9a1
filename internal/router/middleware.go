package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nerakcos/storefront-api/pkg/auth"
	"github.com/nerakcos/storefront-api/pkg/global"
	"github.com/nerakcos/storefront-api/pkg/models"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// OptionalAuth attaches the verified user id and role to the request context
// when a valid bearer token is present. It never aborts: cart endpoints serve
// guests and users alike, and identity resolution falls back to a guest
// session.
func OptionalAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			c.Next()
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.Next()
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireAuth aborts with 401 unless OptionalAuth resolved a user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ctxUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("Authorization required"))
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated user has the admin
// role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, global.ErrorResponse("Admins only"))
			return
		}
		c.Next()
	}
}

// currentUserID returns the authenticated user's id, or nil for guests.
func currentUserID(c *gin.Context) *bson.ObjectID {
	value, exists := c.Get(ctxUserID)
	if !exists {
		return nil
	}
	userID, ok := value.(bson.ObjectID)
	if !ok {
		return nil
	}
	return &userID
}
