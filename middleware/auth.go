package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/songwish/assistant-be/utils"
)

// UserEmailKey is the gin context key carrying the authenticated email.
const UserEmailKey = "user_email"

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware requires a valid bearer token and stores the customer email
// in the request context.
func AuthMiddleware(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
		return
	}
	claims, err := utils.ParseCustomerToken(token)
	if err != nil || claims.Email == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	c.Set(UserEmailKey, claims.Email)
	c.Next()
}

// OptionalAuthMiddleware stores the customer email when a valid token is
// present and lets anonymous requests through untouched.
func OptionalAuthMiddleware(c *gin.Context) {
	if token, ok := bearerToken(c); ok {
		if claims, err := utils.ParseCustomerToken(token); err == nil && claims.Email != "" {
			c.Set(UserEmailKey, claims.Email)
		}
	}
	c.Next()
}

// UserEmail returns the authenticated email, or "" for anonymous requests.
func UserEmail(c *gin.Context) string {
	return c.GetString(UserEmailKey)
}
