package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"linkly-be/internal/jwt"
)

// AuthCookieName is the session cookie set at login. The middleware accepts
// either this cookie or an Authorization bearer header.
const AuthCookieName = "auth_token"

// ContextUserIDKey is the gin context key holding the authenticated user's ID.
const ContextUserIDKey = "user_id"

// extractToken pulls a token from the Authorization header or the session
// cookie. The "Bearer " prefix is optional, matching what browser clients
// and curl users actually send.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		if cookie, err := c.Cookie(AuthCookieName); err == nil {
			header = cookie
		}
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// AuthMiddleware rejects requests without a valid session token and stores
// the caller's user ID in the gin context for handlers downstream.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Authorization denied.",
			})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Token is not valid.",
			})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's identity when a valid token
// is present and lets the request through anonymously otherwise. Used on
// routes that work for everyone but attribute links to logged-in users.
func OptionalAuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			if claims, err := jwtService.ValidateToken(token); err == nil {
				c.Set(ContextUserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID from the gin context,
// or ok=false for anonymous requests.
func CurrentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
