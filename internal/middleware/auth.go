package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthGuard validates the Bearer token and, when roles are given,
// requires the role claim to match one of them. userId and role are set
// on the context for handlers.
func AuthGuard(secret string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":    false,
				"statusCode": http.StatusUnauthorized,
				"message":    "missing token",
			})
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":    false,
				"statusCode": http.StatusUnauthorized,
				"message":    "invalid token",
			})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":    false,
				"statusCode": http.StatusUnauthorized,
				"message":    "unauthorized",
			})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":    false,
				"statusCode": http.StatusUnauthorized,
				"message":    "unauthorized",
			})
			return
		}

		role, _ := claims["role"].(string)
		if len(allowedRoles) > 0 {
			match := false
			for _, r := range allowedRoles {
				if role == r {
					match = true
					break
				}
			}
			if !match {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"success":    false,
					"statusCode": http.StatusForbidden,
					"message":    "forbidden",
				})
				return
			}
		}

		if userIDValue, ok := claims["userId"].(string); ok {
			if userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(userIDValue)); err == nil {
				c.Set("userId", userID)
			}
		}

		c.Set("claims", claims)
		c.Set("role", role)
		c.Next()
	}
}

// AdminAuth gates a route to admin tokens.
func AdminAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, "admin")
}

// StaffAuth gates a route to admin or vendor tokens.
func StaffAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, "admin", "vendor")
}
