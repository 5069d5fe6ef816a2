package middlewares

import (
	"net/http"

	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
)

// RequireRoles rejects the request unless the authenticated user holds
// one of the given roles. Must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to access this route"})
		c.Abort()
	}
}
