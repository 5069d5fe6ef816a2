package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
)

// ModerationRoutes sets up the admin moderation routes
func ModerationRoutes(r *gin.Engine) {
	moderation := r.Group("/api/moderation",
		middlewares.AuthMiddleware(),
		middlewares.RequireRoles(models.RoleAdmin))
	{
		moderation.GET("/pending", controllers.GetPendingModeration)
		moderation.PUT("/approve/:id", controllers.ApproveModeration)
		moderation.PUT("/reject/:id", controllers.RejectModeration)
	}
}
