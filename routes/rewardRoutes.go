package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
)

// RewardRoutes sets up the reward ledger routes
func RewardRoutes(r *gin.Engine) {
	rewards := r.Group("/api/rewards")
	{
		rewards.GET("/leaderboard", controllers.GetLeaderboard)
		rewards.GET("/user/:id", middlewares.AuthMiddleware(), controllers.GetUserRewards)

		admin := rewards.Group("", middlewares.AuthMiddleware(), middlewares.RequireRoles(models.RoleAdmin))
		{
			admin.PUT("/add-points/:id", controllers.AddPoints)
			admin.PUT("/add-badge/:id", controllers.AddBadge)
			admin.PUT("/add-certificate/:id", controllers.AddCertificate)
			admin.PUT("/add-coupon/:id", controllers.AddCoupon)
		}
	}
}
