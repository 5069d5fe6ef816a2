package routes

import (
	"civicpulse-be/config"
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
)

// ComplaintRoutes sets up the complaint lifecycle routes
func ComplaintRoutes(r *gin.Engine) {
	complaint := r.Group("/api/complaints", middlewares.AuthMiddleware())
	{
		complaint.POST("/create",
			middlewares.ComplaintRateLimiter(config.AppConfig.Uploads.ComplaintLimit),
			controllers.CreateComplaint)
		complaint.GET("/user/:id", controllers.GetComplaintsByUser)
		complaint.GET("/all", middlewares.RequireRoles(models.RoleAdmin), controllers.GetAllComplaints)
		complaint.GET("/worker", middlewares.RequireRoles(models.RoleWorker), controllers.GetWorkerComplaints)
		complaint.PUT("/assign/:id", middlewares.RequireRoles(models.RoleAdmin), controllers.AssignComplaint)
		complaint.PUT("/update/:id", middlewares.RequireRoles(models.RoleWorker), controllers.UpdateComplaintStatus)
		complaint.GET("/:id", controllers.GetComplaint)
	}
}
