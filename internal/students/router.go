package students

import (
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupStudentRoutes(rg *gin.RouterGroup, controller *Controller) {
	studentsGroup := rg.Group("/students")
	studentsGroup.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		studentsGroup.GET("/expired", controller.GetExpiredMemberships) // GET /api/v1/students/expired?branch_id=xxx
		studentsGroup.GET("/:id", controller.GetStudent)                // GET /api/v1/students/:id
		studentsGroup.DELETE("/:id", controller.DeleteStudent)          // DELETE /api/v1/students/:id
	}
}
