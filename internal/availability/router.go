package availability

import (
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAvailabilityRoutes(rg *gin.RouterGroup, controller *Controller) {
	branches := rg.Group("/branches")
	branches.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		// GET /api/v1/branches/:branchId/availability?student_id=xxx
		branches.GET("/:branchId/availability", controller.GetBranchAvailability)
	}

	seats := rg.Group("/seats")
	seats.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		// GET /api/v1/seats/:seatId/shifts?student_id=xxx
		seats.GET("/:seatId/shifts", controller.GetSeatShifts)
	}
}
