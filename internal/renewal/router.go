package renewal

import (
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRenewalRoutes(rg *gin.RouterGroup, controller *Controller) {
	renewals := rg.Group("/renewals")
	renewals.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		renewals.POST("", controller.OpenSession)         // POST /api/v1/renewals
		renewals.GET("/:id", controller.GetSession)       // GET /api/v1/renewals/:id
		renewals.PUT("/:id/branch", controller.SetBranch) // PUT /api/v1/renewals/:id/branch
		renewals.PUT("/:id/seat", controller.SetSeat)     // PUT /api/v1/renewals/:id/seat
		renewals.PUT("/:id/shifts", controller.SetShifts) // PUT /api/v1/renewals/:id/shifts
		renewals.PUT("/:id/locker", controller.SetLocker) // PUT /api/v1/renewals/:id/locker
		renewals.PUT("/:id/fees", controller.UpdateFees)  // PUT /api/v1/renewals/:id/fees
		renewals.POST("/:id/submit", controller.Submit)   // POST /api/v1/renewals/:id/submit
		renewals.DELETE("/:id", controller.CancelSession) // DELETE /api/v1/renewals/:id
	}
}
