package catalog

import (
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCatalogRoutes(rg *gin.RouterGroup, controller *Controller) {
	cat := rg.Group("/catalog")
	cat.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		cat.GET("", controller.GetCatalog)            // GET /api/v1/catalog
		cat.POST("/reload", controller.ReloadCatalog) // POST /api/v1/catalog/reload
	}
}
