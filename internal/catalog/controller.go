package catalog

import (
	"net/http"

	"github.com/Rounit002/maasaraswatilibrary/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetCatalog returns the cached branch and shift catalogs, loading them
// on first access.
func (c *Controller) GetCatalog(ctx *gin.Context) {
	if !c.service.Loaded() {
		if _, err := c.service.Load(ctx.Request.Context()); err != nil {
			response.RespondError(ctx, err)
			return
		}
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Catalog retrieved successfully", c.service.Snapshot(), nil)
}

// ReloadCatalog replaces the cached catalogs wholesale.
func (c *Controller) ReloadCatalog(ctx *gin.Context) {
	snap, err := c.service.Reload(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Catalog reloaded successfully", snap, nil)
}
