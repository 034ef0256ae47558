package students

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetExpiredMemberships returns the expired-members table, optionally
// scoped to one branch.
func (c *Controller) GetExpiredMemberships(ctx *gin.Context) {
	var branchID *uuid.UUID
	if raw := ctx.Query("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid branch ID", nil, err.Error())
			return
		}
		branchID = &id
	}

	rows, err := c.service.ListExpiredMemberships(ctx.Request.Context(), branchID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Expired memberships retrieved successfully", rows, nil)
}

// GetStudent returns the full student detail including assignments.
func (c *Controller) GetStudent(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid student ID", nil, err.Error())
		return
	}

	student, err := c.service.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Student retrieved successfully", student, nil)
}

// DeleteStudent removes a student and frees their seat and locker.
func (c *Controller) DeleteStudent(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid student ID", nil, err.Error())
		return
	}

	if err := c.service.Delete(ctx.Request.Context(), id); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Student deleted successfully", nil, nil)
}
