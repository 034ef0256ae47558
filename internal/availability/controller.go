package availability

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/utils/response"
)

// AssignmentSource provides the subject student's current shift
// assignments for the self-exemption merge.
type AssignmentSource interface {
	AssignmentShiftIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error)
}

type Controller struct {
	service     Service
	catalogs    catalog.Service
	assignments AssignmentSource
}

func NewController(service Service, catalogs catalog.Service, assignments AssignmentSource) *Controller {
	return &Controller{
		service:     service,
		catalogs:    catalogs,
		assignments: assignments,
	}
}

// GetBranchAvailability returns offerable seats and lockers for a branch,
// scoped to the student being renewed.
func (c *Controller) GetBranchAvailability(ctx *gin.Context) {
	branchID, err := uuid.Parse(ctx.Param("branchId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid branch ID", nil, err.Error())
		return
	}

	studentID, err := uuid.Parse(ctx.Query("student_id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Student ID is required", nil, "missing or invalid student_id query parameter")
		return
	}

	result, err := c.service.ResolveAvailability(ctx.Request.Context(), branchID, studentID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability retrieved successfully", result, nil)
}

// GetSeatShifts returns every shift annotated with its eligibility for
// the given seat, the student's own assignments always included.
func (c *Controller) GetSeatShifts(ctx *gin.Context) {
	seatID, err := uuid.Parse(ctx.Param("seatId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat ID", nil, err.Error())
		return
	}

	studentID, err := uuid.Parse(ctx.Query("student_id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Student ID is required", nil, "missing or invalid student_id query parameter")
		return
	}

	if !c.catalogs.Loaded() {
		if _, err := c.catalogs.Load(ctx.Request.Context()); err != nil {
			response.RespondError(ctx, err)
			return
		}
	}

	assignmentIDs, err := c.assignments.AssignmentShiftIDs(ctx.Request.Context(), studentID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	options, err := c.service.ResolveShiftEligibility(ctx.Request.Context(), seatID, assignmentIDs, c.catalogs.Shifts())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Shift eligibility retrieved successfully", options, nil)
}
