package renewal

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

// OpenSession starts a renewal dialog for a student.
func (c *Controller) OpenSession(ctx *gin.Context) {
	var req OpenSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid student ID", nil, err.Error())
		return
	}

	snapshot, err := c.service.Open(ctx.Request.Context(), studentID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Renewal session opened successfully", snapshot, nil)
}

// GetSession returns the current session snapshot.
func (c *Controller) GetSession(ctx *gin.Context) {
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	snapshot, err := c.service.Get(ctx.Request.Context(), sessionID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Renewal session retrieved successfully", snapshot, nil)
}

// SetBranch changes or clears the branch selection.
func (c *Controller) SetBranch(ctx *gin.Context) {
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req SetBranchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	branchID, ok := c.optionalID(ctx, req.BranchID, "branch")
	if !ok {
		return
	}

	snapshot, err := c.service.SetBranch(ctx.Request.Context(), sessionID, branchID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Branch selected successfully", snapshot, nil)
}

// SetSeat changes or clears the seat selection.
func (c *Controller) SetSeat(ctx *gin.Context) {
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req SetSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	seatID, ok := c.optionalID(ctx, req.SeatID, "seat")
	if !ok {
		return
	}

	snapshot, err := c.service.SetSeat(ctx.Request.Context(), sessionID, seatID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat selected successfully", snapshot, nil)
}

// SetShifts replaces the shift selection.
func (c *Controller) SetShifts(ctx *gin.Context) {
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req SetShiftsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	shiftIDs := make([]uuid.UUID, 0, len(req.ShiftIDs))
	for _, raw := range req.ShiftIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid shift ID", nil, err.Error())
			return
		}
		shiftIDs = append(shiftIDs, id)
	}

	snapshot, err := c.service.SetShifts(ctx.Request.Context(), sessionID, shiftIDs)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Shifts selected successfully", snapshot, nil)
}

// SetLocker changes or clears the locker selection.
func (c *Controller) SetLocker(ctx *gin.Context) {
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req SetLockerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	lockerID, ok := c.optionalID(ctx, req.LockerID, "locker")
	if !ok {
		return
	}

	snapshot, err := c.service.SetLocker(ctx.Request.Context(), sessionID, lockerID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Locker selected successfully", snapshot, nil)
}

// UpdateFees applies fee field edits from the form.
func (c *Controller) UpdateFees(ctx *gin.Context) {
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req UpdateFeesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	snapshot, err := c.service.UpdateFees(ctx.Request.Context(), sessionID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Fees updated successfully", snapshot, nil)
}

// Submit persists the renewal and closes the session.
func (c *Controller) Submit(ctx *gin.Context) {
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	if err := c.service.Submit(ctx.Request.Context(), sessionID, req); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Membership renewed successfully", nil, nil)
}

// CancelSession abandons the dialog without saving anything.
func (c *Controller) CancelSession(ctx *gin.Context) {
	sessionID, ok := c.sessionID(ctx)
	if !ok {
		return
	}

	if err := c.service.Cancel(ctx.Request.Context(), sessionID); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Renewal session cancelled successfully", nil, nil)
}

func (c *Controller) sessionID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid session ID", nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// optionalID parses an id that may be empty; empty means the synthetic
// none option.
func (c *Controller) optionalID(ctx *gin.Context, raw string, label string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid "+label+" ID", nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}
