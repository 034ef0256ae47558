package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rounit002/maasaraswatilibrary/internal/shared/apperrors"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps the renewal error taxonomy onto HTTP responses. The
// server-reported message is passed through verbatim.
func RespondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidationError(err):
		RespondJSON(c, "error", http.StatusUnprocessableEntity, "Validation failed", nil, err.Error())
	case apperrors.IsFetchError(err):
		RespondJSON(c, "error", http.StatusBadGateway, "Failed to fetch data", nil, err.Error())
	case apperrors.IsSubmitError(err):
		RespondJSON(c, "error", http.StatusBadRequest, "Renewal rejected", nil, err.Error())
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrSessionNotFound):
		RespondJSON(c, "error", http.StatusNotFound, "Not found", nil, err.Error())
	default:
		RespondJSON(c, "error", http.StatusInternalServerError, "Internal error", nil, err.Error())
	}
}
