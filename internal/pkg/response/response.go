// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "bakery-popup/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response. Abort comes first so no later
// handler writes to the response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// FromError picks the status from the application error kind. Store errors
// that are not one of the known kinds count as upstream failures.
func FromError(c *gin.Context, message string, err error, data ...interface{}) {
	Error(c, StatusFor(err), message, err, data...)
}

func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, xerrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, xerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrConflict), errors.Is(err, xerrors.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, xerrors.ErrInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message, xerrors.ErrRateLimited)
}
