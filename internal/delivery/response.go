package delivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axssiz/ParfumeProject/internal/domain"
)

// Every endpoint answers with {"ok": bool, ...}: the order / listing on
// success, a stable machine-readable error code on failure.

func OKResponse(c *gin.Context, statusCode int, payload gin.H) {
	body := gin.H{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func ErrorResponse(c *gin.Context, err error) {
	statusCode, code := mapError(err)
	c.JSON(statusCode, gin.H{"ok": false, "error": code})
}

// mapError translates the domain error taxonomy to HTTP statuses and
// stable error codes. domain.ErrUnavailable is consumed by the usecase
// failover and is not expected here; it falls through to internal_error.
func mapError(err error) (int, string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "login_required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "invalid_status"
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Code
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
