package http

import (
	"errors"
	"fmt"
	"net/http"

	"task-service/internal/http/middleware"
	apperrors "task-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

// sentinelStatus maps domain sentinels to their HTTP rendering. Order
// matters: more specific sentinels come before the generic ones they wrap
// alongside (ErrDuplicateAssignment before ErrConflict).
var sentinelStatus = []struct {
	sentinel error
	status   int
	message  string
}{
	{apperrors.ErrNotFound, http.StatusNotFound, "Resource not found"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{apperrors.ErrInsufficientPerms, http.StatusForbidden, "Insufficient permissions"},
	{apperrors.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{apperrors.ErrCycle, http.StatusBadRequest, "Manager assignment would create a cycle"},
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
	{apperrors.ErrValidation, http.StatusBadRequest, "Validation error"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, "Bad request"},
	{apperrors.ErrDuplicateAssignment, http.StatusConflict, "Role already assigned"},
	{apperrors.ErrEmailExists, http.StatusConflict, "Email already exists"},
	{apperrors.ErrConflict, http.StatusConflict, "Resource already exists"},
	{apperrors.ErrExpired, http.StatusGone, "Resource expired"},
	{apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "Payload too large"},
	{apperrors.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "Unsupported media type"},
}

// CustomHTTPErrorHandler renders every error that escapes a handler or
// middleware. Client errors keep the AppError message; anything 5xx is
// masked and logged with the request id.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		for _, entry := range sentinelStatus {
			if errors.Is(err, entry.sentinel) {
				status = entry.status
				message = entry.message
				break
			}
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && status < http.StatusInternalServerError {
			message = appErr.Message
		}
	}

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = "unknown"
	}

	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("request %s failed with %d: %v", requestID, status, err)
		message = "Internal server error"
	} else {
		c.Logger().Warnf("request %s rejected with %d: %v", requestID, status, err)
	}

	if err := c.JSON(status, map[string]any{
		"error":      message,
		"request_id": requestID,
	}); err != nil {
		c.Logger().Error(err)
	}
}
