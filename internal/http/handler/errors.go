package handler

import (
	"errors"
	"net/http"

	apperrors "task-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

// MapToPublicError maps internal errors to public-facing HTTP status codes
// and messages. Client errors keep their message; anything unrecognized
// collapses to a generic 500 so internals never leak.
func MapToPublicError(err error) (int, string) {
	var appErr *apperrors.AppError
	message := ""
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden), errors.Is(err, apperrors.ErrInsufficientPerms):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrDuplicateAssignment),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrEmailExists):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrCycle),
		errors.Is(err, apperrors.ErrBadRequest),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrExpired):
		status = http.StatusGone
	case errors.Is(err, apperrors.ErrPayloadTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, apperrors.ErrUnsupportedMediaType):
		status = http.StatusUnsupportedMediaType
	}

	if status == http.StatusInternalServerError || message == "" {
		message = publicMessage(status)
	}

	return status, message
}

func publicMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusConflict:
		return "resource conflict"
	case http.StatusBadRequest:
		return "invalid input"
	case http.StatusGone:
		return "resource expired"
	default:
		return "internal server error"
	}
}

// RespondWithMappedError responds with a mapped error, preventing information disclosure
func RespondWithMappedError(c echo.Context, err error) error {
	status, msg := MapToPublicError(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("internal error: %v", err)
	}
	return respondError(c, status, msg)
}
