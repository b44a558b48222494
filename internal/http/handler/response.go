package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// respondError writes the flat {"error": message} payload used by every
// failure path, matching the shape the central HTTP error handler emits.
func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{jsonKeyError: message})
}

// respondMessage writes {"message": ...} for successes with no entity body.
func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{jsonKeyMessage: message})
}

// handleHTTPError flattens binding/routing errors into the standard error
// payload so clients never see echo's native error shape.
func handleHTTPError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message, _ := he.Message.(string)
		if message == "" {
			message = http.StatusText(he.Code)
		}
		return respondError(c, he.Code, message)
	}
	return respondError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
