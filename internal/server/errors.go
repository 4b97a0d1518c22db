package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	appmiddleware "github.com/nfrund/topictracker/internal/middleware"
)

// setupErrorHandling installs the central HTTP error handler. Unknown routes
// get the JSON not-found body; anything the handlers did not turn into a
// response is logged with a stack trace and reported as a 500.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := map[string]any{"error": http.StatusText(code)}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch code {
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				code = http.StatusNotFound
				body["error"] = "Route not found"
			default:
				body["error"] = he.Message
			}
		} else {
			appmiddleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				"error", err.Error(),
				"stack_trace", string(debug.Stack()),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, body)
		}
		if writeErr != nil {
			slog.Error("Failed to write error response", "error", writeErr)
		}
	}
}
