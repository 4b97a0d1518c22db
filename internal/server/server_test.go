package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/topictracker/internal/pubsub"
	"github.com/nfrund/topictracker/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorHandler_WithStackTrace(t *testing.T) {
	e := echo.New()

	// Capture log output so the stack trace can be inspected.
	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, &slog.HandlerOptions{AddSource: true}))
	originalLogger := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(originalLogger)

	setupErrorHandling(e)

	e.GET("/test-unhandled-error", func(c echo.Context) error {
		return errors.New("a deliberate unhandled error occurred")
	})

	req := httptest.NewRequest(http.MethodGet, "/test-unhandled-error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())

	logOutput := logBuffer.String()
	assert.Contains(t, logOutput, "Internal Server Error (Unhandled)")
	assert.Contains(t, logOutput, "error=\"a deliberate unhandled error occurred\"")
	assert.Contains(t, logOutput, "stack_trace=")
	assert.Contains(t, logOutput, "runtime/debug/stack.go", "Stack trace should originate from the debug package")
	assert.Contains(t, logOutput, "internal/server/errors.go", "Stack trace should point at the error handler")
}

func TestHTTPErrorHandler_RouteNotFound(t *testing.T) {
	e := echo.New()
	setupErrorHandling(e)
	e.GET("/only-get", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	tests := []struct {
		name   string
		method string
		target string
	}{
		{"unknown path", http.MethodGet, "/nope"},
		{"wrong method", http.MethodPost, "/only-get"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String())
		})
	}
}

func TestHTTPErrorHandler_HTTPErrorPassthrough(t *testing.T) {
	e := echo.New()
	setupErrorHandling(e)
	e.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"error":"short and stout"}`, rec.Body.String())
}

func TestServer_RecoveredPanicIsLoggedPerRequest(t *testing.T) {
	var logBuffer bytes.Buffer
	originalLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logBuffer, nil)))
	defer slog.SetDefault(originalLogger)

	bus := pubsub.NewWatermillBridge()
	t.Cleanup(func() { _ = bus.Close() })
	s, err := New(Dependencies{
		Config: testutils.ConfigForTests(t),
		Store:  testutils.NewTestStore(t),
		PubSub: bus,
	})
	require.NoError(t, err)
	s.E.GET("/panic", func(c echo.Context) error {
		panic("handler blew up")
	})

	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())

	reqID := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, reqID)

	var unhandled, handled string
	for _, line := range strings.Split(logBuffer.String(), "\n") {
		switch {
		case strings.Contains(line, "Internal Server Error (Unhandled)"):
			unhandled = line
		case strings.Contains(line, "Request handled"):
			handled = line
		}
	}
	assert.Contains(t, unhandled, "request_id="+reqID)
	assert.Contains(t, unhandled, "handler blew up")
	assert.Contains(t, handled, "request_id="+reqID)
	assert.Contains(t, handled, "status=500")
}
