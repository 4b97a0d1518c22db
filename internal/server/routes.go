package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/topictracker/internal/handlers"
	"github.com/nfrund/topictracker/internal/storage"
)

const wsPath = "/ws"

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	handlers.NewTopicHandler(s.Service).Register(s.E.Group("/api/topics"))

	s.E.GET(wsPath, s.Gateway.Handler())
}

// registerStatic serves the browser client from the configured directory.
// A missing directory only disables the client.
func (s *Server) registerStatic() {
	assets := storage.NewDirAssets(s.Cfg.GetStaticDir())
	if !assets.Available() {
		slog.Warn("Static client not found, serving API only", "dir", s.Cfg.GetStaticDir())
		return
	}
	s.E.StaticFS("/", assets.FS())
}
