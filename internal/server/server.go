package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/topictracker/internal/config"
	"github.com/nfrund/topictracker/internal/database"
	"github.com/nfrund/topictracker/internal/handlers"
	appmiddleware "github.com/nfrund/topictracker/internal/middleware"
	"github.com/nfrund/topictracker/internal/pubsub"
	"github.com/nfrund/topictracker/internal/topic"
	"github.com/nfrund/topictracker/internal/websocket"
)

// Dependencies holds everything the server needs to run. Store and PubSub are
// owned by the server once New succeeds and are closed by Shutdown.
type Dependencies struct {
	Config config.Provider
	Store  database.Store
	PubSub pubsub.PubSub
	// Echo is optional; a fresh instance is created when nil.
	Echo *echo.Echo
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E       *echo.Echo
	Cfg     config.Provider
	Store   database.Store
	PubSub  pubsub.PubSub
	Service topic.Service
	Gateway *websocket.Gateway

	stopGateway context.CancelFunc
}

// New creates a new Server instance with all routes registered.
func New(deps Dependencies) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if deps.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if deps.PubSub == nil {
		return nil, errors.New("server: pubsub is required")
	}

	e := deps.Echo
	if e == nil {
		e = echo.New()
	}
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()

	service := topic.NewService(deps.Store, deps.PubSub)

	s := &Server{
		E:       e,
		Cfg:     deps.Config,
		Store:   deps.Store,
		PubSub:  deps.PubSub,
		Service: service,
		Gateway: websocket.NewGateway(service),
	}

	setupErrorHandling(e)
	s.setupMiddleware()
	s.RegisterRoutes()
	s.registerStatic()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.E.Pre(middleware.RemoveTrailingSlash())
	s.E.Use(middleware.RequestID())
	s.E.Use(appmiddleware.Logger)
	// Inside Logger so recovered panics are logged with the request's logger.
	s.E.Use(middleware.Recover())
	s.E.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         15552000,
	}))
	s.E.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.Cfg.GetCORSOrigin(), ","),
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
	}))
	s.E.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool { return c.Request().URL.Path == wsPath },
	}))
	s.E.Use(appmiddleware.RateLimiter(s.Cfg.GetRateLimitMax(), s.Cfg.GetRateLimitWindow()))
	s.E.Use(middleware.BodyLimit("1M"))
}
