package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/topictracker/internal/domain"
	"github.com/nfrund/topictracker/internal/topic"
)

// TopicHandler serves the topic REST API.
type TopicHandler struct {
	service topic.Service
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(service topic.Service) *TopicHandler {
	return &TopicHandler{service: service}
}

// Register mounts the topic routes on g (normally /api/topics).
func (h *TopicHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/status", h.ToggleStatus)
	g.DELETE("/:id", h.Delete)
}

// List handles GET /api/topics.
func (h *TopicHandler) List(c echo.Context) error {
	var q ListTopicsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return respondError(c, badRequest("query", "invalid query parameters"), "Failed to fetch topics")
	}

	topics, err := h.service.List(c.Request().Context(), q.Options())
	if err != nil {
		return respondError(c, err, "Failed to fetch topics")
	}
	if topics == nil {
		topics = []*domain.Topic{}
	}

	return c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    topics,
		Count:   len(topics),
	})
}

// Get handles GET /api/topics/:id.
func (h *TopicHandler) Get(c echo.Context) error {
	t, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch topic")
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Data: t})
}

// Create handles POST /api/topics.
func (h *TopicHandler) Create(c echo.Context) error {
	var req CreateTopicRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, badRequest("body", "request body must be valid JSON"), "Failed to create topic")
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return respondError(c, err, "Failed to create topic")
	}

	t, err := h.service.Create(c.Request().Context(), req.Name)
	if err != nil {
		return respondError(c, err, "Failed to create topic")
	}

	return c.JSON(http.StatusCreated, DataResponse{
		Success: true,
		Data:    t,
		Message: "Topic created successfully",
	})
}

// Update handles PUT /api/topics/:id.
func (h *TopicHandler) Update(c echo.Context) error {
	var req UpdateTopicRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return respondError(c, badRequest("body", "request body must be valid JSON"), "Failed to update topic")
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return respondError(c, err, "Failed to update topic")
	}

	t, err := h.service.Update(c.Request().Context(), c.Param("id"), topic.UpdateInput{
		Name:   req.Name,
		Status: req.Status,
	})
	if err != nil {
		return respondError(c, err, "Failed to update topic")
	}

	return c.JSON(http.StatusOK, DataResponse{
		Success: true,
		Data:    t,
		Message: "Topic updated successfully",
	})
}

// ToggleStatus handles PATCH /api/topics/:id/status.
func (h *TopicHandler) ToggleStatus(c echo.Context) error {
	t, err := h.service.ToggleStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to toggle topic status")
	}

	return c.JSON(http.StatusOK, DataResponse{
		Success: true,
		Data:    t,
		Message: fmt.Sprintf("Topic marked as %s", t.Status),
	})
}

// Delete handles DELETE /api/topics/:id.
func (h *TopicHandler) Delete(c echo.Context) error {
	if _, err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err, "Failed to delete topic")
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "Topic deleted successfully",
	})
}

// Stats handles GET /api/topics/stats.
func (h *TopicHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to fetch topic statistics")
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Data: stats})
}

func badRequest(field, message string) error {
	return domain.NewValidationError(domain.Violation{Field: field, Message: message})
}
