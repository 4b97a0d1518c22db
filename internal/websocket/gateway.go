package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/topictracker/internal/domain"
	"github.com/nfrund/topictracker/internal/middleware"
	"github.com/nfrund/topictracker/internal/pubsub"
	"github.com/nfrund/topictracker/internal/topic"
)

// eventHandler serves one inbound event and returns the reply for the sender.
type eventHandler func(ctx context.Context, data json.RawMessage) (event string, reply any)

// Gateway maps inbound websocket events onto the topic service and fans
// topic change events out to every connection.
type Gateway struct {
	service   topic.Service
	bridge    *Bridge
	whitelist *eventWhitelist
	handlers  map[string]eventHandler
}

// NewGateway creates a Gateway backed by service.
func NewGateway(service topic.Service) *Gateway {
	g := &Gateway{
		service:   service,
		whitelist: newEventWhitelist(),
		handlers:  make(map[string]eventHandler),
	}
	g.bridge = NewBridge(g.dispatch)

	g.on(EventCreateTopic, g.createTopic)
	g.on(EventUpdateTopic, g.updateTopic)
	g.on(EventToggleTopicStatus, g.toggleTopicStatus)
	g.on(EventDeleteTopic, g.deleteTopic)
	g.on(EventGetTopics, g.getTopics)
	return g
}

func (g *Gateway) on(event string, h eventHandler) {
	if err := g.whitelist.Add(event); err != nil {
		slog.Warn("Skipping websocket event handler", "event", event, "error", err)
		return
	}
	g.handlers[event] = h
}

// Start runs the connection bridge and subscribes to topic change events.
// Everything stops when ctx is canceled.
func (g *Gateway) Start(ctx context.Context, sub pubsub.Subscriber) error {
	go g.bridge.Run(ctx)

	if err := pubsub.Subscribe(ctx, sub, topic.EventCreated, func(_ context.Context, t domain.Topic, _ pubsub.Message) error {
		return g.broadcast(EventTopicCreated, t)
	}); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic.EventCreated.Name(), err)
	}
	if err := pubsub.Subscribe(ctx, sub, topic.EventUpdated, func(_ context.Context, t domain.Topic, _ pubsub.Message) error {
		return g.broadcast(EventTopicUpdated, t)
	}); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic.EventUpdated.Name(), err)
	}
	if err := pubsub.Subscribe(ctx, sub, topic.EventDeleted, func(_ context.Context, d topic.Deleted, _ pubsub.Message) error {
		return g.broadcast(EventTopicDeleted, TopicDeleted{ID: d.ID})
	}); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic.EventDeleted.Name(), err)
	}

	slog.Info("Websocket gateway started", "events", g.whitelist.Events())
	return nil
}

// Handler upgrades HTTP requests to websocket connections.
func (g *Gateway) Handler() echo.HandlerFunc {
	return g.bridge.Handler()
}

// Done is closed once the gateway has closed every connection.
func (g *Gateway) Done() <-chan struct{} {
	return g.bridge.Done()
}

// ClientCount reports the number of open connections.
func (g *Gateway) ClientCount() int {
	return g.bridge.ClientCount()
}

func (g *Gateway) broadcast(event string, data any) error {
	payload, err := EncodeFrame(event, data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	g.bridge.Broadcast(payload)
	return nil
}

func (g *Gateway) dispatch(ctx context.Context, client *Client, raw []byte) {
	event, reply := g.handle(ctx, raw)
	payload, err := EncodeFrame(event, reply)
	if err != nil {
		client.logger.Error("Failed to encode reply", "event", event, "error", err)
		return
	}
	client.Send(payload)
}

func (g *Gateway) handle(ctx context.Context, raw []byte) (string, any) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return EventOperationError, OperationError{
			Type:    OpUnknown,
			Message: "Invalid message format",
			Error:   err.Error(),
		}
	}

	if !g.whitelist.IsAllowed(frame.Event) {
		middleware.FromContext(ctx).Warn("Rejected websocket event", "event", frame.Event)
		return EventOperationError, OperationError{
			Type:    OpUnknown,
			Message: fmt.Sprintf("Unknown event: %s", frame.Event),
		}
	}
	return g.handlers[frame.Event](ctx, frame.Data)
}

func (g *Gateway) createTopic(ctx context.Context, data json.RawMessage) (string, any) {
	var in createTopicData
	if err := decodeData(data, &in); err != nil {
		return g.failure(ctx, OpCreate, "Failed to create topic", invalidPayload(err))
	}

	t, err := g.service.Create(ctx, in.Name)
	if err != nil {
		return g.failure(ctx, OpCreate, "Failed to create topic", err)
	}
	return EventOperationSuccess, OperationSuccess{
		Type:    OpCreate,
		Message: "Topic created successfully",
		Topic:   t,
	}
}

func (g *Gateway) updateTopic(ctx context.Context, data json.RawMessage) (string, any) {
	var in updateTopicData
	if err := decodeData(data, &in); err != nil {
		return g.failure(ctx, OpUpdate, "Failed to update topic", invalidPayload(err))
	}

	t, err := g.service.Update(ctx, in.ID, topic.UpdateInput{Name: in.Name, Status: in.Status})
	if err != nil {
		return g.failure(ctx, OpUpdate, "Failed to update topic", err)
	}
	return EventOperationSuccess, OperationSuccess{
		Type:    OpUpdate,
		Message: "Topic updated successfully",
		Topic:   t,
	}
}

func (g *Gateway) toggleTopicStatus(ctx context.Context, data json.RawMessage) (string, any) {
	var in topicIDData
	if err := decodeData(data, &in); err != nil {
		return g.failure(ctx, OpToggle, "Failed to toggle topic status", invalidPayload(err))
	}

	t, err := g.service.ToggleStatus(ctx, in.ID)
	if err != nil {
		return g.failure(ctx, OpToggle, "Failed to toggle topic status", err)
	}
	return EventOperationSuccess, OperationSuccess{
		Type:    OpToggle,
		Message: fmt.Sprintf("Topic marked as %s", t.Status),
		Topic:   t,
	}
}

func (g *Gateway) deleteTopic(ctx context.Context, data json.RawMessage) (string, any) {
	var in topicIDData
	if err := decodeData(data, &in); err != nil {
		return g.failure(ctx, OpDelete, "Failed to delete topic", invalidPayload(err))
	}

	id, err := g.service.Delete(ctx, in.ID)
	if err != nil {
		return g.failure(ctx, OpDelete, "Failed to delete topic", err)
	}
	return EventOperationSuccess, OperationSuccess{
		Type:    OpDelete,
		Message: "Topic deleted successfully",
		ID:      id,
	}
}

func (g *Gateway) getTopics(ctx context.Context, data json.RawMessage) (string, any) {
	var in getTopicsData
	if err := decodeData(data, &in); err != nil {
		return g.failure(ctx, OpFetch, "Failed to fetch topics", invalidPayload(err))
	}

	topics, err := g.service.List(ctx, domain.NewListOptions(in.Status, in.SortBy, in.SortOrder))
	if err != nil {
		return g.failure(ctx, OpFetch, "Failed to fetch topics", err)
	}
	if topics == nil {
		topics = []*domain.Topic{}
	}
	return EventTopicsLoaded, topics
}

// failure converts a service error into an operation_error reply. Store
// failures carry the underlying message in Error.
func (g *Gateway) failure(ctx context.Context, op, message string, err error) (string, any) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return EventOperationError, OperationError{Type: op, Message: "Validation failed", Error: verr.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return EventOperationError, OperationError{Type: op, Message: "Topic not found"}
	default:
		middleware.FromContext(ctx).Error(message, "error", err)
		return EventOperationError, OperationError{Type: op, Message: message, Error: err.Error()}
	}
}

func invalidPayload(err error) error {
	return domain.NewValidationError(domain.Violation{Field: "data", Message: err.Error()})
}
