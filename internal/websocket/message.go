package websocket

import (
	"encoding/json"

	"github.com/nfrund/topictracker/internal/domain"
)

// Frame is the envelope of every message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound events.
const (
	EventCreateTopic       = "create_topic"
	EventUpdateTopic       = "update_topic"
	EventToggleTopicStatus = "toggle_topic_status"
	EventDeleteTopic       = "delete_topic"
	EventGetTopics         = "get_topics"
)

// Outbound events.
const (
	EventTopicCreated     = "topic_created"
	EventTopicUpdated     = "topic_updated"
	EventTopicDeleted     = "topic_deleted"
	EventTopicsLoaded     = "topics_loaded"
	EventOperationSuccess = "operation_success"
	EventOperationError   = "operation_error"
)

// Operation types reported in acknowledgements.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpToggle  = "toggle"
	OpDelete  = "delete"
	OpFetch   = "fetch"
	OpUnknown = "unknown"
)

// OperationSuccess acknowledges a mutation to the connection that asked for it.
type OperationSuccess struct {
	Type    string        `json:"type"`
	Message string        `json:"message"`
	Topic   *domain.Topic `json:"topic,omitempty"`
	ID      string        `json:"id,omitempty"`
}

// OperationError reports a failed request to the connection that sent it.
type OperationError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// TopicDeleted is the body of a topic_deleted broadcast.
type TopicDeleted struct {
	ID string `json:"id"`
}

type createTopicData struct {
	Name string `json:"name"`
}

type updateTopicData struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

type topicIDData struct {
	ID string `json:"id"`
}

type getTopicsData struct {
	Status    string `json:"status"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// EncodeFrame marshals data and wraps it in a frame for event.
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// decodeData unmarshals a frame body into v. A missing body leaves v at its zero value.
func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
