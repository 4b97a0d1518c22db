package topic

import (
	"github.com/nfrund/topictracker/internal/domain"
	"github.com/nfrund/topictracker/internal/pubsub"
)

// Deleted is the payload of a topic deletion event.
type Deleted struct {
	ID string `json:"id"`
}

// Change notifications published after every successful mutation.
var (
	EventCreated = pubsub.NewEvent[domain.Topic]("topic.created", "A topic was created")
	EventUpdated = pubsub.NewEvent[domain.Topic]("topic.updated", "A topic was renamed or changed status")
	EventDeleted = pubsub.NewEvent[Deleted]("topic.deleted", "A topic was deleted")
)

// Events lists every change notification the service publishes.
func Events() []pubsub.EventInfo {
	return []pubsub.EventInfo{EventCreated, EventUpdated, EventDeleted}
}
