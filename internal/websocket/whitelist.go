package websocket

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
)

var (
	// ErrEventAlreadyExists is returned when trying to add a duplicate event
	ErrEventAlreadyExists = errors.New("event already exists in whitelist")
	// ErrInvalidEvent is returned when an empty event name is provided
	ErrInvalidEvent = errors.New("event cannot be empty")
)

// eventWhitelist contains the set of inbound events clients may send.
type eventWhitelist struct {
	mu     sync.RWMutex
	events []string
}

// newEventWhitelist creates a whitelist with the given events. Empty names are skipped.
func newEventWhitelist(events ...string) *eventWhitelist {
	valid := make([]string, 0, len(events))
	for _, event := range events {
		if event != "" {
			valid = append(valid, event)
		}
	}
	return &eventWhitelist{events: valid}
}

// IsAllowed reports whether clients may send event.
func (w *eventWhitelist) IsAllowed(event string) bool {
	if event == "" {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Contains(w.events, event)
}

// Add allows event. It fails if the name is empty or already present.
func (w *eventWhitelist) Add(event string) error {
	if event == "" {
		return ErrInvalidEvent
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if slices.Contains(w.events, event) {
		return ErrEventAlreadyExists
	}
	w.events = append(w.events, event)
	slog.Debug("Added event to whitelist", "event", event)
	return nil
}

// Events returns a copy of the allowed events.
func (w *eventWhitelist) Events() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.events)
}
