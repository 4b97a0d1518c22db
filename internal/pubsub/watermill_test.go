package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillBridge_PublishSubscribe(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	err := bridge.Subscribe(ctx, "topic.created", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	})
	require.NoError(t, err)

	err = bridge.Publish(ctx, Message{
		Topic:    "topic.created",
		Payload:  []byte(`{"id":"1"}`),
		Metadata: map[string]string{"request_id": "req-1"},
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "topic.created", msg.Topic)
		assert.JSONEq(t, `{"id":"1"}`, string(msg.Payload))
		assert.Equal(t, "req-1", msg.Metadata["request_id"])
		assert.NotContains(t, msg.Metadata, "topic")
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestWatermillBridge_FailingHandlerDoesNotRedeliver(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	require.NoError(t, bridge.Subscribe(ctx, "topic.deleted", func(ctx context.Context, msg Message) error {
		calls <- struct{}{}
		return errors.New("boom")
	}))

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "topic.deleted", Payload: []byte(`{}`)}))

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
	}

	select {
	case <-calls:
		t.Fatal("failed message was redelivered")
	case <-time.After(200 * time.Millisecond):
	}
}

type sample struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestTypedEvents(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := NewEvent[sample]("sample.created", "a sample was created")
	assert.Equal(t, "sample.created", event.Name())
	assert.Equal(t, "a sample was created", event.Description())

	received := make(chan sample, 1)
	require.NoError(t, Subscribe(ctx, bridge, event, func(ctx context.Context, payload sample, msg Message) error {
		received <- payload
		return nil
	}))

	require.NoError(t, Publish(ctx, bridge, event, sample{ID: "42", Name: "answer"}, nil))

	select {
	case got := <-received:
		assert.Equal(t, sample{ID: "42", Name: "answer"}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("typed event was not delivered")
	}
}
