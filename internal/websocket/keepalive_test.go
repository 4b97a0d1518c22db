package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialSilentPeer connects a client that reads frames but never answers pings.
func dialSilentPeer(t *testing.T, b *Bridge) (pinged <-chan struct{}, frames <-chan []byte) {
	t.Helper()

	e := echo.New()
	e.GET("/ws", b.Handler())
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	pings := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pings <- struct{}{}:
		default:
		}
		return nil
	})

	received := make(chan []byte, 4)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- data
		}
	}()
	return pings, received
}

func TestBridge_OutstandingPingDoesNotDelayWrites(t *testing.T) {
	b := NewBridge(func(context.Context, *Client, []byte) {})
	b.pingPeriod = 20 * time.Millisecond
	b.pongWait = 5 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)

	pinged, frames := dialSilentPeer(t, b)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	select {
	case <-pinged:
	case <-time.After(time.Second):
		t.Fatal("no ping received")
	}

	payload, err := EncodeFrame(EventTopicDeleted, TopicDeleted{ID: "abc"})
	require.NoError(t, err)
	b.Broadcast(payload)

	select {
	case data := <-frames:
		assert.JSONEq(t, `{"event":"topic_deleted","data":{"id":"abc"}}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("broadcast was held up by the unanswered ping")
	}
}

func TestBridge_UnansweredPingDropsConnection(t *testing.T) {
	b := NewBridge(func(context.Context, *Client, []byte) {})
	b.pingPeriod = 20 * time.Millisecond
	b.pongWait = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)

	dialSilentPeer(t, b)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return b.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
