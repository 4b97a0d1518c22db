package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/topictracker/internal/middleware"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed for the peer to answer a ping.
	pongWait = 60 * time.Second
	// Interval between pings.
	pingPeriod = 25 * time.Second
	// Outbound frames buffered per connection before new ones are dropped.
	sendBufferSize = 256
)

// DispatchFunc handles one inbound frame from client. It runs on the client's
// read goroutine, so frames from one connection are handled in order.
type DispatchFunc func(ctx context.Context, client *Client, raw []byte)

// Client is a single connected websocket peer.
type Client struct {
	// ID is a random identifier assigned on connect.
	ID string

	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *Client {
	id := uuid.NewString()
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: slog.Default().With("conn_id", id),
	}
}

// Send queues payload for delivery. It never blocks; if the buffer is full or
// the client is gone the frame is dropped and false is returned.
func (c *Client) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		c.logger.Warn("Client send channel full, dropping message")
		return false
	}
}

// close stops the write pump. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Bridge owns the set of live connections. Every connection joins the shared
// broadcast set on connect and leaves it when it disconnects.
type Bridge struct {
	dispatch DispatchFunc

	clients map[string]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	pingPeriod time.Duration
	pongWait   time.Duration
}

// NewBridge creates a Bridge that hands inbound frames to dispatch.
func NewBridge(dispatch DispatchFunc) *Bridge {
	return &Bridge{
		dispatch:   dispatch,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBufferSize),
		done:       make(chan struct{}),
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
	}
}

// Run manages client lifecycle and broadcasts until ctx is canceled, then
// closes every connection.
func (b *Bridge) Run(ctx context.Context) {
	slog.Info("Websocket bridge started")
	defer close(b.done)

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client.ID] = client
			b.mu.Unlock()
			client.logger.Info("Client connected")

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client.ID]; ok {
				delete(b.clients, client.ID)
				client.close()
			}
			b.mu.Unlock()

		case payload := <-b.broadcast:
			b.mu.RLock()
			for _, client := range b.clients {
				client.Send(payload)
			}
			b.mu.RUnlock()

		case <-ctx.Done():
			b.mu.Lock()
			for id, client := range b.clients {
				client.close()
				delete(b.clients, id)
			}
			b.mu.Unlock()
			slog.Info("Websocket bridge stopped")
			return
		}
	}
}

// Done is closed once Run has returned.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Broadcast queues payload for every connected client. It is a no-op after
// the bridge has stopped.
func (b *Bridge) Broadcast(payload []byte) {
	select {
	case b.broadcast <- payload:
	case <-b.done:
	}
}

// ClientCount reports the number of registered connections.
func (b *Bridge) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Handler upgrades the request to a websocket and starts the client pumps.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			// Origin checks are left to the CORS configuration.
			InsecureSkipVerify: true,
		})
		if err != nil {
			// Accept has already written the HTTP error.
			middleware.FromContext(c.Request().Context()).Error("Failed to upgrade connection to WebSocket", "error", err)
			return nil
		}

		client := newClient(conn)
		select {
		case b.register <- client:
		case <-b.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return nil
		}

		ctx, cancel := context.WithCancel(middleware.WithLogger(context.Background(), client.logger))
		go client.writePump()
		go b.keepAlive(ctx, client)
		go b.readPump(ctx, cancel, client)
		return nil
	}
}

// readPump reads frames until the connection fails and hands each to dispatch.
// Returning cancels ctx, which stops keepAlive.
func (b *Bridge) readPump(ctx context.Context, cancel context.CancelFunc, client *Client) {
	defer func() {
		cancel()
		select {
		case b.unregister <- client:
		case <-b.done:
		}
		client.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := client.conn.Read(ctx)
		if err != nil {
			logDisconnect(client, err)
			return
		}
		b.dispatch(ctx, client, data)
	}
}

// writePump delivers queued frames until the send channel is closed.
func (c *Client) writePump() {
	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			c.logger.Error("WebSocket write error", "error", err)
			c.conn.CloseNow()
			return
		}
	}
	c.conn.Close(websocket.StatusGoingAway, "connection closed by server")
}

// keepAlive pings the peer every pingPeriod and drops the connection when a
// pong does not arrive within pongWait. An outstanding ping never holds up
// writePump.
func (b *Bridge) keepAlive(ctx context.Context, client *Client) {
	ticker := time.NewTicker(b.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, b.pongWait)
			err := client.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				client.logger.Warn("Ping failed, dropping connection", "error", err)
				client.conn.Close(websocket.StatusPolicyViolation, "ping timeout")
				return
			}
		}
	}
}

func logDisconnect(client *Client, err error) {
	status := websocket.CloseStatus(err)
	switch {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		client.logger.Info("Client disconnected", "reason", status.String())
	case errors.Is(err, io.EOF) || errors.Is(err, context.Canceled):
		client.logger.Info("Client disconnected", "reason", "transport closed")
	default:
		client.logger.Warn("Client disconnected", "reason", err.Error())
	}
}
