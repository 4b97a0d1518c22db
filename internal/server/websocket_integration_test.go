package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// dialWS connects a client and completes one get_topics round trip so the
// connection is known to be registered for broadcasts.
func dialWS(t *testing.T, testServer *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "Failed to connect to websocket")
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	})

	writeFrame(t, conn, "get_topics", map[string]string{})
	require.Equal(t, "topics_loaded", readWSFrame(t, conn).Event)
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(frame{Event: event, Data: raw}))
}

func readWSFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWebSocket_CreateReachesEveryClient(t *testing.T) {
	_, testServer := setupIntegrationTest(t)
	connA := dialWS(t, testServer)
	connB := dialWS(t, testServer)

	writeFrame(t, connA, "create_topic", map[string]string{"name": "X"})

	got := map[string]frame{}
	for i := 0; i < 2; i++ {
		f := readWSFrame(t, connA)
		got[f.Event] = f
	}
	require.Contains(t, got, "operation_success")
	require.Contains(t, got, "topic_created")

	var ack struct {
		Type    string         `json:"type"`
		Message string         `json:"message"`
		Topic   map[string]any `json:"topic"`
	}
	require.NoError(t, json.Unmarshal(got["operation_success"].Data, &ack))
	assert.Equal(t, "create", ack.Type)
	assert.Equal(t, "X", ack.Topic["name"])

	f := readWSFrame(t, connB)
	assert.Equal(t, "topic_created", f.Event)
	assert.JSONEq(t, string(got["topic_created"].Data), string(f.Data))

	status, body := doJSON(t, http.MethodGet, testServer.URL+"/api/topics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])
}

func TestWebSocket_RESTMutationsAreBroadcast(t *testing.T) {
	_, testServer := setupIntegrationTest(t)
	conn := dialWS(t, testServer)

	status, body := doJSON(t, http.MethodPost, testServer.URL+"/api/topics", `{"name":"Learn Go"}`)
	require.Equal(t, http.StatusCreated, status)
	id := body["data"].(map[string]any)["id"].(string)

	f := readWSFrame(t, conn)
	require.Equal(t, "topic_created", f.Event)

	status, _ = doJSON(t, http.MethodPatch, testServer.URL+"/api/topics/"+id+"/status", "")
	require.Equal(t, http.StatusOK, status)

	f = readWSFrame(t, conn)
	require.Equal(t, "topic_updated", f.Event)
	var updated map[string]any
	require.NoError(t, json.Unmarshal(f.Data, &updated))
	assert.Equal(t, "complete", updated["status"])

	status, _ = doJSON(t, http.MethodDelete, testServer.URL+"/api/topics/"+id, "")
	require.Equal(t, http.StatusOK, status)

	f = readWSFrame(t, conn)
	require.Equal(t, "topic_deleted", f.Event)
	assert.JSONEq(t, `{"id":"`+id+`"}`, string(f.Data))
}

func TestWebSocket_DisconnectLeavesBroadcastSet(t *testing.T) {
	s, testServer := setupIntegrationTest(t)
	conn := dialWS(t, testServer)
	require.Equal(t, 1, s.Gateway.ClientCount())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))

	assert.Eventually(t, func() bool {
		return s.Gateway.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
