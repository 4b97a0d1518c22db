package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nfrund/topictracker/internal/config"
	"github.com/nfrund/topictracker/internal/database"
	"github.com/nfrund/topictracker/internal/pubsub"
	"github.com/nfrund/topictracker/internal/server"
	"github.com/nfrund/topictracker/internal/testutils"
	"github.com/stretchr/testify/require"
)

// setupIntegrationTest builds a full server over an in-memory store and serves
// it from an httptest server. Everything is torn down when the test ends.
func setupIntegrationTest(t *testing.T, configure ...func(*config.Config)) (*server.Server, *httptest.Server) {
	t.Helper()

	cfg := testutils.ConfigForTests(t)
	for _, fn := range configure {
		fn(cfg)
	}

	ctx := context.Background()
	store, err := database.Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	s, err := server.New(server.Dependencies{
		Config: cfg,
		Store:  store,
		PubSub: pubsub.NewWatermillBridge(),
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	testServer := httptest.NewServer(s.E)
	t.Cleanup(func() {
		testServer.Close()
		require.NoError(t, s.Shutdown(context.Background()))
	})
	return s, testServer
}

// doJSON performs a request against the test server and decodes the JSON body.
func doJSON(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}
