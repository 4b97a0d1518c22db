package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/topictracker/internal/config"
	"github.com/nfrund/topictracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSurrealStore connects to the SurrealDB instance described by the
// environment, in a throwaway database, or skips the test.
func newSurrealStore(t *testing.T) *SurrealTopicStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping SurrealDB integration test in short mode")
	}

	cfg := config.FromEnv()
	if cfg.SurrealURL == "" || cfg.SurrealNs == "" {
		t.Skip("SURREAL_URL and SURREAL_NS must be set for SurrealDB integration tests")
	}
	cfg.SurrealDb = "topics_test_" + uuid.NewString()[:8]

	ctx := context.Background()
	db, err := NewSurrealDB(ctx, cfg)
	require.NoError(t, err)

	store := NewSurrealTopicStore(db, cfg)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() {
		_ = Execute(context.Background(), db, "REMOVE TABLE topic", nil)
		_ = store.Close(context.Background())
	})
	return store
}

func TestSurrealTopicStore_Lifecycle(t *testing.T) {
	store := newSurrealStore(t)
	ctx := context.Background()
	added := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	topic, err := domain.NewTopic("Learn SurrealDB", added)
	require.NoError(t, err)

	created, err := store.Create(ctx, topic)
	require.NoError(t, err)
	assert.Equal(t, topic.ID, created.ID)
	assert.Nil(t, created.DateCompleted)

	created.Toggle(added.Add(time.Hour))
	updated, err := store.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, updated.Status)
	require.NotNil(t, updated.DateCompleted)

	updated.Toggle(added.Add(2 * time.Hour))
	reverted, err := store.Update(ctx, updated)
	require.NoError(t, err)
	assert.Nil(t, reverted.DateCompleted)

	total, completed, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(0), completed)

	listed, err := store.List(ctx, domain.NewListOptions("incomplete", "name", "ASC"))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, topic.ID, listed[0].ID)

	require.NoError(t, store.Delete(ctx, topic.ID))
	_, err = store.Get(ctx, topic.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, topic.ID), domain.ErrNotFound))
}
