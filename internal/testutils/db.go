package testutils

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nfrund/topictracker/internal/database"
	"github.com/nfrund/topictracker/internal/domain"
	"github.com/stretchr/testify/require"
)

// NewTestStore opens a migrated in-memory SQLite store that is closed when the test ends.
func NewTestStore(t *testing.T) database.Store {
	t.Helper()

	ctx := context.Background()
	store, err := database.Open(ctx, ConfigForTests(t))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})
	return store
}

// SeedTopics inserts one incomplete topic per name and returns them in order.
func SeedTopics(t *testing.T, repo domain.TopicRepository, names ...string) []*domain.Topic {
	t.Helper()

	topics := make([]*domain.Topic, 0, len(names))
	for _, name := range names {
		topic, err := domain.NewTopic(name, testClock())
		require.NoError(t, err)
		created, err := repo.Create(context.Background(), topic)
		require.NoError(t, err)
		topics = append(topics, created)
	}
	return topics
}

var seedCounter atomic.Int64

// testClock hands out strictly increasing timestamps so seeded topics have a
// stable date_added ordering.
func testClock() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(seedCounter.Add(1)) * time.Second)
}
