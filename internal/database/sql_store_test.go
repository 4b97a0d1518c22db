package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/topictracker/internal/config"
	"github.com/nfrund/topictracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		DBDriver:          config.DriverSQLite,
		DBDSN:             fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		DBMaxOpenConns:    1,
		DBMaxIdleConns:    1,
		DBConnMaxIdleTime: time.Minute,
		DBQueryTimeout:    5 * time.Second,
		DBExecuteTimeout:  5 * time.Second,
	}
}

func newSQLiteStore(t *testing.T) *SQLTopicStore {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()

	db, err := OpenSQL(ctx, cfg)
	require.NoError(t, err)

	store := NewSQLTopicStore(db, cfg.DBDriver, cfg)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close(ctx) })
	return store
}

func mustTopic(t *testing.T, name string, added time.Time) *domain.Topic {
	t.Helper()
	topic, err := domain.NewTopic(name, added)
	require.NoError(t, err)
	return topic
}

func TestSQLTopicStore_CreateAndGet(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	added := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	created, err := store.Create(ctx, mustTopic(t, "Learn Go", added))
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Learn Go", got.Name)
	assert.Equal(t, domain.StatusIncomplete, got.Status)
	assert.True(t, added.Equal(got.DateAdded))
	assert.Nil(t, got.DateCompleted)
}

func TestSQLTopicStore_GetUnknownID(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	var dbErr *DBError
	assert.True(t, errors.As(err, &dbErr))
}

func TestSQLTopicStore_Update(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	added := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	topic, err := store.Create(ctx, mustTopic(t, "Learn Go", added))
	require.NoError(t, err)

	topic.Name = "Learn Go generics"
	topic.SetStatus(domain.StatusComplete, added.Add(time.Hour))
	updated, err := store.Update(ctx, topic)
	require.NoError(t, err)

	assert.Equal(t, "Learn Go generics", updated.Name)
	assert.Equal(t, domain.StatusComplete, updated.Status)
	require.NotNil(t, updated.DateCompleted)
	assert.True(t, added.Add(time.Hour).Equal(*updated.DateCompleted))
	assert.True(t, added.Equal(updated.DateAdded), "date_added must not change")

	updated.SetStatus(domain.StatusIncomplete, added.Add(2*time.Hour))
	reverted, err := store.Update(ctx, updated)
	require.NoError(t, err)
	assert.Nil(t, reverted.DateCompleted)

	t.Run("unknown id", func(t *testing.T) {
		ghost := mustTopic(t, "ghost", added)
		_, err := store.Update(ctx, ghost)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestSQLTopicStore_Delete(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	topic, err := store.Create(ctx, mustTopic(t, "Learn Go", time.Now()))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, topic.ID))

	_, err = store.Get(ctx, topic.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = store.Delete(ctx, topic.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSQLTopicStore_List(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"charlie", "alpha", "bravo", "delta"} {
		topic := mustTopic(t, name, base.Add(time.Duration(i)*time.Minute))
		if name == "alpha" || name == "delta" {
			topic.SetStatus(domain.StatusComplete, base.Add(time.Hour))
		}
		_, err := store.Create(ctx, topic)
		require.NoError(t, err)
	}

	names := func(topics []*domain.Topic) []string {
		out := make([]string, 0, len(topics))
		for _, tp := range topics {
			out = append(out, tp.Name)
		}
		return out
	}

	tests := []struct {
		name string
		opts domain.ListOptions
		want []string
	}{
		{"default newest first", domain.DefaultListOptions(), []string{"delta", "bravo", "alpha", "charlie"}},
		{"complete by name ascending", domain.NewListOptions("complete", "name", "ASC"), []string{"alpha", "delta"}},
		{"incomplete by name descending", domain.NewListOptions("incomplete", "name", "desc"), []string{"charlie", "bravo"}},
		{"oldest first", domain.NewListOptions("", "date_added", "asc"), []string{"charlie", "alpha", "bravo", "delta"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topics, err := store.List(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(topics))
		})
	}
}

func TestSQLTopicStore_Count(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	total, completed, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, completed)

	for i := 0; i < 3; i++ {
		topic := mustTopic(t, fmt.Sprintf("topic %d", i), time.Now())
		if i == 0 {
			topic.Toggle(time.Now())
		}
		_, err := store.Create(ctx, topic)
		require.NoError(t, err)
	}

	total, completed, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), completed)
}

func TestSQLTopicStore_MigrateIsIdempotent(t *testing.T) {
	store := newSQLiteStore(t)
	assert.NoError(t, store.Migrate(context.Background()))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	cfg := testConfig()
	cfg.DBDriver = "oracle"

	_, err := Open(context.Background(), cfg)
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}
