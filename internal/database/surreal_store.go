package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/topictracker/internal/config"
	"github.com/nfrund/topictracker/internal/domain"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

const topicTable = "topic"

// surrealTopic is the document shape of a topic in SurrealDB.
type surrealTopic struct {
	ID            *models.RecordID       `json:"id,omitempty"`
	Name          string                 `json:"name"`
	Status        string                 `json:"status"`
	DateAdded     models.CustomDateTime  `json:"date_added"`
	DateCompleted *models.CustomDateTime `json:"date_completed,omitempty"`
	CreatedAt     *models.CustomDateTime `json:"created_at,omitempty"`
	UpdatedAt     *models.CustomDateTime `json:"updated_at,omitempty"`
}

func (r surrealTopic) toDomain() *domain.Topic {
	t := &domain.Topic{
		Name:      r.Name,
		Status:    domain.Status(r.Status),
		DateAdded: r.DateAdded.Time.UTC(),
	}
	if r.ID != nil {
		t.ID = fmt.Sprint(r.ID.ID)
	}
	if r.DateCompleted != nil {
		completed := r.DateCompleted.Time.UTC()
		t.DateCompleted = &completed
	}
	return t
}

func surrealTime(t *time.Time) *models.CustomDateTime {
	if t == nil {
		return nil
	}
	return &models.CustomDateTime{Time: *t}
}

// SurrealTopicStore implements domain.TopicRepository on SurrealDB. Topic ids
// are used as record ids in the "topic" table.
type SurrealTopicStore struct {
	db             *surrealdb.DB
	queryTimeout   time.Duration
	executeTimeout time.Duration
	now            func() time.Time
}

// NewSurrealTopicStore creates a store on an authenticated connection.
func NewSurrealTopicStore(db *surrealdb.DB, cfg config.Provider) *SurrealTopicStore {
	return &SurrealTopicStore{
		db:             db,
		queryTimeout:   cfg.GetDBQueryTimeout(),
		executeTimeout: cfg.GetDBExecuteTimeout(),
		now:            time.Now,
	}
}

// Migrate implements Store.
func (s *SurrealTopicStore) Migrate(ctx context.Context) error {
	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	scripts, err := migrationScripts(config.DriverSurreal)
	if err != nil {
		return err
	}
	for _, script := range scripts {
		if err := Execute(ctx, s.db, script, nil); err != nil {
			return NewDBError(err, "failed to apply schema").WithQuery(script)
		}
	}
	return nil
}

// Ping implements Store.
func (s *SurrealTopicStore) Ping(ctx context.Context) error {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return Execute(ctx, s.db, "RETURN true", nil)
}

// List implements domain.TopicRepository.
func (s *SurrealTopicStore) List(ctx context.Context, opts domain.ListOptions) ([]*domain.Topic, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	query := "SELECT * FROM topic"
	params := map[string]any{}
	if opts.Status != nil {
		query += " WHERE status = $status"
		params["status"] = string(*opts.Status)
	}
	// The ordering only ever contains whitelisted column names.
	query += " ORDER BY " + opts.OrderClause()

	rows, err := Query[surrealTopic](ctx, s.db, query, params)
	if err != nil {
		return nil, NewDBError(err, "failed to list topics").WithQuery(query).WithParams(params)
	}

	topics := make([]*domain.Topic, 0, len(rows))
	for _, r := range rows {
		topics = append(topics, r.toDomain())
	}
	return topics, nil
}

// Get implements domain.TopicRepository.
func (s *SurrealTopicStore) Get(ctx context.Context, id string) (*domain.Topic, error) {
	if id == "" {
		return nil, NewDBError(domain.ErrNotFound, "topic id is empty")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	query := "SELECT * FROM type::thing($table, $id)"
	params := map[string]any{"table": topicTable, "id": id}
	row, err := QueryOne[surrealTopic](ctx, s.db, query, params)
	if err != nil {
		return nil, NewDBError(err, "failed to load topic").WithParams(params)
	}
	if row == nil {
		return nil, NewDBError(domain.ErrNotFound, "failed to load topic").WithParams(params)
	}
	return row.toDomain(), nil
}

// Create implements domain.TopicRepository.
func (s *SurrealTopicStore) Create(ctx context.Context, topic *domain.Topic) (*domain.Topic, error) {
	if topic == nil || topic.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "topic and topic id are required")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	now := domain.Timestamp(s.now())
	data := map[string]any{
		"name":       topic.Name,
		"status":     string(topic.Status),
		"date_added": models.CustomDateTime{Time: topic.DateAdded},
		"created_at": models.CustomDateTime{Time: now},
		"updated_at": models.CustomDateTime{Time: now},
	}
	if topic.DateCompleted != nil {
		data["date_completed"] = surrealTime(topic.DateCompleted)
	}

	query := "CREATE type::thing($table, $id) CONTENT $data"
	params := map[string]any{"table": topicTable, "id": topic.ID, "data": data}
	row, err := QueryOne[surrealTopic](ctx, s.db, query, params)
	if err != nil {
		return nil, NewDBError(err, "failed to create topic").WithQuery(query)
	}
	if row == nil {
		return nil, NewDBError(ErrInvalidInput, "create returned no record").WithQuery(query)
	}
	return row.toDomain(), nil
}

// Update implements domain.TopicRepository. A cleared completion date is
// removed from the document with NONE.
func (s *SurrealTopicStore) Update(ctx context.Context, topic *domain.Topic) (*domain.Topic, error) {
	if topic == nil || topic.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "topic and topic id are required")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	params := map[string]any{
		"table":      topicTable,
		"id":         topic.ID,
		"name":       topic.Name,
		"status":     string(topic.Status),
		"updated_at": models.CustomDateTime{Time: domain.Timestamp(s.now())},
	}
	completed := "NONE"
	if topic.DateCompleted != nil {
		completed = "$date_completed"
		params["date_completed"] = surrealTime(topic.DateCompleted)
	}

	query := "UPDATE type::thing($table, $id) SET name = $name, status = $status, " +
		"date_completed = " + completed + ", updated_at = $updated_at RETURN AFTER"
	row, err := QueryOne[surrealTopic](ctx, s.db, query, params)
	if err != nil {
		return nil, NewDBError(err, "failed to update topic").WithQuery(query)
	}
	if row == nil {
		return nil, NewDBError(domain.ErrNotFound, "failed to update topic").WithParams(map[string]any{"id": topic.ID})
	}
	return row.toDomain(), nil
}

// Delete implements domain.TopicRepository.
func (s *SurrealTopicStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return NewDBError(domain.ErrNotFound, "topic id is empty")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "DELETE type::thing($table, $id) RETURN BEFORE"
	params := map[string]any{"table": topicTable, "id": id}
	row, err := QueryOne[surrealTopic](ctx, s.db, query, params)
	if err != nil {
		return NewDBError(err, "failed to delete topic").WithQuery(query)
	}
	if row == nil {
		return NewDBError(domain.ErrNotFound, "failed to delete topic").WithParams(params)
	}
	return nil
}

type surrealCounts struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
}

// Count implements domain.TopicRepository.
func (s *SurrealTopicStore) Count(ctx context.Context) (int64, int64, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	query := "SELECT count() AS total, count(status = $status) AS completed FROM topic GROUP ALL"
	counts, err := QueryOne[surrealCounts](ctx, s.db, query, map[string]any{"status": string(domain.StatusComplete)})
	if err != nil {
		return 0, 0, NewDBError(err, "failed to count topics").WithQuery(query)
	}
	if counts == nil {
		return 0, 0, nil
	}
	return counts.Total, counts.Completed, nil
}

// Close implements domain.TopicRepository.
func (s *SurrealTopicStore) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}
