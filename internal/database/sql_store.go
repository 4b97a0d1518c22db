package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/coregx/relica"
	"github.com/nfrund/topictracker/internal/config"
	"github.com/nfrund/topictracker/internal/domain"
)

const topicsTable = "topics"

// topicRow is the relational shape of a topic. created_at and updated_at are
// bookkeeping columns that never leave the store.
type topicRow struct {
	ID            string       `db:"id"`
	Name          string       `db:"name"`
	Status        string       `db:"status"`
	DateAdded     time.Time    `db:"date_added"`
	DateCompleted sql.NullTime `db:"date_completed"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

func (r topicRow) toDomain() *domain.Topic {
	t := &domain.Topic{
		ID:        r.ID,
		Name:      r.Name,
		Status:    domain.Status(r.Status),
		DateAdded: r.DateAdded.UTC(),
	}
	if r.DateCompleted.Valid {
		completed := r.DateCompleted.Time.UTC()
		t.DateCompleted = &completed
	}
	return t
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// SQLTopicStore implements domain.TopicRepository on a relational database
// through the relica query builder. It serves sqlite3, postgres and mysql.
type SQLTopicStore struct {
	db             *relica.DB
	sqlDB          *sql.DB
	driver         string
	queryTimeout   time.Duration
	executeTimeout time.Duration
	now            func() time.Time
}

// NewSQLTopicStore wraps an open *sql.DB. driver selects both the placeholder
// dialect and the schema scripts used by Migrate.
func NewSQLTopicStore(sqlDB *sql.DB, driver string, cfg config.Provider) *SQLTopicStore {
	return &SQLTopicStore{
		db:             relica.WrapDB(sqlDB, driver),
		sqlDB:          sqlDB,
		driver:         driver,
		queryTimeout:   cfg.GetDBQueryTimeout(),
		executeTimeout: cfg.GetDBExecuteTimeout(),
		now:            time.Now,
	}
}

// Migrate implements Store.
func (s *SQLTopicStore) Migrate(ctx context.Context) error {
	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()
	return migrateSQL(ctx, s.sqlDB, s.driver)
}

// Ping implements Store.
func (s *SQLTopicStore) Ping(ctx context.Context) error {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return s.sqlDB.PingContext(ctx)
}

// List implements domain.TopicRepository.
func (s *SQLTopicStore) List(ctx context.Context, opts domain.ListOptions) ([]*domain.Topic, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	q := s.db.WithContext(ctx).Select("*").From(topicsTable)
	if opts.Status != nil {
		q = q.Where("status = ?", string(*opts.Status))
	}

	var rows []topicRow
	if err := q.OrderBy(opts.OrderClause()).WithContext(ctx).All(&rows); err != nil {
		return nil, NewDBError(err, "failed to list topics")
	}

	topics := make([]*domain.Topic, 0, len(rows))
	for _, r := range rows {
		topics = append(topics, r.toDomain())
	}
	return topics, nil
}

// Get implements domain.TopicRepository.
func (s *SQLTopicStore) Get(ctx context.Context, id string) (*domain.Topic, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *SQLTopicStore) load(ctx context.Context, id string) (*topicRow, error) {
	if id == "" {
		return nil, NewDBError(domain.ErrNotFound, "topic id is empty")
	}

	var row topicRow
	err := s.db.WithContext(ctx).Select("*").
		From(topicsTable).
		Where("id = ?", id).
		One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewDBError(domain.ErrNotFound, "failed to load topic").WithParams(map[string]any{"id": id})
	}
	if err != nil {
		return nil, NewDBError(err, "failed to load topic").WithParams(map[string]any{"id": id})
	}
	return &row, nil
}

// Create implements domain.TopicRepository.
func (s *SQLTopicStore) Create(ctx context.Context, topic *domain.Topic) (*domain.Topic, error) {
	if topic == nil || topic.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "topic and topic id are required")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	now := domain.Timestamp(s.now())
	row := topicRow{
		ID:            topic.ID,
		Name:          topic.Name,
		Status:        string(topic.Status),
		DateAdded:     topic.DateAdded,
		DateCompleted: nullTime(topic.DateCompleted),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.WithContext(ctx).Model(&row).Table(topicsTable).Insert(); err != nil {
		return nil, NewDBError(err, "failed to insert topic").WithParams(map[string]any{"id": topic.ID})
	}
	return row.toDomain(), nil
}

// Update implements domain.TopicRepository. Only name, status and
// date_completed are written; date_added is never touched.
func (s *SQLTopicStore) Update(ctx context.Context, topic *domain.Topic) (*domain.Topic, error) {
	if topic == nil || topic.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "topic and topic id are required")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	_, err := s.db.WithContext(ctx).Update(topicsTable).
		Set(map[string]interface{}{
			"name":           topic.Name,
			"status":         string(topic.Status),
			"date_completed": nullTime(topic.DateCompleted),
			"updated_at":     domain.Timestamp(s.now()),
		}).
		Where("id = ?", topic.ID).
		WithContext(ctx).
		Execute()
	if err != nil {
		return nil, NewDBError(err, "failed to update topic").WithParams(map[string]any{"id": topic.ID})
	}

	row, err := s.load(ctx, topic.ID)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// Delete implements domain.TopicRepository.
func (s *SQLTopicStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := getTimeoutFromContext(ctx, s.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	row, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(row).Table(topicsTable).Delete(); err != nil {
		return NewDBError(err, "failed to delete topic").WithParams(map[string]any{"id": id})
	}
	return nil
}

// countRow receives an aliased COUNT(*); relica scans only into structs.
type countRow struct {
	N int64 `db:"n"`
}

// Count implements domain.TopicRepository.
func (s *SQLTopicStore) Count(ctx context.Context) (int64, int64, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	var total, completed countRow
	if err := s.db.WithContext(ctx).Select("COUNT(*) AS n").From(topicsTable).One(&total); err != nil {
		return 0, 0, NewDBError(err, "failed to count topics")
	}
	err := s.db.WithContext(ctx).Select("COUNT(*) AS n").
		From(topicsTable).
		Where("status = ?", string(domain.StatusComplete)).
		One(&completed)
	if err != nil {
		return 0, 0, NewDBError(err, "failed to count completed topics")
	}
	return total.N, completed.N, nil
}

// Close implements domain.TopicRepository.
func (s *SQLTopicStore) Close(ctx context.Context) error {
	return s.sqlDB.Close()
}
