package topic

import (
	"context"
	"errors"
	"time"

	"github.com/nfrund/topictracker/internal/domain"
	"github.com/nfrund/topictracker/internal/middleware"
	"github.com/nfrund/topictracker/internal/pubsub"
)

// UpdateInput carries the optional fields of an update. A nil or empty value
// leaves the corresponding field unchanged.
type UpdateInput struct {
	Name   *string
	Status *string
}

// Service is the single entry point for reading and mutating topics. Both the
// REST and the real-time adapters go through it.
type Service interface {
	List(ctx context.Context, opts domain.ListOptions) ([]*domain.Topic, error)
	Get(ctx context.Context, id string) (*domain.Topic, error)
	Create(ctx context.Context, name string) (*domain.Topic, error)
	Update(ctx context.Context, id string, in UpdateInput) (*domain.Topic, error)
	ToggleStatus(ctx context.Context, id string) (*domain.Topic, error)
	Delete(ctx context.Context, id string) (string, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

type service struct {
	repo      domain.TopicRepository
	publisher pubsub.Publisher
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*service)

// WithClock replaces the time source used for date_added and date_completed.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService creates a Service over repo. Change events go to publisher,
// which may be nil to disable notifications.
func NewService(repo domain.TopicRepository, publisher pubsub.Publisher, opts ...Option) Service {
	s := &service{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, opts domain.ListOptions) ([]*domain.Topic, error) {
	topics, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, persistence("list", err)
	}
	return topics, nil
}

func (s *service) Get(ctx context.Context, id string) (*domain.Topic, error) {
	topic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, persistence("get", err)
	}
	return topic, nil
}

func (s *service) Create(ctx context.Context, name string) (*domain.Topic, error) {
	topic, err := domain.NewTopic(name, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, topic)
	if err != nil {
		return nil, persistence("create", err)
	}

	middleware.FromContext(ctx).Info("Topic created", "event", EventCreated.Name(), "topic_id", created.ID)
	s.notify(ctx, func() error {
		return pubsub.Publish(ctx, s.publisher, EventCreated, *created, metadataFrom(ctx))
	})
	return created, nil
}

// Update applies the non-empty fields of in. Validation runs before the
// lookup, so an invalid request for an unknown id reports the validation failure.
func (s *service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Topic, error) {
	name, status, err := normalizeUpdate(in)
	if err != nil {
		return nil, err
	}

	topic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, persistence("update", err)
	}

	if name != "" {
		topic.Name = name
	}
	if status != "" {
		topic.SetStatus(status, s.now())
	}

	return s.save(ctx, "update", topic)
}

func (s *service) ToggleStatus(ctx context.Context, id string) (*domain.Topic, error) {
	topic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, persistence("toggle", err)
	}

	topic.Toggle(s.now())
	return s.save(ctx, "toggle", topic)
}

func (s *service) save(ctx context.Context, op string, topic *domain.Topic) (*domain.Topic, error) {
	updated, err := s.repo.Update(ctx, topic)
	if err != nil {
		return nil, persistence(op, err)
	}

	middleware.FromContext(ctx).Info("Topic updated", "event", EventUpdated.Name(), "topic_id", updated.ID, "status", updated.Status)
	s.notify(ctx, func() error {
		return pubsub.Publish(ctx, s.publisher, EventUpdated, *updated, metadataFrom(ctx))
	})
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) (string, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", persistence("delete", err)
	}

	middleware.FromContext(ctx).Info("Topic deleted", "event", EventDeleted.Name(), "topic_id", id)
	s.notify(ctx, func() error {
		return pubsub.Publish(ctx, s.publisher, EventDeleted, Deleted{ID: id}, metadataFrom(ctx))
	})
	return id, nil
}

func (s *service) Stats(ctx context.Context) (domain.Stats, error) {
	total, completed, err := s.repo.Count(ctx)
	if err != nil {
		return domain.Stats{}, persistence("count", err)
	}
	return domain.NewStats(total, completed), nil
}

// notify publishes a change event. The mutation has already been persisted,
// so a failure is only logged.
func (s *service) notify(ctx context.Context, publish func() error) {
	if s.publisher == nil {
		return
	}
	if err := publish(); err != nil {
		middleware.FromContext(ctx).Error("Failed to publish topic change", "error", err)
	}
}

func normalizeUpdate(in UpdateInput) (string, domain.Status, error) {
	var (
		name       string
		status     domain.Status
		violations []domain.Violation
	)

	if in.Name != nil {
		name = domain.NormalizeName(*in.Name)
		if len([]rune(name)) > domain.MaxNameLength {
			violations = append(violations, domain.Violation{
				Field:   "name",
				Message: "name must be at most 255 characters",
			})
		}
	}
	if in.Status != nil && *in.Status != "" {
		status = domain.Status(*in.Status)
		if !status.IsValid() {
			violations = append(violations, domain.Violation{
				Field:   "status",
				Message: "status must be one of: incomplete, complete",
			})
		}
	}

	if len(violations) > 0 {
		return "", "", domain.NewValidationError(violations...)
	}
	return name, status, nil
}

// persistence passes domain errors through untouched and wraps anything else
// as a PersistenceError for op.
func persistence(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func metadataFrom(ctx context.Context) map[string]string {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		return map[string]string{"request_id": id}
	}
	return nil
}
