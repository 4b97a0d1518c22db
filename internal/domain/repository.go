package domain

import "context"

// TopicRepository persists topics. Implementations return ErrNotFound
// (possibly wrapped) when the requested topic does not exist.
type TopicRepository interface {
	List(ctx context.Context, opts ListOptions) ([]*Topic, error)
	Get(ctx context.Context, id string) (*Topic, error)
	Create(ctx context.Context, topic *Topic) (*Topic, error)
	// Update persists name, status and completion date of an existing topic.
	Update(ctx context.Context, topic *Topic) (*Topic, error)
	Delete(ctx context.Context, id string) error
	// Count returns the total number of topics and how many are complete.
	Count(ctx context.Context) (total, completed int64, err error)
	Close(ctx context.Context) error
}
