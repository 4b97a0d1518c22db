package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Status is the completion state of a Topic.
type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusComplete   Status = "complete"
)

// MaxNameLength is the maximum number of characters allowed in a topic name.
const MaxNameLength = 255

// TimeLayout is the wire format for topic timestamps (ISO-8601, UTC, milliseconds).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusIncomplete || s == StatusComplete
}

// Topic is a named item tracked by the application.
//
// DateCompleted is non-nil exactly when Status is StatusComplete.
type Topic struct {
	ID            string     `validate:"required"`
	Name          string     `validate:"required,min=1,max=255"`
	Status        Status     `validate:"required,oneof=incomplete complete"`
	DateAdded     time.Time  `validate:"required"`
	DateCompleted *time.Time
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewTopic creates an incomplete topic with a fresh id. The name is normalized
// and validated; an invalid name yields a *ValidationError.
func NewTopic(name string, now time.Time) (*Topic, error) {
	t := &Topic{
		ID:        uuid.NewString(),
		Name:      NormalizeName(name),
		Status:    StatusIncomplete,
		DateAdded: Timestamp(now),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NormalizeName trims surrounding whitespace and applies NFC normalization.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Timestamp converts t to the precision stored for topics.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// SetStatus moves the topic to status s, keeping DateCompleted in step.
// Setting the current status again leaves the topic untouched.
func (t *Topic) SetStatus(s Status, now time.Time) {
	if t.Status == s {
		return
	}
	t.Status = s
	if s == StatusComplete {
		completed := Timestamp(now)
		t.DateCompleted = &completed
	} else {
		t.DateCompleted = nil
	}
}

// Toggle flips the topic between complete and incomplete.
func (t *Topic) Toggle(now time.Time) {
	if t.Status == StatusComplete {
		t.SetStatus(StatusIncomplete, now)
		return
	}
	t.SetStatus(StatusComplete, now)
}

// Validate checks the topic's fields and returns a *ValidationError listing
// every violation, or nil.
func (t *Topic) Validate() error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		return NewValidationErrorFrom(verrs)
	}
	return err
}

type topicJSON struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Status        Status  `json:"status"`
	DateAdded     string  `json:"dateAdded"`
	DateCompleted *string `json:"dateCompleted,omitempty"`
}

// MarshalJSON renders the client-facing representation of a topic.
func (t Topic) MarshalJSON() ([]byte, error) {
	out := topicJSON{
		ID:        t.ID,
		Name:      t.Name,
		Status:    t.Status,
		DateAdded: t.DateAdded.UTC().Format(TimeLayout),
	}
	if t.DateCompleted != nil {
		s := t.DateCompleted.UTC().Format(TimeLayout)
		out.DateCompleted = &s
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the client-facing representation of a topic.
func (t *Topic) UnmarshalJSON(data []byte) error {
	var in topicJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	added, err := time.Parse(time.RFC3339Nano, in.DateAdded)
	if err != nil {
		return err
	}
	*t = Topic{ID: in.ID, Name: in.Name, Status: in.Status, DateAdded: added}
	if in.DateCompleted != nil {
		completed, err := time.Parse(time.RFC3339Nano, *in.DateCompleted)
		if err != nil {
			return err
		}
		t.DateCompleted = &completed
	}
	return nil
}

// Stats summarizes completion across all topics.
type Stats struct {
	Total          int64 `json:"total"`
	Completed      int64 `json:"completed"`
	Incomplete     int64 `json:"incomplete"`
	CompletionRate int   `json:"completionRate"`
}

// NewStats derives Stats from the total and completed counts. The completion
// rate is a whole percentage, rounded half up, and 0 when there are no topics.
func NewStats(total, completed int64) Stats {
	s := Stats{
		Total:      total,
		Completed:  completed,
		Incomplete: total - completed,
	}
	if total > 0 {
		s.CompletionRate = int((completed*200 + total) / (total * 2))
	}
	return s
}
