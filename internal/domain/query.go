package domain

import "strings"

// SortField is a column topics can be ordered by.
type SortField string

const (
	SortByDateAdded     SortField = "date_added"
	SortByDateCompleted SortField = "date_completed"
	SortByName          SortField = "name"
	SortByStatus        SortField = "status"
)

// SortOrder is the direction of an ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ListOptions is the store-agnostic description of a topic listing:
// an optional status filter plus a single ordering key.
type ListOptions struct {
	Status    *Status
	SortBy    SortField
	SortOrder SortOrder
}

// NewListOptions sanitizes raw query parameters. Unknown statuses are ignored,
// unknown sort fields fall back to date_added, and anything other than a
// case-insensitive "ASC" sorts descending.
func NewListOptions(status, sortBy, sortOrder string) ListOptions {
	opts := DefaultListOptions()

	if s := Status(status); s.IsValid() {
		opts.Status = &s
	}

	switch f := SortField(sortBy); f {
	case SortByDateAdded, SortByDateCompleted, SortByName, SortByStatus:
		opts.SortBy = f
	}

	if strings.EqualFold(sortOrder, string(SortAsc)) {
		opts.SortOrder = SortAsc
	}

	return opts
}

// DefaultListOptions lists every topic, newest first.
func DefaultListOptions() ListOptions {
	return ListOptions{SortBy: SortByDateAdded, SortOrder: SortDesc}
}

// OrderClause renders the ordering as "<column> <direction>".
func (o ListOptions) OrderClause() string {
	field, order := o.SortBy, o.SortOrder
	if field == "" {
		field = SortByDateAdded
	}
	if order != SortAsc {
		order = SortDesc
	}
	return string(field) + " " + string(order)
}
