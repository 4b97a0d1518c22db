package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/nfrund/topictracker/internal/domain"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface. Field failures are
// reported as a *domain.ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		return domain.NewValidationErrorFrom(verrs)
	}
	return err
}

// CreateTopicRequest is the body of POST /api/topics.
type CreateTopicRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// Normalize trims and normalizes the name before validation.
func (r *CreateTopicRequest) Normalize() {
	r.Name = domain.NormalizeName(r.Name)
}

// UpdateTopicRequest is the body of PUT /api/topics/:id. Absent or empty
// fields leave the topic unchanged.
type UpdateTopicRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=255"`
	Status *string `json:"status" validate:"omitempty,oneof=incomplete complete"`
}

// Normalize trims and normalizes the name before validation.
func (r *UpdateTopicRequest) Normalize() {
	if r.Name != nil {
		name := domain.NormalizeName(*r.Name)
		r.Name = &name
	}
}

// ListTopicsQuery holds the query parameters of GET /api/topics. Search is
// accepted for client compatibility but not applied.
type ListTopicsQuery struct {
	Status    string `query:"status"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`
	Search    string `query:"search"`
}

// Options converts the query into sanitized list options.
func (q ListTopicsQuery) Options() domain.ListOptions {
	return domain.NewListOptions(q.Status, q.SortBy, q.SortOrder)
}
