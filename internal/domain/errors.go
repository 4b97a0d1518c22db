package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when no topic exists with the requested id.
var ErrNotFound = errors.New("topic not found")

// Violation describes a single invalid field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every field that failed validation.
type ValidationError struct {
	Violations []Violation
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(violations ...Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// NewValidationErrorFrom converts validator failures into a ValidationError.
func NewValidationErrorFrom(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Violations: make([]Violation, 0, len(errs))}
	for _, fe := range errs {
		field := lowerFirst(fe.Field())
		ve.Violations = append(ve.Violations, Violation{
			Field:   field,
			Message: describe(field, fe),
		})
	}
	return ve
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// PersistenceError wraps a failure of the backing store during Op.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s topic: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
