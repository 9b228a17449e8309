package domain

import (
	"errors"
	"fmt"
)

// NotFoundError indicates an entity id could not be resolved within the
// caller's organization. Cross-organization lookups deliberately surface as
// not-found rather than forbidden so tenants cannot probe each other's ids.
type NotFoundError struct {
	Resource string
	Detail   string
}

func (e *NotFoundError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.Detail)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// ConflictError indicates a uniqueness violation or an invalid state
// transition (e.g. editing a completed assignment).
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string { return e.Detail }

// ValidationError indicates malformed or semantically invalid input.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// ForbiddenError indicates an authorization boundary violation.
type ForbiddenError struct {
	Detail string
}

func (e *ForbiddenError) Error() string { return e.Detail }

// NotFound builds a NotFoundError for a resource.
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// Conflict builds a ConflictError with the given detail.
func Conflict(format string, args ...any) error {
	return &ConflictError{Detail: fmt.Sprintf(format, args...)}
}

// Invalid builds a ValidationError with the given detail.
func Invalid(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// Forbidden builds a ForbiddenError with the given detail.
func Forbidden(format string, args ...any) error {
	return &ForbiddenError{Detail: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsForbidden reports whether err is (or wraps) a ForbiddenError.
func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}
