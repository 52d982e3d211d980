package services

import (
	"errors"
	"fmt"
)

// ValidationError represents a validation failure with suggestions
type ValidationError struct {
	Field       string   `json:"field"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("%s: %s. Suggestions: %v", e.Field, e.Message, e.Suggestions)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, suggestions []string) *ValidationError {
	return &ValidationError{
		Field:       field,
		Message:     message,
		Suggestions: suggestions,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// ConflictError represents a resource conflict (e.g., already exists)
type ConflictError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Message:  message,
	}
}

// IsConflictError checks if an error is a ConflictError
func IsConflictError(err error) (*ConflictError, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}
	return nil, false
}

// NotFoundError represents a missing resource
type NotFoundError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Message)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) (*NotFoundError, bool) {
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr, true
	}
	return nil, false
}

// ForbiddenError represents an operation the caller is not allowed to perform
type ForbiddenError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s forbidden: %s", e.Resource, e.Message)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(resource, message string) *ForbiddenError {
	return &ForbiddenError{
		Resource: resource,
		Message:  message,
	}
}

// IsForbiddenError checks if an error is a ForbiddenError
func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var forbiddenErr *ForbiddenError
	if errors.As(err, &forbiddenErr) {
		return forbiddenErr, true
	}
	return nil, false
}
