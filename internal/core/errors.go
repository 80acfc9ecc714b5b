package core

import (
	"errors"
	"fmt"
)

// Error codes for domain errors.
const (
	ErrCodeValidation        = "validation_failed"
	ErrCodeNotFound          = "not_found"
	ErrCodeAlreadyConfigured = "already_configured"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeStorage           = "storage_error"
)

var (
	// ErrNotFound is returned when a locator matches no message. A position that
	// was valid a moment ago but shifted after a delete looks the same.
	ErrNotFound = errors.New("message not found")
	// ErrAlreadyConfigured is returned when setup runs over an existing record.
	ErrAlreadyConfigured = errors.New("celebration already configured")
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Code returns the error code.
func (e *ValidationError) Code() string {
	return ErrCodeValidation
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}
