// Package errors provides a lightweight structured error type (GatewayError)
// for category-based classification in HTTP adapters and startup code.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCategory represents the category of a gateway error for classification
type ErrorCategory string

const (
	// User-facing input errors
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"
	CategoryConfig     ErrorCategory = "config"

	// Processing errors
	CategoryRender  ErrorCategory = "render"
	CategoryStorage ErrorCategory = "storage"
	CategoryEmail   ErrorCategory = "email"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// GatewayError is a structured error with category, severity, and context
type GatewayError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for GatewayError
type ContextFields map[string]any

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *GatewayError) WithContext(key string, value any) *GatewayError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// HTTPStatus maps the error category to the status code the HTTP layer
// answers with. Email errors are never surfaced to callers; the mapping
// exists only for completeness.
func (e *GatewayError) HTTPStatus() int {
	switch e.Category {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new GatewayError
func New(category ErrorCategory, severity ErrorSeverity, message string) *GatewayError {
	return &GatewayError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new GatewayError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *GatewayError {
	return &GatewayError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if ge, ok := err.(*GatewayError); ok {
		return ge.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns
// CategoryInternal if not a GatewayError
func GetCategory(err error) ErrorCategory {
	if ge, ok := err.(*GatewayError); ok {
		return ge.Category
	}
	return CategoryInternal
}
