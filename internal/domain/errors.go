package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface lets handlers translate domain failures
// without enumerating every concrete type.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a document was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input (missing return reason,
	// unknown department code, malformed action payload, ...)
	ValidationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStorage marks an underlying store failure. The in-flight
	// transaction has already been rolled back when it surfaces; it is
	// never absorbed or silently retried by the lifecycle engine.
	ErrStorage = errors.New("storage failure")
)

// ConflictError represents a duplicate document id / QR code with details
// about the existing resource
type ConflictError struct {
	Message    string // Human-readable error message
	ResourceID string // ID of the existing/conflicting document
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
