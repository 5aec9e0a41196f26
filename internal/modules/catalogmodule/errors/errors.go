// Package errors provides structured error handling for the catalog module.
// Every failure the catalog reports carries one of the sentinels below so
// callers can branch with errors.Is regardless of how much context was added.
package errors

import (
	"errors"
	"fmt"
)

// Error types for classification
type ErrorType string

const (
	ErrorTypeSort        ErrorType = "sort"
	ErrorTypeCriteria    ErrorType = "criteria"
	ErrorTypeRole        ErrorType = "role"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeConflict    ErrorType = "conflict"
	ErrorTypeUnsupported ErrorType = "unsupported"
	ErrorTypeDatabase    ErrorType = "database"
	ErrorTypeInternal    ErrorType = "internal"
)

// Sentinel errors for common scenarios
var (
	// ErrInvalidSortField indicates a sort field outside the entity's allow-list
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidCriteria indicates a malformed filter, range or page request
	ErrInvalidCriteria = errors.New("invalid criteria")

	// ErrUnknownRole indicates a role identifier missing from the registry
	ErrUnknownRole = errors.New("unknown role")

	// ErrNotSupported indicates an operation the role or entity does not offer
	ErrNotSupported = errors.New("operation not supported")

	// ErrNotFound indicates a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates an entity or mutation that fails validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a uniqueness violation
	ErrConflict = errors.New("conflict")
)

// CatalogError provides structured error information with context
type CatalogError struct {
	Type    ErrorType              // Error classification
	Op      string                 // Operation that failed (e.g., "resolve_sort", "commit_relations")
	Entity  string                 // Entity type if applicable
	ID      string                 // Entity ID if applicable
	Field   string                 // Offending field if applicable
	Err     error                  // Underlying error
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *CatalogError) Error() string {
	var context []string

	if e.Entity != "" {
		context = append(context, fmt.Sprintf("entity=%s", e.Entity))
	}
	if e.ID != "" {
		context = append(context, fmt.Sprintf("id=%s", e.ID))
	}
	if e.Field != "" {
		context = append(context, fmt.Sprintf("field=%s", e.Field))
	}

	if len(context) > 0 {
		return fmt.Sprintf("%s error in %s %v: %v", e.Type, e.Op, context, e.Err)
	}
	return fmt.Sprintf("%s error in %s: %v", e.Type, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for sentinel errors
func (e *CatalogError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// New creates a new CatalogError
func New(errType ErrorType, op string, err error) *CatalogError {
	return &CatalogError{
		Type:    errType,
		Op:      op,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

func (e *CatalogError) WithEntity(entity string) *CatalogError {
	e.Entity = entity
	return e
}

func (e *CatalogError) WithID(id string) *CatalogError {
	e.ID = id
	return e
}

func (e *CatalogError) WithField(field string) *CatalogError {
	e.Field = field
	return e
}

func (e *CatalogError) WithDetail(key string, value interface{}) *CatalogError {
	e.Details[key] = value
	return e
}

// Error creation helpers. Each one attaches the matching sentinel, with msg
// (formatted with args) as extra detail.

func InvalidSortField(op, field string) *CatalogError {
	return New(ErrorTypeSort, op, ErrInvalidSortField).WithField(field)
}

func InvalidCriteria(op, format string, args ...interface{}) *CatalogError {
	return New(ErrorTypeCriteria, op, detail(ErrInvalidCriteria, format, args...))
}

func UnknownRole(op, role string) *CatalogError {
	return New(ErrorTypeRole, op, ErrUnknownRole).WithDetail("role", role)
}

func NotSupported(op, format string, args ...interface{}) *CatalogError {
	return New(ErrorTypeUnsupported, op, detail(ErrNotSupported, format, args...))
}

func NotFound(op, entity, id string) *CatalogError {
	return New(ErrorTypeNotFound, op, ErrNotFound).WithEntity(entity).WithID(id)
}

func ValidationError(op, format string, args ...interface{}) *CatalogError {
	return New(ErrorTypeValidation, op, detail(ErrInvalidInput, format, args...))
}

func Conflict(op, format string, args ...interface{}) *CatalogError {
	return New(ErrorTypeConflict, op, detail(ErrConflict, format, args...))
}

// DatabaseError wraps a storage failure; the driver error stays reachable
// through errors.Is/As.
func DatabaseError(op string, err error) *CatalogError {
	return New(ErrorTypeDatabase, op, err)
}

func detail(sentinel error, format string, args ...interface{}) error {
	if format == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with operation context if it's not already a CatalogError
func Wrap(err error, errType ErrorType, op string) error {
	if err == nil {
		return nil
	}

	var cErr *CatalogError
	if errors.As(err, &cErr) {
		return err
	}

	return New(errType, op, err)
}

// GetType extracts the error type from an error
func GetType(err error) ErrorType {
	var cErr *CatalogError
	if errors.As(err, &cErr) {
		return cErr.Type
	}
	return ErrorTypeInternal
}

// GetOperation extracts the operation from an error
func GetOperation(err error) string {
	var cErr *CatalogError
	if errors.As(err, &cErr) {
		return cErr.Op
	}
	return "unknown"
}

// GetDetails extracts error details
func GetDetails(err error) map[string]interface{} {
	var cErr *CatalogError
	if errors.As(err, &cErr) {
		return cErr.Details
	}
	return nil
}
