package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Inventory errors
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLotDepleted       = errors.New("lot is depleted")
)

// Request errors
var (
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a missing or malformed field
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientStockError carries the quantity that was available
type InsufficientStockError struct {
	BloodType BloodType
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.BloodType, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Shortfall is the number of units missing
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// BackendError wraps a failure of the table store
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

// TransitionError names the refused status change
type TransitionError struct {
	From RequestStatus
	To   RequestStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move request from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
