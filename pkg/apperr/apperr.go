package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed request rejected before any store access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InsufficientStockError reports a requested quantity exceeding available stock,
// whether caught by the initial check or by the conditional decrement.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available,
	)
}

// ConflictError reports an order status transition the state machine forbids.
type ConflictError struct {
	From string
	To   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// PersistenceError wraps an unexpected storage failure. Its message is
// deliberately generic: storage diagnostics stay out of caller-visible errors.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "internal storage failure"
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Wrap classifies err: errors already belonging to the taxonomy pass through
// unchanged, anything else becomes a PersistenceError.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	var (
		validation *ValidationError
		notFound   *NotFoundError
		stock      *InsufficientStockError
		conflict   *ConflictError
		storage    *PersistenceError
	)
	switch {
	case errors.As(err, &validation),
		errors.As(err, &notFound),
		errors.As(err, &stock),
		errors.As(err, &conflict),
		errors.As(err, &storage):
		return err
	}

	return &PersistenceError{Err: err}
}
