/*
errors.go - Error taxonomy for the vacation ledger

PURPOSE:
  All domain error types in one place. Callers classify with errors.Is /
  errors.As or the helpers at the bottom; the HTTP layer maps classes to
  status codes (validation 400, not found 404, invalid state 409,
  everything else 500).

CATEGORIES:
  1. Validation  - malformed or out-of-policy request creation
  2. Not found   - unknown request or employee identifiers
  3. Invalid state - forbidden state-machine transitions
  4. Storage     - backend faults, surfaced wrapped and unclassified

SEE ALSO:
  - ledger.go: produces these errors
  - api/handlers.go: maps them to HTTP responses
*/
package vacation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the class for malformed creation payloads.
	ErrValidation = errors.New("validation error")

	// ErrInvalidPeriod is returned when a date range ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInsufficientBalance is returned when a request exceeds available days.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidState is returned when a transition is attempted from a
	// state that forbids it.
	ErrInvalidState = errors.New("invalid request state")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a malformed creation payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientBalanceError details a balance shortage at creation time.
type InsufficientBalanceError struct {
	EmployeeID string
	Period     int
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	shortfall := e.Requested.Sub(e.Available)
	return fmt.Sprintf("insufficient balance for %s/%d: available %s, requested %s, shortfall %s",
		e.EmployeeID, e.Period, e.Available, e.Requested, shortfall)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// InvalidStateError details a forbidden state-machine transition.
type InvalidStateError struct {
	RequestID string
	State     RequestState
	Op        string // "approve", "reject", "delete"
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s request %s in state %q", e.Op, e.RequestID, e.State)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether the error is due to invalid client input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInsufficientBalance)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}

// IsInvalidState reports whether the error is a forbidden transition.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}
