/*
Package vacation implements the vacation accrual and balance ledger.

PURPOSE:
  This package contains the domain types and calculations for tracking
  vacation entitlement: how many days an employee earns per calendar year,
  how many they have consumed, and the lifecycle of requests that draw
  against that balance.

KEY CONCEPTS IN THIS FILE (types.go):
  - Balance: Per (employee, year) aggregate of entitled/owed/used days
  - Request: A claim on vacation days with a small state machine
  - Employee: Read-only directory record (hire date drives entitlement)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so day fractions never drift
  2. Closed types: Every field is explicit; defaults are zero values
  3. Single mutation path: used days change only through approval or an
     explicit administrative adjustment

SEE ALSO:
  - entitlement.go: Annual entitlement rule (seniority bands, first year)
  - seniority.go: Years-of-service calculation
  - ledger.go: Service orchestrating requests and balances
*/
package vacation

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE - Read-only directory record
// =============================================================================

// Employee is owned by the employee directory; this package only reads it.
type Employee struct {
	ID         string
	Name       string
	Email      string
	DocumentID string
	HireDate   time.Time
	Active     bool
}

// =============================================================================
// BALANCE - One record per (employee, calendar year)
// =============================================================================

// Balance aggregates vacation days for an employee in one calendar year.
//
// UsedDays only increases, and only via request approval. The ledger
// enforces used <= entitled + owed at request-validation time.
type Balance struct {
	EmployeeID   string
	Year         int
	EntitledDays decimal.Decimal
	OwedDays     decimal.Decimal
	UsedDays     decimal.Decimal
}

// Available returns entitled + owed - used, rounded to 2 decimal places.
func (b Balance) Available() decimal.Decimal {
	return b.EntitledDays.Add(b.OwedDays).Sub(b.UsedDays).Round(2)
}

// =============================================================================
// REQUEST - A claim on vacation days
// =============================================================================

type RequestState string

const (
	StatePending  RequestState = "pending"
	StateApproved RequestState = "approved"
	StateRejected RequestState = "rejected"
)

// Terminal reports whether no further transition is possible.
func (s RequestState) Terminal() bool {
	return s == StateApproved || s == StateRejected
}

// Request represents one employee's claim on vacation days.
//
// State machine: pending -> approved | rejected, exactly once.
// Approval is the only transition that mutates a Balance. Deletion is
// permitted only while pending or rejected; approved requests are
// immutable history.
type Request struct {
	ID            string
	EmployeeID    string
	StartDate     time.Time
	EndDate       time.Time
	RequestedDays decimal.Decimal
	Period        int // calendar year the request draws from
	Reason        string
	State         RequestState

	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InclusiveDays counts calendar days in [start, end], both ends included.
// Returns 0 when end precedes start.
func InclusiveDays(start, end time.Time) int {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
