/*
store.go - Persistence interfaces for requests, balances and the directory

PURPOSE:
  Defines the contracts between the ledger service and the backing store.
  Implementations exist for SQLite (store/sqlite) and in-memory
  (vacation/store) for tests.

CONSISTENCY CONTRACT:
  Approve is the one operation that touches two records. The store MUST
  run the state transition and the used-days increment as a single
  transaction, with the increment expressed server-side
  (used_days = used_days + delta), so concurrent approvals can neither
  double-transition a request nor lose an increment.

SEE ALSO:
  - ledger.go: the only consumer of these interfaces
  - store/sqlite/sqlite.go: production implementation
  - vacation/store/memory.go: in-memory implementation
*/
package vacation

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE DIRECTORY - Read-only collaborator
// =============================================================================

// Directory resolves employee records. This package never writes to it.
type Directory interface {
	// GetEmployee returns the employee or ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, id string) (*Employee, error)
}

// =============================================================================
// REQUEST STORE
// =============================================================================

// RequestStore persists vacation requests.
type RequestStore interface {
	// InsertRequest persists a new request (always pending).
	InsertRequest(ctx context.Context, r *Request) error

	// GetRequest returns the request or nil when absent.
	GetRequest(ctx context.Context, id string) (*Request, error)

	// ListRequests returns an employee's requests for a period,
	// newest first. period 0 means all periods.
	ListRequests(ctx context.Context, employeeID string, period int) ([]Request, error)

	// ListPendingRequests returns the approval queue, oldest first.
	ListPendingRequests(ctx context.Context) ([]Request, error)

	// ApproveRequest transitions pending -> approved and increments the
	// matching balance's used days by the request's RequestedDays, all in
	// one transaction. The balance row must already exist (the service
	// ensures it). Returns ErrRequestNotFound or ErrInvalidState.
	ApproveRequest(ctx context.Context, id, approverID string) (*Request, error)

	// RejectRequest transitions pending -> rejected. No balance write.
	// Returns ErrRequestNotFound or ErrInvalidState.
	RejectRequest(ctx context.Context, id, reason string) (*Request, error)

	// DeleteRequest removes a pending or rejected request.
	// Returns ErrRequestNotFound or ErrInvalidState for approved ones.
	DeleteRequest(ctx context.Context, id string) error
}

// =============================================================================
// BALANCE STORE
// =============================================================================

// BalanceStore persists per-(employee, year) balances.
type BalanceStore interface {
	// GetBalance returns the balance or nil when none is persisted.
	GetBalance(ctx context.Context, employeeID string, year int) (*Balance, error)

	// EnsureBalance creates the balance row with the given entitlement if
	// absent; existing rows are left untouched. Idempotent.
	EnsureBalance(ctx context.Context, employeeID string, year int, entitled decimal.Decimal) error

	// UpsertBalance sets all fields directly. Administrative corrections
	// only (e.g. migrating legacy balances); approvals never use this.
	UpsertBalance(ctx context.Context, b Balance) error
}

// Store composes everything the ledger service needs.
type Store interface {
	Directory
	RequestStore
	BalanceStore
}
