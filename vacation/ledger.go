/*
ledger.go - Ledger service: request lifecycle and balance bookkeeping

PURPOSE:
  Orchestrates the vacation request lifecycle against the balance ledger:

  1. Creation:  validate dates and available days, persist pending
  2. Approval:  pending -> approved, used days += requested days
  3. Rejection: pending -> rejected, no balance write
  4. Deletion:  allowed for pending/rejected, never for approved

REQUEST FLOW:

  Employee submits    Validate against      Persist         Approval
  request       ──▶   available days  ──▶   pending   ──▶   workflow
                                                               │
                                                    ┌──────────┴──────────┐
                                                    ▼                     ▼
                                              ┌──────────┐         ┌──────────┐
                                              │ Approved │         │ Rejected │
                                              └──────────┘         └──────────┘
                                               used days +=         no balance
                                               requested days       mutation

BALANCE ON DEMAND:
  Validation never requires a persisted balance. When none exists for
  (employee, period), a zero-usage balance is computed from the
  entitlement rule. Approval persists the row first (EnsureBalance) so
  the store-side increment always has a target.

CONSISTENCY:
  The service holds no cache; every operation reads current state from
  the store. The transition + increment pair is delegated to the store as
  one transaction (see store.go). No retries here - those belong to the
  storage client layer.

SEE ALSO:
  - entitlement.go: on-the-fly entitlement computation
  - store.go: persistence contracts, including the approve transaction
*/
package vacation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger orchestrates requests and balances. Safe for concurrent use as
// long as the underlying store is.
type Ledger struct {
	store Store
	cfg   EntitlementConfig
}

// NewLedger creates a ledger service over the given store.
func NewLedger(store Store, cfg EntitlementConfig) *Ledger {
	return &Ledger{store: store, cfg: cfg}
}

// =============================================================================
// REQUEST CREATION
// =============================================================================

// CreateRequest validates and persists a new pending request.
// No balance side effects.
func (l *Ledger) CreateRequest(ctx context.Context, employeeID string, start, end time.Time, period int, reason string) (*Request, error) {
	switch {
	case employeeID == "":
		return nil, &ValidationError{Field: "employee_id", Reason: "required"}
	case start.IsZero():
		return nil, &ValidationError{Field: "start_date", Reason: "required"}
	case end.IsZero():
		return nil, &ValidationError{Field: "end_date", Reason: "required"}
	case period == 0:
		return nil, &ValidationError{Field: "period", Reason: "required"}
	}
	if truncateDay(end).Before(truncateDay(start)) {
		return nil, ErrInvalidPeriod
	}

	requested := decimal.NewFromInt(int64(InclusiveDays(start, end)))

	balance, err := l.GetBalance(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}
	if requested.GreaterThan(balance.Available()) {
		return nil, &InsufficientBalanceError{
			EmployeeID: employeeID,
			Period:     period,
			Available:  balance.Available(),
			Requested:  requested,
		}
	}

	now := time.Now().UTC()
	req := &Request{
		ID:            uuid.NewString(),
		EmployeeID:    employeeID,
		StartDate:     truncateDay(start),
		EndDate:       truncateDay(end),
		RequestedDays: requested,
		Period:        period,
		Reason:        reason,
		State:         StatePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := l.store.InsertRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("persist request: %w", err)
	}
	return req, nil
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

// ApproveRequest transitions a pending request to approved and charges the
// requested days against the matching balance, as one store transaction.
func (l *Ledger) ApproveRequest(ctx context.Context, id, approverID string) (*Request, error) {
	req, err := l.getPending(ctx, id, "approve")
	if err != nil {
		return nil, err
	}

	// The increment target must exist before the transaction runs.
	entitled, err := l.entitledFor(ctx, req.EmployeeID, req.Period)
	if err != nil {
		return nil, err
	}
	if err := l.store.EnsureBalance(ctx, req.EmployeeID, req.Period, entitled); err != nil {
		return nil, fmt.Errorf("ensure balance: %w", err)
	}

	approved, err := l.store.ApproveRequest(ctx, id, approverID)
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// RejectRequest transitions a pending request to rejected.
func (l *Ledger) RejectRequest(ctx context.Context, id, reason string) (*Request, error) {
	if _, err := l.getPending(ctx, id, "reject"); err != nil {
		return nil, err
	}
	return l.store.RejectRequest(ctx, id, reason)
}

// DeleteRequest removes a pending or rejected request. Approved requests
// are immutable history once they have mutated a balance.
func (l *Ledger) DeleteRequest(ctx context.Context, id string) error {
	req, err := l.store.GetRequest(ctx, id)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.State == StateApproved {
		return &InvalidStateError{RequestID: id, State: req.State, Op: "delete"}
	}
	return l.store.DeleteRequest(ctx, id)
}

func (l *Ledger) getPending(ctx context.Context, id, op string) (*Request, error) {
	req, err := l.store.GetRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.State != StatePending {
		return nil, &InvalidStateError{RequestID: id, State: req.State, Op: op}
	}
	return req, nil
}

// =============================================================================
// BALANCE QUERIES
// =============================================================================

// GetBalance returns the persisted balance for (employee, year), or a
// zero-usage balance computed from the entitlement rule when none exists.
// The computed balance is NOT persisted; approval does that.
func (l *Ledger) GetBalance(ctx context.Context, employeeID string, year int) (*Balance, error) {
	b, err := l.store.GetBalance(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("load balance: %w", err)
	}
	if b != nil {
		return b, nil
	}

	entitled, err := l.entitledFor(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	return &Balance{
		EmployeeID:   employeeID,
		Year:         year,
		EntitledDays: entitled,
		OwedDays:     decimal.Zero,
		UsedDays:     decimal.Zero,
	}, nil
}

// GetAvailableDays returns the derived available days for (employee, year).
func (l *Ledger) GetAvailableDays(ctx context.Context, employeeID string, year int) (decimal.Decimal, error) {
	b, err := l.GetBalance(ctx, employeeID, year)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Available(), nil
}

// ListRequests returns an employee's requests for a period (0 = all).
func (l *Ledger) ListRequests(ctx context.Context, employeeID string, period int) ([]Request, error) {
	return l.store.ListRequests(ctx, employeeID, period)
}

// ListPendingRequests returns the approval queue.
func (l *Ledger) ListPendingRequests(ctx context.Context) ([]Request, error) {
	return l.store.ListPendingRequests(ctx)
}

// AdjustBalance sets a balance directly. Administrative corrections only;
// approvals never go through here.
func (l *Ledger) AdjustBalance(ctx context.Context, b Balance) error {
	if b.EmployeeID == "" {
		return &ValidationError{Field: "employee_id", Reason: "required"}
	}
	if b.Year == 0 {
		return &ValidationError{Field: "year", Reason: "required"}
	}
	if _, err := l.store.GetEmployee(ctx, b.EmployeeID); err != nil {
		return err
	}
	return l.store.UpsertBalance(ctx, b)
}

func (l *Ledger) entitledFor(ctx context.Context, employeeID string, year int) (decimal.Decimal, error) {
	emp, err := l.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	return l.cfg.EntitledDays(emp.HireDate, year), nil
}
