// Package store provides an in-memory vacation.Store implementation
// for tests and local development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nomina/vacation-ledger/vacation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[string]vacation.Employee
	requests  map[string]vacation.Request
	balances  map[balanceKey]vacation.Balance
}

type balanceKey struct {
	EmployeeID string
	Year       int
}

var _ vacation.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[string]vacation.Employee),
		requests:  make(map[string]vacation.Request),
		balances:  make(map[balanceKey]vacation.Balance),
	}
}

// =============================================================================
// DIRECTORY
// =============================================================================

// SaveEmployee seeds the directory. Test/dev helper, not part of the
// vacation.Store contract.
func (m *Memory) SaveEmployee(emp vacation.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
}

func (m *Memory) GetEmployee(_ context.Context, id string) (*vacation.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, vacation.ErrEmployeeNotFound
	}
	return &emp, nil
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (m *Memory) InsertRequest(_ context.Context, r *vacation.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.requests[r.ID]; exists {
		return fmt.Errorf("request %s already exists", r.ID)
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id string) (*vacation.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) ListRequests(_ context.Context, employeeID string, period int) ([]vacation.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vacation.Request
	for _, r := range m.requests {
		if r.EmployeeID != employeeID {
			continue
		}
		if period != 0 && r.Period != period {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListPendingRequests(_ context.Context) ([]vacation.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vacation.Request
	for _, r := range m.requests {
		if r.State == vacation.StatePending {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ApproveRequest performs the transition and the used-days increment under
// one lock acquisition, the in-memory analogue of the SQL transaction.
func (m *Memory) ApproveRequest(_ context.Context, id, approverID string) (*vacation.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, vacation.ErrRequestNotFound
	}
	if r.State != vacation.StatePending {
		return nil, &vacation.InvalidStateError{RequestID: id, State: r.State, Op: "approve"}
	}

	k := balanceKey{EmployeeID: r.EmployeeID, Year: r.Period}
	b, ok := m.balances[k]
	if !ok {
		return nil, fmt.Errorf("no balance for %s/%d", r.EmployeeID, r.Period)
	}
	b.UsedDays = b.UsedDays.Add(r.RequestedDays)
	m.balances[k] = b

	now := time.Now().UTC()
	r.State = vacation.StateApproved
	r.ApprovedBy = approverID
	r.ApprovedAt = &now
	r.UpdatedAt = now
	m.requests[id] = r

	return &r, nil
}

func (m *Memory) RejectRequest(_ context.Context, id, reason string) (*vacation.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, vacation.ErrRequestNotFound
	}
	if r.State != vacation.StatePending {
		return nil, &vacation.InvalidStateError{RequestID: id, State: r.State, Op: "reject"}
	}

	r.State = vacation.StateRejected
	r.RejectionReason = reason
	r.UpdatedAt = time.Now().UTC()
	m.requests[id] = r

	return &r, nil
}

func (m *Memory) DeleteRequest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return vacation.ErrRequestNotFound
	}
	if r.State == vacation.StateApproved {
		return &vacation.InvalidStateError{RequestID: id, State: r.State, Op: "delete"}
	}
	delete(m.requests, id)
	return nil
}

// =============================================================================
// BALANCE STORE
// =============================================================================

func (m *Memory) GetBalance(_ context.Context, employeeID string, year int) (*vacation.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.balances[balanceKey{EmployeeID: employeeID, Year: year}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) EnsureBalance(_ context.Context, employeeID string, year int, entitled decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := balanceKey{EmployeeID: employeeID, Year: year}
	if _, exists := m.balances[k]; exists {
		return nil
	}
	m.balances[k] = vacation.Balance{
		EmployeeID:   employeeID,
		Year:         year,
		EntitledDays: entitled,
		OwedDays:     decimal.Zero,
		UsedDays:     decimal.Zero,
	}
	return nil
}

func (m *Memory) UpsertBalance(_ context.Context, b vacation.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balanceKey{EmployeeID: b.EmployeeID, Year: b.Year}] = b
	return nil
}
