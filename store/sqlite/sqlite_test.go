package sqlite_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomina/vacation-ledger/store/sqlite"
	"github.com/nomina/vacation-ledger/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEmployee(t *testing.T, store *sqlite.Store, id string) {
	t.Helper()
	err := store.SaveEmployee(context.Background(), vacation.Employee{
		ID:       id,
		Name:     "Test Employee",
		Email:    "test@example.com",
		HireDate: time.Date(2020, time.May, 4, 0, 0, 0, 0, time.UTC),
		Active:   true,
	})
	require.NoError(t, err)
}

func pendingRequest(employeeID string, days int) *vacation.Request {
	now := time.Now().UTC()
	start := time.Date(2024, time.August, 5, 0, 0, 0, 0, time.UTC)
	return &vacation.Request{
		ID:            uuid.NewString(),
		EmployeeID:    employeeID,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, days-1),
		RequestedDays: decimal.NewFromInt(int64(days)),
		Period:        2024,
		Reason:        "test",
		State:         vacation.StatePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestStore_EmployeeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp-1")

	emp, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Employee", emp.Name)
	assert.Equal(t, time.Date(2020, time.May, 4, 0, 0, 0, 0, time.UTC), emp.HireDate)
	assert.True(t, emp.Active)

	_, err = store.GetEmployee(ctx, "ghost")
	assert.ErrorIs(t, err, vacation.ErrEmployeeNotFound)

	// Upsert keeps the same row.
	err = store.SaveEmployee(ctx, vacation.Employee{
		ID:       "emp-1",
		Name:     "Renamed",
		HireDate: time.Date(2020, time.May, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	list, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)
}

// =============================================================================
// APPROVAL TRANSACTION
// =============================================================================

func TestStore_ApproveRequest_TransitionAndCharge(t *testing.T) {
	// GIVEN: A pending 5-day request and a balance row
	// WHEN: The request is approved
	// THEN: State flips and used_days grows by 5, in one transaction

	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	req := pendingRequest("emp-1", 5)
	require.NoError(t, store.InsertRequest(ctx, req))
	require.NoError(t, store.EnsureBalance(ctx, "emp-1", 2024, decimal.NewFromInt(14)))

	approved, err := store.ApproveRequest(ctx, req.ID, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, vacation.StateApproved, approved.State)
	assert.Equal(t, "manager-1", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	balance, err := store.GetBalance(ctx, "emp-1", 2024)
	require.NoError(t, err)
	assert.Equal(t, "5", balance.UsedDays.String())
	assert.Equal(t, "9", balance.Available().String())

	// The conditional transition makes a second approval fail.
	_, err = store.ApproveRequest(ctx, req.ID, "manager-1")
	assert.True(t, vacation.IsInvalidState(err))

	balance, err = store.GetBalance(ctx, "emp-1", 2024)
	require.NoError(t, err)
	assert.Equal(t, "5", balance.UsedDays.String())
}

func TestStore_ApproveRequest_Errors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ApproveRequest(ctx, "ghost", "manager-1")
	assert.ErrorIs(t, err, vacation.ErrRequestNotFound)

	// Missing balance row rolls the transition back.
	seedEmployee(t, store, "emp-1")
	req := pendingRequest("emp-1", 3)
	require.NoError(t, store.InsertRequest(ctx, req))

	_, err = store.ApproveRequest(ctx, req.ID, "manager-1")
	require.Error(t, err)

	got, err := store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, vacation.StatePending, got.State)
}

func TestStore_ConcurrentApprovals_NoLostUpdate(t *testing.T) {
	// GIVEN: Ten pending 1-day requests for the same employee/period
	// WHEN: All are approved concurrently
	// THEN: used_days equals exactly 10 - no increment is lost

	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")
	require.NoError(t, store.EnsureBalance(ctx, "emp-1", 2024, decimal.NewFromInt(14)))

	const n = 10
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		req := pendingRequest("emp-1", 1)
		req.StartDate = req.StartDate.AddDate(0, 0, i)
		req.EndDate = req.StartDate
		require.NoError(t, store.InsertRequest(ctx, req))
		ids[i] = req.ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := store.ApproveRequest(ctx, id, "manager-1"); err != nil {
				errs <- fmt.Errorf("approve %s: %w", id, err)
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	balance, err := store.GetBalance(ctx, "emp-1", 2024)
	require.NoError(t, err)
	assert.Equal(t, "10", balance.UsedDays.String())
}

// =============================================================================
// REJECTION, DELETION, QUERIES
// =============================================================================

func TestStore_RejectRequest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	req := pendingRequest("emp-1", 2)
	require.NoError(t, store.InsertRequest(ctx, req))

	rejected, err := store.RejectRequest(ctx, req.ID, "coverage conflict")
	require.NoError(t, err)
	assert.Equal(t, vacation.StateRejected, rejected.State)
	assert.Equal(t, "coverage conflict", rejected.RejectionReason)

	_, err = store.RejectRequest(ctx, req.ID, "again")
	assert.True(t, vacation.IsInvalidState(err))

	_, err = store.RejectRequest(ctx, "ghost", "")
	assert.ErrorIs(t, err, vacation.ErrRequestNotFound)
}

func TestStore_DeleteRequest_StateRules(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")
	require.NoError(t, store.EnsureBalance(ctx, "emp-1", 2024, decimal.NewFromInt(14)))

	pending := pendingRequest("emp-1", 1)
	require.NoError(t, store.InsertRequest(ctx, pending))
	require.NoError(t, store.DeleteRequest(ctx, pending.ID))

	got, err := store.GetRequest(ctx, pending.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	approved := pendingRequest("emp-1", 1)
	require.NoError(t, store.InsertRequest(ctx, approved))
	_, err = store.ApproveRequest(ctx, approved.ID, "manager-1")
	require.NoError(t, err)

	err = store.DeleteRequest(ctx, approved.ID)
	assert.True(t, vacation.IsInvalidState(err))

	assert.ErrorIs(t, store.DeleteRequest(ctx, "ghost"), vacation.ErrRequestNotFound)
}

func TestStore_ListRequests(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	for i, period := range []int{2023, 2024, 2024} {
		req := pendingRequest("emp-1", 1)
		req.Period = period
		req.CreatedAt = req.CreatedAt.Add(time.Duration(i) * time.Second)
		req.UpdatedAt = req.CreatedAt
		require.NoError(t, store.InsertRequest(ctx, req))
	}

	all, err := store.ListRequests(ctx, "emp-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := store.ListRequests(ctx, "emp-1", 2024)
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	pending, err := store.ListPendingRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestStore_EnsureBalance_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureBalance(ctx, "emp-1", 2024, decimal.NewFromInt(14)))
	require.NoError(t, store.UpsertBalance(ctx, vacation.Balance{
		EmployeeID:   "emp-1",
		Year:         2024,
		EntitledDays: decimal.NewFromInt(14),
		OwedDays:     decimal.NewFromFloat(2.5),
		UsedDays:     decimal.NewFromInt(3),
	}))

	// A later Ensure must not clobber the existing row.
	require.NoError(t, store.EnsureBalance(ctx, "emp-1", 2024, decimal.NewFromInt(21)))

	balance, err := store.GetBalance(ctx, "emp-1", 2024)
	require.NoError(t, err)
	assert.Equal(t, "14", balance.EntitledDays.String())
	assert.Equal(t, "2.5", balance.OwedDays.String())
	assert.Equal(t, "3", balance.UsedDays.String())
	assert.Equal(t, "13.5", balance.Available().String())
}

func TestStore_GetBalance_AbsentIsNil(t *testing.T) {
	store := newTestStore(t)

	balance, err := store.GetBalance(context.Background(), "emp-1", 2024)
	require.NoError(t, err)
	assert.Nil(t, balance)
}
