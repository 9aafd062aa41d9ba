/*
Package sqlite provides the SQLite-backed implementation of the vacation
storage interfaces.

PURPOSE:
  Implements vacation.Directory, vacation.RequestStore and
  vacation.BalanceStore on SQLite. The same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

KEY TABLES:
  employees:          Directory records (hire date drives entitlement)
  vacation_balances:  One row per (employee, year); used_days mutates only
                      through the approve transaction or an admin upsert
  vacation_requests:  Request records with their state machine

APPROVAL TRANSACTION:
  ApproveRequest runs two statements in one SQL transaction:
    1. UPDATE ... SET state='approved' WHERE id=? AND state='pending'
    2. UPDATE ... SET used_days = ROUND(used_days + ?, 2)
  The conditional transition means a request can be approved at most once,
  and the server-side increment means concurrent approvals for the same
  (employee, year) can never lose an update.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

CONCURRENCY:
  Uses sync.RWMutex around the handle. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/vacation.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := vacation.NewLedger(store, vacation.DefaultEntitlementConfig())

SEE ALSO:
  - vacation/store.go: Interface definitions and consistency contract
  - vacation/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/nomina/vacation-ledger/vacation"
)

const (
	dateFormat = "2006-01-02"
	tsFormat   = time.RFC3339
)

// Store implements vacation.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ vacation.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A pooled ":memory:" handle would otherwise open a fresh empty
	// database per connection. The mutex serializes writers anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees (directory records)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		document_id TEXT,
		hire_date TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Balances (one row per employee/year)
	CREATE TABLE IF NOT EXISTS vacation_balances (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		entitled_days REAL NOT NULL DEFAULT 0,
		owed_days REAL NOT NULL DEFAULT 0,
		used_days REAL NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, year)
	);

	-- Requests (state machine: pending -> approved | rejected)
	CREATE TABLE IF NOT EXISTS vacation_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		requested_days REAL NOT NULL,
		period INTEGER NOT NULL,
		reason TEXT,
		state TEXT NOT NULL DEFAULT 'pending',
		approved_by TEXT,
		approved_at TEXT,
		rejection_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee_period
		ON vacation_requests(employee_id, period);
	CREATE INDEX IF NOT EXISTS idx_requests_state
		ON vacation_requests(state);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE DIRECTORY (vacation.Directory)
// =============================================================================

// SaveEmployee inserts or updates a directory record.
func (s *Store) SaveEmployee(ctx context.Context, emp vacation.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, email, document_id, hire_date, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			document_id = excluded.document_id,
			hire_date = excluded.hire_date,
			active = excluded.active
	`
	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, nullString(emp.Email), nullString(emp.DocumentID),
		emp.HireDate.UTC().Format(dateFormat), emp.Active,
		time.Now().UTC().Format(tsFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns the employee or vacation.ErrEmployeeNotFound.
func (s *Store) GetEmployee(ctx context.Context, id string) (*vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, document_id, hire_date, active
		FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// ListEmployees returns all directory records ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, document_id, hire_date, active
		FROM employees ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []vacation.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*vacation.Employee, error) {
	var (
		emp          vacation.Employee
		email, docID sql.NullString
		hireDate     string
	)
	if err := row.Scan(&emp.ID, &emp.Name, &email, &docID, &hireDate, &emp.Active); err != nil {
		return nil, err
	}
	emp.Email = email.String
	emp.DocumentID = docID.String
	if hireDate != "" {
		t, err := time.Parse(dateFormat, hireDate)
		if err != nil {
			return nil, fmt.Errorf("bad hire_date %q: %w", hireDate, err)
		}
		emp.HireDate = t
	}
	return &emp, nil
}

// =============================================================================
// REQUEST STORE (vacation.RequestStore)
// =============================================================================

func (s *Store) InsertRequest(ctx context.Context, r *vacation.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO vacation_requests
		(id, employee_id, start_date, end_date, requested_days, period, reason,
		 state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.EmployeeID,
		r.StartDate.UTC().Format(dateFormat), r.EndDate.UTC().Format(dateFormat),
		r.RequestedDays.InexactFloat64(), r.Period, nullString(r.Reason),
		string(r.State),
		r.CreatedAt.UTC().Format(tsFormat), r.UpdatedAt.UTC().Format(tsFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRequest(ctx, s.db, id)
}

func (s *Store) ListRequests(ctx context.Context, employeeID string, period int) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := requestColumns + ` WHERE employee_id = ?`
	args := []any{employeeID}
	if period != 0 {
		query += ` AND period = ?`
		args = append(args, period)
	}
	query += ` ORDER BY created_at DESC`

	return s.queryRequests(ctx, query, args...)
}

func (s *Store) ListPendingRequests(ctx context.Context) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		requestColumns+` WHERE state = 'pending' ORDER BY created_at ASC`)
}

// ApproveRequest transitions pending -> approved and charges the balance,
// atomically. See the package comment for the transaction shape.
func (s *Store) ApproveRequest(ctx context.Context, id, approverID string) (*vacation.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE vacation_requests
		SET state = 'approved', approved_by = ?, approved_at = ?, updated_at = ?
		WHERE id = ? AND state = 'pending'`,
		approverID, now.Format(tsFormat), now.Format(tsFormat), id)
	if err != nil {
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, transitionError(ctx, tx, id, "approve")
	}

	req, err := getRequest(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	// Server-side increment, not read-modify-write.
	res, err = tx.ExecContext(ctx, `
		UPDATE vacation_balances
		SET used_days = ROUND(used_days + ?, 2), updated_at = ?
		WHERE employee_id = ? AND year = ?`,
		req.RequestedDays.InexactFloat64(), now.Format(tsFormat),
		req.EmployeeID, req.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to charge balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("no balance row for %s/%d", req.EmployeeID, req.Period)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}
	return req, nil
}

func (s *Store) RejectRequest(ctx context.Context, id, reason string) (*vacation.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE vacation_requests
		SET state = 'rejected', rejection_reason = ?, updated_at = ?
		WHERE id = ? AND state = 'pending'`,
		nullString(reason), now.Format(tsFormat), id)
	if err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, transitionError(ctx, s.db, id, "reject")
	}

	return getRequest(ctx, s.db, id)
}

func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM vacation_requests WHERE id = ? AND state != 'approved'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return transitionError(ctx, s.db, id, "delete")
	}
	return nil
}

// transitionError distinguishes "not found" from "wrong state" after a
// conditional write matched zero rows.
func transitionError(ctx context.Context, q querier, id, op string) error {
	req, err := getRequest(ctx, q, id)
	if err != nil {
		return err
	}
	if req == nil {
		return vacation.ErrRequestNotFound
	}
	return &vacation.InvalidStateError{RequestID: id, State: req.State, Op: op}
}

const requestColumns = `
	SELECT id, employee_id, start_date, end_date, requested_days, period,
	       reason, state, approved_by, approved_at, rejection_reason,
	       created_at, updated_at
	FROM vacation_requests`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRequest(ctx context.Context, q querier, id string) (*vacation.Request, error) {
	row := q.QueryRowContext(ctx, requestColumns+` WHERE id = ?`, id)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]vacation.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var out []vacation.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func scanRequest(row rowScanner) (*vacation.Request, error) {
	var (
		req                            vacation.Request
		startDate, endDate             string
		requestedDays                  float64
		reason, approvedBy, approvedAt sql.NullString
		rejectionReason                sql.NullString
		createdAt, updatedAt           string
		state                          string
	)
	err := row.Scan(&req.ID, &req.EmployeeID, &startDate, &endDate, &requestedDays,
		&req.Period, &reason, &state, &approvedBy, &approvedAt, &rejectionReason,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	req.RequestedDays = decimal.NewFromFloat(requestedDays).Round(2)
	req.Reason = reason.String
	req.State = vacation.RequestState(state)
	req.ApprovedBy = approvedBy.String
	req.RejectionReason = rejectionReason.String

	if req.StartDate, err = time.Parse(dateFormat, startDate); err != nil {
		return nil, fmt.Errorf("bad start_date %q: %w", startDate, err)
	}
	if req.EndDate, err = time.Parse(dateFormat, endDate); err != nil {
		return nil, fmt.Errorf("bad end_date %q: %w", endDate, err)
	}
	if approvedAt.Valid {
		t, err := time.Parse(tsFormat, approvedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad approved_at %q: %w", approvedAt.String, err)
		}
		req.ApprovedAt = &t
	}
	if req.CreatedAt, err = time.Parse(tsFormat, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if req.UpdatedAt, err = time.Parse(tsFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at %q: %w", updatedAt, err)
	}
	return &req, nil
}

// =============================================================================
// BALANCE STORE (vacation.BalanceStore)
// =============================================================================

func (s *Store) GetBalance(ctx context.Context, employeeID string, year int) (*vacation.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entitled, owed, used float64
	err := s.db.QueryRowContext(ctx, `
		SELECT entitled_days, owed_days, used_days
		FROM vacation_balances WHERE employee_id = ? AND year = ?`,
		employeeID, year).Scan(&entitled, &owed, &used)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &vacation.Balance{
		EmployeeID:   employeeID,
		Year:         year,
		EntitledDays: decimal.NewFromFloat(entitled).Round(2),
		OwedDays:     decimal.NewFromFloat(owed).Round(2),
		UsedDays:     decimal.NewFromFloat(used).Round(2),
	}, nil
}

func (s *Store) EnsureBalance(ctx context.Context, employeeID string, year int, entitled decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vacation_balances (employee_id, year, entitled_days, owed_days, used_days, updated_at)
		VALUES (?, ?, ?, 0, 0, ?)
		ON CONFLICT(employee_id, year) DO NOTHING`,
		employeeID, year, entitled.InexactFloat64(), time.Now().UTC().Format(tsFormat))
	if err != nil {
		return fmt.Errorf("failed to ensure balance: %w", err)
	}
	return nil
}

func (s *Store) UpsertBalance(ctx context.Context, b vacation.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vacation_balances (employee_id, year, entitled_days, owed_days, used_days, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year) DO UPDATE SET
			entitled_days = excluded.entitled_days,
			owed_days = excluded.owed_days,
			used_days = excluded.used_days,
			updated_at = excluded.updated_at`,
		b.EmployeeID, b.Year,
		b.EntitledDays.InexactFloat64(), b.OwedDays.InexactFloat64(), b.UsedDays.InexactFloat64(),
		time.Now().UTC().Format(tsFormat))
	if err != nil {
		return fmt.Errorf("failed to upsert balance: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
