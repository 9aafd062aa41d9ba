/*
handlers.go - HTTP API handlers for the vacation ledger

PURPOSE:
  Exposes the vacation ledger via REST. Handles HTTP request/response,
  JSON serialization, payload validation, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List all employees
    POST   /api/employees                 Create/update employee
    GET    /api/employees/{id}            Get employee details
    GET    /api/employees/{id}/balance    Balance for ?period= (default: current year)
    GET    /api/employees/{id}/requests   Request history
    POST   /api/employees/{id}/requests   Submit vacation request

  Requests:
    GET    /api/requests/pending          Approval queue
    POST   /api/requests/{id}/approve     Approve
    POST   /api/requests/{id}/reject      Reject
    DELETE /api/requests/{id}             Delete (pending/rejected only)

  Admin:
    POST   /api/admin/balances            Manual balance adjustment

ERROR HANDLING:
  Domain errors map to HTTP status via the vacation error taxonomy:
  - 400: validation (missing fields, inverted range, insufficient days)
  - 404: unknown request or employee
  - 409: forbidden state transition
  - 500: storage faults

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nomina/vacation-ledger/notify"
	"github.com/nomina/vacation-ledger/store/sqlite"
	"github.com/nomina/vacation-ledger/vacation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Ledger   *vacation.Ledger
	Notifier notify.Notifier
	Logger   *slog.Logger

	validate *validator.Validate
}

// NewHandler creates a handler over the given store and ledger.
func NewHandler(store *sqlite.Store, ledger *vacation.Ledger, notifier notify.Notifier, logger *slog.Logger) *Handler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:    store,
		Ledger:   ledger,
		Notifier: notifier,
		Logger:   logger,
		validate: validator.New(),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all directory records.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee payload", err)
		return
	}

	hireDate, _ := time.Parse("2006-01-02", req.HireDate)
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	emp := vacation.Employee{
		ID:         req.ID,
		Name:       req.Name,
		Email:      req.Email,
		DocumentID: req.DocumentID,
		HireDate:   hireDate,
		Active:     active,
	}
	if emp.ID == "" {
		emp.ID = newEmployeeID()
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalance returns the balance for ?period= (default: current year).
// A zero-usage balance is computed on the fly when none is persisted.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	period := time.Now().UTC().Year()
	if p := r.URL.Query().Get("period"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period (use a year, e.g. 2024)", err)
			return
		}
		period = parsed
	}

	balance, err := h.Ledger.GetBalance(r.Context(), employeeID, period)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// AdjustBalance sets a balance directly. Administrative corrections only.
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid balance payload", err)
		return
	}

	b := vacation.Balance{
		EmployeeID:   req.EmployeeID,
		Year:         req.Year,
		EntitledDays: decimalFrom(req.EntitledDays),
		OwedDays:     decimalFrom(req.OwedDays),
		UsedDays:     decimalFrom(req.UsedDays),
	}
	if err := h.Ledger.AdjustBalance(r.Context(), b); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(&b))
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListEmployeeRequests returns an employee's request history.
// ?period= filters to one calendar year.
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	period := 0
	if p := r.URL.Query().Get("period"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period (use a year, e.g. 2024)", err)
			return
		}
		period = parsed
	}

	requests, err := h.Ledger.ListRequests(r.Context(), employeeID, period)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// SubmitRequest creates a pending vacation request.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req SubmitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	created, err := h.Ledger.CreateRequest(r.Context(), employeeID, start, end, req.Period, req.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(*created))
}

// ListPendingRequests returns the approval queue, oldest first.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Ledger.ListPendingRequests(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ApproveRequest approves a pending request and charges the balance.
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ApproveRequestRequest
	json.NewDecoder(r.Body).Decode(&req)
	if req.ApproverID == "" {
		req.ApproverID = "admin"
	}

	approved, err := h.Ledger.ApproveRequest(r.Context(), id, req.ApproverID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.sendApprovalNotice(r, approved)
	writeJSON(w, http.StatusOK, toRequestDTO(*approved))
}

// sendApprovalNotice delivers the notice best effort; a lost email never
// fails the approval.
func (h *Handler) sendApprovalNotice(r *http.Request, req *vacation.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), req.EmployeeID)
	if err != nil {
		h.Logger.Warn("approval notice skipped", "request_id", req.ID, "error", err)
		return
	}
	notice := notify.Notice{
		EmployeeName:  emp.Name,
		EmployeeEmail: emp.Email,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Days:          req.RequestedDays,
		Period:        req.Period,
	}
	if err := h.Notifier.VacationApproved(r.Context(), notice); err != nil {
		h.Logger.Warn("approval notice failed", "request_id", req.ID, "error", err)
	}
}

// RejectRequest rejects a pending request. No balance mutation.
// POST /api/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RejectRequestRequest
	json.NewDecoder(r.Body).Decode(&req)

	rejected, err := h.Ledger.RejectRequest(r.Context(), id, req.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*rejected))
}

// DeleteRequest removes a pending or rejected request.
// DELETE /api/requests/{id}
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.DeleteRequest(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the vacation error taxonomy to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case vacation.IsValidation(err):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case vacation.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case vacation.IsInvalidState(err):
		writeError(w, http.StatusConflict, "Invalid state", err)
	default:
		h.Logger.Error("storage failure", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func decimalFrom(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func newEmployeeID() string {
	return uuid.NewString()
}

func toRequestDTOs(requests []vacation.Request) []RequestDTO {
	dtos := make([]RequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}
