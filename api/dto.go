/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request bodies carry go-playground/validator struct tags; handlers run
  them through Handler.validate before touching the domain.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/nomina/vacation-ledger/vacation"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents a directory record in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	HireDate   string `json:"hire_date"`
	Active     bool   `json:"active"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	DocumentID string `json:"document_id"`
	HireDate   string `json:"hire_date" validate:"required,datetime=2006-01-02"`
	Active     *bool  `json:"active"`
}

func toEmployeeDTO(e vacation.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		DocumentID: e.DocumentID,
		HireDate:   e.HireDate.Format("2006-01-02"),
		Active:     e.Active,
	}
}

// =============================================================================
// BALANCES
// =============================================================================

// BalanceDTO represents a vacation balance in API responses.
// AvailableDays is derived: entitled + owed - used, rounded to 2 decimals.
type BalanceDTO struct {
	EmployeeID    string  `json:"employee_id"`
	Year          int     `json:"year"`
	EntitledDays  float64 `json:"entitled_days"`
	OwedDays      float64 `json:"owed_days"`
	UsedDays      float64 `json:"used_days"`
	AvailableDays float64 `json:"available_days"`
}

// AdjustBalanceRequest is the admin correction payload.
type AdjustBalanceRequest struct {
	EmployeeID   string  `json:"employee_id" validate:"required"`
	Year         int     `json:"year" validate:"required"`
	EntitledDays float64 `json:"entitled_days" validate:"gte=0"`
	OwedDays     float64 `json:"owed_days"`
	UsedDays     float64 `json:"used_days" validate:"gte=0"`
}

func toBalanceDTO(b *vacation.Balance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:    b.EmployeeID,
		Year:          b.Year,
		EntitledDays:  b.EntitledDays.InexactFloat64(),
		OwedDays:      b.OwedDays.InexactFloat64(),
		UsedDays:      b.UsedDays.InexactFloat64(),
		AvailableDays: b.Available().InexactFloat64(),
	}
}

// =============================================================================
// REQUESTS
// =============================================================================

// RequestDTO represents a vacation request in API responses.
type RequestDTO struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	RequestedDays   float64 `json:"requested_days"`
	Period          int     `json:"period"`
	Reason          string  `json:"reason,omitempty"`
	State           string  `json:"state"`
	ApprovedBy      string  `json:"approved_by,omitempty"`
	ApprovedAt      string  `json:"approved_at,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// SubmitRequestRequest is the request-creation payload.
type SubmitRequestRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Period    int    `json:"period" validate:"required"`
	Reason    string `json:"reason"`
}

// ApproveRequestRequest identifies the approver.
type ApproveRequestRequest struct {
	ApproverID string `json:"approver_id"`
}

// RejectRequestRequest carries the rejection reason.
type RejectRequestRequest struct {
	Reason string `json:"reason"`
}

func toRequestDTO(r vacation.Request) RequestDTO {
	dto := RequestDTO{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		RequestedDays:   r.RequestedDays.InexactFloat64(),
		Period:          r.Period,
		Reason:          r.Reason,
		State:           string(r.State),
		ApprovedBy:      r.ApprovedBy,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.ApprovedAt != nil {
		dto.ApprovedAt = r.ApprovedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
