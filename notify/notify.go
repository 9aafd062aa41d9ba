/*
Package notify produces human-readable notices for approved vacation
requests.

The ledger core only exposes the approved request's fields; formatting and
delivery live here, downstream of the approval. Delivery is best effort:
callers log failures and never roll back an approval over a lost email.
*/
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Notice carries the fields of an approved request that a notification
// artifact needs.
type Notice struct {
	EmployeeName  string
	EmployeeEmail string
	StartDate     time.Time
	EndDate       time.Time
	Days          decimal.Decimal
	Period        int
}

// Notifier delivers approval notices.
type Notifier interface {
	VacationApproved(ctx context.Context, n Notice) error
}

// Nop is the Notifier used when delivery is not configured.
type Nop struct{}

func (Nop) VacationApproved(context.Context, Notice) error { return nil }
