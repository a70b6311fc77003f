package bonus

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Bonus - an approved one-off payment from the bonus subsystem.
type Bonus struct {
	ID         string
	EmployeeID string
	Amount     decimal.Decimal
	Status     Status
	Month      int
	Year       int
	// Idempotence marker: the cycle the bonus was paid through, if any.
	AppliedCycleID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
