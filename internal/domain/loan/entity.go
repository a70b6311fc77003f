package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusActive   Status = "active"
	StatusSettled  Status = "settled"
	StatusRejected Status = "rejected"
)

// Loan - an employee loan tracked by the loan subsystem.
type Loan struct {
	ID                 string
	EmployeeID         string
	Principal          decimal.Decimal
	MonthlyInstallment decimal.Decimal
	RemainingBalance   decimal.Decimal
	Status             Status
	DisbursedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// InstallmentDue - one installment the engine should deduct this period.
type InstallmentDue struct {
	LoanID string
	Amount decimal.Decimal
}
