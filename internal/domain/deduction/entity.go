package deduction

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountBasis of a configured recurring deduction.
type AmountBasis string

const (
	BasisFixed        AmountBasis = "fixed"
	BasisPercentGross AmountBasis = "percent_of_gross"
	BasisPercentBase  AmountBasis = "percent_of_base"
)

// Configured - a recurring deduction rule attached to an employee
// (statutory contribution, benefit premium, voluntary saving).
type Configured struct {
	ID         string
	EmployeeID string
	Category   string // statutory | benefit | voluntary | other
	Label      string
	Basis      AmountBasis
	// Fixed amount, or percentage when the basis is percent-of.
	Value decimal.Decimal
	// Idempotence marker: the last period end this rule was applied for.
	LastAppliedPeriodEnd *time.Time
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Applicable - a resolved deduction amount for one period.
type Applicable struct {
	ConfiguredID string
	Category     string
	Label        string
	Amount       decimal.Decimal
}
