package loan

import (
	"context"
	"time"
)

// Provider reads the loan subsystem's records for a pay period.
type Provider interface {
	// GetActiveInstallments returns installments due in [start, end] for loans
	// that are approved or active, disbursed on or before end, with remaining
	// balance above zero. An installment never exceeds the remaining balance.
	GetActiveInstallments(ctx context.Context, employeeID string, start, end time.Time) ([]InstallmentDue, error)
}
