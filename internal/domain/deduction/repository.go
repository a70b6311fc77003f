package deduction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Provider reads configured recurring deductions for a period and records
// that they were applied, so a later period never double-applies a rule that
// already ran for this period end.
type Provider interface {
	// GetApplicable resolves the active rules of the employee into concrete
	// amounts for [start, end]. Percent-based rules resolve against the given
	// gross or base amount. Rules whose marker already points past end are
	// excluded; a marker equal to end is returned again, which keeps
	// recomputation of the same period idempotent.
	GetApplicable(ctx context.Context, employeeID string, start, end time.Time, gross, base decimal.Decimal) ([]Applicable, error)

	// RecordApplied stamps the marker for the given rule ids.
	RecordApplied(ctx context.Context, ids []string, periodEnd time.Time) error
}
