package leave

import (
	"context"
	"time"
)

// UsageProvider exposes the leave subsystem's view of over-quota leave.
// The excess-day formula lives entirely in that subsystem; the payroll core
// consumes the count as-is.
type UsageProvider interface {
	GetExcessLeaveDays(ctx context.Context, employeeID string, start, end time.Time) (int, error)
}
