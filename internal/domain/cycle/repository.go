package cycle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CycleRepository defines data access for payroll cycles and their holiday periods.
type CycleRepository interface {
	Create(ctx context.Context, c PayrollCycle) (PayrollCycle, error)
	GetByID(ctx context.Context, id string) (PayrollCycle, error)
	List(ctx context.Context) ([]PayrollCycle, error)

	// FindOverlapping returns cycles whose period intersects [start, end].
	FindOverlapping(ctx context.Context, start, end time.Time) ([]PayrollCycle, error)

	// UpdatePhase moves the cycle to phase and stamps lock/paid metadata when the
	// target phase requires it. The update only succeeds when the stored version
	// still equals expectedVersion; otherwise ErrVersionConflict.
	UpdatePhase(ctx context.Context, id string, phase Phase, actor string, at time.Time, expectedVersion int64) (PayrollCycle, error)

	// RefreshTotals recomputes the cycle totals from its employee payrolls.
	RefreshTotals(ctx context.Context, id string) (gross, deductions, net decimal.Decimal, employees int, err error)

	// BumpVersion asserts the optimistic token and increments it.
	BumpVersion(ctx context.Context, id string, expectedVersion int64) (int64, error)

	ZeroTotals(ctx context.Context, id string) error

	// Holidays
	CreateHoliday(ctx context.Context, h HolidayPeriod) (HolidayPeriod, error)
	UpdateHoliday(ctx context.Context, h HolidayPeriod) (HolidayPeriod, error)
	DeleteHoliday(ctx context.Context, cycleID, holidayID string) error
	GetConfirmedHolidays(ctx context.Context, cycleID string) ([]HolidayPeriod, error)
	ListHolidays(ctx context.Context, cycleID string) ([]HolidayPeriod, error)
}
