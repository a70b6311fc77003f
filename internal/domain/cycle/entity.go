package cycle

import (
	"time"

	"github.com/shopspring/decimal"
)

// Phase enum. Values are totally ordered; a cycle only ever moves forward
// one phase at a time.
type Phase string

const (
	PhaseHolidaysReview   Phase = "holidays_review"
	PhaseAttendanceImport Phase = "attendance_import"
	PhaseLeaveReview      Phase = "leave_review"
	PhaseOvertimeReview   Phase = "overtime_review"
	PhaseBonusReview      Phase = "bonus_review"
	PhaseDeductionReview  Phase = "deduction_review"
	PhaseConfirmedLocked  Phase = "confirmed_locked"
	PhasePaid             Phase = "paid"
)

var phaseOrder = []Phase{
	PhaseHolidaysReview,
	PhaseAttendanceImport,
	PhaseLeaveReview,
	PhaseOvertimeReview,
	PhaseBonusReview,
	PhaseDeductionReview,
	PhaseConfirmedLocked,
	PhasePaid,
}

// Index returns the position of p in the phase order, or -1 for an unknown value.
func (p Phase) Index() int {
	for i, phase := range phaseOrder {
		if phase == p {
			return i
		}
	}
	return -1
}

func (p Phase) Valid() bool {
	return p.Index() >= 0
}

// Next returns the only phase a cycle in p may transition to.
// ok is false when p is terminal or unknown.
func (p Phase) Next() (next Phase, ok bool) {
	i := p.Index()
	if i < 0 || i >= len(phaseOrder)-1 {
		return "", false
	}
	return phaseOrder[i+1], true
}

// Locked reports whether a cycle in phase p rejects all mutation.
func (p Phase) Locked() bool {
	return p.Index() >= PhaseConfirmedLocked.Index()
}

// PayrollCycle - one payroll run over a fixed date range
type PayrollCycle struct {
	ID          string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Phase       Phase

	// Aggregated over all employee payrolls of the cycle
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	EmployeeCount   int

	// Recorded when an overlapping period was explicitly allowed
	OverlapOverrideReason *string

	LockedAt *time.Time
	LockedBy *string
	PaidAt   *time.Time
	PaidBy   *string

	// Optimistic concurrency token, bumped on every committed mutation
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContainsDate reports whether d falls inside the cycle period (inclusive).
func (c PayrollCycle) ContainsDate(d time.Time) bool {
	day := truncateToDay(d)
	return !day.Before(truncateToDay(c.PeriodStart)) && !day.After(truncateToDay(c.PeriodEnd))
}

// Quarter returns the calendar quarter bounds the cycle belongs to.
// A cycle is attributed to the quarter of its period end date.
func (c PayrollCycle) Quarter() (start, end time.Time) {
	y := c.PeriodEnd.Year()
	q := (int(c.PeriodEnd.Month()) - 1) / 3
	start = time.Date(y, time.Month(q*3+1), 1, 0, 0, 0, 0, c.PeriodEnd.Location())
	end = start.AddDate(0, 3, -1)
	return start, end
}

// HolidayPeriod - a named public-holiday date range attached to a cycle
type HolidayPeriod struct {
	ID        string
	CycleID   string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsPaid    bool
	Confirmed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (h HolidayPeriod) Contains(d time.Time) bool {
	day := truncateToDay(d)
	return !day.Before(truncateToDay(h.StartDate)) && !day.After(truncateToDay(h.EndDate))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
