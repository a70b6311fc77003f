package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paycore-hr/payroll-engine/internal/domain/attendance"
	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
	"github.com/paycore-hr/payroll-engine/internal/domain/employee"
	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
)

// Builder materializes frozen per-employee day snapshots for a cycle from
// the attendance source and the cycle's confirmed holidays. It records facts
// only; no monetary computation happens here.
type Builder struct {
	payrolls  payroll.EmployeePayrollRepository
	directory employee.Directory
	source    attendance.Source
	cycles    cycle.CycleRepository
}

func NewBuilder(
	payrolls payroll.EmployeePayrollRepository,
	directory employee.Directory,
	source attendance.Source,
	cycles cycle.CycleRepository,
) *Builder {
	return &Builder{
		payrolls:  payrolls,
		directory: directory,
		source:    source,
		cycles:    cycles,
	}
}

// Rebuild upserts an EmployeePayroll per active employee and wholesale
// replaces its day snapshots, so repeating the import with unchanged source
// data converges to the same snapshot set. Compensation is frozen from the
// current job configuration only when the payroll row is first created.
func (b *Builder) Rebuild(ctx context.Context, c cycle.PayrollCycle) (cycle.ProcessingSummary, error) {
	summary := cycle.ProcessingSummary{CycleID: c.ID, Phase: string(c.Phase)}

	holidays, err := b.cycles.GetConfirmedHolidays(ctx, c.ID)
	if err != nil {
		return summary, fmt.Errorf("load confirmed holidays: %w", err)
	}

	employees, err := b.directory.GetActiveEmployees(ctx)
	if err != nil {
		return summary, fmt.Errorf("load active employees: %w", err)
	}

	for _, emp := range employees {
		if err := b.rebuildEmployee(ctx, c, emp, holidays); err != nil {
			summary.Skipped++
			severity := cycle.SeverityError
			code := "provider_failure"
			if errors.Is(err, payroll.ErrEmployeeMisconfigured) {
				severity = cycle.SeverityWarning
				code = "employee_misconfigured"
			}
			summary.Issues = append(summary.Issues, cycle.Issue{
				EmployeeID: emp.ID,
				Severity:   severity,
				Code:       code,
				Message:    err.Error(),
			})
			continue
		}
		summary.Processed++
	}

	if summary.Processed == 0 && len(employees) > 0 {
		return summary, cycle.ErrNoEmployeeProcessed
	}
	return summary, nil
}

func (b *Builder) rebuildEmployee(ctx context.Context, c cycle.PayrollCycle, emp employee.Employee, holidays []cycle.HolidayPeriod) error {
	ep, err := b.payrolls.GetByCycleAndEmployee(ctx, c.ID, emp.ID)
	switch {
	case err == nil:
		// Keep the payroll identity and its frozen compensation.
	case errors.Is(err, payroll.ErrEmployeePayrollNotFound):
		comp, freezeErr := emp.JobConfig.Freeze()
		if freezeErr != nil {
			return freezeErr
		}
		ep, err = b.payrolls.Create(ctx, payroll.EmployeePayroll{
			CycleID:      c.ID,
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			Compensation: comp,
		})
		if err != nil {
			return fmt.Errorf("create employee payroll: %w", err)
		}
	default:
		return fmt.Errorf("load employee payroll: %w", err)
	}

	records, err := b.source.GetRecords(ctx, emp.ID, c.PeriodStart, c.PeriodEnd)
	if err != nil {
		return fmt.Errorf("attendance source: %w", err)
	}

	days := BuildDays(c.PeriodStart, c.PeriodEnd, records, holidays)
	if err := b.payrolls.ReplaceDaySnapshots(ctx, ep.ID, days); err != nil {
		return fmt.Errorf("replace day snapshots: %w", err)
	}
	return nil
}

// BuildDays classifies every date of [start, end] into exactly one snapshot.
// Precedence: an explicit attendance record wins; then a confirmed paid
// holiday (treated as attended), then a confirmed unpaid holiday (excluded),
// then weekend (excluded), else the day is absent.
func BuildDays(start, end time.Time, records []attendance.Record, holidays []cycle.HolidayPeriod) []payroll.DaySnapshot {
	byDate := make(map[string]attendance.Record, len(records))
	for _, r := range records {
		byDate[dayKey(r.Date)] = r
	}

	var days []payroll.DaySnapshot
	for d := truncate(start); !d.After(truncate(end)); d = d.AddDate(0, 0, 1) {
		holiday, onHoliday := holidayFor(d, holidays)
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday

		snap := payroll.DaySnapshot{
			Date:          d,
			WorkedHours:   decimal.Zero,
			ExpectedHours: decimal.Zero,
			OvertimeHours: decimal.Zero,
			IsHoliday:     onHoliday,
			IsWeekend:     weekend,
		}

		if rec, ok := byDate[dayKey(d)]; ok {
			snap.Status = statusFromRecord(rec.Status)
			snap.CheckIn = rec.CheckIn
			snap.CheckOut = rec.CheckOut
			snap.WorkedHours = rec.WorkedHours
			snap.ExpectedHours = rec.ExpectedHours
			snap.OvertimeHours = rec.OvertimeHours
			snap.LateMinutes = rec.LateMinutes
			snap.IsLeave = rec.Status == attendance.StatusLeave
			snap.Notes = rec.Notes
		} else if onHoliday {
			if holiday.IsPaid {
				snap.Status = payroll.DayPaidHoliday
			} else {
				snap.Status = payroll.DayUnpaidHoliday
			}
		} else if weekend {
			snap.Status = payroll.DayWeekend
		} else {
			snap.Status = payroll.DayAbsent
		}

		days = append(days, snap)
	}
	return days
}

func statusFromRecord(s attendance.Status) payroll.DayStatus {
	switch s {
	case attendance.StatusPresent, attendance.StatusLate:
		return payroll.DayAttended
	case attendance.StatusExcused:
		return payroll.DayExcused
	case attendance.StatusLeave:
		return payroll.DayLeave
	default:
		return payroll.DayAbsent
	}
}

// holidayFor returns the confirmed holiday period covering d, if any.
// A date belongs to at most one confirmed period per cycle.
func holidayFor(d time.Time, holidays []cycle.HolidayPeriod) (cycle.HolidayPeriod, bool) {
	for _, h := range holidays {
		if h.Confirmed && h.Contains(d) {
			return h, true
		}
	}
	return cycle.HolidayPeriod{}, false
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
