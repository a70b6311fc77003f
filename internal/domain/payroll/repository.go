package payroll

import (
	"context"
	"time"
)

// EmployeePayrollRepository defines data access for employee payrolls and
// their owned children (day snapshots, deduction lines). Children are only
// reachable through their payroll; rebuilds replace child sets wholesale.
type EmployeePayrollRepository interface {
	GetByCycleAndEmployee(ctx context.Context, cycleID, employeeID string) (EmployeePayroll, error)
	ListByCycle(ctx context.Context, cycleID string) ([]EmployeePayroll, error)
	Create(ctx context.Context, p EmployeePayroll) (EmployeePayroll, error)

	// SaveResults writes the accumulators and computed amounts of one payroll.
	SaveResults(ctx context.Context, p EmployeePayroll) error

	// DeleteByCycle removes every employee payroll of the cycle together with
	// all day snapshots and deduction lines. Used by the cycle reset.
	DeleteByCycle(ctx context.Context, cycleID string) error

	// Day snapshots: full set replace, never row patching.
	ReplaceDaySnapshots(ctx context.Context, employeePayrollID string, days []DaySnapshot) error
	ListDaySnapshots(ctx context.Context, employeePayrollID string) ([]DaySnapshot, error)

	// Deduction lines. ReplaceComputedLines removes every non-manual line and
	// inserts the given set; manual lines are untouched.
	ReplaceComputedLines(ctx context.Context, employeePayrollID string, lines []DeductionLine) error
	AddManualLine(ctx context.Context, line DeductionLine) (DeductionLine, error)
	ListLines(ctx context.Context, employeePayrollID string) ([]DeductionLine, error)
	ListManualLines(ctx context.Context, employeePayrollID string) ([]DeductionLine, error)

	// SumQuarterQuotaUsed totals the quota-forgiven late occurrences already
	// recorded for the employee in cycles whose period end falls inside
	// [quarterStart, quarterEnd], excluding the given cycle.
	SumQuarterQuotaUsed(ctx context.Context, employeeID string, quarterStart, quarterEnd time.Time, excludeCycleID string) (int, error)
}
