package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
)

type employeePayrollRepository struct {
	db *database.DB
}

func NewEmployeePayrollRepository(db *database.DB) payroll.EmployeePayrollRepository {
	return &employeePayrollRepository{db: db}
}

const employeePayrollColumns = `
	id, cycle_id, employee_id, employee_name,
	contract_type, monthly_base_salary, daily_rate, hourly_rate,
	absent_rate, late_rate, leave_rate, grace_minutes, quarterly_late_forgiven,
	working_days, attended_days, absent_days, late_days, excused_days, leave_days,
	worked_hours, overtime_hours,
	grace_forgiven_count, quota_forgiven_count, charged_late_count,
	gross_pay, overtime_pay, bonus_amount,
	absence_deduction, late_deduction, leave_deduction, loan_deduction, other_deduction,
	total_deductions, net_pay,
	calculated_at, created_at, updated_at
`

func scanEmployeePayroll(row pgx.Row) (payroll.EmployeePayroll, error) {
	var p payroll.EmployeePayroll
	err := row.Scan(
		&p.ID, &p.CycleID, &p.EmployeeID, &p.EmployeeName,
		&p.Compensation.ContractType, &p.Compensation.MonthlyBaseSalary,
		&p.Compensation.DailyRate, &p.Compensation.HourlyRate,
		&p.Compensation.AbsentRate, &p.Compensation.LateRate, &p.Compensation.LeaveRate,
		&p.Compensation.GraceMinutes, &p.Compensation.QuarterlyLateForgiven,
		&p.WorkingDays, &p.AttendedDays, &p.AbsentDays, &p.LateDays, &p.ExcusedDays, &p.LeaveDays,
		&p.WorkedHours, &p.OvertimeHours,
		&p.GraceForgivenCount, &p.QuotaForgivenCount, &p.ChargedLateCount,
		&p.GrossPay, &p.OvertimePay, &p.BonusAmount,
		&p.AbsenceDeduction, &p.LateDeduction, &p.LeaveDeduction, &p.LoanDeduction, &p.OtherDeduction,
		&p.TotalDeductions, &p.NetPay,
		&p.CalculatedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *employeePayrollRepository) GetByCycleAndEmployee(ctx context.Context, cycleID, employeeID string) (payroll.EmployeePayroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeePayrollColumns + ` FROM employee_payrolls WHERE cycle_id = $1 AND employee_id = $2`

	p, err := scanEmployeePayroll(q.QueryRow(ctx, query, cycleID, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.EmployeePayroll{}, payroll.ErrEmployeePayrollNotFound
		}
		return payroll.EmployeePayroll{}, fmt.Errorf("failed to get employee payroll: %w", err)
	}
	return p, nil
}

func (r *employeePayrollRepository) ListByCycle(ctx context.Context, cycleID string) ([]payroll.EmployeePayroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeePayrollColumns + ` FROM employee_payrolls WHERE cycle_id = $1 ORDER BY employee_name`

	rows, err := q.Query(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.EmployeePayroll
	for rows.Next() {
		p, err := scanEmployeePayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}
	return payrolls, rows.Err()
}

func (r *employeePayrollRepository) Create(ctx context.Context, p payroll.EmployeePayroll) (payroll.EmployeePayroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_payrolls (
			cycle_id, employee_id, employee_name,
			contract_type, monthly_base_salary, daily_rate, hourly_rate,
			absent_rate, late_rate, leave_rate, grace_minutes, quarterly_late_forgiven
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + employeePayrollColumns

	created, err := scanEmployeePayroll(q.QueryRow(ctx, query,
		p.CycleID, p.EmployeeID, p.EmployeeName,
		p.Compensation.ContractType, p.Compensation.MonthlyBaseSalary,
		p.Compensation.DailyRate, p.Compensation.HourlyRate,
		p.Compensation.AbsentRate, p.Compensation.LateRate, p.Compensation.LeaveRate,
		p.Compensation.GraceMinutes, p.Compensation.QuarterlyLateForgiven,
	))
	if err != nil {
		return payroll.EmployeePayroll{}, fmt.Errorf("failed to create employee payroll: %w", err)
	}
	return created, nil
}

func (r *employeePayrollRepository) SaveResults(ctx context.Context, p payroll.EmployeePayroll) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_payrolls SET
			working_days = $2, attended_days = $3, absent_days = $4,
			late_days = $5, excused_days = $6, leave_days = $7,
			worked_hours = $8, overtime_hours = $9,
			grace_forgiven_count = $10, quota_forgiven_count = $11, charged_late_count = $12,
			gross_pay = $13, overtime_pay = $14, bonus_amount = $15,
			absence_deduction = $16, late_deduction = $17, leave_deduction = $18,
			loan_deduction = $19, other_deduction = $20,
			total_deductions = $21, net_pay = $22,
			calculated_at = $23, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		p.ID,
		p.WorkingDays, p.AttendedDays, p.AbsentDays,
		p.LateDays, p.ExcusedDays, p.LeaveDays,
		p.WorkedHours, p.OvertimeHours,
		p.GraceForgivenCount, p.QuotaForgivenCount, p.ChargedLateCount,
		p.GrossPay, p.OvertimePay, p.BonusAmount,
		p.AbsenceDeduction, p.LateDeduction, p.LeaveDeduction,
		p.LoanDeduction, p.OtherDeduction,
		p.TotalDeductions, p.NetPay,
		p.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save payroll results: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrEmployeePayrollNotFound
	}
	return nil
}

func (r *employeePayrollRepository) DeleteByCycle(ctx context.Context, cycleID string) error {
	q := GetQuerier(ctx, r.db)

	// Day snapshots and deduction lines cascade on the payroll FK.
	_, err := q.Exec(ctx, `DELETE FROM employee_payrolls WHERE cycle_id = $1`, cycleID)
	if err != nil {
		return fmt.Errorf("failed to delete cycle payrolls: %w", err)
	}
	return nil
}

// ========== DAY SNAPSHOTS ==========

func (r *employeePayrollRepository) ReplaceDaySnapshots(ctx context.Context, employeePayrollID string, days []payroll.DaySnapshot) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_day_snapshots WHERE employee_payroll_id = $1`, employeePayrollID); err != nil {
		return fmt.Errorf("failed to clear day snapshots: %w", err)
	}

	query := `
		INSERT INTO payroll_day_snapshots (
			id, employee_payroll_id, date, status, check_in, check_out,
			worked_hours, expected_hours, overtime_hours, late_minutes,
			is_holiday, is_weekend, is_leave, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, d := range days {
		if _, err := q.Exec(ctx, query,
			uuid.New().String(), employeePayrollID, d.Date, d.Status, d.CheckIn, d.CheckOut,
			d.WorkedHours, d.ExpectedHours, d.OvertimeHours, d.LateMinutes,
			d.IsHoliday, d.IsWeekend, d.IsLeave, d.Notes,
		); err != nil {
			return fmt.Errorf("failed to insert day snapshot for %s: %w", d.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

func (r *employeePayrollRepository) ListDaySnapshots(ctx context.Context, employeePayrollID string) ([]payroll.DaySnapshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_payroll_id, date, status, check_in, check_out,
			   worked_hours, expected_hours, overtime_hours, late_minutes,
			   is_holiday, is_weekend, is_leave, notes
		FROM payroll_day_snapshots
		WHERE employee_payroll_id = $1
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeePayrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list day snapshots: %w", err)
	}
	defer rows.Close()

	var days []payroll.DaySnapshot
	for rows.Next() {
		var d payroll.DaySnapshot
		if err := rows.Scan(
			&d.ID, &d.EmployeePayrollID, &d.Date, &d.Status, &d.CheckIn, &d.CheckOut,
			&d.WorkedHours, &d.ExpectedHours, &d.OvertimeHours, &d.LateMinutes,
			&d.IsHoliday, &d.IsWeekend, &d.IsLeave, &d.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan day snapshot: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ========== DEDUCTION LINES ==========

const deductionLineColumns = `
	id, employee_payroll_id, category, label, amount, reference_id, manual, created_at
`

func (r *employeePayrollRepository) ReplaceComputedLines(ctx context.Context, employeePayrollID string, lines []payroll.DeductionLine) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx,
		`DELETE FROM payroll_deduction_lines WHERE employee_payroll_id = $1 AND manual = false`,
		employeePayrollID,
	); err != nil {
		return fmt.Errorf("failed to clear computed deduction lines: %w", err)
	}

	query := `
		INSERT INTO payroll_deduction_lines (employee_payroll_id, category, label, amount, reference_id, manual)
		VALUES ($1, $2, $3, $4, $5, false)
	`

	for _, line := range lines {
		if _, err := q.Exec(ctx, query,
			employeePayrollID, line.Category, line.Label, line.Amount, line.ReferenceID,
		); err != nil {
			return fmt.Errorf("failed to insert deduction line %q: %w", line.Label, err)
		}
	}
	return nil
}

func (r *employeePayrollRepository) AddManualLine(ctx context.Context, line payroll.DeductionLine) (payroll.DeductionLine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_deduction_lines (employee_payroll_id, category, label, amount, reference_id, manual)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING ` + deductionLineColumns

	var created payroll.DeductionLine
	err := q.QueryRow(ctx, query,
		line.EmployeePayrollID, line.Category, line.Label, line.Amount, line.ReferenceID,
	).Scan(
		&created.ID, &created.EmployeePayrollID, &created.Category, &created.Label,
		&created.Amount, &created.ReferenceID, &created.Manual, &created.CreatedAt,
	)
	if err != nil {
		return payroll.DeductionLine{}, fmt.Errorf("failed to add manual deduction line: %w", err)
	}
	return created, nil
}

func (r *employeePayrollRepository) ListLines(ctx context.Context, employeePayrollID string) ([]payroll.DeductionLine, error) {
	return r.listLines(ctx, employeePayrollID, false)
}

func (r *employeePayrollRepository) ListManualLines(ctx context.Context, employeePayrollID string) ([]payroll.DeductionLine, error) {
	return r.listLines(ctx, employeePayrollID, true)
}

func (r *employeePayrollRepository) listLines(ctx context.Context, employeePayrollID string, manualOnly bool) ([]payroll.DeductionLine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + deductionLineColumns + `
		FROM payroll_deduction_lines
		WHERE employee_payroll_id = $1 AND ($2 = false OR manual)
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, employeePayrollID, manualOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list deduction lines: %w", err)
	}
	defer rows.Close()

	var lines []payroll.DeductionLine
	for rows.Next() {
		var line payroll.DeductionLine
		if err := rows.Scan(
			&line.ID, &line.EmployeePayrollID, &line.Category, &line.Label,
			&line.Amount, &line.ReferenceID, &line.Manual, &line.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deduction line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// SumQuarterQuotaUsed totals quota-forgiven late occurrences the employee
// already consumed in other cycles of the same calendar quarter.
func (r *employeePayrollRepository) SumQuarterQuotaUsed(ctx context.Context, employeeID string, quarterStart, quarterEnd time.Time, excludeCycleID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(ep.quota_forgiven_count), 0)
		FROM employee_payrolls ep
		JOIN payroll_cycles c ON c.id = ep.cycle_id
		WHERE ep.employee_id = $1
		  AND c.period_end BETWEEN $2 AND $3
		  AND c.id <> $4
	`

	var used int
	if err := q.QueryRow(ctx, query, employeeID, quarterStart, quarterEnd, excludeCycleID).Scan(&used); err != nil {
		return 0, fmt.Errorf("failed to sum quarter quota usage: %w", err)
	}
	return used, nil
}
