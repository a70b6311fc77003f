package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
)

type cycleRepository struct {
	db *database.DB
}

func NewCycleRepository(db *database.DB) cycle.CycleRepository {
	return &cycleRepository{db: db}
}

const cycleColumns = `
	id, period_start, period_end, phase,
	total_gross, total_deductions, total_net, employee_count,
	overlap_override_reason,
	locked_at, locked_by, paid_at, paid_by,
	version, created_at, updated_at
`

func scanCycle(row pgx.Row) (cycle.PayrollCycle, error) {
	var c cycle.PayrollCycle
	err := row.Scan(
		&c.ID, &c.PeriodStart, &c.PeriodEnd, &c.Phase,
		&c.TotalGross, &c.TotalDeductions, &c.TotalNet, &c.EmployeeCount,
		&c.OverlapOverrideReason,
		&c.LockedAt, &c.LockedBy, &c.PaidAt, &c.PaidBy,
		&c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *cycleRepository) Create(ctx context.Context, c cycle.PayrollCycle) (cycle.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_cycles (period_start, period_end, phase, overlap_override_reason)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + cycleColumns

	created, err := scanCycle(q.QueryRow(ctx, query,
		c.PeriodStart, c.PeriodEnd, c.Phase, c.OverlapOverrideReason,
	))
	if err != nil {
		return cycle.PayrollCycle{}, fmt.Errorf("failed to create payroll cycle: %w", err)
	}
	return created, nil
}

func (r *cycleRepository) GetByID(ctx context.Context, id string) (cycle.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + ` FROM payroll_cycles WHERE id = $1`

	c, err := scanCycle(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return cycle.PayrollCycle{}, cycle.ErrCycleNotFound
		}
		return cycle.PayrollCycle{}, fmt.Errorf("failed to get payroll cycle: %w", err)
	}
	return c, nil
}

func (r *cycleRepository) List(ctx context.Context) ([]cycle.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + ` FROM payroll_cycles ORDER BY period_start DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll cycles: %w", err)
	}
	defer rows.Close()

	var cycles []cycle.PayrollCycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (r *cycleRepository) FindOverlapping(ctx context.Context, start, end time.Time) ([]cycle.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + cycleColumns + `
		FROM payroll_cycles
		WHERE period_start <= $2 AND period_end >= $1
		ORDER BY period_start
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping cycles: %w", err)
	}
	defer rows.Close()

	var cycles []cycle.PayrollCycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (r *cycleRepository) UpdatePhase(ctx context.Context, id string, phase cycle.Phase, actor string, at time.Time, expectedVersion int64) (cycle.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_cycles SET
			phase = $2,
			locked_at = CASE WHEN $2 = 'confirmed_locked' THEN $3 ELSE locked_at END,
			locked_by = CASE WHEN $2 = 'confirmed_locked' THEN $4 ELSE locked_by END,
			paid_at   = CASE WHEN $2 = 'paid' THEN $3 ELSE paid_at END,
			paid_by   = CASE WHEN $2 = 'paid' THEN $4 ELSE paid_by END,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $5
		RETURNING ` + cycleColumns

	c, err := scanCycle(q.QueryRow(ctx, query, id, phase, at, actor, expectedVersion))
	if err != nil {
		if err == pgx.ErrNoRows {
			// Row missing or version moved on. Distinguish for the caller.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return cycle.PayrollCycle{}, getErr
			}
			return cycle.PayrollCycle{}, cycle.ErrVersionConflict
		}
		return cycle.PayrollCycle{}, fmt.Errorf("failed to update cycle phase: %w", err)
	}
	return c, nil
}

func (r *cycleRepository) BumpVersion(ctx context.Context, id string, expectedVersion int64) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_cycles
		SET version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version
	`

	var version int64
	err := q.QueryRow(ctx, query, id, expectedVersion).Scan(&version)
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, cycle.ErrVersionConflict
		}
		return 0, fmt.Errorf("failed to bump cycle version: %w", err)
	}
	return version, nil
}

func (r *cycleRepository) RefreshTotals(ctx context.Context, id string) (gross, deductions, net decimal.Decimal, employees int, err error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_cycles c SET
			total_gross      = COALESCE(t.gross, 0),
			total_deductions = COALESCE(t.deductions, 0),
			total_net        = COALESCE(t.net, 0),
			employee_count   = COALESCE(t.employees, 0),
			updated_at = NOW()
		FROM (
			SELECT SUM(gross_pay) AS gross, SUM(total_deductions) AS deductions,
				   SUM(net_pay) AS net, COUNT(*) AS employees
			FROM employee_payrolls WHERE cycle_id = $1
		) t
		WHERE c.id = $1
		RETURNING c.total_gross, c.total_deductions, c.total_net, c.employee_count
	`

	err = q.QueryRow(ctx, query, id).Scan(&gross, &deductions, &net, &employees)
	if err != nil {
		if err == pgx.ErrNoRows {
			return decimal.Zero, decimal.Zero, decimal.Zero, 0, cycle.ErrCycleNotFound
		}
		return decimal.Zero, decimal.Zero, decimal.Zero, 0, fmt.Errorf("failed to refresh cycle totals: %w", err)
	}
	return gross, deductions, net, employees, nil
}

func (r *cycleRepository) ZeroTotals(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_cycles
		SET total_gross = 0, total_deductions = 0, total_net = 0,
			employee_count = 0, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to zero cycle totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cycle.ErrCycleNotFound
	}
	return nil
}

// ========== HOLIDAYS ==========

const holidayColumns = `
	id, cycle_id, name, start_date, end_date, is_paid, confirmed, created_at, updated_at
`

func scanHoliday(row pgx.Row) (cycle.HolidayPeriod, error) {
	var h cycle.HolidayPeriod
	err := row.Scan(
		&h.ID, &h.CycleID, &h.Name, &h.StartDate, &h.EndDate,
		&h.IsPaid, &h.Confirmed, &h.CreatedAt, &h.UpdatedAt,
	)
	return h, err
}

func (r *cycleRepository) CreateHoliday(ctx context.Context, h cycle.HolidayPeriod) (cycle.HolidayPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO cycle_holidays (cycle_id, name, start_date, end_date, is_paid, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + holidayColumns

	created, err := scanHoliday(q.QueryRow(ctx, query,
		h.CycleID, h.Name, h.StartDate, h.EndDate, h.IsPaid, h.Confirmed,
	))
	if err != nil {
		return cycle.HolidayPeriod{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return created, nil
}

func (r *cycleRepository) UpdateHoliday(ctx context.Context, h cycle.HolidayPeriod) (cycle.HolidayPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE cycle_holidays SET
			name = $3, start_date = $4, end_date = $5,
			is_paid = $6, confirmed = $7, updated_at = NOW()
		WHERE id = $1 AND cycle_id = $2
		RETURNING ` + holidayColumns

	updated, err := scanHoliday(q.QueryRow(ctx, query,
		h.ID, h.CycleID, h.Name, h.StartDate, h.EndDate, h.IsPaid, h.Confirmed,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return cycle.HolidayPeriod{}, cycle.ErrHolidayNotFound
		}
		return cycle.HolidayPeriod{}, fmt.Errorf("failed to update holiday: %w", err)
	}
	return updated, nil
}

func (r *cycleRepository) DeleteHoliday(ctx context.Context, cycleID, holidayID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM cycle_holidays WHERE id = $1 AND cycle_id = $2`, holidayID, cycleID)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cycle.ErrHolidayNotFound
	}
	return nil
}

func (r *cycleRepository) GetConfirmedHolidays(ctx context.Context, cycleID string) ([]cycle.HolidayPeriod, error) {
	return r.listHolidays(ctx, cycleID, true)
}

func (r *cycleRepository) ListHolidays(ctx context.Context, cycleID string) ([]cycle.HolidayPeriod, error) {
	return r.listHolidays(ctx, cycleID, false)
}

func (r *cycleRepository) listHolidays(ctx context.Context, cycleID string, confirmedOnly bool) ([]cycle.HolidayPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + holidayColumns + `
		FROM cycle_holidays
		WHERE cycle_id = $1 AND ($2 = false OR confirmed)
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, cycleID, confirmedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []cycle.HolidayPeriod
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
