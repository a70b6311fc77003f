package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/paycore-hr/payroll-engine/internal/domain/employee"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Directory {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, name, code, active,
	contract_type, monthly_base_salary, daily_rate, hourly_rate,
	absent_rate, late_rate, leave_rate, grace_minutes, quarterly_late_forgiven,
	hire_date, created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.Name, &e.Code, &e.Active,
		&e.JobConfig.ContractType, &e.JobConfig.MonthlyBaseSalary,
		&e.JobConfig.DailyRate, &e.JobConfig.HourlyRate,
		&e.JobConfig.AbsentRate, &e.JobConfig.LateRate, &e.JobConfig.LeaveRate,
		&e.JobConfig.GraceMinutes, &e.JobConfig.QuarterlyLateForgiven,
		&e.HireDate, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *employeeRepository) GetActiveEmployees(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE active = true ORDER BY name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}
