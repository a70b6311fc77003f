package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/paycore-hr/payroll-engine/internal/domain/attendance"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Source {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) GetRecords(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, date, status, check_in, check_out,
			   worked_hours, expected_hours, overtime_hours, late_minutes, notes
		FROM attendance_records
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(
			&rec.EmployeeID, &rec.Date, &rec.Status, &rec.CheckIn, &rec.CheckOut,
			&rec.WorkedHours, &rec.ExpectedHours, &rec.OvertimeHours, &rec.LateMinutes, &rec.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
