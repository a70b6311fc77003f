package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/paycore-hr/payroll-engine/internal/domain/leave"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
)

type leaveRepository struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.UsageProvider {
	return &leaveRepository{db: db}
}

// GetExcessLeaveDays counts approved leave days in the period beyond the
// employee's remaining quota. The quota bookkeeping belongs to the leave
// subsystem; payroll only consumes the resulting count.
func (r *leaveRepository) GetExcessLeaveDays(ctx context.Context, employeeID string, start, end time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(excess_days), 0)
		FROM leave_usages
		WHERE employee_id = $1 AND period_start >= $2 AND period_end <= $3
	`

	var excess int
	if err := q.QueryRow(ctx, query, employeeID, start, end).Scan(&excess); err != nil {
		return 0, fmt.Errorf("failed to get excess leave days: %w", err)
	}
	return excess, nil
}
