package postgresql

import (
	"context"
	"fmt"

	"github.com/paycore-hr/payroll-engine/internal/domain/bonus"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
)

type bonusRepository struct {
	db *database.DB
}

func NewBonusRepository(db *database.DB) bonus.Provider {
	return &bonusRepository{db: db}
}

func (r *bonusRepository) GetApprovedBonuses(ctx context.Context, month, year int) ([]bonus.Bonus, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, amount, status, month, year, applied_cycle_id, created_at, updated_at
		FROM bonuses
		WHERE status = 'approved' AND month = $1 AND year = $2
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved bonuses: %w", err)
	}
	defer rows.Close()

	var bonuses []bonus.Bonus
	for rows.Next() {
		var b bonus.Bonus
		if err := rows.Scan(
			&b.ID, &b.EmployeeID, &b.Amount, &b.Status, &b.Month, &b.Year,
			&b.AppliedCycleID, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bonus: %w", err)
		}
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

func (r *bonusRepository) MarkApplied(ctx context.Context, ids []string, cycleID string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE bonuses
		SET applied_cycle_id = $2, updated_at = NOW()
		WHERE id = ANY($1)
	`

	if _, err := q.Exec(ctx, query, ids, cycleID); err != nil {
		return fmt.Errorf("failed to mark bonuses applied: %w", err)
	}
	return nil
}
