package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paycore-hr/payroll-engine/internal/domain/deduction"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
)

type deductionRepository struct {
	db *database.DB
}

func NewDeductionRepository(db *database.DB) deduction.Provider {
	return &deductionRepository{db: db}
}

var percentDivisor = decimal.NewFromInt(100)

// GetApplicable resolves the employee's active recurring rules into concrete
// amounts for the period. A rule whose marker already points past the period
// end was consumed by a later cycle and is excluded; a marker equal to the
// period end is the same period being recomputed and stays in.
func (r *deductionRepository) GetApplicable(ctx context.Context, employeeID string, start, end time.Time, gross, base decimal.Decimal) ([]deduction.Applicable, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, category, label, basis, value
		FROM configured_deductions
		WHERE employee_id = $1
		  AND active = true
		  AND (last_applied_period_end IS NULL OR last_applied_period_end <= $2)
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, employeeID, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get configured deductions: %w", err)
	}
	defer rows.Close()

	var applicable []deduction.Applicable
	for rows.Next() {
		var (
			a     deduction.Applicable
			basis deduction.AmountBasis
			value decimal.Decimal
		)
		if err := rows.Scan(&a.ConfiguredID, &a.Category, &a.Label, &basis, &value); err != nil {
			return nil, fmt.Errorf("failed to scan configured deduction: %w", err)
		}

		switch basis {
		case deduction.BasisFixed:
			a.Amount = value
		case deduction.BasisPercentGross:
			a.Amount = gross.Mul(value).Div(percentDivisor)
		case deduction.BasisPercentBase:
			a.Amount = base.Mul(value).Div(percentDivisor)
		default:
			return nil, fmt.Errorf("unknown deduction basis %q on rule %s", basis, a.ConfiguredID)
		}
		applicable = append(applicable, a)
	}
	return applicable, rows.Err()
}

func (r *deductionRepository) RecordApplied(ctx context.Context, ids []string, periodEnd time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE configured_deductions
		SET last_applied_period_end = $2, updated_at = NOW()
		WHERE id = ANY($1)
	`

	if _, err := q.Exec(ctx, query, ids, periodEnd); err != nil {
		return fmt.Errorf("failed to record applied deductions: %w", err)
	}
	return nil
}
