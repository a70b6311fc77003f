package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/paycore-hr/payroll-engine/internal/domain/loan"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
)

type loanRepository struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.Provider {
	return &loanRepository{db: db}
}

// GetActiveInstallments returns the installment each qualifying loan
// contributes to the pay period. A final installment is capped at the
// remaining balance so a loan never goes negative.
func (r *loanRepository) GetActiveInstallments(ctx context.Context, employeeID string, start, end time.Time) ([]loan.InstallmentDue, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, LEAST(monthly_installment, remaining_balance)
		FROM loans
		WHERE employee_id = $1
		  AND status IN ('approved', 'active')
		  AND disbursed_at IS NOT NULL AND disbursed_at <= $2
		  AND remaining_balance > 0
		ORDER BY disbursed_at
	`

	rows, err := q.Query(ctx, query, employeeID, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get active loan installments: %w", err)
	}
	defer rows.Close()

	var due []loan.InstallmentDue
	for rows.Next() {
		var inst loan.InstallmentDue
		if err := rows.Scan(&inst.LoanID, &inst.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan loan installment: %w", err)
		}
		due = append(due, inst)
	}
	return due, rows.Err()
}
