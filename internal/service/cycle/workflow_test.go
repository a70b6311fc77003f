package cycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paycore-hr/payroll-engine/internal/domain/bonus"
	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
)

type fakeBonusProvider struct {
	bonuses []bonus.Bonus
}

func (f *fakeBonusProvider) GetApprovedBonuses(_ context.Context, month, year int) ([]bonus.Bonus, error) {
	var out []bonus.Bonus
	for _, b := range f.bonuses {
		if b.Month == month && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBonusProvider) MarkApplied(_ context.Context, ids []string, cycleID string) error {
	return nil
}

func TestPendingBonuses_ExcludesOtherCycles(t *testing.T) {
	otherCycle := "cycle-other"
	thisCycle := "cycle-this"

	svc := &Service{bonuses: &fakeBonusProvider{bonuses: []bonus.Bonus{
		{ID: "b1", EmployeeID: "emp-1", Amount: decimal.NewFromInt(100), Month: 7, Year: 2025},
		{ID: "b2", EmployeeID: "emp-1", Amount: decimal.NewFromInt(50), Month: 7, Year: 2025, AppliedCycleID: &otherCycle},
		{ID: "b3", EmployeeID: "emp-2", Amount: decimal.NewFromInt(75), Month: 7, Year: 2025, AppliedCycleID: &thisCycle},
		{ID: "b4", EmployeeID: "emp-2", Amount: decimal.NewFromInt(20), Month: 6, Year: 2025},
	}}}

	c := cycle.PayrollCycle{
		ID:          thisCycle,
		PeriodStart: date(2025, time.July, 1),
		PeriodEnd:   date(2025, time.July, 31),
	}

	byEmployee, err := svc.pendingBonuses(context.Background(), c)
	require.NoError(t, err)

	// Unapplied bonus stays in; one applied elsewhere is excluded.
	require.Len(t, byEmployee["emp-1"], 1)
	assert.Equal(t, "b1", byEmployee["emp-1"][0].ID)

	// A bonus already applied to this very cycle is kept, which makes
	// recomputation idempotent instead of dropping the amount.
	require.Len(t, byEmployee["emp-2"], 1)
	assert.Equal(t, "b3", byEmployee["emp-2"][0].ID)
}

func TestIssueCode_Classification(t *testing.T) {
	assert.Equal(t, "employee_misconfigured", issueCode(payroll.ErrMissingRate))
	assert.Equal(t, "employee_misconfigured", issueCode(payroll.ErrUnknownContractType))
	assert.Equal(t, "provider_failure", issueCode(errors.New("loan subsystem timeout")))
}
