package cycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/paycore-hr/payroll-engine/internal/domain/bonus"
	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
	"github.com/paycore-hr/payroll-engine/internal/pkg/money"
	"github.com/paycore-hr/payroll-engine/internal/repository/postgresql"
	"github.com/paycore-hr/payroll-engine/internal/service/calc"
)

// Advance moves the cycle to target and runs the work that phase entry
// implies: entering attendance import rebuilds snapshots from the attendance
// source, every later review phase recomputes all employee payrolls, and
// locking freezes the final numbers. Concurrent advances lose on the version
// check and are retried against the fresh state, where the transition rule
// then rejects them.
func (s *Service) Advance(ctx context.Context, actor string, cycleID string, target cycle.Phase) (cycle.ProcessingSummary, error) {
	var summary cycle.ProcessingSummary

	for attempt := 0; ; attempt++ {
		c, err := s.cycles.GetByID(ctx, cycleID)
		if err != nil {
			return cycle.ProcessingSummary{}, err
		}
		if err := s.machine.TransitionTo(&c, target, actor, time.Now()); err != nil {
			return cycle.ProcessingSummary{}, err
		}

		err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
			txCtx := postgresql.TxContext(ctx, tx)

			updated, err := s.cycles.UpdatePhase(txCtx, c.ID, target, actor, time.Now(), c.Version)
			if err != nil {
				return err
			}

			summary, err = s.runPhaseWork(txCtx, updated)
			return err
		})
		if errors.Is(err, cycle.ErrVersionConflict) && attempt < maxVersionRetries {
			continue
		}
		if err != nil {
			return cycle.ProcessingSummary{}, err
		}
		return summary, nil
	}
}

// MarkPaid is the terminal transition. It only exists as a named operation
// because payment is an outward-facing act; the rules are Advance's.
func (s *Service) MarkPaid(ctx context.Context, actor string, cycleID string) (cycle.ProcessingSummary, error) {
	return s.Advance(ctx, actor, cycleID, cycle.PhasePaid)
}

// Recalculate reruns the full computation for every employee payroll of the
// cycle without moving it to another phase. Illegal once locked.
func (s *Service) Recalculate(ctx context.Context, actor string, cycleID string) (cycle.ProcessingSummary, error) {
	var summary cycle.ProcessingSummary

	for attempt := 0; ; attempt++ {
		c, err := s.cycles.GetByID(ctx, cycleID)
		if err != nil {
			return cycle.ProcessingSummary{}, err
		}
		if err := s.machine.ValidateNotLocked(c); err != nil {
			return cycle.ProcessingSummary{}, err
		}

		err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
			txCtx := postgresql.TxContext(ctx, tx)

			if _, err := s.cycles.BumpVersion(txCtx, c.ID, c.Version); err != nil {
				return err
			}
			var err error
			summary, err = s.recalculateAll(txCtx, c)
			return err
		})
		if errors.Is(err, cycle.ErrVersionConflict) && attempt < maxVersionRetries {
			continue
		}
		if err != nil {
			return cycle.ProcessingSummary{}, err
		}
		return summary, nil
	}
}

// runPhaseWork executes the side effects of entering a phase. The caller has
// already persisted the transition inside the same transaction.
func (s *Service) runPhaseWork(ctx context.Context, c cycle.PayrollCycle) (cycle.ProcessingSummary, error) {
	switch c.Phase {
	case cycle.PhaseAttendanceImport:
		rebuild, err := s.builder.Rebuild(ctx, c)
		if err != nil {
			return cycle.ProcessingSummary{}, err
		}
		summary, err := s.recalculateAll(ctx, c)
		if err != nil {
			return cycle.ProcessingSummary{}, err
		}
		summary.Skipped += rebuild.Skipped
		summary.Issues = append(rebuild.Issues, summary.Issues...)
		return summary, nil
	case cycle.PhaseLeaveReview, cycle.PhaseOvertimeReview, cycle.PhaseBonusReview,
		cycle.PhaseDeductionReview, cycle.PhaseConfirmedLocked:
		return s.recalculateAll(ctx, c)
	}
	return cycle.ProcessingSummary{CycleID: c.ID, Phase: string(c.Phase)}, nil
}

// recalculateAll recomputes every employee payroll of the cycle from its day
// snapshots and the provider subsystems, then refreshes the cycle totals.
// A provider or engine failure skips that employee and records an issue; only
// a run where nothing could be processed aborts the transaction.
func (s *Service) recalculateAll(ctx context.Context, c cycle.PayrollCycle) (cycle.ProcessingSummary, error) {
	summary := cycle.ProcessingSummary{CycleID: c.ID, Phase: string(c.Phase)}

	payrolls, err := s.payrolls.ListByCycle(ctx, c.ID)
	if err != nil {
		return cycle.ProcessingSummary{}, err
	}
	if len(payrolls) == 0 {
		return summary, nil
	}

	bonusesByEmployee, err := s.pendingBonuses(ctx, c)
	if err != nil {
		return cycle.ProcessingSummary{}, err
	}

	var appliedRuleIDs []string
	var appliedBonusIDs []string

	for _, p := range payrolls {
		result, ruleIDs, bonusIDs, err := s.recalculateEmployee(ctx, c, p, bonusesByEmployee[p.EmployeeID])
		if err != nil {
			summary.Skipped++
			summary.Issues = append(summary.Issues, cycle.Issue{
				EmployeeID: p.EmployeeID,
				Severity:   cycle.SeverityError,
				Code:       issueCode(err),
				Message:    err.Error(),
			})
			continue
		}
		summary.Processed++
		summary.Issues = append(summary.Issues, result.Issues...)
		appliedRuleIDs = append(appliedRuleIDs, ruleIDs...)
		appliedBonusIDs = append(appliedBonusIDs, bonusIDs...)
	}

	if summary.Processed == 0 {
		return cycle.ProcessingSummary{}, fmt.Errorf("%w: %d employees, all failed", cycle.ErrNoEmployeeProcessed, len(payrolls))
	}

	if len(appliedRuleIDs) > 0 {
		if err := s.deductions.RecordApplied(ctx, appliedRuleIDs, c.PeriodEnd); err != nil {
			return cycle.ProcessingSummary{}, fmt.Errorf("record applied deductions: %w", err)
		}
	}
	if len(appliedBonusIDs) > 0 {
		if err := s.bonuses.MarkApplied(ctx, appliedBonusIDs, c.ID); err != nil {
			return cycle.ProcessingSummary{}, fmt.Errorf("mark applied bonuses: %w", err)
		}
	}

	if _, _, _, _, err := s.cycles.RefreshTotals(ctx, c.ID); err != nil {
		return cycle.ProcessingSummary{}, fmt.Errorf("refresh cycle totals: %w", err)
	}
	return summary, nil
}

// recalculateEmployee gathers the inputs for one employee, runs the engine
// twice (first pass yields the gross that percent-of-gross deduction rules
// resolve against) and persists the outcome. Returns the deduction rule and
// bonus ids that went into the result so the caller can stamp their markers.
func (s *Service) recalculateEmployee(ctx context.Context, c cycle.PayrollCycle, p payroll.EmployeePayroll, bonuses []bonus.Bonus) (calc.Result, []string, []string, error) {
	days, err := s.payrolls.ListDaySnapshots(ctx, p.ID)
	if err != nil {
		return calc.Result{}, nil, nil, fmt.Errorf("day snapshots: %w", err)
	}

	quarterStart, quarterEnd := c.Quarter()
	priorQuotaUsed, err := s.payrolls.SumQuarterQuotaUsed(ctx, p.EmployeeID, quarterStart, quarterEnd, c.ID)
	if err != nil {
		return calc.Result{}, nil, nil, fmt.Errorf("quarter quota usage: %w", err)
	}

	in := calc.Input{
		EmployeeID:            p.EmployeeID,
		Compensation:          p.Compensation,
		Days:                  days,
		PriorQuarterQuotaUsed: priorQuotaUsed,
	}

	if p.Compensation.ContractType == payroll.ContractMonthly {
		in.ExcessLeaveDays, err = s.leaves.GetExcessLeaveDays(ctx, p.EmployeeID, c.PeriodStart, c.PeriodEnd)
		if err != nil {
			return calc.Result{}, nil, nil, fmt.Errorf("excess leave days: %w", err)
		}
	}

	in.Installments, err = s.loans.GetActiveInstallments(ctx, p.EmployeeID, c.PeriodStart, c.PeriodEnd)
	if err != nil {
		return calc.Result{}, nil, nil, fmt.Errorf("loan installments: %w", err)
	}

	in.ManualLines, err = s.payrolls.ListManualLines(ctx, p.ID)
	if err != nil {
		return calc.Result{}, nil, nil, fmt.Errorf("manual lines: %w", err)
	}

	var bonusIDs []string
	bonusTotal := decimal.Zero
	for _, b := range bonuses {
		bonusTotal = bonusTotal.Add(b.Amount)
		bonusIDs = append(bonusIDs, b.ID)
	}
	in.BonusAmount = money.Round2(bonusTotal)

	// First pass without recurring rules to obtain the gross that
	// percent-of-gross rules resolve against.
	prelim, err := s.engine.Calculate(in)
	if err != nil {
		return calc.Result{}, nil, nil, err
	}

	in.Recurring, err = s.deductions.GetApplicable(ctx, p.EmployeeID, c.PeriodStart, c.PeriodEnd, prelim.GrossPay, contractBase(p.Compensation))
	if err != nil {
		return calc.Result{}, nil, nil, fmt.Errorf("recurring deductions: %w", err)
	}

	result, err := s.engine.Calculate(in)
	if err != nil {
		return calc.Result{}, nil, nil, err
	}

	if err := s.persistResult(ctx, &p, result); err != nil {
		return calc.Result{}, nil, nil, err
	}

	ruleIDs := make([]string, 0, len(in.Recurring))
	for _, rec := range in.Recurring {
		ruleIDs = append(ruleIDs, rec.ConfiguredID)
	}
	return result, ruleIDs, bonusIDs, nil
}

func (s *Service) persistResult(ctx context.Context, p *payroll.EmployeePayroll, r calc.Result) error {
	now := time.Now()

	p.WorkingDays = r.WorkingDays
	p.AttendedDays = r.AttendedDays
	p.AbsentDays = r.AbsentDays
	p.LateDays = r.LateDays
	p.ExcusedDays = r.ExcusedDays
	p.LeaveDays = r.LeaveDays
	p.WorkedHours = r.WorkedHours
	p.OvertimeHours = r.OvertimeHours

	p.GraceForgivenCount = r.GraceForgivenCount
	p.QuotaForgivenCount = r.QuotaForgivenCount
	p.ChargedLateCount = r.ChargedLateCount

	p.GrossPay = r.GrossPay
	p.OvertimePay = r.OvertimePay
	p.BonusAmount = r.BonusAmount
	p.AbsenceDeduction = r.AbsenceDeduction
	p.LateDeduction = r.LateDeduction
	p.LeaveDeduction = r.LeaveDeduction
	p.LoanDeduction = r.LoanDeduction
	p.OtherDeduction = r.OtherDeduction
	p.TotalDeductions = r.TotalDeductions
	p.NetPay = r.NetPay
	p.CalculatedAt = &now

	if err := s.payrolls.SaveResults(ctx, *p); err != nil {
		return fmt.Errorf("save payroll results: %w", err)
	}

	lines := make([]payroll.DeductionLine, 0, len(r.Lines))
	for _, line := range r.Lines {
		line.EmployeePayrollID = p.ID
		lines = append(lines, line)
	}
	if err := s.payrolls.ReplaceComputedLines(ctx, p.ID, lines); err != nil {
		return fmt.Errorf("replace deduction lines: %w", err)
	}
	return nil
}

// pendingBonuses loads approved bonuses for the cycle's payout month, keyed
// by employee. A bonus already applied to another cycle is excluded; one
// applied to this cycle is kept so recomputation stays idempotent.
func (s *Service) pendingBonuses(ctx context.Context, c cycle.PayrollCycle) (map[string][]bonus.Bonus, error) {
	all, err := s.bonuses.GetApprovedBonuses(ctx, int(c.PeriodEnd.Month()), c.PeriodEnd.Year())
	if err != nil {
		return nil, fmt.Errorf("approved bonuses: %w", err)
	}

	byEmployee := make(map[string][]bonus.Bonus)
	for _, b := range all {
		if b.AppliedCycleID != nil && *b.AppliedCycleID != c.ID {
			continue
		}
		byEmployee[b.EmployeeID] = append(byEmployee[b.EmployeeID], b)
	}
	return byEmployee, nil
}

// contractBase is the figure percent-of-base deduction rules resolve against.
func contractBase(comp payroll.Compensation) decimal.Decimal {
	switch comp.ContractType {
	case payroll.ContractMonthly:
		return comp.MonthlyBaseSalary
	case payroll.ContractDaily:
		return comp.DailyRate
	case payroll.ContractHourly:
		return comp.HourlyRate
	}
	return decimal.Zero
}

// issueCode classifies a per-employee failure for the processing summary.
func issueCode(err error) string {
	switch {
	case errors.Is(err, payroll.ErrMissingRate),
		errors.Is(err, payroll.ErrUnknownContractType),
		errors.Is(err, payroll.ErrEmployeeMisconfigured):
		return "employee_misconfigured"
	default:
		return "provider_failure"
	}
}
