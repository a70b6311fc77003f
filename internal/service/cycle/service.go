package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/paycore-hr/payroll-engine/internal/domain/bonus"
	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
	"github.com/paycore-hr/payroll-engine/internal/domain/deduction"
	"github.com/paycore-hr/payroll-engine/internal/domain/leave"
	"github.com/paycore-hr/payroll-engine/internal/domain/loan"
	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
	"github.com/paycore-hr/payroll-engine/internal/pkg/database"
	"github.com/paycore-hr/payroll-engine/internal/repository/postgresql"
	"github.com/paycore-hr/payroll-engine/internal/service/calc"
	"github.com/paycore-hr/payroll-engine/internal/service/snapshot"
)

// Retries on optimistic version conflicts before giving up.
const maxVersionRetries = 3

type Service struct {
	db       *database.DB
	cycles   cycle.CycleRepository
	payrolls payroll.EmployeePayrollRepository
	machine  *StateMachine
	builder  *snapshot.Builder
	engine   *calc.Engine

	loans      loan.Provider
	deductions deduction.Provider
	bonuses    bonus.Provider
	leaves     leave.UsageProvider
}

func NewService(
	db *database.DB,
	cycles cycle.CycleRepository,
	payrolls payroll.EmployeePayrollRepository,
	builder *snapshot.Builder,
	loans loan.Provider,
	deductions deduction.Provider,
	bonuses bonus.Provider,
	leaves leave.UsageProvider,
) *Service {
	return &Service{
		db:         db,
		cycles:     cycles,
		payrolls:   payrolls,
		machine:    NewStateMachine(),
		builder:    builder,
		engine:     calc.NewEngine(),
		loans:      loans,
		deductions: deductions,
		bonuses:    bonuses,
		leaves:     leaves,
	}
}

// Create opens a new cycle in its first phase. Overlapping periods are
// rejected unless the request explicitly overrides with a recorded reason.
func (s *Service) Create(ctx context.Context, actor string, req cycle.CreateCycleRequest) (cycle.CycleResponse, error) {
	start, end, err := req.Parse()
	if err != nil {
		return cycle.CycleResponse{}, err
	}

	overlapping, err := s.cycles.FindOverlapping(ctx, start, end)
	if err != nil {
		return cycle.CycleResponse{}, err
	}
	if len(overlapping) > 0 {
		if !req.AllowOverlap {
			return cycle.CycleResponse{}, fmt.Errorf("%w: conflicts with cycle %s", cycle.ErrPeriodOverlap, overlapping[0].ID)
		}
	}

	c := cycle.PayrollCycle{
		PeriodStart: start,
		PeriodEnd:   end,
		Phase:       cycle.PhaseHolidaysReview,
	}
	if req.AllowOverlap && len(overlapping) > 0 {
		c.OverlapOverrideReason = req.OverlapReason
	}

	created, err := s.cycles.Create(ctx, c)
	if err != nil {
		return cycle.CycleResponse{}, err
	}
	return mapCycleResponse(created), nil
}

func (s *Service) Get(ctx context.Context, id string) (cycle.CycleResponse, error) {
	c, err := s.cycles.GetByID(ctx, id)
	if err != nil {
		return cycle.CycleResponse{}, err
	}
	return mapCycleResponse(c), nil
}

func (s *Service) List(ctx context.Context) ([]cycle.CycleResponse, error) {
	cycles, err := s.cycles.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]cycle.CycleResponse, 0, len(cycles))
	for _, c := range cycles {
		result = append(result, mapCycleResponse(c))
	}
	return result, nil
}

// Reset wipes every employee payroll and snapshot of the cycle and zeroes
// its totals. Unlike a re-import this drops payroll identities and their
// frozen compensation; it is irreversible and only legal before locking.
func (s *Service) Reset(ctx context.Context, actor string, id string) error {
	c, err := s.cycles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.machine.ValidateNotLocked(c); err != nil {
		return err
	}

	return postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := postgresql.TxContext(ctx, tx)

		if _, err := s.cycles.BumpVersion(txCtx, c.ID, c.Version); err != nil {
			return err
		}
		if err := s.payrolls.DeleteByCycle(txCtx, c.ID); err != nil {
			return err
		}
		return s.cycles.ZeroTotals(txCtx, c.ID)
	})
}

// ----- Holidays -----

func (s *Service) AddHoliday(ctx context.Context, actor string, cycleID string, req cycle.UpsertHolidayRequest) (cycle.HolidayResponse, error) {
	c, err := s.cycles.GetByID(ctx, cycleID)
	if err != nil {
		return cycle.HolidayResponse{}, err
	}
	if err := s.machine.ValidateNotLocked(c); err != nil {
		return cycle.HolidayResponse{}, err
	}

	start, end, err := req.Parse()
	if err != nil {
		return cycle.HolidayResponse{}, err
	}
	h := cycle.HolidayPeriod{
		CycleID:   cycleID,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		IsPaid:    req.IsPaid,
		Confirmed: req.Confirmed,
	}
	if err := s.validateHoliday(ctx, c, h); err != nil {
		return cycle.HolidayResponse{}, err
	}

	created, err := s.cycles.CreateHoliday(ctx, h)
	if err != nil {
		return cycle.HolidayResponse{}, err
	}
	return mapHolidayResponse(created), nil
}

func (s *Service) UpdateHoliday(ctx context.Context, actor string, cycleID, holidayID string, req cycle.UpsertHolidayRequest) (cycle.HolidayResponse, error) {
	c, err := s.cycles.GetByID(ctx, cycleID)
	if err != nil {
		return cycle.HolidayResponse{}, err
	}
	if err := s.machine.ValidateNotLocked(c); err != nil {
		return cycle.HolidayResponse{}, err
	}

	start, end, err := req.Parse()
	if err != nil {
		return cycle.HolidayResponse{}, err
	}
	h := cycle.HolidayPeriod{
		ID:        holidayID,
		CycleID:   cycleID,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		IsPaid:    req.IsPaid,
		Confirmed: req.Confirmed,
	}
	if err := s.validateHoliday(ctx, c, h); err != nil {
		return cycle.HolidayResponse{}, err
	}

	updated, err := s.cycles.UpdateHoliday(ctx, h)
	if err != nil {
		return cycle.HolidayResponse{}, err
	}
	return mapHolidayResponse(updated), nil
}

func (s *Service) DeleteHoliday(ctx context.Context, actor string, cycleID, holidayID string) error {
	c, err := s.cycles.GetByID(ctx, cycleID)
	if err != nil {
		return err
	}
	if err := s.machine.ValidateNotLocked(c); err != nil {
		return err
	}
	return s.cycles.DeleteHoliday(ctx, cycleID, holidayID)
}

func (s *Service) ListHolidays(ctx context.Context, cycleID string) ([]cycle.HolidayResponse, error) {
	holidays, err := s.cycles.ListHolidays(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	result := make([]cycle.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		result = append(result, mapHolidayResponse(h))
	}
	return result, nil
}

// validateHoliday rejects ranges outside the cycle period and dates already
// covered by another confirmed holiday period.
func (s *Service) validateHoliday(ctx context.Context, c cycle.PayrollCycle, h cycle.HolidayPeriod) error {
	if !c.ContainsDate(h.StartDate) || !c.ContainsDate(h.EndDate) {
		return cycle.ErrHolidayOutsidePeriod
	}
	if !h.Confirmed {
		return nil
	}

	confirmed, err := s.cycles.GetConfirmedHolidays(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, other := range confirmed {
		if other.ID == h.ID {
			continue
		}
		if !h.StartDate.After(other.EndDate) && !h.EndDate.Before(other.StartDate) {
			return fmt.Errorf("%w: %q overlaps %q", cycle.ErrHolidayDateConflict, h.Name, other.Name)
		}
	}
	return nil
}

// ----- Employee payroll reads and manual deductions -----

func (s *Service) ListEmployeePayrolls(ctx context.Context, cycleID string) ([]payroll.EmployeePayrollResponse, error) {
	if _, err := s.cycles.GetByID(ctx, cycleID); err != nil {
		return nil, err
	}
	payrolls, err := s.payrolls.ListByCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	result := make([]payroll.EmployeePayrollResponse, 0, len(payrolls))
	for _, p := range payrolls {
		result = append(result, payroll.MapToResponse(p))
	}
	return result, nil
}

func (s *Service) GetEmployeePayrollDetail(ctx context.Context, cycleID, employeeID string) (payroll.EmployeePayrollDetailResponse, error) {
	if _, err := s.cycles.GetByID(ctx, cycleID); err != nil {
		return payroll.EmployeePayrollDetailResponse{}, err
	}
	p, err := s.payrolls.GetByCycleAndEmployee(ctx, cycleID, employeeID)
	if err != nil {
		return payroll.EmployeePayrollDetailResponse{}, err
	}
	days, err := s.payrolls.ListDaySnapshots(ctx, p.ID)
	if err != nil {
		return payroll.EmployeePayrollDetailResponse{}, err
	}
	lines, err := s.payrolls.ListLines(ctx, p.ID)
	if err != nil {
		return payroll.EmployeePayrollDetailResponse{}, err
	}
	return payroll.MapToDetailResponse(p, days, lines), nil
}

// AddManualDeduction attaches an operator-entered deduction line and folds it
// into the employee's totals by recomputing the whole cycle.
func (s *Service) AddManualDeduction(ctx context.Context, actor string, cycleID, employeeID string, req payroll.AddManualDeductionRequest) (cycle.ProcessingSummary, error) {
	if err := req.Validate(); err != nil {
		return cycle.ProcessingSummary{}, err
	}
	c, err := s.cycles.GetByID(ctx, cycleID)
	if err != nil {
		return cycle.ProcessingSummary{}, err
	}
	if err := s.machine.ValidateNotLocked(c); err != nil {
		return cycle.ProcessingSummary{}, err
	}

	p, err := s.payrolls.GetByCycleAndEmployee(ctx, cycleID, employeeID)
	if err != nil {
		return cycle.ProcessingSummary{}, err
	}

	if _, err := s.payrolls.AddManualLine(ctx, payroll.DeductionLine{
		EmployeePayrollID: p.ID,
		Category:          payroll.DeductionCategory(req.Category),
		Label:             req.Label,
		Amount:            req.Amount,
		Manual:            true,
	}); err != nil {
		return cycle.ProcessingSummary{}, err
	}

	return s.Recalculate(ctx, actor, cycleID)
}

// ----- mapping helpers -----

func mapCycleResponse(c cycle.PayrollCycle) cycle.CycleResponse {
	resp := cycle.CycleResponse{
		ID:              c.ID,
		PeriodStart:     c.PeriodStart.Format("2006-01-02"),
		PeriodEnd:       c.PeriodEnd.Format("2006-01-02"),
		Phase:           string(c.Phase),
		TotalGross:      c.TotalGross,
		TotalDeductions: c.TotalDeductions,
		TotalNet:        c.TotalNet,
		EmployeeCount:   c.EmployeeCount,
		OverlapReason:   c.OverlapOverrideReason,
		LockedBy:        c.LockedBy,
		PaidBy:          c.PaidBy,
	}
	if c.LockedAt != nil {
		s := c.LockedAt.Format(time.RFC3339)
		resp.LockedAt = &s
	}
	if c.PaidAt != nil {
		s := c.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}

func mapHolidayResponse(h cycle.HolidayPeriod) cycle.HolidayResponse {
	return cycle.HolidayResponse{
		ID:        h.ID,
		Name:      h.Name,
		StartDate: h.StartDate.Format("2006-01-02"),
		EndDate:   h.EndDate.Format("2006-01-02"),
		IsPaid:    h.IsPaid,
		Confirmed: h.Confirmed,
	}
}
