package calc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
	"github.com/paycore-hr/payroll-engine/internal/domain/deduction"
	"github.com/paycore-hr/payroll-engine/internal/domain/loan"
	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
	"github.com/paycore-hr/payroll-engine/internal/pkg/money"
)

// Hours assumed per pay unit when deriving the effective hourly rate.
const (
	monthlyHours = 160
	dailyHours   = 8
)

var overtimeMultiplier = decimal.RequireFromString("1.5")

// Data-quality thresholds. Exceeding them records a warning, never an error.
const (
	excessiveOvertimeHours = 100
	excessiveAbsentDays    = 15
)

// Input carries everything one employee's calculation needs. The engine
// never reaches outside this struct, which keeps Calculate deterministic.
type Input struct {
	EmployeeID   string
	Compensation payroll.Compensation
	Days         []payroll.DaySnapshot

	// Quota-forgiven late occurrences already consumed by earlier cycles of
	// the same employee and calendar quarter.
	PriorQuarterQuotaUsed int

	ExcessLeaveDays int
	Installments    []loan.InstallmentDue
	Recurring       []deduction.Applicable
	ManualLines     []payroll.DeductionLine
	BonusAmount     decimal.Decimal
}

// Result is the full recomputed outcome. Repeated calculation over the same
// input yields the same result; nothing here is incremental.
type Result struct {
	WorkingDays   int
	AttendedDays  int
	AbsentDays    int
	LateDays      int
	ExcusedDays   int
	LeaveDays     int
	WorkedHours   decimal.Decimal
	OvertimeHours decimal.Decimal

	GraceForgivenCount int
	QuotaForgivenCount int
	ChargedLateCount   int

	GrossPay         decimal.Decimal
	OvertimePay      decimal.Decimal
	BonusAmount      decimal.Decimal
	AbsenceDeduction decimal.Decimal
	LateDeduction    decimal.Decimal
	LeaveDeduction   decimal.Decimal
	LoanDeduction    decimal.Decimal
	OtherDeduction   decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetPay           decimal.Decimal

	// Computed deduction lines, excluding manual ones (those already exist
	// and are owned by the operator).
	Lines  []payroll.DeductionLine
	Issues []cycle.Issue
}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Calculate recomputes one employee payroll from scratch.
func (e *Engine) Calculate(in Input) (Result, error) {
	comp := in.Compensation
	if !comp.ContractType.Valid() {
		return Result{}, fmt.Errorf("%w: %q", payroll.ErrUnknownContractType, comp.ContractType)
	}

	res := e.aggregateAttendance(in)

	forgiveness := applyForgiveness(lateOccurrences(in.Days), comp.GraceMinutes, comp.QuarterlyLateForgiven, in.PriorQuarterQuotaUsed)
	res.GraceForgivenCount = forgiveness.GraceForgiven
	res.QuotaForgivenCount = forgiveness.QuotaForgiven
	res.ChargedLateCount = forgiveness.Charged

	overtimePay, err := e.overtimePay(comp, res.OvertimeHours)
	if err != nil {
		return Result{}, err
	}
	res.OvertimePay = overtimePay

	gross, err := e.grossPay(comp, res, overtimePay)
	if err != nil {
		return Result{}, err
	}
	res.GrossPay = gross
	res.BonusAmount = money.Round2(in.BonusAmount)

	if err := e.deductions(comp, in, &res); err != nil {
		return Result{}, err
	}

	preClamp := res.GrossPay.Sub(res.TotalDeductions)
	if preClamp.IsNegative() {
		res.Issues = append(res.Issues, cycle.Issue{
			EmployeeID: in.EmployeeID,
			Severity:   cycle.SeverityWarning,
			Code:       "negative_net_pay",
			Message:    fmt.Sprintf("deductions exceed gross pay by %s", preClamp.Neg()),
		})
		res.NetPay = decimal.Zero
	} else {
		res.NetPay = money.Round2(preClamp)
	}

	e.dataQualityChecks(in, &res)

	return res, nil
}

// aggregateAttendance derives day and hour counts from the snapshot set.
// Monthly contracts count every working day of the period (paid holidays in,
// unpaid holidays and weekends out); daily and hourly contracts only count
// days actually attended.
func (e *Engine) aggregateAttendance(in Input) Result {
	res := Result{
		WorkedHours:   decimal.Zero,
		OvertimeHours: decimal.Zero,
	}

	for _, day := range in.Days {
		switch day.Status {
		case payroll.DayAttended:
			res.AttendedDays++
			if day.LateMinutes > 0 {
				res.LateDays++
			}
		case payroll.DayPaidHoliday:
			// Paid non-working day: counted as attended for pay purposes.
			res.AttendedDays++
		case payroll.DayAbsent:
			res.AbsentDays++
		case payroll.DayExcused:
			res.ExcusedDays++
		case payroll.DayLeave:
			res.LeaveDays++
		case payroll.DayUnpaidHoliday, payroll.DayWeekend:
			// Excluded from both working-day and attendance counts.
			continue
		}

		res.WorkedHours = res.WorkedHours.Add(day.WorkedHours)
		res.OvertimeHours = res.OvertimeHours.Add(day.OvertimeHours)

		if in.Compensation.ContractType == payroll.ContractMonthly {
			res.WorkingDays++
		}
	}

	if in.Compensation.ContractType != payroll.ContractMonthly {
		res.WorkingDays = res.AttendedDays
	}

	res.WorkedHours = money.Round2(res.WorkedHours)
	res.OvertimeHours = money.Round2(res.OvertimeHours)
	return res
}

func lateOccurrences(days []payroll.DaySnapshot) []LateOccurrence {
	var occ []LateOccurrence
	for _, d := range days {
		if d.Status == payroll.DayAttended && d.LateMinutes > 0 {
			occ = append(occ, LateOccurrence{Date: d.Date, Minutes: d.LateMinutes})
		}
	}
	return occ
}

// effectiveHourlyRate derives the hourly figure used for overtime valuation.
func (e *Engine) effectiveHourlyRate(comp payroll.Compensation) (decimal.Decimal, error) {
	switch comp.ContractType {
	case payroll.ContractHourly:
		if comp.HourlyRate.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: hourly rate", payroll.ErrMissingRate)
		}
		return comp.HourlyRate, nil
	case payroll.ContractMonthly:
		if comp.MonthlyBaseSalary.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: monthly base salary", payroll.ErrMissingRate)
		}
		return money.Div2(comp.MonthlyBaseSalary, decimal.NewFromInt(monthlyHours)), nil
	case payroll.ContractDaily:
		if comp.DailyRate.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: daily rate", payroll.ErrMissingRate)
		}
		return money.Div2(comp.DailyRate, decimal.NewFromInt(dailyHours)), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", payroll.ErrUnknownContractType, comp.ContractType)
}

func (e *Engine) overtimePay(comp payroll.Compensation, overtimeHours decimal.Decimal) (decimal.Decimal, error) {
	if overtimeHours.IsZero() {
		return decimal.Zero, nil
	}
	rate, err := e.effectiveHourlyRate(comp)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Round2(overtimeHours.Mul(overtimeMultiplier).Mul(rate)), nil
}

func (e *Engine) grossPay(comp payroll.Compensation, res Result, overtimePay decimal.Decimal) (decimal.Decimal, error) {
	switch comp.ContractType {
	case payroll.ContractMonthly:
		if comp.MonthlyBaseSalary.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: monthly base salary", payroll.ErrMissingRate)
		}
		return money.Round2(comp.MonthlyBaseSalary.Add(overtimePay)), nil
	case payroll.ContractDaily:
		if comp.DailyRate.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: daily rate", payroll.ErrMissingRate)
		}
		base := money.Mul2(comp.DailyRate, decimal.NewFromInt(int64(res.AttendedDays)))
		return money.Round2(base.Add(overtimePay)), nil
	case payroll.ContractHourly:
		if comp.HourlyRate.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: hourly rate", payroll.ErrMissingRate)
		}
		base := money.Mul2(comp.HourlyRate, res.WorkedHours)
		return money.Round2(base.Add(overtimePay)), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", payroll.ErrUnknownContractType, comp.ContractType)
}

// deductions fills every deduction bucket and the itemized lines. Monthly
// contracts get the full set; daily and hourly pay already reflects
// attendance, so only loan and other apply there.
func (e *Engine) deductions(comp payroll.Compensation, in Input, res *Result) error {
	zero := decimal.Zero
	res.AbsenceDeduction = zero
	res.LateDeduction = zero
	res.LeaveDeduction = zero

	if comp.ContractType == payroll.ContractMonthly {
		res.AbsenceDeduction = money.Mul2(comp.AbsentRate, decimal.NewFromInt(int64(res.AbsentDays)))
		res.LateDeduction = money.Mul2(comp.LateRate, decimal.NewFromInt(int64(res.ChargedLateCount)))
		res.LeaveDeduction = money.Mul2(comp.LeaveRate, decimal.NewFromInt(int64(in.ExcessLeaveDays)))

		if res.AbsenceDeduction.IsPositive() {
			res.Lines = append(res.Lines, payroll.DeductionLine{
				Category: payroll.CategoryAbsence,
				Label:    fmt.Sprintf("absence (%d days)", res.AbsentDays),
				Amount:   res.AbsenceDeduction,
			})
		}
		if res.LateDeduction.IsPositive() {
			res.Lines = append(res.Lines, payroll.DeductionLine{
				Category: payroll.CategoryLate,
				Label:    fmt.Sprintf("late arrivals (%d charged)", res.ChargedLateCount),
				Amount:   res.LateDeduction,
			})
		}
		if res.LeaveDeduction.IsPositive() {
			res.Lines = append(res.Lines, payroll.DeductionLine{
				Category: payroll.CategoryLeave,
				Label:    fmt.Sprintf("excess leave (%d days)", in.ExcessLeaveDays),
				Amount:   res.LeaveDeduction,
			})
		}
	}

	res.LoanDeduction = zero
	for _, inst := range in.Installments {
		amount := money.Round2(inst.Amount)
		if !amount.IsPositive() {
			continue
		}
		res.LoanDeduction = res.LoanDeduction.Add(amount)
		loanID := inst.LoanID
		res.Lines = append(res.Lines, payroll.DeductionLine{
			Category:    payroll.CategoryLoan,
			Label:       "loan installment",
			Amount:      amount,
			ReferenceID: &loanID,
		})
	}
	res.LoanDeduction = money.Round2(res.LoanDeduction)

	res.OtherDeduction = zero
	for _, rec := range in.Recurring {
		amount := money.Round2(rec.Amount)
		if !amount.IsPositive() {
			continue
		}
		res.OtherDeduction = res.OtherDeduction.Add(amount)
		refID := rec.ConfiguredID
		category := payroll.DeductionCategory(rec.Category)
		if category.Bucket() != payroll.CategoryOther {
			category = payroll.CategoryOther
		}
		res.Lines = append(res.Lines, payroll.DeductionLine{
			Category:    category,
			Label:       rec.Label,
			Amount:      amount,
			ReferenceID: &refID,
		})
	}
	for _, line := range in.ManualLines {
		res.OtherDeduction = res.OtherDeduction.Add(money.Round2(line.Amount))
	}
	res.OtherDeduction = money.Round2(res.OtherDeduction)

	res.TotalDeductions = money.Round2(
		res.AbsenceDeduction.
			Add(res.LateDeduction).
			Add(res.LeaveDeduction).
			Add(res.LoanDeduction).
			Add(res.OtherDeduction),
	)
	return nil
}

func (e *Engine) dataQualityChecks(in Input, res *Result) {
	if res.OvertimeHours.GreaterThan(decimal.NewFromInt(excessiveOvertimeHours)) {
		res.Issues = append(res.Issues, cycle.Issue{
			EmployeeID: in.EmployeeID,
			Severity:   cycle.SeverityWarning,
			Code:       "excessive_overtime",
			Message:    fmt.Sprintf("%s overtime hours in one cycle", res.OvertimeHours),
		})
	}
	if res.AbsentDays > excessiveAbsentDays {
		res.Issues = append(res.Issues, cycle.Issue{
			EmployeeID: in.EmployeeID,
			Severity:   cycle.SeverityWarning,
			Code:       "excessive_absence",
			Message:    fmt.Sprintf("%d unexcused absent days in one cycle", res.AbsentDays),
		})
	}
}
