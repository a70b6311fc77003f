package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractType enum. Closed set; every calculation dispatches on it and an
// unknown value is an error, never a silent default.
type ContractType string

const (
	ContractMonthly ContractType = "monthly"
	ContractDaily   ContractType = "daily"
	ContractHourly  ContractType = "hourly"
)

func (c ContractType) Valid() bool {
	switch c {
	case ContractMonthly, ContractDaily, ContractHourly:
		return true
	}
	return false
}

// Compensation - the employee's pay configuration frozen into the payroll row
// when it is first created for a cycle. Later job-config edits do not leak
// into an existing cycle.
type Compensation struct {
	ContractType      ContractType
	MonthlyBaseSalary decimal.Decimal
	DailyRate         decimal.Decimal
	HourlyRate        decimal.Decimal

	AbsentRate decimal.Decimal // per unexcused absent day
	LateRate   decimal.Decimal // per charged late occurrence
	LeaveRate  decimal.Decimal // per excess leave day

	GraceMinutes          int // tier 1: late arrivals at or under this are always forgiven
	QuarterlyLateForgiven int // tier 2: forgivable occurrences per calendar quarter
}

// DayStatus classifies one day snapshot.
type DayStatus string

const (
	DayAttended      DayStatus = "attended"
	DayAbsent        DayStatus = "absent"
	DayExcused       DayStatus = "excused"
	DayLeave         DayStatus = "leave"
	DayPaidHoliday   DayStatus = "paid_holiday"
	DayUnpaidHoliday DayStatus = "unpaid_holiday"
	DayWeekend       DayStatus = "weekend"
)

// DaySnapshot - immutable copy of one day's attendance facts for one employee
// payroll. Exactly one row per date in the cycle period; a re-import replaces
// the whole set.
type DaySnapshot struct {
	ID                string
	EmployeePayrollID string
	Date              time.Time
	Status            DayStatus
	CheckIn           *time.Time
	CheckOut          *time.Time
	WorkedHours       decimal.Decimal
	ExpectedHours     decimal.Decimal
	OvertimeHours     decimal.Decimal
	LateMinutes       int
	IsHoliday         bool
	IsWeekend         bool
	IsLeave           bool
	Notes             *string
}

// DeductionCategory enum
type DeductionCategory string

const (
	CategoryAbsence   DeductionCategory = "absence"
	CategoryLate      DeductionCategory = "late"
	CategoryLeave     DeductionCategory = "leave"
	CategoryLoan      DeductionCategory = "loan"
	CategoryStatutory DeductionCategory = "statutory"
	CategoryBenefit   DeductionCategory = "benefit"
	CategoryVoluntary DeductionCategory = "voluntary"
	CategoryOther     DeductionCategory = "other"
)

// Bucket maps a fine-grained category onto the payroll subtotal it feeds.
// statutory/benefit/voluntary all land in the "other" subtotal.
func (c DeductionCategory) Bucket() DeductionCategory {
	switch c {
	case CategoryAbsence, CategoryLate, CategoryLeave, CategoryLoan:
		return c
	default:
		return CategoryOther
	}
}

// DeductionLine - one itemized deduction on an employee payroll.
type DeductionLine struct {
	ID                string
	EmployeePayrollID string
	Category          DeductionCategory
	Label             string
	Amount            decimal.Decimal
	// External reference (loan id, configured-deduction id) when the line
	// originated in another subsystem.
	ReferenceID *string
	// Manual lines are attached by an operator and survive recomputation.
	Manual    bool
	CreatedAt time.Time
}

// EmployeePayroll - one employee's frozen result for one cycle.
type EmployeePayroll struct {
	ID           string
	CycleID      string
	EmployeeID   string
	EmployeeName string
	Compensation Compensation

	// Attendance accumulators
	WorkingDays   int
	AttendedDays  int
	AbsentDays    int
	LateDays      int
	ExcusedDays   int
	LeaveDays     int
	WorkedHours   decimal.Decimal
	OvertimeHours decimal.Decimal

	// Late forgiveness accounting
	GraceForgivenCount int
	QuotaForgivenCount int
	ChargedLateCount   int

	// Computed amounts
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

	CalculatedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
