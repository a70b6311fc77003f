package employee

import (
	"time"

	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// JobConfig - current (mutable) compensation configuration of an employee.
// Rate fields are pointers: a missing rate stays missing and must never be
// read as zero.
type JobConfig struct {
	ContractType      payroll.ContractType
	MonthlyBaseSalary *decimal.Decimal
	DailyRate         *decimal.Decimal
	HourlyRate        *decimal.Decimal

	AbsentRate *decimal.Decimal
	LateRate   *decimal.Decimal
	LeaveRate  *decimal.Decimal

	GraceMinutes          int
	QuarterlyLateForgiven int
}

// Freeze validates the configuration and produces the immutable compensation
// copy stored on an employee payroll. Missing required fields for the
// contract type are a misconfiguration, not a zero.
func (j JobConfig) Freeze() (payroll.Compensation, error) {
	if !j.ContractType.Valid() {
		return payroll.Compensation{}, payroll.ErrEmployeeMisconfigured
	}

	comp := payroll.Compensation{
		ContractType:          j.ContractType,
		GraceMinutes:          j.GraceMinutes,
		QuarterlyLateForgiven: j.QuarterlyLateForgiven,
	}

	switch j.ContractType {
	case payroll.ContractMonthly:
		if j.MonthlyBaseSalary == nil {
			return payroll.Compensation{}, payroll.ErrEmployeeMisconfigured
		}
		comp.MonthlyBaseSalary = *j.MonthlyBaseSalary
		// Deduction rates only matter for monthly contracts.
		if j.AbsentRate == nil || j.LateRate == nil || j.LeaveRate == nil {
			return payroll.Compensation{}, payroll.ErrEmployeeMisconfigured
		}
		comp.AbsentRate = *j.AbsentRate
		comp.LateRate = *j.LateRate
		comp.LeaveRate = *j.LeaveRate
	case payroll.ContractDaily:
		if j.DailyRate == nil {
			return payroll.Compensation{}, payroll.ErrEmployeeMisconfigured
		}
		comp.DailyRate = *j.DailyRate
	case payroll.ContractHourly:
		if j.HourlyRate == nil {
			return payroll.Compensation{}, payroll.ErrEmployeeMisconfigured
		}
		comp.HourlyRate = *j.HourlyRate
	}

	return comp, nil
}

// Employee as seen by the payroll core: identity plus job configuration.
type Employee struct {
	ID        string
	Name      string
	Code      *string
	Active    bool
	JobConfig JobConfig
	HireDate  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
