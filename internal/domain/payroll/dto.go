package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmployeePayrollResponse struct {
	ID           string `json:"id"`
	CycleID      string `json:"cycle_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	ContractType string `json:"contract_type"`

	WorkingDays   int             `json:"working_days"`
	AttendedDays  int             `json:"attended_days"`
	AbsentDays    int             `json:"absent_days"`
	LateDays      int             `json:"late_days"`
	LeaveDays     int             `json:"leave_days"`
	WorkedHours   decimal.Decimal `json:"worked_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`

	GraceForgivenCount int `json:"grace_forgiven_count"`
	QuotaForgivenCount int `json:"quota_forgiven_count"`
	ChargedLateCount   int `json:"charged_late_count"`

	GrossPay         decimal.Decimal `json:"gross_pay"`
	OvertimePay      decimal.Decimal `json:"overtime_pay"`
	BonusAmount      decimal.Decimal `json:"bonus_amount"`
	AbsenceDeduction decimal.Decimal `json:"absence_deduction"`
	LateDeduction    decimal.Decimal `json:"late_deduction"`
	LeaveDeduction   decimal.Decimal `json:"leave_deduction"`
	LoanDeduction    decimal.Decimal `json:"loan_deduction"`
	OtherDeduction   decimal.Decimal `json:"other_deduction"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetPay           decimal.Decimal `json:"net_pay"`

	CalculatedAt *string `json:"calculated_at,omitempty"`
}

type DaySnapshotResponse struct {
	Date          string          `json:"date"`
	Status        string          `json:"status"`
	CheckIn       *string         `json:"check_in,omitempty"`
	CheckOut      *string         `json:"check_out,omitempty"`
	WorkedHours   decimal.Decimal `json:"worked_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	LateMinutes   int             `json:"late_minutes"`
	IsHoliday     bool            `json:"is_holiday"`
	IsWeekend     bool            `json:"is_weekend"`
	IsLeave       bool            `json:"is_leave"`
	Notes         *string         `json:"notes,omitempty"`
}

type DeductionLineResponse struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID *string         `json:"reference_id,omitempty"`
	Manual      bool            `json:"manual"`
}

type EmployeePayrollDetailResponse struct {
	EmployeePayrollResponse
	Days  []DaySnapshotResponse   `json:"days"`
	Lines []DeductionLineResponse `json:"deduction_lines"`
}

type AddManualDeductionRequest struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
}

func (r AddManualDeductionRequest) Validate() error {
	if r.Label == "" || !r.Amount.IsPositive() {
		return ErrInvalidDeductionLine
	}
	switch DeductionCategory(r.Category) {
	case CategoryStatutory, CategoryBenefit, CategoryVoluntary, CategoryOther:
		return nil
	}
	return ErrInvalidDeductionLine
}

func MapToResponse(p EmployeePayroll) EmployeePayrollResponse {
	var calculatedAt *string
	if p.CalculatedAt != nil {
		s := p.CalculatedAt.Format(time.RFC3339)
		calculatedAt = &s
	}

	return EmployeePayrollResponse{
		ID:                 p.ID,
		CycleID:            p.CycleID,
		EmployeeID:         p.EmployeeID,
		EmployeeName:       p.EmployeeName,
		ContractType:       string(p.Compensation.ContractType),
		WorkingDays:        p.WorkingDays,
		AttendedDays:       p.AttendedDays,
		AbsentDays:         p.AbsentDays,
		LateDays:           p.LateDays,
		LeaveDays:          p.LeaveDays,
		WorkedHours:        p.WorkedHours,
		OvertimeHours:      p.OvertimeHours,
		GraceForgivenCount: p.GraceForgivenCount,
		QuotaForgivenCount: p.QuotaForgivenCount,
		ChargedLateCount:   p.ChargedLateCount,
		GrossPay:           p.GrossPay,
		OvertimePay:        p.OvertimePay,
		BonusAmount:        p.BonusAmount,
		AbsenceDeduction:   p.AbsenceDeduction,
		LateDeduction:      p.LateDeduction,
		LeaveDeduction:     p.LeaveDeduction,
		LoanDeduction:      p.LoanDeduction,
		OtherDeduction:     p.OtherDeduction,
		TotalDeductions:    p.TotalDeductions,
		NetPay:             p.NetPay,
		CalculatedAt:       calculatedAt,
	}
}

func MapToDetailResponse(p EmployeePayroll, days []DaySnapshot, lines []DeductionLine) EmployeePayrollDetailResponse {
	detail := EmployeePayrollDetailResponse{EmployeePayrollResponse: MapToResponse(p)}

	for _, d := range days {
		var checkIn, checkOut *string
		if d.CheckIn != nil {
			s := d.CheckIn.Format(time.RFC3339)
			checkIn = &s
		}
		if d.CheckOut != nil {
			s := d.CheckOut.Format(time.RFC3339)
			checkOut = &s
		}
		detail.Days = append(detail.Days, DaySnapshotResponse{
			Date:          d.Date.Format("2006-01-02"),
			Status:        string(d.Status),
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			WorkedHours:   d.WorkedHours,
			OvertimeHours: d.OvertimeHours,
			LateMinutes:   d.LateMinutes,
			IsHoliday:     d.IsHoliday,
			IsWeekend:     d.IsWeekend,
			IsLeave:       d.IsLeave,
			Notes:         d.Notes,
		})
	}

	for _, l := range lines {
		detail.Lines = append(detail.Lines, DeductionLineResponse{
			ID:          l.ID,
			Category:    string(l.Category),
			Label:       l.Label,
			Amount:      l.Amount,
			ReferenceID: l.ReferenceID,
			Manual:      l.Manual,
		})
	}

	return detail
}
