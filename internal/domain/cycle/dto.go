package cycle

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateCycleRequest struct {
	PeriodStart   string  `json:"period_start"` // 2006-01-02
	PeriodEnd     string  `json:"period_end"`
	AllowOverlap  bool    `json:"allow_overlap"`
	OverlapReason *string `json:"overlap_reason,omitempty"`
}

func (r CreateCycleRequest) Parse() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", r.PeriodStart)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	end, err = time.Parse("2006-01-02", r.PeriodEnd)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	if r.AllowOverlap && (r.OverlapReason == nil || *r.OverlapReason == "") {
		return time.Time{}, time.Time{}, ErrOverrideNeedsReason
	}
	return start, end, nil
}

type UpsertHolidayRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsPaid    bool   `json:"is_paid"`
	Confirmed bool   `json:"confirmed"`
}

func (r UpsertHolidayRequest) Parse() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	end, err = time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	return start, end, nil
}

type CycleResponse struct {
	ID              string          `json:"id"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	Phase           string          `json:"phase"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	EmployeeCount   int             `json:"employee_count"`
	OverlapReason   *string         `json:"overlap_override_reason,omitempty"`
	LockedAt        *string         `json:"locked_at,omitempty"`
	LockedBy        *string         `json:"locked_by,omitempty"`
	PaidAt          *string         `json:"paid_at,omitempty"`
	PaidBy          *string         `json:"paid_by,omitempty"`
}

type HolidayResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsPaid    bool   `json:"is_paid"`
	Confirmed bool   `json:"confirmed"`
}

// IssueSeverity for the processing summary of a phase operation
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// Issue - a per-employee problem recorded during a phase operation.
// Warnings (data quality) do not stop processing; errors mean the
// employee was skipped.
type Issue struct {
	EmployeeID string        `json:"employee_id"`
	Severity   IssueSeverity `json:"severity"`
	Code       string        `json:"code"`
	Message    string        `json:"message"`
}

// ProcessingSummary is returned by phase operations (rebuild, recalculate).
type ProcessingSummary struct {
	CycleID   string  `json:"cycle_id"`
	Phase     string  `json:"phase"`
	Processed int     `json:"processed"`
	Skipped   int     `json:"skipped"`
	Issues    []Issue `json:"issues,omitempty"`
}
