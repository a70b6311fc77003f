package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status of one raw attendance record as delivered by the source system.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusExcused Status = "excused"
	StatusLeave   Status = "leave"
)

// Record - one employee-day fact from the attendance subsystem.
type Record struct {
	EmployeeID    string
	Date          time.Time
	Status        Status
	CheckIn       *time.Time
	CheckOut      *time.Time
	WorkedHours   decimal.Decimal
	ExpectedHours decimal.Decimal
	OvertimeHours decimal.Decimal
	LateMinutes   int
	Notes         *string
}
