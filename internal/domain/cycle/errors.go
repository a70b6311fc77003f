package cycle

import "errors"

var (
	ErrCycleNotFound       = errors.New("payroll cycle not found")
	ErrInvalidPeriod       = errors.New("period start must not be after period end")
	ErrPeriodOverlap       = errors.New("period overlaps an existing payroll cycle")
	ErrOverrideNeedsReason = errors.New("overlap override requires a non-empty reason")

	// State errors
	ErrAlreadyInStatus   = errors.New("cycle is already in the requested phase")
	ErrIllegalTransition = errors.New("illegal phase transition")
	ErrCycleLocked       = errors.New("cycle is confirmed and locked, mutation rejected")

	// Holiday errors
	ErrHolidayNotFound      = errors.New("holiday period not found")
	ErrHolidayOutsidePeriod = errors.New("holiday dates fall outside the cycle period")
	ErrHolidayDateConflict  = errors.New("date already belongs to a confirmed holiday period")

	ErrVersionConflict     = errors.New("cycle was modified concurrently, retry")
	ErrNoEmployeeProcessed = errors.New("no employee could be processed")
)
