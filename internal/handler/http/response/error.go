package response

import (
	"errors"
	"net/http"

	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
	"github.com/paycore-hr/payroll-engine/internal/domain/payroll"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	switch {
	// Validation
	case errors.Is(err, cycle.ErrInvalidPeriod):
		BadRequest(w, "Invalid period: dates must be YYYY-MM-DD with start on or before end", nil)
	case errors.Is(err, cycle.ErrOverrideNeedsReason):
		BadRequest(w, "Overlap override requires a reason", nil)
	case errors.Is(err, cycle.ErrHolidayOutsidePeriod):
		BadRequest(w, "Holiday dates fall outside the cycle period", nil)
	case errors.Is(err, payroll.ErrInvalidDeductionLine):
		BadRequest(w, "Manual deduction needs a label, a positive amount and a valid category", nil)

	// State conflicts
	case errors.Is(err, cycle.ErrPeriodOverlap):
		Conflict(w, err.Error())
	case errors.Is(err, cycle.ErrHolidayDateConflict):
		Conflict(w, err.Error())
	case errors.Is(err, cycle.ErrAlreadyInStatus):
		Conflict(w, err.Error())
	case errors.Is(err, cycle.ErrIllegalTransition):
		Conflict(w, err.Error())
	case errors.Is(err, cycle.ErrCycleLocked):
		Conflict(w, "Cycle is locked; no further changes are accepted")
	case errors.Is(err, cycle.ErrVersionConflict):
		Conflict(w, "Cycle was modified concurrently; reload and retry")

	// Not found
	case errors.Is(err, cycle.ErrCycleNotFound):
		NotFound(w, "Payroll cycle not found")
	case errors.Is(err, cycle.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, payroll.ErrEmployeePayrollNotFound):
		NotFound(w, "Employee payroll not found")

	// Processing failures
	case errors.Is(err, cycle.ErrNoEmployeeProcessed):
		UnprocessableEntity(w, "No employee could be processed; nothing was changed")
	case errors.Is(err, payroll.ErrEmployeeMisconfigured),
		errors.Is(err, payroll.ErrMissingRate),
		errors.Is(err, payroll.ErrUnknownContractType):
		UnprocessableEntity(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
