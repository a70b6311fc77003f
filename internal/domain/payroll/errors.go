package payroll

import "errors"

var (
	ErrEmployeePayrollNotFound = errors.New("employee payroll not found")
	ErrEmployeeMisconfigured   = errors.New("employee compensation is not configured")
	ErrUnknownContractType     = errors.New("unknown contract type")
	ErrMissingRate             = errors.New("required pay rate is missing")
	ErrInvalidDeductionLine    = errors.New("invalid deduction line")
)
