package employee

import "context"

// Directory supplies the employees a payroll cycle covers.
type Directory interface {
	GetActiveEmployees(ctx context.Context) ([]Employee, error)
}
