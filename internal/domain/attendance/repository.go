package attendance

import (
	"context"
	"time"
)

// Source supplies raw attendance facts for a period, ordered by date.
type Source interface {
	GetRecords(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error)
}
