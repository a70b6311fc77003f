package bonus

import "context"

// Provider reads approved bonuses for a month and marks them as applied to a
// cycle so another cycle cannot pay them a second time.
type Provider interface {
	GetApprovedBonuses(ctx context.Context, month, year int) ([]Bonus, error)
	MarkApplied(ctx context.Context, ids []string, cycleID string) error
}
