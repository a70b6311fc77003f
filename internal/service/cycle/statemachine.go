package cycle

import (
	"fmt"
	"time"

	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
)

// StateMachine validates phase transitions for payroll cycles. It mutates the
// given aggregate in memory; persisting the change is the caller's job.
type StateMachine struct{}

func NewStateMachine() *StateMachine {
	return &StateMachine{}
}

// TransitionTo moves c to target. Only the immediate next phase is legal;
// same-phase requests and any skip fail without touching the cycle.
func (m *StateMachine) TransitionTo(c *cycle.PayrollCycle, target cycle.Phase, actor string, at time.Time) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown phase %q", cycle.ErrIllegalTransition, target)
	}
	if target == c.Phase {
		return fmt.Errorf("%w: %s", cycle.ErrAlreadyInStatus, c.Phase)
	}

	next, ok := c.Phase.Next()
	if !ok {
		return fmt.Errorf("%w: %s is terminal", cycle.ErrIllegalTransition, c.Phase)
	}
	if target != next {
		return fmt.Errorf("%w: from %s the only legal next phase is %s", cycle.ErrIllegalTransition, c.Phase, next)
	}

	c.Phase = target
	switch target {
	case cycle.PhaseConfirmedLocked:
		c.LockedAt = &at
		c.LockedBy = &actor
	case cycle.PhasePaid:
		c.PaidAt = &at
		c.PaidBy = &actor
	}
	return nil
}

// ValidateNotLocked guards every mutating operation on a cycle's holidays,
// snapshots and deductions.
func (m *StateMachine) ValidateNotLocked(c cycle.PayrollCycle) error {
	if c.Phase.Locked() {
		return fmt.Errorf("%w: phase %s", cycle.ErrCycleLocked, c.Phase)
	}
	return nil
}
