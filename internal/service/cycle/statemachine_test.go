package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paycore-hr/payroll-engine/internal/domain/cycle"
)

func TestPhaseOrdering(t *testing.T) {
	next, ok := cycle.PhaseHolidaysReview.Next()
	require.True(t, ok)
	assert.Equal(t, cycle.PhaseAttendanceImport, next)

	_, ok = cycle.PhasePaid.Next()
	assert.False(t, ok)

	assert.False(t, cycle.PhaseDeductionReview.Locked())
	assert.True(t, cycle.PhaseConfirmedLocked.Locked())
	assert.True(t, cycle.PhasePaid.Locked())
}

func TestTransitionTo_HappyPath(t *testing.T) {
	m := NewStateMachine()
	c := &cycle.PayrollCycle{Phase: cycle.PhaseHolidaysReview}
	now := time.Date(2025, 7, 31, 12, 0, 0, 0, time.UTC)

	order := []cycle.Phase{
		cycle.PhaseAttendanceImport,
		cycle.PhaseLeaveReview,
		cycle.PhaseOvertimeReview,
		cycle.PhaseBonusReview,
		cycle.PhaseDeductionReview,
		cycle.PhaseConfirmedLocked,
		cycle.PhasePaid,
	}
	for _, target := range order {
		require.NoError(t, m.TransitionTo(c, target, "operator-1", now))
		assert.Equal(t, target, c.Phase)
	}

	require.NotNil(t, c.LockedAt)
	require.NotNil(t, c.LockedBy)
	assert.Equal(t, "operator-1", *c.LockedBy)
	require.NotNil(t, c.PaidAt)
	assert.Equal(t, "operator-1", *c.PaidBy)
}

func TestTransitionTo_SamePhase(t *testing.T) {
	m := NewStateMachine()
	c := &cycle.PayrollCycle{Phase: cycle.PhaseLeaveReview}

	err := m.TransitionTo(c, cycle.PhaseLeaveReview, "op", time.Now())
	assert.ErrorIs(t, err, cycle.ErrAlreadyInStatus)
	assert.Equal(t, cycle.PhaseLeaveReview, c.Phase)
}

func TestTransitionTo_SkipIsIllegal(t *testing.T) {
	m := NewStateMachine()
	c := &cycle.PayrollCycle{Phase: cycle.PhaseHolidaysReview}

	err := m.TransitionTo(c, cycle.PhaseBonusReview, "op", time.Now())
	assert.ErrorIs(t, err, cycle.ErrIllegalTransition)
	// The error names the only legal next phase.
	assert.Contains(t, err.Error(), string(cycle.PhaseAttendanceImport))
	assert.Equal(t, cycle.PhaseHolidaysReview, c.Phase)
}

func TestTransitionTo_BackwardIsIllegal(t *testing.T) {
	m := NewStateMachine()
	c := &cycle.PayrollCycle{Phase: cycle.PhaseBonusReview}

	err := m.TransitionTo(c, cycle.PhaseAttendanceImport, "op", time.Now())
	assert.ErrorIs(t, err, cycle.ErrIllegalTransition)
}

func TestTransitionTo_TerminalPhase(t *testing.T) {
	m := NewStateMachine()
	c := &cycle.PayrollCycle{Phase: cycle.PhasePaid}

	err := m.TransitionTo(c, cycle.PhaseHolidaysReview, "op", time.Now())
	assert.ErrorIs(t, err, cycle.ErrIllegalTransition)
}

func TestValidateNotLocked(t *testing.T) {
	m := NewStateMachine()

	assert.NoError(t, m.ValidateNotLocked(cycle.PayrollCycle{Phase: cycle.PhaseDeductionReview}))
	assert.ErrorIs(t, m.ValidateNotLocked(cycle.PayrollCycle{Phase: cycle.PhaseConfirmedLocked}), cycle.ErrCycleLocked)
	assert.ErrorIs(t, m.ValidateNotLocked(cycle.PayrollCycle{Phase: cycle.PhasePaid}), cycle.ErrCycleLocked)
}
