package cooldown

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

var base = time.Date(2025, time.November, 20, 18, 0, 0, 0, time.UTC)

func newTracker() *Tracker {
	return NewTracker(domain.DefaultPenaltyRules())
}

func TestOnCancellation_FirstCancellation(t *testing.T) {
	state := newTracker().OnCancellation(domain.PenaltyState{}, base)

	assert.Equal(t, 1, state.ConsecutiveDeletions)
	require.NotNil(t, state.LastDeletionTime)
	assert.True(t, state.LastDeletionTime.Equal(base))
	assert.Nil(t, state.CooldownUntil)
}

func TestOnCancellation_ThirdWithinWindowStartsCooldown(t *testing.T) {
	tracker := newTracker()

	state := domain.PenaltyState{}
	state = tracker.OnCancellation(state, base)
	state = tracker.OnCancellation(state, base.Add(4*time.Minute))
	assert.Nil(t, state.CooldownUntil)

	third := base.Add(8 * time.Minute)
	state = tracker.OnCancellation(state, third)

	assert.Equal(t, 3, state.ConsecutiveDeletions)
	require.NotNil(t, state.CooldownUntil)
	assert.True(t, state.CooldownUntil.Equal(third.Add(10*time.Minute)))

	// 4-я отмена через минуту продлевает блокировку от своего времени
	fourth := third.Add(time.Minute)
	state = tracker.OnCancellation(state, fourth)

	assert.Equal(t, 4, state.ConsecutiveDeletions)
	require.NotNil(t, state.CooldownUntil)
	assert.True(t, state.CooldownUntil.Equal(fourth.Add(10*time.Minute)))
}

func TestOnCancellation_ChainSpanningMoreThanTenMinutes(t *testing.T) {
	tracker := newTracker()

	// Каждая отмена укладывается в окно предыдущей, хотя вся цепочка длиннее 10 минут
	state := domain.PenaltyState{}
	state = tracker.OnCancellation(state, base)
	state = tracker.OnCancellation(state, base.Add(9*time.Minute))
	state = tracker.OnCancellation(state, base.Add(18*time.Minute))

	assert.Equal(t, 3, state.ConsecutiveDeletions)
	require.NotNil(t, state.CooldownUntil)
	assert.True(t, state.CooldownUntil.Equal(base.Add(28*time.Minute)))
}

func TestOnCancellation_GapResetsCounter(t *testing.T) {
	tracker := newTracker()
	last := base
	state := domain.PenaltyState{ConsecutiveDeletions: 7, LastDeletionTime: &last}

	state = tracker.OnCancellation(state, base.Add(11*time.Minute))

	assert.Equal(t, 1, state.ConsecutiveDeletions)
	assert.Nil(t, state.CooldownUntil)
}

func TestOnCancellation_ExactlyResetWindowStillConsecutive(t *testing.T) {
	tracker := newTracker()
	last := base
	state := domain.PenaltyState{ConsecutiveDeletions: 1, LastDeletionTime: &last}

	state = tracker.OnCancellation(state, base.Add(10*time.Minute))

	assert.Equal(t, 2, state.ConsecutiveDeletions)
}

func TestOnCancellation_KeepsExistingCooldownBelowThreshold(t *testing.T) {
	tracker := newTracker()
	last := base
	until := base.Add(5 * time.Minute)
	state := domain.PenaltyState{ConsecutiveDeletions: 3, LastDeletionTime: &last, CooldownUntil: &until}

	// Разрыв больше окна: счетчик сбрасывается, но блокировка не снимается
	next := tracker.OnCancellation(state, base.Add(20*time.Minute))

	assert.Equal(t, 1, next.ConsecutiveDeletions)
	require.NotNil(t, next.CooldownUntil)
	assert.True(t, next.CooldownUntil.Equal(until))
}

func TestOnCancellation_DoesNotMutateInput(t *testing.T) {
	tracker := newTracker()
	last := base
	state := domain.PenaltyState{ConsecutiveDeletions: 2, LastDeletionTime: &last}

	_ = tracker.OnCancellation(state, base.Add(time.Minute))

	assert.Equal(t, 2, state.ConsecutiveDeletions)
	assert.True(t, state.LastDeletionTime.Equal(base))
	assert.Nil(t, state.CooldownUntil)
}

func TestCheckBlocked(t *testing.T) {
	tracker := newTracker()
	until := base.Add(10 * time.Minute)
	state := domain.PenaltyState{ConsecutiveDeletions: 3, CooldownUntil: &until}

	tests := []struct {
		name    string
		now     time.Time
		blocked bool
		minutes int
	}{
		{name: "right after penalty", now: base, blocked: true, minutes: 10},
		{name: "rounds up partial minutes", now: base.Add(30 * time.Second), blocked: true, minutes: 10},
		{name: "one second before end", now: until.Add(-time.Second), blocked: true, minutes: 1},
		{name: "exactly at end", now: until, blocked: false},
		{name: "one second after end", now: until.Add(time.Second), blocked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tracker.CheckBlocked(state, tt.now)

			assert.Equal(t, tt.blocked, status.Blocked)
			assert.Equal(t, tt.minutes, status.MinutesRemaining)
			if tt.blocked {
				assert.True(t, status.Until.Equal(until))
				assert.GreaterOrEqual(t, status.MinutesRemaining, 1)
			}
		})
	}
}

func TestCheckBlocked_NoCooldown(t *testing.T) {
	status := newTracker().CheckBlocked(domain.PenaltyState{ConsecutiveDeletions: 2}, base)

	assert.False(t, status.Blocked)
	assert.NoError(t, status.Err())
	assert.Empty(t, status.Message())
}

func TestStatusErr(t *testing.T) {
	status := Status{Blocked: true, Until: base, MinutesRemaining: 4}

	err := status.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCooldownActive))

	var blocked *BlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, 4, blocked.MinutesRemaining)
	assert.Equal(t,
		"You cannot make a new reservation yet. Please wait 4 more minute(s) due to recent cancellations.",
		status.Message())
}

func TestOnSuccessfulBooking_ClearsPenalty(t *testing.T) {
	tracker := newTracker()

	state := domain.PenaltyState{}
	for i := 0; i < 3; i++ {
		state = tracker.OnCancellation(state, base.Add(time.Duration(i)*time.Minute))
	}
	require.NotNil(t, state.CooldownUntil)

	afterCooldown := state.CooldownUntil.Add(time.Minute)
	require.False(t, tracker.CheckBlocked(state, afterCooldown).Blocked)

	state = tracker.OnSuccessfulBooking(state)
	assert.Equal(t, 0, state.ConsecutiveDeletions)
	assert.Nil(t, state.CooldownUntil)

	// Следующая отмена в пределах окна от прошлой начинает счет с 1, а не 4
	last := *state.LastDeletionTime
	state = tracker.OnCancellation(state, last.Add(time.Minute))
	assert.Equal(t, 1, state.ConsecutiveDeletions)
	assert.Nil(t, state.CooldownUntil)
}

func TestPenalized(t *testing.T) {
	until := base.Add(10 * time.Minute)
	later := base.Add(15 * time.Minute)

	assert.False(t, Penalized(domain.PenaltyState{}, domain.PenaltyState{}))
	assert.True(t, Penalized(domain.PenaltyState{}, domain.PenaltyState{CooldownUntil: &until}))
	assert.True(t, Penalized(domain.PenaltyState{CooldownUntil: &until}, domain.PenaltyState{CooldownUntil: &later}))
	assert.False(t, Penalized(domain.PenaltyState{CooldownUntil: &until}, domain.PenaltyState{CooldownUntil: &until}))
}
