// Package cooldown считает подряд идущие отмены и блокирует бронирование после частых отмен.
//
// Пользователь переходит из Clear в Penalized, когда Threshold-я отмена случается не позже
// ResetWindow после предыдущей. Успешное бронирование возвращает его в Clear. Истекшая
// блокировка считается снятой лениво, сохраненная отметка времени не стирается.
package cooldown

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ErrCooldownActive бронирование заблокировано из-за недавних отмен
var ErrCooldownActive = errors.New("cooldown: booking blocked by recent cancellations")

// Status результат CheckBlocked
type Status struct {
	Blocked          bool
	Until            time.Time
	MinutesRemaining int
}

// Message текст для заблокированного пользователя
func (s Status) Message() string {
	if !s.Blocked {
		return ""
	}
	return blockedMessage(s.MinutesRemaining)
}

// Err превращает блокировку в *BlockedError, без блокировки возвращает nil
func (s Status) Err() error {
	if !s.Blocked {
		return nil
	}
	return &BlockedError{Until: s.Until, MinutesRemaining: s.MinutesRemaining}
}

// BlockedError содержит время окончания блокировки, errors.Is сопоставляет его с ErrCooldownActive
type BlockedError struct {
	Until            time.Time
	MinutesRemaining int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%v: %d minute(s) remaining", ErrCooldownActive, e.MinutesRemaining)
}

func (e *BlockedError) Unwrap() error {
	return ErrCooldownActive
}

// Message текст для заблокированного пользователя
func (e *BlockedError) Message() string {
	return blockedMessage(e.MinutesRemaining)
}

func blockedMessage(minutes int) string {
	return fmt.Sprintf("You cannot make a new reservation yet. Please wait %d more minute(s) due to recent cancellations.", minutes)
}

// Tracker применяет правила штрафов к PenaltyState
type Tracker struct {
	rules domain.PenaltyRules
}

// NewTracker создает трекер
func NewTracker(rules domain.PenaltyRules) *Tracker {
	return &Tracker{rules: rules}
}

// Rules возвращает правила трекера
func (t *Tracker) Rules() domain.PenaltyRules {
	return t.rules
}

// CheckBlocked сообщает, может ли пользователь бронировать в момент now.
// Минуты округляются вверх и пересчитываются при каждом вызове.
func (t *Tracker) CheckBlocked(state domain.PenaltyState, now time.Time) Status {
	if state.CooldownUntil == nil || !now.Before(*state.CooldownUntil) {
		return Status{}
	}

	remaining := state.CooldownUntil.Sub(now)
	return Status{
		Blocked:          true,
		Until:            *state.CooldownUntil,
		MinutesRemaining: int((remaining + time.Minute - 1) / time.Minute),
	}
}

// OnSuccessfulBooking сбрасывает счетчик и блокировку, LastDeletionTime сохраняется
func (t *Tracker) OnSuccessfulBooking(state domain.PenaltyState) domain.PenaltyState {
	return domain.PenaltyState{
		ConsecutiveDeletions: 0,
		LastDeletionTime:     state.LastDeletionTime,
		CooldownUntil:        nil,
	}
}

// OnCancellation учитывает отмену в момент now.
// Перерыв дольше ResetWindow начинает цепочку заново с 1. При достижении Threshold
// CooldownUntil = now + CooldownDuration, ниже порога текущая блокировка не меняется.
func (t *Tracker) OnCancellation(state domain.PenaltyState, now time.Time) domain.PenaltyState {
	count := state.ConsecutiveDeletions + 1
	if state.LastDeletionTime == nil || now.Sub(*state.LastDeletionTime) > t.rules.ResetWindow {
		count = 1
	}

	lastDeletion := now
	next := domain.PenaltyState{
		ConsecutiveDeletions: count,
		LastDeletionTime:     &lastDeletion,
		CooldownUntil:        state.CooldownUntil,
	}

	if count >= t.rules.Threshold {
		until := now.Add(t.rules.CooldownDuration)
		next.CooldownUntil = &until
	}

	return next
}

// Penalized сообщает, включил или продлил ли переход prev -> next блокировку
func Penalized(prev, next domain.PenaltyState) bool {
	if next.CooldownUntil == nil {
		return false
	}
	return prev.CooldownUntil == nil || next.CooldownUntil.After(*prev.CooldownUntil)
}
