package domain

import "time"

// User часть аккаунта клиента, относящаяся к бронированиям.
// Учетные данные хранит сервис авторизации.
type User struct {
	ID        int64
	Penalty   PenaltyState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PenaltyState состояние штрафов пользователя за частые отмены.
// Значение неизменяемое, переходы возвращают новое состояние.
type PenaltyState struct {
	ConsecutiveDeletions int
	LastDeletionTime     *time.Time
	CooldownUntil        *time.Time
}

// Equal сравнивает два состояния по значению
func (s PenaltyState) Equal(other PenaltyState) bool {
	return s.ConsecutiveDeletions == other.ConsecutiveDeletions &&
		timePtrEqual(s.LastDeletionTime, other.LastDeletionTime) &&
		timePtrEqual(s.CooldownUntil, other.CooldownUntil)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
