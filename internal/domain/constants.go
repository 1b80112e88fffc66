package domain

import "time"

// Правила бронирования по умолчанию
const (
	DefaultMaxPartySize    = 12
	DefaultSlotCapacity    = 5
	DefaultSlotStepMinutes = 30
)

// Правила штрафов по умолчанию
const (
	DefaultPenaltyResetWindow = 10 * time.Minute
	DefaultCooldownDuration   = 10 * time.Minute
	DefaultPenaltyThreshold   = 3
)

// Филиалы по умолчанию
const (
	BranchHoManTin Branch = "Ho Man Tin Branch"
	BranchMongKok  Branch = "Mong Kok Branch"
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DateOnly отбрасывает время и возвращает полночь UTC того же календарного дня
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает дату в формате YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}
