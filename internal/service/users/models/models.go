package models

import "time"

// CooldownStatusResponse состояние блокировки после частых отмен
type CooldownStatusResponse struct {
	Blocked              bool       `json:"blocked"`
	CooldownUntil        *time.Time `json:"cooldownUntil,omitempty"`
	MinutesRemaining     int        `json:"minutesRemaining"`
	ConsecutiveDeletions int        `json:"consecutiveDeletions"`
	Message              string     `json:"message,omitempty"`
}
