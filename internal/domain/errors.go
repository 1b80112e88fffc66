package domain

import "errors"

var (
	// ErrUnknownBranch возвращается, когда филиал не входит в настроенный список
	ErrUnknownBranch = errors.New("domain: unknown branch")

	// ErrUnknownTimeSlot возвращается, когда время не входит в сетку слотов
	ErrUnknownTimeSlot = errors.New("domain: unknown time slot")

	// ErrInvalidStatus возвращается при недопустимом статусе бронирования
	ErrInvalidStatus = errors.New("domain: invalid reservation status")

	// ErrInvalidSlotRange возвращается при некорректной настройке диапазона слотов
	ErrInvalidSlotRange = errors.New("domain: invalid slot range")

	// ErrInvalidWindow возвращается, когда окно бронирования задано некорректно
	ErrInvalidWindow = errors.New("domain: invalid booking window")
)
