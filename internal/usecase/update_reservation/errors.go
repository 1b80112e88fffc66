package update_reservation

import "errors"

// Отказы политики допуска возвращаются как *availability.RejectionError
var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("update_reservation: invalid input data")

	// ErrUnknownBranch возвращается, когда филиал не входит в каталог
	ErrUnknownBranch = errors.New("update_reservation: unknown branch")

	// ErrUnknownTimeSlot возвращается, когда время не входит в сетку слотов
	ErrUnknownTimeSlot = errors.New("update_reservation: unknown time slot")

	// ErrReservationNotFound возвращается, когда бронирование не найдено, чужое или отменено
	ErrReservationNotFound = errors.New("update_reservation: reservation not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_reservation: internal error")
)
