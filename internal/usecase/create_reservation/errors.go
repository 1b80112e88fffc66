package create_reservation

import "errors"

// Отказы политик возвращаются типизированными ошибками:
// *availability.RejectionError (размер группы, окно дат, вместимость слота)
// и *cooldown.BlockedError (блокировка после частых отмен).
var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrUnknownBranch возвращается, когда филиал не входит в каталог
	ErrUnknownBranch = errors.New("create_reservation: unknown branch")

	// ErrUnknownTimeSlot возвращается, когда время не входит в сетку слотов
	ErrUnknownTimeSlot = errors.New("create_reservation: unknown time slot")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("create_reservation: user not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
