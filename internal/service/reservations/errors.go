package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено или недоступно пользователю
	ErrReservationNotFound = errors.New("reservations.service: reservation not found")

	// ErrUnknownBranch возвращается, когда филиал не входит в каталог
	ErrUnknownBranch = errors.New("reservations.service: unknown branch")

	// ErrAccessDenied возвращается, когда пользователь не является менеджером филиала
	ErrAccessDenied = errors.New("reservations.service: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reservations.service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations.service: internal error")
)
