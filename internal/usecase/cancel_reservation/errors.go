package cancel_reservation

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_reservation: invalid input data")

	// ErrReservationNotFound возвращается, когда бронирование не найдено, чужое или уже отменено
	ErrReservationNotFound = errors.New("cancel_reservation: reservation not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_reservation: internal error")
)
