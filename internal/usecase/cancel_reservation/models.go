package cancel_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модель запроса на отмену бронирования
type Request struct {
	UserID        int64 // ID пользователя из X-User-ID
	ReservationID int64 // ID отменяемого бронирования
}

// Response модель ответа: итоговый статус бронирования и состояние штрафов
type Response struct {
	ReservationID        int64
	Status               domain.ReservationStatus
	ConsecutiveDeletions int
	CooldownUntil        *time.Time // Заполнено, если бронирование сейчас заблокировано
	MinutesRemaining     int
}
