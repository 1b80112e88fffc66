package get_time_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модель запроса на получение слотов филиала
type Request struct {
	UserID int64     // ID пользователя (для логирования, не влияет на результат)
	Branch string    // Название филиала
	Date   time.Time // Дата (без времени)
}

// Response модель ответа со списком слотов
type Response struct {
	Branch   domain.Branch
	Date     time.Time
	InWindow bool // Дата входит в окно бронирования
	Slots    []domain.SlotAvailability
}
