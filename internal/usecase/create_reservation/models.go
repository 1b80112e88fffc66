package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID   int64     // ID пользователя из X-User-ID
	Branch   string    // Название филиала
	Date     time.Time // Дата бронирования (без времени)
	TimeSlot string    // Время слота (например, "19:00")
	Adults   int       // Количество взрослых (>= 1)
	Children int       // Количество детей (>= 0)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID        int64
	UserID    int64
	Branch    domain.Branch
	Date      time.Time
	TimeSlot  types.TimeString
	Adults    int
	Children  int
	Status    domain.ReservationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func toResponse(r *domain.Reservation) *Response {
	return &Response{
		ID:        r.ID,
		UserID:    r.UserID,
		Branch:    r.Branch,
		Date:      r.Date,
		TimeSlot:  r.TimeSlot,
		Adults:    r.Adults,
		Children:  r.Children,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
