package update_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на изменение бронирования
// Все поля, кроме идентификаторов, задают новое состояние целиком.
type Request struct {
	UserID        int64
	ReservationID int64
	Branch        string
	Date          time.Time
	TimeSlot      string
	Adults        int
	Children      int
}

// Response модель ответа с измененным бронированием
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
