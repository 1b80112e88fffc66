package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationStatus представляет статус бронирования
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "active"
	StatusCancelled ReservationStatus = "cancelled"
)

// Reservation представляет бронирование столика в филиале.
// Бронирования не удаляются, отмена только меняет статус.
type Reservation struct {
	ID        int64
	UserID    int64
	Branch    Branch
	Date      time.Time // Дата без времени (UTC midnight)
	TimeSlot  types.TimeString
	Adults    int
	Children  int
	Status    ReservationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartySize возвращает общее число гостей
func (r *Reservation) PartySize() int {
	return r.Adults + r.Children
}

// IsActive проверяет, занимает ли бронирование слот
func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// IsCancelled проверяет, отменено ли бронирование
func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// IsOwnedBy проверяет, принадлежит ли бронирование пользователю
func (r *Reservation) IsOwnedBy(userID int64) bool {
	return r.UserID == userID
}

// SlotKey возвращает (филиал, дата, слот), который занимает бронирование
func (r *Reservation) SlotKey() SlotKey {
	return SlotKey{Branch: r.Branch, Date: DateOnly(r.Date), TimeSlot: r.TimeSlot}
}

// SlotKey единица вместимости, которую можно забронировать
type SlotKey struct {
	Branch   Branch
	Date     time.Time
	TimeSlot types.TimeString
}

// String возвращает стабильный текстовый ключ, например "Mong Kok Branch|2025-12-24|19:00"
func (k SlotKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Branch, k.Date.Format(DateFormat), k.TimeSlot)
}

// ReservationsFilter фильтр для выборки бронирований
type ReservationsFilter struct {
	UserID *int64             // Владелец (опционально)
	Branch *Branch            // Филиал (опционально)
	Date   *time.Time         // Конкретная дата (опционально)
	Status *ReservationStatus // Статус (опционально, nil - все)
}

// ParseReservationStatus проверяет строку статуса
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch status := ReservationStatus(s); status {
	case StatusActive, StatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}
