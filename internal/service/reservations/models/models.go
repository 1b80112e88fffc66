package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модели

// GetUserReservationsRequest запрос на получение бронирований пользователя
type GetUserReservationsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"` // По умолчанию только активные
}

// GetBranchReservationsRequest запрос на получение бронирований филиала (для менеджеров)
type GetBranchReservationsRequest struct {
	UserID int64      `json:"userId"`
	Branch string     `json:"branch"`
	Date   *time.Time `json:"date,omitempty"`   // Конкретная дата (опционально)
	Status *string    `json:"status,omitempty"` // Фильтр по статусу (опционально, nil - все)
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Branch    string    `json:"branch"`
	Date      string    `json:"date"`     // "2025-12-24"
	TimeSlot  string    `json:"timeSlot"` // "19:00"
	Adults    int       `json:"adults"`
	Children  int       `json:"children"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	return &ReservationResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Branch:    string(r.Branch),
		Date:      r.Date.Format(domain.DateFormat),
		TimeSlot:  r.TimeSlot.String(),
		Adults:    r.Adults,
		Children:  r.Children,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	result := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		result.Reservations = append(result.Reservations, *FromDomainReservation(r))
	}

	return result
}
