package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	Branch   string `json:"branch" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"` // "2025-12-24"
	TimeSlot string `json:"timeSlot" validate:"required"`                 // "19:00"
	Adults   int    `json:"adults" validate:"min=1"`
	Children int    `json:"children" validate:"min=0"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Branch    string `json:"branch"`
	Date      string `json:"date"`
	TimeSlot  string `json:"timeSlot"`
	Adults    int    `json:"adults"`
	Children  int    `json:"children"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CooldownErrorResponse тело ответа 429
type CooldownErrorResponse struct {
	Error            string `json:"error"`
	CooldownUntil    string `json:"cooldownUntil"`
	MinutesRemaining int    `json:"minutesRemaining"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createReservation.Request, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &createReservation.Request{
		UserID:   userID,
		Branch:   r.Branch,
		Date:     date,
		TimeSlot: r.TimeSlot,
		Adults:   r.Adults,
		Children: r.Children,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:        resp.ID,
		UserID:    resp.UserID,
		Branch:    string(resp.Branch),
		Date:      resp.Date.Format(domain.DateFormat),
		TimeSlot:  resp.TimeSlot.String(),
		Adults:    resp.Adults,
		Children:  resp.Children,
		Status:    string(resp.Status),
		CreatedAt: resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: resp.UpdatedAt.Format(time.RFC3339),
	}
}
