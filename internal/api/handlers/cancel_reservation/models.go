package cancel_reservation

import (
	"fmt"
	"time"

	cancelReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/cancel_reservation"
)

// CancelReservationResponse HTTP response model
type CancelReservationResponse struct {
	ID                   int64   `json:"id"`
	Status               string  `json:"status"`
	ConsecutiveDeletions int     `json:"consecutiveDeletions"`
	CooldownUntil        *string `json:"cooldownUntil,omitempty"`
	MinutesRemaining     int     `json:"minutesRemaining"`
	Message              string  `json:"message,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelReservation.Response) *CancelReservationResponse {
	result := &CancelReservationResponse{
		ID:                   resp.ReservationID,
		Status:               string(resp.Status),
		ConsecutiveDeletions: resp.ConsecutiveDeletions,
		MinutesRemaining:     resp.MinutesRemaining,
	}

	if resp.CooldownUntil != nil {
		until := resp.CooldownUntil.UTC().Format(time.RFC3339)
		result.CooldownUntil = &until
		result.Message = fmt.Sprintf("Too many cancellations. New reservations are blocked for %d minute(s).", resp.MinutesRemaining)
	}

	return result
}
