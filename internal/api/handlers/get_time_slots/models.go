package get_time_slots

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	getTimeSlots "github.com/m04kA/SMC-ReservationService/internal/usecase/get_time_slots"
)

// TimeSlotsResponse HTTP response model
type TimeSlotsResponse struct {
	Branch   string         `json:"branch"`
	Date     string         `json:"date"`
	InWindow bool           `json:"inWindow"`
	Slots    []SlotResponse `json:"slots"`
}

// SlotResponse занятость одного слота
type SlotResponse struct {
	StartTime      string `json:"startTime"`
	Capacity       int    `json:"capacity"`
	Booked         int    `json:"booked"`
	AvailableSpots int    `json:"availableSpots"`
	Available      bool   `json:"available"` // Можно бронировать: дата в окне и есть места
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getTimeSlots.Response) *TimeSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime:      s.StartTime.String(),
			Capacity:       s.Capacity,
			Booked:         s.Booked,
			AvailableSpots: s.Available(),
			Available:      resp.InWindow && !s.IsFull(),
		})
	}

	return &TimeSlotsResponse{
		Branch:   string(resp.Branch),
		Date:     resp.Date.Format(domain.DateFormat),
		InWindow: resp.InWindow,
		Slots:    slots,
	}
}
