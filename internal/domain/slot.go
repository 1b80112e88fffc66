package domain

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// SlotRange диапазон начала слотов, оба конца включены, например 12:00-16:00
type SlotRange struct {
	Start types.TimeString
	End   types.TimeString
}

// SlotSchedule упорядоченная сетка слотов для бронирования
type SlotSchedule struct {
	slots []types.TimeString
	index map[types.TimeString]struct{}
}

// DefaultSlotRanges обед и ужин с перерывом кухни с 16:00 до 17:00
func DefaultSlotRanges() []SlotRange {
	return []SlotRange{
		{Start: "12:00", End: "16:00"},
		{Start: "17:00", End: "21:00"},
	}
}

// NewSlotSchedule строит слоты с шагом stepMinutes внутри каждого диапазона, концы включены
func NewSlotSchedule(ranges []SlotRange, stepMinutes int) (SlotSchedule, error) {
	if stepMinutes <= 0 {
		return SlotSchedule{}, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidSlotRange, stepMinutes)
	}
	if len(ranges) == 0 {
		return SlotSchedule{}, fmt.Errorf("%w: no ranges", ErrInvalidSlotRange)
	}

	s := SlotSchedule{index: make(map[types.TimeString]struct{})}
	var last types.TimeString

	for _, r := range ranges {
		if err := r.Start.Validate(); err != nil {
			return SlotSchedule{}, fmt.Errorf("%w: start: %w", ErrInvalidSlotRange, err)
		}
		if err := r.End.Validate(); err != nil {
			return SlotSchedule{}, fmt.Errorf("%w: end: %w", ErrInvalidSlotRange, err)
		}
		if r.End.IsBefore(r.Start) {
			return SlotSchedule{}, fmt.Errorf("%w: %s-%s ends before it starts", ErrInvalidSlotRange, r.Start, r.End)
		}
		if !last.IsZero() && !r.Start.IsAfter(last) {
			return SlotSchedule{}, fmt.Errorf("%w: %s-%s overlaps previous range", ErrInvalidSlotRange, r.Start, r.End)
		}

		for current := r.Start; !current.IsAfter(r.End); {
			s.slots = append(s.slots, current)
			s.index[current] = struct{}{}
			last = current

			next, err := current.AddMinutes(stepMinutes)
			if err != nil {
				// Следующий слот выходит за полночь - диапазон закончился
				break
			}
			current = next
		}
	}

	return s, nil
}

// DefaultSlotSchedule 12:00-16:00 и 17:00-21:00 с шагом 30 минут
func DefaultSlotSchedule() SlotSchedule {
	s, _ := NewSlotSchedule(DefaultSlotRanges(), DefaultSlotStepMinutes)
	return s
}

// All возвращает слоты в хронологическом порядке
func (s SlotSchedule) All() []types.TimeString {
	out := make([]types.TimeString, len(s.slots))
	copy(out, s.slots)
	return out
}

// Len возвращает количество слотов
func (s SlotSchedule) Len() int {
	return len(s.slots)
}

// Contains проверяет, является ли t началом слота
func (s SlotSchedule) Contains(t types.TimeString) bool {
	_, ok := s.index[t]
	return ok
}

// Parse разбирает s и проверяет, что время входит в сетку
func (s SlotSchedule) Parse(value string) (types.TimeString, error) {
	t, err := types.NewTimeStringFromString(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnknownTimeSlot, err)
	}
	if !s.Contains(t) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTimeSlot, t)
	}
	return t, nil
}

// SlotAvailability занятость одного слота
type SlotAvailability struct {
	StartTime types.TimeString
	Capacity  int
	Booked    int
}

// Available возвращает число свободных мест
func (s SlotAvailability) Available() int {
	if s.Booked >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Booked
}

// IsFull проверяет, что свободных мест нет
func (s SlotAvailability) IsFull() bool {
	return s.Available() == 0
}
