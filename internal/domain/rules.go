package domain

import (
	"fmt"
	"time"
)

// BookingWindow диапазон календарных дней для бронирования, оба конца включены
type BookingWindow struct {
	Start time.Time
	End   time.Time
}

// NewBookingWindow приводит оба конца к целым дням
func NewBookingWindow(start, end time.Time) (BookingWindow, error) {
	w := BookingWindow{Start: DateOnly(start), End: DateOnly(end)}
	if w.End.Before(w.Start) {
		return BookingWindow{}, fmt.Errorf("%w: %s is before %s",
			ErrInvalidWindow, w.End.Format(DateFormat), w.Start.Format(DateFormat))
	}
	return w, nil
}

// DefaultBookingWindow декабрьская кампания 2025 года
func DefaultBookingWindow() BookingWindow {
	return BookingWindow{
		Start: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Contains сравнивает с точностью до дня, оба конца включены
func (w BookingWindow) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(w.Start) && !d.After(w.End)
}

// BookingRules параметры допуска бронирования
type BookingRules struct {
	Window       BookingWindow
	MaxPartySize int
	SlotCapacity int
	Slots        SlotSchedule
}

// DefaultBookingRules правила декабрьской кампании 2025 года
func DefaultBookingRules() BookingRules {
	return BookingRules{
		Window:       DefaultBookingWindow(),
		MaxPartySize: DefaultMaxPartySize,
		SlotCapacity: DefaultSlotCapacity,
		Slots:        DefaultSlotSchedule(),
	}
}

// PenaltyRules параметры блокировки после отмен
type PenaltyRules struct {
	ResetWindow      time.Duration // Отмена позже этого интервала начинает счётчик заново
	CooldownDuration time.Duration
	Threshold        int // Количество подряд идущих отмен, после которого включается блокировка
}

// DefaultPenaltyRules три отмены с перерывами не больше 10 минут блокируют бронирование на 10 минут
func DefaultPenaltyRules() PenaltyRules {
	return PenaltyRules{
		ResetWindow:      DefaultPenaltyResetWindow,
		CooldownDuration: DefaultCooldownDuration,
		Threshold:        DefaultPenaltyThreshold,
	}
}
