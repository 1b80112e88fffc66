// Package availability решает, может ли запрошенное бронирование занять слот
package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// RejectReason первое правило, которое не прошел запрос
type RejectReason string

const (
	ReasonNone         RejectReason = ""
	ReasonPartySize    RejectReason = "party_size"
	ReasonDateWindow   RejectReason = "date_window"
	ReasonSlotCapacity RejectReason = "slot_capacity"
)

var (
	// ErrPartySizeExceeded группа больше максимально допустимой
	ErrPartySizeExceeded = errors.New("availability: party size exceeds maximum")

	// ErrDateOutsideWindow дата вне окна бронирования
	ErrDateOutsideWindow = errors.New("availability: date outside allowed booking window")

	// ErrSlotFullyBooked все места в слоте заняты
	ErrSlotFullyBooked = errors.New("availability: time slot fully booked")
)

// Request кандидат на бронирование вместе с текущей занятостью слота
type Request struct {
	Branch   domain.Branch
	Date     time.Time
	TimeSlot types.TimeString
	Adults   int
	Children int
	// ActiveCount - другие активные бронирования в том же (филиал, дата, слот)
	ActiveCount int
}

// Decision результат Evaluate
type Decision struct {
	Admitted bool
	Reason   RejectReason
	Message  string
}

// Err превращает отказ в *RejectionError, при допуске возвращает nil
func (d Decision) Err() error {
	if d.Admitted {
		return nil
	}
	return &RejectionError{Reason: d.Reason, Message: d.Message}
}

// Policy проверяет размер группы, окно дат и вместимость слота
type Policy struct {
	rules domain.BookingRules
}

// NewPolicy создает политику с заданными правилами
func NewPolicy(rules domain.BookingRules) *Policy {
	return &Policy{rules: rules}
}

// Rules возвращает правила политики
func (p *Policy) Rules() domain.BookingRules {
	return p.rules
}

// Evaluate проверяет правила по порядку и возвращает только первый отказ:
// размер группы, затем окно дат, затем вместимость слота.
func (p *Policy) Evaluate(req Request) Decision {
	if req.Adults+req.Children > p.rules.MaxPartySize {
		return reject(ReasonPartySize, fmt.Sprintf("party size exceeds maximum of %d", p.rules.MaxPartySize))
	}

	if !p.rules.Window.Contains(req.Date) {
		return reject(ReasonDateWindow, "date outside allowed booking window")
	}

	if req.ActiveCount >= p.rules.SlotCapacity {
		return reject(ReasonSlotCapacity, "time slot fully booked")
	}

	return Decision{Admitted: true}
}

// Availability возвращает занятость слота
func (p *Policy) Availability(slot types.TimeString, activeCount int) domain.SlotAvailability {
	return domain.SlotAvailability{
		StartTime: slot,
		Capacity:  p.rules.SlotCapacity,
		Booked:    activeCount,
	}
}

func reject(reason RejectReason, message string) Decision {
	return Decision{Admitted: false, Reason: reason, Message: message}
}

// RejectionError отказ в виде ошибки.
// errors.Is сопоставляет его с ErrPartySizeExceeded, ErrDateOutsideWindow или ErrSlotFullyBooked.
type RejectionError struct {
	Reason  RejectReason
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

func (e *RejectionError) Unwrap() error {
	switch e.Reason {
	case ReasonPartySize:
		return ErrPartySizeExceeded
	case ReasonDateWindow:
		return ErrDateOutsideWindow
	case ReasonSlotCapacity:
		return ErrSlotFullyBooked
	default:
		return nil
	}
}
