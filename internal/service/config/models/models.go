package models

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Response модели

// BranchResponse ответ с данными филиала
type BranchResponse struct {
	Name string `json:"name"`
}

// BranchListResponse ответ со списком филиалов
type BranchListResponse struct {
	Branches []BranchResponse `json:"branches"`
}

// SlotRangeResponse диапазон слотов, обе границы включены
type SlotRangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RulesResponse ответ с правилами бронирования и штрафов
type RulesResponse struct {
	WindowStart  string   `json:"windowStart"` // "2025-12-01"
	WindowEnd    string   `json:"windowEnd"`   // "2025-12-31"
	MaxPartySize int      `json:"maxPartySize"`
	SlotCapacity int      `json:"slotCapacity"`
	TimeSlots    []string `json:"timeSlots"`

	PenaltyThreshold          int `json:"penaltyThreshold"`
	PenaltyResetWindowMinutes int `json:"penaltyResetWindowMinutes"`
	CooldownMinutes           int `json:"cooldownMinutes"`
}

// FromDomainBranches конвертирует список филиалов в DTO
func FromDomainBranches(names []domain.Branch) *BranchListResponse {
	result := &BranchListResponse{Branches: make([]BranchResponse, 0, len(names))}
	for _, name := range names {
		result.Branches = append(result.Branches, BranchResponse{Name: string(name)})
	}
	return result
}

// FromDomainRules конвертирует правила в DTO
func FromDomainRules(booking domain.BookingRules, penalty domain.PenaltyRules) *RulesResponse {
	slots := booking.Slots.All()
	timeSlots := make([]string, 0, len(slots))
	for _, s := range slots {
		timeSlots = append(timeSlots, s.String())
	}

	return &RulesResponse{
		WindowStart:               booking.Window.Start.Format(domain.DateFormat),
		WindowEnd:                 booking.Window.End.Format(domain.DateFormat),
		MaxPartySize:              booking.MaxPartySize,
		SlotCapacity:              booking.SlotCapacity,
		TimeSlots:                 timeSlots,
		PenaltyThreshold:          penalty.Threshold,
		PenaltyResetWindowMinutes: int(penalty.ResetWindow.Minutes()),
		CooldownMinutes:           int(penalty.CooldownDuration.Minutes()),
	}
}
