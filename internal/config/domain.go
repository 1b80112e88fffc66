package config

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// BookingRules строит правила допуска из секции [booking]
func (c *Config) BookingRules() (domain.BookingRules, error) {
	start, err := domain.ParseDate(c.Booking.WindowStart)
	if err != nil {
		return domain.BookingRules{}, fmt.Errorf("booking.window_start: %w", err)
	}
	end, err := domain.ParseDate(c.Booking.WindowEnd)
	if err != nil {
		return domain.BookingRules{}, fmt.Errorf("booking.window_end: %w", err)
	}
	window, err := domain.NewBookingWindow(start, end)
	if err != nil {
		return domain.BookingRules{}, err
	}

	ranges := make([]domain.SlotRange, 0, len(c.Booking.SlotRanges))
	for i, r := range c.Booking.SlotRanges {
		from, err := types.NewTimeStringFromString(r.Start)
		if err != nil {
			return domain.BookingRules{}, fmt.Errorf("booking.slot_ranges[%d].start: %w", i, err)
		}
		to, err := types.NewTimeStringFromString(r.End)
		if err != nil {
			return domain.BookingRules{}, fmt.Errorf("booking.slot_ranges[%d].end: %w", i, err)
		}
		ranges = append(ranges, domain.SlotRange{Start: from, End: to})
	}

	slots, err := domain.NewSlotSchedule(ranges, c.Booking.SlotStepMinutes)
	if err != nil {
		return domain.BookingRules{}, err
	}

	return domain.BookingRules{
		Window:       window,
		MaxPartySize: c.Booking.MaxPartySize,
		SlotCapacity: c.Booking.SlotCapacity,
		Slots:        slots,
	}, nil
}

// PenaltyRules строит правила блокировки из секции [penalty]
func (c *Config) PenaltyRules() domain.PenaltyRules {
	return domain.PenaltyRules{
		ResetWindow:      time.Duration(c.Penalty.ResetWindowMinutes) * time.Minute,
		CooldownDuration: time.Duration(c.Penalty.CooldownMinutes) * time.Minute,
		Threshold:        c.Penalty.Threshold,
	}
}

// BranchCatalog строит каталог филиалов из [[branches]]
func (c *Config) BranchCatalog() (*domain.BranchCatalog, error) {
	branches := make([]domain.BranchInfo, 0, len(c.Branches))
	for _, b := range c.Branches {
		branches = append(branches, domain.BranchInfo{
			Name:       domain.Branch(b.Name),
			ManagerIDs: b.ManagerIDs,
		})
	}
	return domain.NewBranchCatalog(branches)
}
