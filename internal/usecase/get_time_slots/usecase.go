package get_time_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/policy/availability"
)

// UseCase use case для получения занятости слотов филиала на дату
type UseCase struct {
	reservationRepo ReservationRepository
	policy          *availability.Policy
	branches        *domain.BranchCatalog
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	policy *availability.Policy,
	branches *domain.BranchCatalog,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		policy:          policy,
		branches:        branches,
		logger:          logger,
	}
}

// Execute возвращает все слоты сетки с вместимостью и числом занятых мест.
// Для даты вне окна бронирования слоты тоже возвращаются, InWindow = false.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetTimeSlots: user=%d, branch=%q, date=%s", req.UserID, req.Branch, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetTimeSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Филиал должен входить в справочник
	branch, err := uc.branches.Parse(req.Branch)
	if err != nil {
		uc.logger.Warn("GetTimeSlots: %v", err)
		return nil, fmt.Errorf("%w: %q", ErrUnknownBranch, req.Branch)
	}

	date := domain.DateOnly(req.Date)
	rules := uc.policy.Rules()

	// 3. Считаем активные бронирования по слотам
	booked, err := uc.reservationRepo.CountActiveByDate(ctx, branch, date)
	if err != nil {
		uc.logger.Error("GetTimeSlots: failed to count reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to count reservations: %w", ErrInternal, err)
	}

	// 4. Собираем занятость по всей сетке слотов
	all := rules.Slots.All()
	slots := make([]domain.SlotAvailability, 0, len(all))
	for _, slot := range all {
		slots = append(slots, uc.policy.Availability(slot, booked[slot]))
	}

	uc.logger.Info("GetTimeSlots: %d slots for branch=%q, date=%s", len(slots), branch, date.Format(domain.DateFormat))

	return &Response{
		Branch:   branch,
		Date:     date,
		InWindow: rules.Window.Contains(date),
		Slots:    slots,
	}, nil
}
