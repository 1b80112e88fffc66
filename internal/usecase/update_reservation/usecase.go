package update_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/policy/availability"
)

// UseCase use case для изменения бронирования владельцем
type UseCase struct {
	reservationRepo ReservationRepository
	txManager       TransactionManager
	policy          *availability.Policy
	branches        *domain.BranchCatalog
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	txManager TransactionManager,
	policy *availability.Policy,
	branches *domain.BranchCatalog,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		txManager:       txManager,
		policy:          policy,
		branches:        branches,
		logger:          logger,
	}
}

// Execute выполняет use case изменения бронирования
//
// Размер группы и окно дат проверяются всегда. Вместимость проверяется только при
// переносе в другой (филиал, дата, слот); само бронирование при подсчете не учитывается.
// Блокировка после частых отмен на изменение не распространяется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateReservation: user=%d, reservation=%d, branch=%q, date=%s, time=%s, adults=%d, children=%d",
		req.UserID, req.ReservationID, req.Branch, req.Date.Format(domain.DateFormat), req.TimeSlot, req.Adults, req.Children)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Филиал и слот должны входить в справочники
	branch, err := uc.branches.Parse(req.Branch)
	if err != nil {
		uc.logger.Warn("UpdateReservation: %v", err)
		return nil, fmt.Errorf("%w: %q", ErrUnknownBranch, req.Branch)
	}

	slot, err := uc.policy.Rules().Slots.Parse(req.TimeSlot)
	if err != nil {
		uc.logger.Warn("UpdateReservation: %v", err)
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimeSlot, req.TimeSlot)
	}

	target := domain.SlotKey{Branch: branch, Date: domain.DateOnly(req.Date), TimeSlot: slot}

	var result *domain.Reservation

	// 3. Выполняем операции с БД в транзакции (READ COMMITTED, слот под advisory-блокировкой)
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Получаем текущее бронирование (FOR UPDATE)
		current, err := uc.reservationRepo.GetByID(txCtx, req.ReservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: failed to get reservation: %w", ErrInternal, err)
		}

		if !current.IsOwnedBy(req.UserID) || !current.IsActive() {
			return ErrReservationNotFound
		}

		// 3.2. При переносе блокируем новый слот и считаем занятые места без учета себя
		activeCount := 0
		if current.SlotKey() != target {
			if err := uc.reservationRepo.LockSlot(txCtx, target); err != nil {
				return fmt.Errorf("%w: failed to lock slot: %w", ErrInternal, err)
			}

			activeCount, err = uc.reservationRepo.CountActiveInSlot(txCtx, target, &current.ID)
			if err != nil {
				return fmt.Errorf("%w: failed to count active reservations: %w", ErrInternal, err)
			}
		}

		// 3.3. Политика допуска
		decision := uc.policy.Evaluate(availability.Request{
			Branch:      branch,
			Date:        target.Date,
			TimeSlot:    slot,
			Adults:      req.Adults,
			Children:    req.Children,
			ActiveCount: activeCount,
		})
		if !decision.Admitted {
			return decision.Err()
		}

		// 3.4. Сохраняем изменения
		current.Branch = branch
		current.Date = target.Date
		current.TimeSlot = slot
		current.Adults = req.Adults
		current.Children = req.Children

		updated, err := uc.reservationRepo.Update(txCtx, current)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: failed to update reservation: %w", ErrInternal, err)
		}

		result = updated
		return nil
	})

	if err != nil {
		var rejection *availability.RejectionError
		switch {
		case errors.As(err, &rejection):
			uc.logger.Warn("UpdateReservation: rejected for user=%d: %s", req.UserID, rejection.Message)
			return nil, err
		case errors.Is(err, ErrReservationNotFound):
			uc.logger.Warn("UpdateReservation: reservation id=%d not found for user=%d", req.ReservationID, req.UserID)
			return nil, err
		case errors.Is(err, ErrInternal):
			uc.logger.Error("UpdateReservation: %v", err)
			return nil, err
		default:
			uc.logger.Error("UpdateReservation: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
		}
	}

	uc.logger.Info("UpdateReservation: reservation id=%d moved to %s", result.ID, target)

	return toResponse(result), nil
}
