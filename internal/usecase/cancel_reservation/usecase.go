package cancel_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	userRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/user"
	"github.com/m04kA/SMC-ReservationService/internal/policy/cooldown"
)

// UseCase use case для отмены бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	userRepo        UserRepository
	txManager       TransactionManager
	tracker         *cooldown.Tracker
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	userRepo UserRepository,
	txManager TransactionManager,
	tracker *cooldown.Tracker,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		tracker:         tracker,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case отмены бронирования
// Смена статуса и обновление штрафов пользователя выполняются в одной транзакции.
// Отмена несуществующего, чужого или уже отмененного бронирования в счетчик не попадает.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelReservation: user=%d, reservation=%d", req.UserID, req.ReservationID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var prev, next domain.PenaltyState

	// 3. Выполняем операции с БД в транзакции
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Пользователь блокируется до конца транзакции, параллельные отмены идут по очереди
		user, err := uc.userRepo.GetByID(txCtx, req.UserID)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: failed to get user: %w", ErrInternal, err)
		}

		// 3.2. Отменяем только активное бронирование владельца
		err = uc.reservationRepo.UpdateStatus(txCtx, req.ReservationID, req.UserID, domain.StatusCancelled)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: failed to cancel reservation: %w", ErrInternal, err)
		}

		// 3.3. Обновляем счетчик отмен и, при необходимости, блокировку
		prev = user.Penalty
		next = uc.tracker.OnCancellation(user.Penalty, now)
		if err := uc.userRepo.SavePenalty(txCtx, req.UserID, next); err != nil {
			return fmt.Errorf("%w: failed to save penalty: %w", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			uc.logger.Warn("CancelReservation: reservation id=%d not found for user=%d", req.ReservationID, req.UserID)
			return nil, err
		case errors.Is(err, ErrInternal):
			uc.logger.Error("CancelReservation: %v", err)
			return nil, err
		default:
			uc.logger.Error("CancelReservation: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
		}
	}

	penalized := cooldown.Penalized(prev, next)
	uc.metrics.RecordCancellation(penalized)

	status := uc.tracker.CheckBlocked(next, now)
	if penalized {
		uc.logger.Warn("CancelReservation: user=%d blocked until %s after %d consecutive cancellations",
			req.UserID, status.Until.Format("2006-01-02 15:04:05"), next.ConsecutiveDeletions)
	} else {
		uc.logger.Info("CancelReservation: reservation id=%d cancelled, consecutive=%d",
			req.ReservationID, next.ConsecutiveDeletions)
	}

	resp := &Response{
		ReservationID:        req.ReservationID,
		Status:               domain.StatusCancelled,
		ConsecutiveDeletions: next.ConsecutiveDeletions,
		MinutesRemaining:     status.MinutesRemaining,
	}
	if status.Blocked {
		until := status.Until
		resp.CooldownUntil = &until
	}

	return resp, nil
}
