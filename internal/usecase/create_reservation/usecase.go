package create_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	userRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/user"
	"github.com/m04kA/SMC-ReservationService/internal/policy/availability"
	"github.com/m04kA/SMC-ReservationService/internal/policy/cooldown"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	userRepo        UserRepository
	txManager       TransactionManager
	policy          *availability.Policy
	tracker         *cooldown.Tracker
	branches        *domain.BranchCatalog
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	userRepo UserRepository,
	txManager TransactionManager,
	policy *availability.Policy,
	tracker *cooldown.Tracker,
	branches *domain.BranchCatalog,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		policy:          policy,
		tracker:         tracker,
		branches:        branches,
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

// Execute выполняет use case создания бронирования
//
// Порядок проверок: блокировка после отмен, затем справочники филиалов и слотов,
// затем размер группы, окно дат и вместимость слота. Транзакция идет на уровне
// READ COMMITTED: advisory-блокировка слота берется до подсчета, поэтому каждый
// запрос в слоте читает уже зафиксированные вставки предыдущих.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: user=%d, branch=%q, date=%s, time=%s, adults=%d, children=%d",
		req.UserID, req.Branch, req.Date.Format(domain.DateFormat), req.TimeSlot, req.Adults, req.Children)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var (
		result *domain.Reservation
		key    domain.SlotKey
	)

	// 3. Выполняем операции с БД в транзакции
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Пользователь блокируется до конца транзакции
		user, err := uc.userRepo.GetByID(txCtx, req.UserID)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("%w: failed to get user: %w", ErrInternal, err)
		}

		// 3.2. Блокировка после частых отмен проверяется раньше всех правил
		if status := uc.tracker.CheckBlocked(user.Penalty, now); status.Blocked {
			return status.Err()
		}

		// 3.3. Филиал и слот должны входить в справочники
		branch, err := uc.branches.Parse(req.Branch)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownBranch, req.Branch)
		}

		slot, err := uc.policy.Rules().Slots.Parse(req.TimeSlot)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownTimeSlot, req.TimeSlot)
		}

		key = domain.SlotKey{Branch: branch, Date: domain.DateOnly(req.Date), TimeSlot: slot}

		// 3.4. Блокируем слот, затем считаем активные бронирования в нем
		if err := uc.reservationRepo.LockSlot(txCtx, key); err != nil {
			return fmt.Errorf("%w: failed to lock slot: %w", ErrInternal, err)
		}

		activeCount, err := uc.reservationRepo.CountActiveInSlot(txCtx, key, nil)
		if err != nil {
			return fmt.Errorf("%w: failed to count active reservations: %w", ErrInternal, err)
		}

		// 3.5. Политика допуска: размер группы, окно дат, вместимость
		decision := uc.policy.Evaluate(availability.Request{
			Branch:      branch,
			Date:        key.Date,
			TimeSlot:    slot,
			Adults:      req.Adults,
			Children:    req.Children,
			ActiveCount: activeCount,
		})
		if !decision.Admitted {
			return decision.Err()
		}

		// 3.6. Создаем бронирование
		created, err := uc.reservationRepo.Create(txCtx, &domain.Reservation{
			UserID:   req.UserID,
			Branch:   branch,
			Date:     key.Date,
			TimeSlot: slot,
			Adults:   req.Adults,
			Children: req.Children,
			Status:   domain.StatusActive,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		// 3.7. Успешное бронирование сбрасывает счетчик отмен
		next := uc.tracker.OnSuccessfulBooking(user.Penalty)
		if !next.Equal(user.Penalty) {
			if err := uc.userRepo.SavePenalty(txCtx, req.UserID, next); err != nil {
				return fmt.Errorf("%w: failed to reset penalty: %w", ErrInternal, err)
			}
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, uc.handleError(req, err)
	}

	uc.metrics.RecordAdmission(metrics.OutcomeAdmitted, "")
	uc.logger.Info("CreateReservation: reservation id=%d created for user=%d at %s", result.ID, req.UserID, key)

	return toResponse(result), nil
}

// handleError логирует и классифицирует ошибку транзакции
func (uc *UseCase) handleError(req *Request, err error) error {
	var blocked *cooldown.BlockedError
	var rejection *availability.RejectionError

	switch {
	case errors.As(err, &blocked):
		uc.metrics.RecordAdmission(metrics.OutcomeBlocked, "cooldown")
		uc.logger.Warn("CreateReservation: user=%d blocked for %d more minute(s)", req.UserID, blocked.MinutesRemaining)
		return err
	case errors.As(err, &rejection):
		uc.metrics.RecordAdmission(metrics.OutcomeRejected, string(rejection.Reason))
		uc.logger.Warn("CreateReservation: rejected for user=%d: %s", req.UserID, rejection.Message)
		return err
	case errors.Is(err, ErrUserNotFound):
		uc.logger.Warn("CreateReservation: user id=%d not found", req.UserID)
		return err
	case errors.Is(err, ErrUnknownBranch), errors.Is(err, ErrUnknownTimeSlot):
		uc.logger.Warn("CreateReservation: %v", err)
		return err
	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateReservation: %v", err)
		return err
	default:
		uc.logger.Error("CreateReservation: transaction failed: %v", err)
		return fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
	}
}
