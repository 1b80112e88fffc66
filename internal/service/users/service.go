package users

import (
	"context"
	"errors"
	"fmt"

	userRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/user"
	"github.com/m04kA/SMC-ReservationService/internal/policy/cooldown"
	"github.com/m04kA/SMC-ReservationService/internal/service/users/models"
)

// Service сервис для работы со штрафным состоянием пользователя
type Service struct {
	userRepo     UserRepository
	tracker      *cooldown.Tracker
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса пользователей
func NewService(userRepo UserRepository, tracker *cooldown.Tracker, logger Logger) *Service {
	return &Service{
		userRepo:     userRepo,
		tracker:      tracker,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetCooldownStatus возвращает, может ли пользователь сейчас бронировать.
// Истекшая блокировка не сбрасывается в хранилище, а просто не учитывается.
func (s *Service) GetCooldownStatus(ctx context.Context, userID int64) (*models.CooldownStatusResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("GetCooldownStatus: user id=%d not found", userID)
			return nil, ErrUserNotFound
		}
		s.logger.Error("GetCooldownStatus: repository error for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: GetCooldownStatus - repository error: %w", ErrInternal, err)
	}

	status := s.tracker.CheckBlocked(user.Penalty, s.timeProvider.Now())

	resp := &models.CooldownStatusResponse{
		Blocked:              status.Blocked,
		MinutesRemaining:     status.MinutesRemaining,
		ConsecutiveDeletions: user.Penalty.ConsecutiveDeletions,
		Message:              status.Message(),
	}
	if status.Blocked {
		until := status.Until
		resp.CooldownUntil = &until
	}

	s.logger.Info("GetCooldownStatus: user=%d blocked=%t", userID, status.Blocked)
	return resp, nil
}
