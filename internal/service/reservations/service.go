package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

// Service сервис для чтения бронирований
type Service struct {
	reservationRepo ReservationRepository
	branches        *domain.BranchCatalog
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	branches *domain.BranchCatalog,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		branches:        branches,
		logger:          logger,
	}
}

// GetByID получает бронирование по ID
// Бронирование видит владелец и менеджер филиала, для остальных оно не существует
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, userID)

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%d not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetByID: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	if !reservation.IsOwnedBy(userID) && !s.branches.IsManager(reservation.Branch, userID) {
		s.logger.Warn("GetByID: user=%d has no access to reservation id=%d", userID, id)
		return nil, ErrReservationNotFound
	}

	return models.FromDomainReservation(reservation), nil
}

// GetUserReservations получает бронирования пользователя, отсортированные по дате и слоту
// Без фильтра возвращаются только активные
func (s *Service) GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetUserReservations: fetching reservations for user=%d, status=%v", req.UserID, req.Status)

	status := domain.StatusActive
	if req.Status != nil {
		parsed, err := domain.ParseReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserReservations: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = parsed
	}

	reservations, err := s.reservationRepo.List(ctx, domain.ReservationsFilter{
		UserID: ptr.Ptr(req.UserID),
		Status: &status,
	})
	if err != nil {
		s.logger.Error("GetUserReservations: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserReservations - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetUserReservations: fetched %d reservations for user=%d", len(reservations), req.UserID)
	return models.FromDomainReservationList(reservations), nil
}

// GetBranchReservations получает бронирования филиала с фильтрацией по дате и статусу
// Доступно только менеджерам филиала
func (s *Service) GetBranchReservations(ctx context.Context, req *models.GetBranchReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetBranchReservations: fetching reservations for branch=%q, user=%d", req.Branch, req.UserID)

	branch, err := s.branches.Parse(req.Branch)
	if err != nil {
		s.logger.Warn("GetBranchReservations: %v", err)
		return nil, fmt.Errorf("%w: %q", ErrUnknownBranch, req.Branch)
	}

	if !s.branches.IsManager(branch, req.UserID) {
		s.logger.Warn("GetBranchReservations: user=%d is not a manager of branch=%q", req.UserID, branch)
		return nil, ErrAccessDenied
	}

	filter := domain.ReservationsFilter{Branch: &branch}
	if req.Date != nil {
		filter.Date = ptr.Ptr(domain.DateOnly(*req.Date))
	}
	if req.Status != nil {
		status, err := domain.ParseReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetBranchReservations: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	reservations, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetBranchReservations: repository error for branch=%q: %v", branch, err)
		return nil, fmt.Errorf("%w: GetBranchReservations - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetBranchReservations: fetched %d reservations for branch=%q", len(reservations), branch)
	return models.FromDomainReservationList(reservations), nil
}
