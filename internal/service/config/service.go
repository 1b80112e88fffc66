package config

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/config/models"
)

// Service сервис только для чтения настроек бронирования.
// Правила и филиалы задаются в файле конфигурации и не меняются во время работы.
type Service struct {
	bookingRules domain.BookingRules
	penaltyRules domain.PenaltyRules
	branches     *domain.BranchCatalog
	logger       Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(
	bookingRules domain.BookingRules,
	penaltyRules domain.PenaltyRules,
	branches *domain.BranchCatalog,
	logger Logger,
) *Service {
	return &Service{
		bookingRules: bookingRules,
		penaltyRules: penaltyRules,
		branches:     branches,
		logger:       logger,
	}
}

// GetBranches возвращает филиалы в порядке конфигурации
func (s *Service) GetBranches() *models.BranchListResponse {
	s.logger.Info("GetBranches: %d branches configured", len(s.branches.Names()))
	return models.FromDomainBranches(s.branches.Names())
}

// GetRules возвращает действующие правила бронирования и штрафов
func (s *Service) GetRules() *models.RulesResponse {
	s.logger.Info("GetRules: window=%s..%s",
		s.bookingRules.Window.Start.Format(domain.DateFormat), s.bookingRules.Window.End.Format(domain.DateFormat))
	return models.FromDomainRules(s.bookingRules, s.penaltyRules)
}
