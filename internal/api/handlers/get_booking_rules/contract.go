package get_booking_rules

import (
	"github.com/m04kA/SMC-ReservationService/internal/service/config/models"
)

type ConfigService interface {
	GetRules() *models.RulesResponse
}
