package get_branches

import (
	"github.com/m04kA/SMC-ReservationService/internal/service/config/models"
)

type ConfigService interface {
	GetBranches() *models.BranchListResponse
}
