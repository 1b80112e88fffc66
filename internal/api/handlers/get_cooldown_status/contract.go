package get_cooldown_status

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/service/users/models"
)

type UserService interface {
	GetCooldownStatus(ctx context.Context, userID int64) (*models.CooldownStatusResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
