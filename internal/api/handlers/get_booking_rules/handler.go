package get_booking_rules

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
)

type Handler struct {
	service ConfigService
}

func NewHandler(service ConfigService) *Handler {
	return &Handler{service: service}
}

// Handle GET /api/v1/rules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.service.GetRules())
}
