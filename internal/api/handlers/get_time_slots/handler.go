package get_time_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	getTimeSlots "github.com/m04kA/SMC-ReservationService/internal/usecase/get_time_slots"
)

const (
	msgMissingDate   = "date is required"
	msgInvalidDate   = "invalid date, expected YYYY-MM-DD"
	msgUnknownBranch = "unknown branch"
)

type Handler struct {
	useCase GetTimeSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetTimeSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/branches/{branch}/slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	branch := mux.Vars(r)["branch"]

	raw := handlers.QueryString(r, "date")
	if raw == nil {
		h.logger.Warn("GET /branches/{branch}/slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := domain.ParseDate(*raw)
	if err != nil {
		h.logger.Warn("GET /branches/{branch}/slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Маршрут публичный, ID пользователя нужен только для логов
	userID, _ := middleware.GetUserID(r.Context())

	result, err := h.useCase.Execute(r.Context(), &getTimeSlots.Request{
		UserID: userID,
		Branch: branch,
		Date:   date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getTimeSlots.ErrUnknownBranch):
			h.logger.Warn("GET /branches/{branch}/slots - Unknown branch: %q", branch)
			handlers.RespondNotFound(w, msgUnknownBranch)

		case errors.Is(err, getTimeSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /branches/{branch}/slots - Failed to get slots: branch=%q, error=%v", branch, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /branches/{branch}/slots - Slots retrieved successfully: branch=%q, date=%s, slots_count=%d",
		branch, *raw, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
