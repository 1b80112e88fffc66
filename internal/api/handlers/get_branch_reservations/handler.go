package get_branch_reservations

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

const (
	msgMissingUserID = "missing user id"
	msgInvalidDate   = "invalid date, expected YYYY-MM-DD"
	msgInvalidStatus = "invalid status, expected active or cancelled"
	msgUnknownBranch = "unknown branch"
	msgForbidden     = "access denied"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/branches/{branch}/reservations
// Query params: date (optional, YYYY-MM-DD), status (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	branch := mux.Vars(r)["branch"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /branches/{branch}/reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.GetBranchReservationsRequest{
		UserID: userID,
		Branch: branch,
		Status: handlers.QueryString(r, "status"),
	}

	if raw := handlers.QueryString(r, "date"); raw != nil {
		date, err := domain.ParseDate(*raw)
		if err != nil {
			h.logger.Warn("GET /branches/{branch}/reservations - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = ptr.Ptr(date)
	}

	result, err := h.service.GetBranchReservations(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrUnknownBranch):
			h.logger.Warn("GET /branches/{branch}/reservations - Unknown branch: %q", branch)
			handlers.RespondNotFound(w, msgUnknownBranch)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /branches/{branch}/reservations - Access denied: branch=%q, user_id=%d", branch, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /branches/{branch}/reservations - Failed to get reservations: branch=%q, error=%v", branch, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /branches/{branch}/reservations - Reservations retrieved successfully: branch=%q, count=%d",
		branch, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result)
}
