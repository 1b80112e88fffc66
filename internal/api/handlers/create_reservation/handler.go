package create_reservation

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/policy/availability"
	"github.com/m04kA/SMC-ReservationService/internal/policy/cooldown"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgValidationFailed   = "validation failed"
	msgInvalidDate        = "invalid date, expected YYYY-MM-DD"
	msgMissingUserID      = "missing user id"
	msgUnknownBranch      = "unknown branch"
	msgUnknownTimeSlot    = "unknown time slot"
	msgUserNotFound       = "user not found"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if details := handlers.Validate(req); details != nil {
		h.logger.Warn("POST /reservations - Validation failed: user_id=%d, details=%v", userID, details)
		handlers.RespondValidationError(w, msgValidationFailed, details)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /reservations - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var blocked *cooldown.BlockedError
		var rejection *availability.RejectionError

		switch {
		case errors.As(err, &blocked):
			h.logger.Warn("POST /reservations - Cooldown active: user_id=%d, minutes=%d", userID, blocked.MinutesRemaining)
			handlers.RespondTooManyRequests(w, blocked.MinutesRemaining*60, CooldownErrorResponse{
				Error:            blocked.Message(),
				CooldownUntil:    blocked.Until.UTC().Format(time.RFC3339),
				MinutesRemaining: blocked.MinutesRemaining,
			})

		case errors.As(err, &rejection) && errors.Is(err, availability.ErrSlotFullyBooked):
			h.logger.Warn("POST /reservations - Slot fully booked: user_id=%d, branch=%q, date=%s, time=%s",
				userID, req.Branch, req.Date, req.TimeSlot)
			handlers.RespondConflict(w, rejection.Message)

		case errors.As(err, &rejection):
			h.logger.Warn("POST /reservations - Rejected: user_id=%d, reason=%s", userID, rejection.Reason)
			handlers.RespondBadRequest(w, rejection.Message)

		case errors.Is(err, createReservation.ErrUnknownBranch):
			h.logger.Warn("POST /reservations - Unknown branch: %q", req.Branch)
			handlers.RespondBadRequest(w, msgUnknownBranch)

		case errors.Is(err, createReservation.ErrUnknownTimeSlot):
			h.logger.Warn("POST /reservations - Unknown time slot: %q", req.TimeSlot)
			handlers.RespondBadRequest(w, msgUnknownTimeSlot)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, createReservation.ErrUserNotFound):
			h.logger.Warn("POST /reservations - User not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgUserNotFound)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, user_id=%d",
		result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
