package update_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/policy/availability"
	updateReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/update_reservation"
)

const (
	msgInvalidReservationID = "invalid reservation id"
	msgInvalidRequestBody   = "invalid request body"
	msgValidationFailed     = "validation failed"
	msgInvalidDate          = "invalid date, expected YYYY-MM-DD"
	msgMissingUserID        = "missing user id"
	msgUnknownBranch        = "unknown branch"
	msgUnknownTimeSlot      = "unknown time slot"
	msgNotFound             = "reservation not found"
)

type Handler struct {
	useCase UpdateReservationUseCase
	logger  Logger
}

func NewHandler(useCase UpdateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/reservations/{reservationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathInt64(r, "reservationId")
	if err != nil {
		h.logger.Warn("PUT /reservations/{id} - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /reservations/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /reservations/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if details := handlers.Validate(req); details != nil {
		h.logger.Warn("PUT /reservations/{id} - Validation failed: reservation_id=%d, details=%v", reservationID, details)
		handlers.RespondValidationError(w, msgValidationFailed, details)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID, reservationID)
	if err != nil {
		h.logger.Warn("PUT /reservations/{id} - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var rejection *availability.RejectionError

		switch {
		case errors.As(err, &rejection) && errors.Is(err, availability.ErrSlotFullyBooked):
			h.logger.Warn("PUT /reservations/{id} - Slot fully booked: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, rejection.Message)

		case errors.As(err, &rejection):
			h.logger.Warn("PUT /reservations/{id} - Rejected: reservation_id=%d, reason=%s", reservationID, rejection.Reason)
			handlers.RespondBadRequest(w, rejection.Message)

		case errors.Is(err, updateReservation.ErrReservationNotFound):
			h.logger.Warn("PUT /reservations/{id} - Reservation not found: reservation_id=%d, user_id=%d", reservationID, userID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, updateReservation.ErrUnknownBranch):
			handlers.RespondBadRequest(w, msgUnknownBranch)

		case errors.Is(err, updateReservation.ErrUnknownTimeSlot):
			handlers.RespondBadRequest(w, msgUnknownTimeSlot)

		case errors.Is(err, updateReservation.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PUT /reservations/{id} - Failed to update reservation: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /reservations/{id} - Reservation updated successfully: reservation_id=%d, user_id=%d",
		reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
