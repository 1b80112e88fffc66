// Package api собирает HTTP маршруты сервиса бронирований
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	getBookingRulesHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_booking_rules"
	getBranchReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_branch_reservations"
	getBranchesHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_branches"
	getCooldownStatusHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_cooldown_status"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	getTimeSlotsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_time_slots"
	getUserReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_user_reservations"
	updateReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Handlers обработчики всех эндпоинтов
type Handlers struct {
	CreateReservation     *createReservationHandler.Handler
	CancelReservation     *cancelReservationHandler.Handler
	UpdateReservation     *updateReservationHandler.Handler
	GetReservation        *getReservationHandler.Handler
	GetUserReservations   *getUserReservationsHandler.Handler
	GetBranchReservations *getBranchReservationsHandler.Handler
	GetTimeSlots          *getTimeSlotsHandler.Handler
	GetCooldownStatus     *getCooldownStatusHandler.Handler
	GetBranches           *getBranchesHandler.Handler
	GetBookingRules       *getBookingRulesHandler.Handler
}

type routerOptions struct {
	metrics     *metrics.Metrics
	metricsPath string
}

// Option настройка роутера
type Option func(*routerOptions)

// WithMetrics включает HTTP метрики и публикует их по указанному пути
func WithMetrics(m *metrics.Metrics, path string) Option {
	return func(o *routerOptions) {
		o.metrics = m
		o.metricsPath = path
	}
}

// NewRouter настраивает маршруты /api/v1
func NewRouter(h *Handlers, logger Logger, opts ...Option) *mux.Router {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover(logger), middleware.Logging(logger))

	if o.metrics != nil {
		r.Use(middleware.MetricsMiddleware(o.metrics))
		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(o.metricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/branches", h.GetBranches.Handle).Methods(http.MethodGet)
	api.HandleFunc("/rules", h.GetBookingRules.Handle).Methods(http.MethodGet)
	api.HandleFunc("/branches/{branch}/slots", h.GetTimeSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/reservations", h.CreateReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations", h.GetUserReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}", h.GetReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}", h.UpdateReservation.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/reservations/{reservationId}/cancel", h.CancelReservation.Handle).Methods(http.MethodPatch)

	// --- Штрафы за отмены ---
	protected.HandleFunc("/users/me/cooldown", h.GetCooldownStatus.Handle).Methods(http.MethodGet)

	// --- Менеджеры филиалов ---
	protected.HandleFunc("/branches/{branch}/reservations", h.GetBranchReservations.Handle).Methods(http.MethodGet)

	return r
}
