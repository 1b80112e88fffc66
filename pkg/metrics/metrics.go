// Package metrics содержит prometheus-метрики сервиса.
// Все методы записи безопасно вызывать на nil *Metrics (метрики выключены).
package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Admission outcomes
const (
	OutcomeAdmitted = "admitted"
	OutcomeRejected = "rejected"
	OutcomeBlocked  = "blocked"
)

// Metrics набор метрик сервиса
type Metrics struct {
	service string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	AdmissionDecisions *prometheus.CounterVec
	Cancellations      *prometheus.CounterVec
	PenaltiesApplied   *prometheus.CounterVec
}

// New создает метрики и регистрирует их в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики и регистрирует их в указанном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		service: serviceName,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation", "status"}),

		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),

		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),

		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		AdmissionDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_admission_decisions_total",
			Help: "Reservation admission decisions by outcome and reason",
		}, []string{"service", "outcome", "reason"}),

		Cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_cancellations_total",
			Help: "Cancelled reservations",
		}, []string{"service"}),

		PenaltiesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_penalties_applied_total",
			Help: "Cancellations that started or extended a booking cooldown",
		}, []string{"service"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.AdmissionDecisions,
		m.Cancellations,
		m.PenaltiesApplied,
	)

	return m
}

// RecordHTTPRequest учитывает обработанный HTTP запрос
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.service, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.service, method, path).Observe(duration.Seconds())
}

// RecordDBQuery учитывает выполненный SQL запрос
func (m *Metrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueryDuration.WithLabelValues(m.service, operation, status).Observe(duration.Seconds())
}

// SetPoolStats обновляет метрики пула соединений
func (m *Metrics) SetPoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues(m.service).Set(float64(stats.OpenConnections))
	m.DBInUseConnections.WithLabelValues(m.service).Set(float64(stats.InUse))
	m.DBIdleConnections.WithLabelValues(m.service).Set(float64(stats.Idle))
	m.DBWaitCount.WithLabelValues(m.service).Set(float64(stats.WaitCount))
}

// RecordAdmission учитывает решение о допуске бронирования
// reason пустой для admitted
func (m *Metrics) RecordAdmission(outcome, reason string) {
	if m == nil {
		return
	}
	m.AdmissionDecisions.WithLabelValues(m.service, outcome, reason).Inc()
}

// RecordCancellation учитывает отмену бронирования
func (m *Metrics) RecordCancellation(penalized bool) {
	if m == nil {
		return
	}
	m.Cancellations.WithLabelValues(m.service).Inc()
	if penalized {
		m.PenaltiesApplied.WithLabelValues(m.service).Inc()
	}
}
