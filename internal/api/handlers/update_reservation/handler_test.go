package update_reservation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/policy/availability"
	updateReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/update_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

const validBody = `{"branch":"Ho Man Tin Branch","date":"2025-12-31","timeSlot":"21:00","adults":4,"children":0}`

type stubUseCase struct {
	got  *updateReservation.Request
	resp *updateReservation.Response
	err  error
}

func (s *stubUseCase) Execute(ctx context.Context, req *updateReservation.Request) (*updateReservation.Response, error) {
	s.got = req
	return s.resp, s.err
}

func serve(uc *stubUseCase, path, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/reservations/{reservationId}", NewHandler(uc, logger.NewNop()).Handle).Methods(http.MethodPut)

	r := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	r.Header.Set(middleware.UserIDHeader, "3")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle_Updated(t *testing.T) {
	uc := &stubUseCase{resp: &updateReservation.Response{
		ID:       8,
		UserID:   3,
		Branch:   domain.BranchHoManTin,
		Date:     time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		TimeSlot: "21:00",
		Adults:   4,
		Status:   domain.StatusActive,
	}}

	w := serve(uc, "/reservations/8", validBody)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(8), uc.got.ReservationID)
	assert.Equal(t, int64(3), uc.got.UserID)
	assert.Equal(t, "21:00", uc.got.TimeSlot)
	assert.Equal(t, "Ho Man Tin Branch", gjson.Get(w.Body.String(), "branch").String())
	assert.Equal(t, int64(4), gjson.Get(w.Body.String(), "adults").Int())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "bad id", path: "/reservations/x", body: validBody, wantStatus: http.StatusBadRequest},
		{name: "bad body", path: "/reservations/8", body: `[]`, wantStatus: http.StatusBadRequest},
		{name: "validation", path: "/reservations/8", body: `{"branch":"a","date":"2025-12-31","timeSlot":"21:00","adults":1,"children":-1}`, wantStatus: http.StatusBadRequest},
		{name: "not found", path: "/reservations/8", body: validBody, err: updateReservation.ErrReservationNotFound, wantStatus: http.StatusNotFound},
		{name: "slot full", path: "/reservations/8", body: validBody, err: &availability.RejectionError{Reason: availability.ReasonSlotCapacity, Message: "time slot fully booked"}, wantStatus: http.StatusConflict},
		{name: "party size", path: "/reservations/8", body: validBody, err: &availability.RejectionError{Reason: availability.ReasonPartySize, Message: "party size exceeds maximum of 12"}, wantStatus: http.StatusBadRequest},
		{name: "unknown slot", path: "/reservations/8", body: validBody, err: updateReservation.ErrUnknownTimeSlot, wantStatus: http.StatusBadRequest},
		{name: "internal", path: "/reservations/8", body: validBody, err: updateReservation.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&stubUseCase{err: tt.err}, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
