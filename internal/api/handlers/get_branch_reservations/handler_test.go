package get_branch_reservations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type stubService struct {
	got  *models.GetBranchReservationsRequest
	resp *models.ReservationListResponse
	err  error
}

func (s *stubService) GetBranchReservations(ctx context.Context, req *models.GetBranchReservationsRequest) (*models.ReservationListResponse, error) {
	s.got = req
	return s.resp, s.err
}

func serve(svc *stubService, userID int64, query string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/branches/x/reservations"+query, nil)
	r = mux.SetURLVars(r, map[string]string{"branch": "Mong Kok Branch"})
	if userID > 0 {
		r = r.WithContext(middleware.WithUserID(r.Context(), userID))
	}
	w := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(w, r)
	return w
}

func TestHandle_OK(t *testing.T) {
	svc := &stubService{resp: &models.ReservationListResponse{
		Reservations: []models.ReservationResponse{{ID: 1, Branch: "Mong Kok Branch"}, {ID: 2, Branch: "Mong Kok Branch"}},
	}}

	w := serve(svc, 100, "?date=2025-12-24&status=active")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), gjson.Get(w.Body.String(), "reservations.#").Int())

	require.NotNil(t, svc.got)
	assert.Equal(t, int64(100), svc.got.UserID)
	assert.Equal(t, "Mong Kok Branch", svc.got.Branch)
	require.NotNil(t, svc.got.Date)
	assert.True(t, svc.got.Date.Equal(time.Date(2025, time.December, 24, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, svc.got.Status)
	assert.Equal(t, "active", *svc.got.Status)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		userID int64
		query  string
		err    error
		status int
	}{
		{name: "no user", status: http.StatusUnauthorized},
		{name: "bad date", userID: 100, query: "?date=tomorrow", status: http.StatusBadRequest},
		{name: "unknown branch", userID: 100, err: reservations.ErrUnknownBranch, status: http.StatusNotFound},
		{name: "not a manager", userID: 1, err: reservations.ErrAccessDenied, status: http.StatusForbidden},
		{name: "bad status", userID: 100, query: "?status=deleted", err: reservations.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "store failure", userID: 100, err: reservations.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&stubService{err: tt.err}, tt.userID, tt.query)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
