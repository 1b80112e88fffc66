package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"

	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/policy/availability"
	"github.com/m04kA/SMC-ReservationService/internal/policy/cooldown"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

const validBody = `{"branch":"Mong Kok Branch","date":"2025-12-24","timeSlot":"19:00","adults":2,"children":1}`

type stubUseCase struct {
	got  *createReservation.Request
	resp *createReservation.Response
	err  error
}

func (s *stubUseCase) Execute(ctx context.Context, req *createReservation.Request) (*createReservation.Response, error) {
	s.got = req
	return s.resp, s.err
}

type HandlerSuite struct {
	suite.Suite
	useCase *stubUseCase
	handler http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.useCase = &stubUseCase{}
	s.handler = middleware.Auth(http.HandlerFunc(NewHandler(s.useCase, logger.NewNop()).Handle))
}

func (s *HandlerSuite) do(body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	r.Header.Set(middleware.UserIDHeader, "7")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func (s *HandlerSuite) TestCreated() {
	created := time.Date(2025, time.November, 20, 18, 0, 0, 0, time.UTC)
	s.useCase.resp = &createReservation.Response{
		ID:        11,
		UserID:    7,
		Branch:    domain.BranchMongKok,
		Date:      time.Date(2025, time.December, 24, 0, 0, 0, 0, time.UTC),
		TimeSlot:  "19:00",
		Adults:    2,
		Children:  1,
		Status:    domain.StatusActive,
		CreatedAt: created,
		UpdatedAt: created,
	}

	w := s.do(validBody)

	s.Equal(http.StatusCreated, w.Code)
	body := w.Body.String()
	s.Equal(int64(11), gjson.Get(body, "id").Int())
	s.Equal("2025-12-24", gjson.Get(body, "date").String())
	s.Equal("19:00", gjson.Get(body, "timeSlot").String())
	s.Equal("active", gjson.Get(body, "status").String())

	s.Require().NotNil(s.useCase.got)
	s.Equal(int64(7), s.useCase.got.UserID)
	s.Equal("Mong Kok Branch", s.useCase.got.Branch)
	s.True(s.useCase.got.Date.Equal(time.Date(2025, time.December, 24, 0, 0, 0, 0, time.UTC)))
}

func (s *HandlerSuite) TestRequestErrors() {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "malformed json", body: `{"branch":`},
		{name: "unknown field", body: `{"branch":"Mong Kok Branch","seats":4}`},
		{name: "no adults", body: `{"branch":"Mong Kok Branch","date":"2025-12-24","timeSlot":"19:00","adults":0}`, field: "adults"},
		{name: "bad date", body: `{"branch":"Mong Kok Branch","date":"24.12.2025","timeSlot":"19:00","adults":1}`, field: "date"},
		{name: "missing branch", body: `{"date":"2025-12-24","timeSlot":"19:00","adults":1}`, field: "branch"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.useCase.got = nil

			w := s.do(tt.body)

			s.Equal(http.StatusBadRequest, w.Code)
			s.Nil(s.useCase.got)
			if tt.field != "" {
				s.True(gjson.Get(w.Body.String(), "details."+tt.field).Exists(), w.Body.String())
			}
		})
	}
}

func (s *HandlerSuite) TestUseCaseErrors() {
	until := time.Date(2025, time.November, 20, 18, 10, 0, 0, time.UTC)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "party size",
			err:        &availability.RejectionError{Reason: availability.ReasonPartySize, Message: "party size exceeds maximum of 12"},
			wantStatus: http.StatusBadRequest,
			wantError:  "party size exceeds maximum of 12",
		},
		{
			name:       "date window",
			err:        &availability.RejectionError{Reason: availability.ReasonDateWindow, Message: "date outside allowed booking window"},
			wantStatus: http.StatusBadRequest,
			wantError:  "date outside allowed booking window",
		},
		{
			name:       "slot full",
			err:        &availability.RejectionError{Reason: availability.ReasonSlotCapacity, Message: "time slot fully booked"},
			wantStatus: http.StatusConflict,
			wantError:  "time slot fully booked",
		},
		{
			name:       "cooldown",
			err:        &cooldown.BlockedError{Until: until, MinutesRemaining: 7},
			wantStatus: http.StatusTooManyRequests,
			wantError:  "You cannot make a new reservation yet. Please wait 7 more minute(s) due to recent cancellations.",
		},
		{
			name:       "unknown branch",
			err:        fmt.Errorf("%w: %q", createReservation.ErrUnknownBranch, "x"),
			wantStatus: http.StatusBadRequest,
			wantError:  msgUnknownBranch,
		},
		{
			name:       "unknown slot",
			err:        createReservation.ErrUnknownTimeSlot,
			wantStatus: http.StatusBadRequest,
			wantError:  msgUnknownTimeSlot,
		},
		{
			name:       "user not found",
			err:        createReservation.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  msgUserNotFound,
		},
		{
			name:       "store failure",
			err:        fmt.Errorf("%w: %w", createReservation.ErrInternal, errors.New("pq: connection reset")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error, please try again later",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.useCase.err = tt.err

			w := s.do(validBody)

			s.Equal(tt.wantStatus, w.Code)
			s.Equal(tt.wantError, gjson.Get(w.Body.String(), "error").String())
		})
	}
}

func (s *HandlerSuite) TestCooldownHeaders() {
	s.useCase.err = &cooldown.BlockedError{
		Until:            time.Date(2025, time.November, 20, 18, 10, 0, 0, time.UTC),
		MinutesRemaining: 2,
	}

	w := s.do(validBody)

	s.Equal("120", w.Header().Get("Retry-After"))
	s.Equal("2025-11-20T18:10:00Z", gjson.Get(w.Body.String(), "cooldownUntil").String())
	s.Equal(int64(2), gjson.Get(w.Body.String(), "minutesRemaining").Int())
}

func (s *HandlerSuite) TestUnauthorized() {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(validBody))
	w := httptest.NewRecorder()

	s.handler.ServeHTTP(w, r)

	s.Equal(http.StatusUnauthorized, w.Code)
}
