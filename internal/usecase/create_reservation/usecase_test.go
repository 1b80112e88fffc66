package create_reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ReservationService/internal/policy/availability"
	"github.com/m04kA/SMC-ReservationService/internal/policy/cooldown"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var now = time.Date(2025, time.November, 20, 18, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type fixture struct {
	uc      *UseCase
	store   *memory.Store
	users   *memory.UserRepository
	res     *memory.ReservationRepository
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	reservations := memory.NewReservationRepository(store)
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())

	uc := NewUseCase(
		reservations,
		users,
		store,
		availability.NewPolicy(domain.DefaultBookingRules()),
		cooldown.NewTracker(domain.DefaultPenaltyRules()),
		domain.DefaultBranchCatalog(),
		m,
		logger.NewNop(),
	)
	uc.timeProvider = &fixedClock{now: now}

	store.AddUser(1)

	return &fixture{uc: uc, store: store, users: users, res: reservations, metrics: m}
}

func validRequest() *Request {
	return &Request{
		UserID:   1,
		Branch:   "Mong Kok Branch",
		Date:     time.Date(2025, time.December, 24, 0, 0, 0, 0, time.UTC),
		TimeSlot: "19:00",
		Adults:   2,
		Children: 1,
	}
}

func (f *fixture) fillSlot(t *testing.T, req *Request, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.res.Create(context.Background(), &domain.Reservation{
			UserID:   100 + int64(i),
			Branch:   domain.Branch(req.Branch),
			Date:     req.Date,
			TimeSlot: types.TimeString(req.TimeSlot),
			Adults:   2,
			Status:   domain.StatusActive,
		})
		require.NoError(t, err)
	}
}

func (f *fixture) setPenalty(t *testing.T, state domain.PenaltyState) {
	t.Helper()
	require.NoError(t, f.users.SavePenalty(context.Background(), 1, state))
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, domain.BranchMongKok, resp.Branch)
	assert.Equal(t, types.TimeString("19:00"), resp.TimeSlot)
	assert.Equal(t, domain.StatusActive, resp.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AdmissionDecisions.WithLabelValues("test", metrics.OutcomeAdmitted, "")))
}

func TestExecute_AcceptsHHMMSSSlot(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.TimeSlot = "12:30:00"

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, types.TimeString("12:30"), resp.TimeSlot)
}

func TestExecute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		err    error
	}{
		{name: "no user", mutate: func(r *Request) { r.UserID = 0 }, err: ErrInvalidInput},
		{name: "no branch", mutate: func(r *Request) { r.Branch = "" }, err: ErrInvalidInput},
		{name: "no date", mutate: func(r *Request) { r.Date = time.Time{} }, err: ErrInvalidInput},
		{name: "no slot", mutate: func(r *Request) { r.TimeSlot = "" }, err: ErrInvalidInput},
		{name: "no adults", mutate: func(r *Request) { r.Adults = 0 }, err: ErrInvalidInput},
		{name: "negative children", mutate: func(r *Request) { r.Children = -1 }, err: ErrInvalidInput},
		{name: "unknown branch", mutate: func(r *Request) { r.Branch = "Central Branch" }, err: ErrUnknownBranch},
		{name: "kitchen break slot", mutate: func(r *Request) { r.TimeSlot = "16:30" }, err: ErrUnknownTimeSlot},
		{name: "off-grid slot", mutate: func(r *Request) { r.TimeSlot = "19:15" }, err: ErrUnknownTimeSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestExecute_PolicyRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		fill    int
		err     error
		message string
	}{
		{
			name:    "party too large",
			mutate:  func(r *Request) { r.Adults, r.Children = 10, 3 },
			err:     availability.ErrPartySizeExceeded,
			message: "party size exceeds maximum of 12",
		},
		{
			name:    "date outside window",
			mutate:  func(r *Request) { r.Date = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) },
			err:     availability.ErrDateOutsideWindow,
			message: "date outside allowed booking window",
		},
		{
			name:    "slot full",
			mutate:  func(r *Request) {},
			fill:    5,
			err:     availability.ErrSlotFullyBooked,
			message: "time slot fully booked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			tt.mutate(req)
			f.fillSlot(t, req, tt.fill)

			_, err := f.uc.Execute(context.Background(), req)

			require.ErrorIs(t, err, tt.err)
			var rejection *availability.RejectionError
			require.True(t, errors.As(err, &rejection))
			assert.Equal(t, tt.message, rejection.Message)

			list, err := f.res.List(context.Background(), domain.ReservationsFilter{UserID: &req.UserID})
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestExecute_OtherSlotStillAvailable(t *testing.T) {
	f := newFixture(t)
	full := validRequest()
	f.fillSlot(t, full, 5)

	_, err := f.uc.Execute(context.Background(), full)
	require.ErrorIs(t, err, availability.ErrSlotFullyBooked)

	other := validRequest()
	other.TimeSlot = "19:30"
	_, err = f.uc.Execute(context.Background(), other)
	assert.NoError(t, err)
}

func TestExecute_BlockedUserSeesPenaltyFirst(t *testing.T) {
	f := newFixture(t)
	until := now.Add(90 * time.Second)
	f.setPenalty(t, domain.PenaltyState{ConsecutiveDeletions: 3, CooldownUntil: &until})

	req := validRequest()
	req.Adults = 20
	f.fillSlot(t, req, 5)

	_, err := f.uc.Execute(context.Background(), req)

	require.ErrorIs(t, err, cooldown.ErrCooldownActive)
	var blocked *cooldown.BlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, 2, blocked.MinutesRemaining)
	assert.True(t, blocked.Until.Equal(until))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AdmissionDecisions.WithLabelValues("test", metrics.OutcomeBlocked, "cooldown")))
}

func TestExecute_BlockedUserSeesPenaltyBeforeCatalogErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "kitchen break slot", mutate: func(r *Request) { r.TimeSlot = "16:30" }},
		{name: "unknown branch", mutate: func(r *Request) { r.Branch = "Central Branch" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			until := now.Add(5 * time.Minute)
			f.setPenalty(t, domain.PenaltyState{ConsecutiveDeletions: 3, CooldownUntil: &until})

			req := validRequest()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			var blocked *cooldown.BlockedError
			require.True(t, errors.As(err, &blocked))
			assert.Equal(t, 5, blocked.MinutesRemaining)
			assert.NotErrorIs(t, err, ErrUnknownTimeSlot)
			assert.NotErrorIs(t, err, ErrUnknownBranch)
		})
	}
}

func TestExecute_ExpiredCooldownClearedByBooking(t *testing.T) {
	f := newFixture(t)
	last := now.Add(-15 * time.Minute)
	until := now.Add(-5 * time.Minute)
	f.setPenalty(t, domain.PenaltyState{ConsecutiveDeletions: 3, LastDeletionTime: &last, CooldownUntil: &until})

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	user, err := f.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, user.Penalty.ConsecutiveDeletions)
	assert.Nil(t, user.Penalty.CooldownUntil)
	require.NotNil(t, user.Penalty.LastDeletionTime)
	assert.True(t, user.Penalty.LastDeletionTime.Equal(last))
}

func TestExecute_RejectionKeepsPenaltyCounter(t *testing.T) {
	f := newFixture(t)
	last := now.Add(-time.Minute)
	f.setPenalty(t, domain.PenaltyState{ConsecutiveDeletions: 2, LastDeletionTime: &last})

	req := validRequest()
	req.Adults = 13
	_, err := f.uc.Execute(context.Background(), req)
	require.Error(t, err)

	user, err := f.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, user.Penalty.ConsecutiveDeletions)
}

func TestExecute_UserNotFound(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.UserID = 404

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExecute_ConcurrentRequestsDoNotOverbook(t *testing.T) {
	f := newFixture(t)

	const requests = 10
	for i := int64(1); i <= requests; i++ {
		f.store.AddUser(i)
	}

	var wg sync.WaitGroup
	results := make(chan error, requests)
	start := make(chan struct{})

	for i := int64(1); i <= requests; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			<-start
			req := validRequest()
			req.UserID = userID
			_, err := f.uc.Execute(context.Background(), req)
			results <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(results)

	admitted, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, availability.ErrSlotFullyBooked):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 5, admitted)
	assert.Equal(t, 5, rejected)

	req := validRequest()
	count, err := f.res.CountActiveInSlot(context.Background(), domain.SlotKey{
		Branch:   domain.BranchMongKok,
		Date:     req.Date,
		TimeSlot: "19:00",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

type failingReservations struct {
	*memory.ReservationRepository
}

func (r failingReservations) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	return nil, errors.New("disk full")
}

func TestExecute_StoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.uc.reservationRepo = failingReservations{f.res}
	last := now.Add(-time.Minute)
	f.setPenalty(t, domain.PenaltyState{ConsecutiveDeletions: 2, LastDeletionTime: &last})

	_, err := f.uc.Execute(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrInternal)

	// транзакция откатилась: счетчик отмен не сброшен
	user, err := f.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, user.Penalty.ConsecutiveDeletions)
}

func TestExecute_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Execute(ctx, validRequest())

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, context.Canceled)
}
