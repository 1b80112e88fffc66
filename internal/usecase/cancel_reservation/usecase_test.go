package cancel_reservation

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
	"github.com/m04kA/SMC-ReservationService/internal/policy/cooldown"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
)

var start = time.Date(2025, time.November, 20, 18, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	uc      *UseCase
	clock   *clock
	users   *memory.UserRepository
	res     *memory.ReservationRepository
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.AddUser(1)
	store.AddUser(2)

	users := memory.NewUserRepository(store)
	reservations := memory.NewReservationRepository(store)
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	c := &clock{now: start}

	uc := NewUseCase(reservations, users, store, cooldown.NewTracker(domain.DefaultPenaltyRules()), m, logger.NewNop()).
		WithTimeProvider(c)

	return &fixture{uc: uc, clock: c, users: users, res: reservations, metrics: m}
}

func (f *fixture) book(t *testing.T, userID int64) int64 {
	t.Helper()
	created, err := f.res.Create(context.Background(), &domain.Reservation{
		UserID:   userID,
		Branch:   domain.BranchHoManTin,
		Date:     time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC),
		TimeSlot: "12:00",
		Adults:   2,
		Status:   domain.StatusActive,
	})
	require.NoError(t, err)
	return created.ID
}

func (f *fixture) cancelAt(t *testing.T, at time.Time, reservationID int64) *Response {
	t.Helper()
	f.clock.Set(at)
	resp, err := f.uc.Execute(context.Background(), &Request{UserID: 1, ReservationID: reservationID})
	require.NoError(t, err)
	return resp
}

func (f *fixture) penalty(t *testing.T) domain.PenaltyState {
	t.Helper()
	user, err := f.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	return user.Penalty
}

func TestExecute_CancelsReservation(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, 1)

	resp := f.cancelAt(t, start, id)

	assert.Equal(t, domain.StatusCancelled, resp.Status)
	assert.Equal(t, 1, resp.ConsecutiveDeletions)
	assert.Nil(t, resp.CooldownUntil)

	stored, err := f.res.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.IsCancelled())

	state := f.penalty(t)
	require.NotNil(t, state.LastDeletionTime)
	assert.True(t, state.LastDeletionTime.Equal(start))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Cancellations.WithLabelValues("test")))
}

func TestExecute_ThirdCancellationStartsCooldown(t *testing.T) {
	f := newFixture(t)
	ids := []int64{f.book(t, 1), f.book(t, 1), f.book(t, 1), f.book(t, 1)}

	f.cancelAt(t, start, ids[0])
	f.cancelAt(t, start.Add(5*time.Minute), ids[1])

	third := start.Add(9 * time.Minute)
	resp := f.cancelAt(t, third, ids[2])

	assert.Equal(t, 3, resp.ConsecutiveDeletions)
	require.NotNil(t, resp.CooldownUntil)
	assert.True(t, resp.CooldownUntil.Equal(third.Add(10*time.Minute)))
	assert.Equal(t, 10, resp.MinutesRemaining)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PenaltiesApplied.WithLabelValues("test")))

	fourth := third.Add(time.Minute)
	resp = f.cancelAt(t, fourth, ids[3])

	assert.Equal(t, 4, resp.ConsecutiveDeletions)
	require.NotNil(t, resp.CooldownUntil)
	assert.True(t, resp.CooldownUntil.Equal(fourth.Add(10*time.Minute)))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.PenaltiesApplied.WithLabelValues("test")))
}

func TestExecute_GapResetsCounter(t *testing.T) {
	f := newFixture(t)
	first, second := f.book(t, 1), f.book(t, 1)

	f.cancelAt(t, start, first)
	resp := f.cancelAt(t, start.Add(11*time.Minute), second)

	assert.Equal(t, 1, resp.ConsecutiveDeletions)
}

func TestExecute_NotFoundDoesNotCount(t *testing.T) {
	f := newFixture(t)
	own := f.book(t, 1)
	foreign := f.book(t, 2)

	tests := []struct {
		name string
		id   int64
	}{
		{name: "unknown reservation", id: 999},
		{name: "foreign reservation", id: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), &Request{UserID: 1, ReservationID: tt.id})
			assert.ErrorIs(t, err, ErrReservationNotFound)
		})
	}

	f.cancelAt(t, start, own)

	// повторная отмена той же брони не увеличивает счетчик
	_, err := f.uc.Execute(context.Background(), &Request{UserID: 1, ReservationID: own})
	require.ErrorIs(t, err, ErrReservationNotFound)

	assert.Equal(t, 1, f.penalty(t).ConsecutiveDeletions)

	stored, err := f.res.GetByID(context.Background(), foreign)
	require.NoError(t, err)
	assert.True(t, stored.IsActive())
}

func TestExecute_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), &Request{UserID: 77, ReservationID: 1})

	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), &Request{UserID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{ReservationID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type failingUsers struct {
	*memory.UserRepository
}

func (r failingUsers) SavePenalty(ctx context.Context, userID int64, state domain.PenaltyState) error {
	return errors.New("connection lost")
}

func TestExecute_PenaltySaveFailureRollsBackCancellation(t *testing.T) {
	f := newFixture(t)
	id := f.book(t, 1)
	f.uc.userRepo = failingUsers{f.users}

	_, err := f.uc.Execute(context.Background(), &Request{UserID: 1, ReservationID: id})

	require.ErrorIs(t, err, ErrInternal)

	stored, err := f.res.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.IsActive())
	assert.Zero(t, testutil.ToFloat64(f.metrics.Cancellations.WithLabelValues("test")))
}
