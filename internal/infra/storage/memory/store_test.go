package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/user"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var christmasEve = time.Date(2025, time.December, 24, 0, 0, 0, 0, time.UTC)

func newReservation(userID int64, slot types.TimeString) *domain.Reservation {
	return &domain.Reservation{
		UserID:   userID,
		Branch:   domain.BranchMongKok,
		Date:     christmasEve,
		TimeSlot: slot,
		Adults:   2,
		Status:   domain.StatusActive,
	}
}

func TestReservationRepository_CreateAndCount(t *testing.T) {
	store := NewStore()
	repo := NewReservationRepository(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, newReservation(1, "19:00"))
		require.NoError(t, err)
	}
	other, err := repo.Create(ctx, newReservation(2, "19:30"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), other.ID)

	key := domain.SlotKey{Branch: domain.BranchMongKok, Date: christmasEve.Add(3 * time.Hour), TimeSlot: "19:00"}
	count, err := repo.CountActiveInSlot(ctx, key, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = repo.CountActiveInSlot(ctx, key, ptr.Ptr(int64(1)))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	counts, err := repo.CountActiveByDate(ctx, domain.BranchMongKok, christmasEve)
	require.NoError(t, err)
	assert.Equal(t, map[types.TimeString]int{"19:00": 3, "19:30": 1}, counts)
}

func TestReservationRepository_CancelledNotCounted(t *testing.T) {
	store := NewStore()
	repo := NewReservationRepository(store)
	ctx := context.Background()

	created, err := repo.Create(ctx, newReservation(1, "12:00"))
	require.NoError(t, err)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, created.ID, 2, domain.StatusCancelled), reservation.ErrReservationNotFound)
	require.NoError(t, repo.UpdateStatus(ctx, created.ID, 1, domain.StatusCancelled))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, created.ID, 1, domain.StatusCancelled), reservation.ErrReservationNotFound)

	count, err := repo.CountActiveInSlot(ctx, created.SlotKey(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCancelled())
}

func TestReservationRepository_ListSorted(t *testing.T) {
	store := NewStore()
	repo := NewReservationRepository(store)
	ctx := context.Background()

	late := newReservation(1, "20:00")
	early := newReservation(1, "12:30")
	nextDay := newReservation(1, "12:00")
	nextDay.Date = christmasEve.AddDate(0, 0, 1)
	foreign := newReservation(2, "12:00")

	for _, r := range []*domain.Reservation{nextDay, late, early, foreign} {
		_, err := repo.Create(ctx, r)
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, domain.ReservationsFilter{UserID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, types.TimeString("12:30"), list[0].TimeSlot)
	assert.Equal(t, types.TimeString("20:00"), list[1].TimeSlot)
	assert.Equal(t, types.TimeString("12:00"), list[2].TimeSlot)

	list, err = repo.List(ctx, domain.ReservationsFilter{Branch: ptr.Ptr(domain.BranchMongKok), Date: ptr.Ptr(christmasEve)})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestReservationRepository_Update(t *testing.T) {
	store := NewStore()
	repo := NewReservationRepository(store)
	ctx := context.Background()

	created, err := repo.Create(ctx, newReservation(1, "12:00"))
	require.NoError(t, err)

	change := *created
	change.TimeSlot = "13:00"
	change.Children = 2
	updated, err := repo.Update(ctx, &change)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("13:00"), updated.TimeSlot)
	assert.Equal(t, 4, updated.PartySize())

	change.UserID = 9
	_, err = repo.Update(ctx, &change)
	assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
}

func TestReservationRepository_LockSlotNeedsTransaction(t *testing.T) {
	store := NewStore()
	repo := NewReservationRepository(store)
	key := domain.SlotKey{Branch: domain.BranchMongKok, Date: christmasEve, TimeSlot: "12:00"}

	assert.ErrorIs(t, repo.LockSlot(context.Background(), key), reservation.ErrTransaction)

	err := store.DoSerializable(context.Background(), func(ctx context.Context) error {
		return repo.LockSlot(ctx, key)
	})
	assert.NoError(t, err)
}

func TestUserRepository(t *testing.T) {
	store := NewStore()
	repo := NewUserRepository(store)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.ErrorIs(t, repo.SavePenalty(ctx, 1, domain.PenaltyState{}), user.ErrUserNotFound)

	store.AddUser(1)
	until := christmasEve.Add(time.Hour)
	require.NoError(t, repo.SavePenalty(ctx, 1, domain.PenaltyState{ConsecutiveDeletions: 3, CooldownUntil: &until}))

	// изменение возвращенного значения не должно затрагивать хранилище
	until = until.Add(time.Hour)

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, u.Penalty.ConsecutiveDeletions)
	assert.True(t, u.Penalty.CooldownUntil.Equal(christmasEve.Add(time.Hour)))
}

func TestUserRepository_AutoCreate(t *testing.T) {
	store := NewStore(WithAutoCreateUsers())
	repo := NewUserRepository(store)

	u, err := repo.GetByID(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Zero(t, u.Penalty.ConsecutiveDeletions)
}

func TestStore_RollbackOnError(t *testing.T) {
	store := NewStore()
	store.AddUser(1)
	reservations := NewReservationRepository(store)
	users := NewUserRepository(store)
	failure := errors.New("boom")

	err := store.DoSerializable(context.Background(), func(ctx context.Context) error {
		if _, err := reservations.Create(ctx, newReservation(1, "12:00")); err != nil {
			return err
		}
		if err := users.SavePenalty(ctx, 1, domain.PenaltyState{ConsecutiveDeletions: 5}); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)

	list, err := reservations.List(context.Background(), domain.ReservationsFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	u, err := users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, u.Penalty.ConsecutiveDeletions)

	created, err := reservations.Create(context.Background(), newReservation(1, "12:00"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestStore_RollbackOnPanic(t *testing.T) {
	store := NewStore()
	reservations := NewReservationRepository(store)

	assert.Panics(t, func() {
		_ = store.Do(context.Background(), func(ctx context.Context) error {
			_, _ = reservations.Create(ctx, newReservation(1, "12:00"))
			panic("boom")
		})
	})

	list, err := reservations.List(context.Background(), domain.ReservationsFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_NestedTransactionReusesOuter(t *testing.T) {
	store := NewStore()
	reservations := NewReservationRepository(store)

	err := store.Do(context.Background(), func(ctx context.Context) error {
		return store.DoSerializable(ctx, func(ctx context.Context) error {
			_, err := reservations.Create(ctx, newReservation(1, "12:00"))
			return err
		})
	})
	require.NoError(t, err)

	list, err := reservations.List(context.Background(), domain.ReservationsFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_CancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Do(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
