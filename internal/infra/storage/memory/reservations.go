package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationRepository in-memory аналог reservation.Repository
// Ошибки совпадают с ошибками postgres-репозитория.
type ReservationRepository struct {
	store *Store
}

// NewReservationRepository создает репозиторий бронирований поверх store
func NewReservationRepository(store *Store) *ReservationRepository {
	return &ReservationRepository{store: store}
}

// Create сохраняет бронирование и присваивает ему ID
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.store.lock(ctx)()

	r.store.nextID++
	now := r.store.now()

	res.ID = r.store.nextID
	res.Date = domain.DateOnly(res.Date)
	res.CreatedAt = now
	res.UpdatedAt = now
	r.store.reservations[res.ID] = *res

	created := *res
	return &created, nil
}

// GetByID получает бронирование по ID
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.store.lock(ctx)()

	res, ok := r.store.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	return &res, nil
}

// List возвращает бронирования по фильтру, отсортированные по дате, слоту и ID
func (r *ReservationRepository) List(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.store.lock(ctx)()

	result := make([]*domain.Reservation, 0)
	for _, res := range r.store.reservations {
		if !matches(res, filter) {
			continue
		}
		res := res
		result = append(result, &res)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.TimeSlot != b.TimeSlot {
			return a.TimeSlot.IsBefore(b.TimeSlot)
		}
		return a.ID < b.ID
	})

	return result, nil
}

// LockSlot внутри транзакции store все данные уже заблокированы
func (r *ReservationRepository) LockSlot(ctx context.Context, key domain.SlotKey) error {
	if !r.store.inTx(ctx) {
		return reservation.ErrTransaction
	}
	return ctx.Err()
}

// CountActiveInSlot считает активные бронирования в слоте, исключая excludeID
func (r *ReservationRepository) CountActiveInSlot(ctx context.Context, key domain.SlotKey, excludeID *int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer r.store.lock(ctx)()

	count := 0
	for _, res := range r.store.reservations {
		if excludeID != nil && res.ID == *excludeID {
			continue
		}
		if res.IsActive() && res.SlotKey() == normalizeKey(key) {
			count++
		}
	}
	return count, nil
}

// CountActiveByDate возвращает количество активных бронирований по слотам филиала на дату
func (r *ReservationRepository) CountActiveByDate(ctx context.Context, branch domain.Branch, date time.Time) (map[types.TimeString]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.store.lock(ctx)()

	day := domain.DateOnly(date)
	counts := make(map[types.TimeString]int)
	for _, res := range r.store.reservations {
		if res.IsActive() && res.Branch == branch && res.Date.Equal(day) {
			counts[res.TimeSlot]++
		}
	}
	return counts, nil
}

// UpdateStatus меняет статус активного бронирования владельца
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, ownerID int64, status domain.ReservationStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.store.lock(ctx)()

	res, ok := r.store.reservations[id]
	if !ok || !res.IsOwnedBy(ownerID) || !res.IsActive() {
		return reservation.ErrReservationNotFound
	}

	res.Status = status
	res.UpdatedAt = r.store.now()
	r.store.reservations[id] = res
	return nil
}

// Update сохраняет новые параметры активного бронирования владельца
func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.store.lock(ctx)()

	current, ok := r.store.reservations[res.ID]
	if !ok || !current.IsOwnedBy(res.UserID) || !current.IsActive() {
		return nil, reservation.ErrReservationNotFound
	}

	current.Branch = res.Branch
	current.Date = domain.DateOnly(res.Date)
	current.TimeSlot = res.TimeSlot
	current.Adults = res.Adults
	current.Children = res.Children
	current.UpdatedAt = r.store.now()
	r.store.reservations[res.ID] = current

	updated := current
	return &updated, nil
}

func matches(res domain.Reservation, filter domain.ReservationsFilter) bool {
	if filter.UserID != nil && res.UserID != *filter.UserID {
		return false
	}
	if filter.Branch != nil && res.Branch != *filter.Branch {
		return false
	}
	if filter.Date != nil && !res.Date.Equal(domain.DateOnly(*filter.Date)) {
		return false
	}
	if filter.Status != nil && res.Status != *filter.Status {
		return false
	}
	return true
}

func normalizeKey(key domain.SlotKey) domain.SlotKey {
	key.Date = domain.DateOnly(key.Date)
	return key
}
