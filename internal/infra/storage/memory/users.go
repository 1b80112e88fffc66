package memory

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/user"
)

// UserRepository in-memory аналог user.Repository
type UserRepository struct {
	store *Store
}

// NewUserRepository создает репозиторий пользователей поверх store
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.store.lock(ctx)()

	u, ok := r.store.users[id]
	if !ok {
		if !r.store.autoCreateUsers {
			return nil, user.ErrUserNotFound
		}
		now := r.store.now()
		u = domain.User{ID: id, CreatedAt: now, UpdatedAt: now}
		r.store.users[id] = u
	}

	found := copyUser(u)
	return &found, nil
}

// SavePenalty сохраняет состояние штрафов пользователя
func (r *UserRepository) SavePenalty(ctx context.Context, userID int64, state domain.PenaltyState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.store.lock(ctx)()

	u, ok := r.store.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}

	u.Penalty = copyPenalty(state)
	u.UpdatedAt = r.store.now()
	r.store.users[userID] = u
	return nil
}
