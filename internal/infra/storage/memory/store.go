// Package memory хранит бронирования и штрафы в памяти процесса.
// Используется драйвером storage.driver = "memory" и в тестах usecase-ов.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Store общее состояние репозиториев.
// Транзакция держит мьютекс на всё время выполнения, поэтому все транзакции
// выполняются строго последовательно и конфликтов сериализации не бывает.
type Store struct {
	mu sync.Mutex

	reservations map[int64]domain.Reservation
	users        map[int64]domain.User
	nextID       int64

	autoCreateUsers bool
	now             func() time.Time
}

// Option настройка хранилища
type Option func(*Store)

// WithAutoCreateUsers создает пользователя при первом обращении к нему
func WithAutoCreateUsers() Option {
	return func(s *Store) {
		s.autoCreateUsers = true
	}
}

// WithClock задает источник времени для created_at/updated_at
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore создает пустое хранилище
func NewStore(opts ...Option) *Store {
	s := &Store{
		reservations: make(map[int64]domain.Reservation),
		users:        make(map[int64]domain.User),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUser регистрирует пользователя с пустым состоянием штрафов
func (s *Store) AddUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; ok {
		return
	}
	now := s.now()
	s.users[id] = domain.User{ID: id, CreatedAt: now, UpdatedAt: now}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lock захватывает мьютекс, если вызов не находится внутри транзакции этого хранилища
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Do выполняет fn атомарно: при ошибке или панике все изменения откатываются
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, users, nextID := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.reservations, s.users, s.nextID = reservations, users, nextID
			panic(p)
		}
		if err != nil {
			s.reservations, s.users, s.nextID = reservations, users, nextID
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

// DoSerializable в памяти эквивалентен Do
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// DoReadOnly в памяти эквивалентен Do
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

func (s *Store) snapshot() (map[int64]domain.Reservation, map[int64]domain.User, int64) {
	reservations := make(map[int64]domain.Reservation, len(s.reservations))
	for id, r := range s.reservations {
		reservations[id] = r
	}
	users := make(map[int64]domain.User, len(s.users))
	for id, u := range s.users {
		users[id] = copyUser(u)
	}
	return reservations, users, s.nextID
}

func copyUser(u domain.User) domain.User {
	u.Penalty = copyPenalty(u.Penalty)
	return u
}

func copyPenalty(p domain.PenaltyState) domain.PenaltyState {
	if p.LastDeletionTime != nil {
		t := *p.LastDeletionTime
		p.LastDeletionTime = &t
	}
	if p.CooldownUntil != nil {
		t := *p.CooldownUntil
		p.CooldownUntil = &t
	}
	return p
}
