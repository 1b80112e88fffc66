package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

const tableUsers = "users"

// Repository репозиторий состояния штрафов пользователей
type Repository struct {
	db         DBExecutor
	autoCreate bool
}

// Option настройка репозитория
type Option func(*Repository)

// WithAutoCreate создает запись пользователя при первом обращении.
// Учетные записи ведет сервис авторизации, здесь хранится только состояние штрафов.
func WithAutoCreate() Option {
	return func(r *Repository) {
		r.autoCreate = true
	}
}

// NewRepository создает новый экземпляр репозитория пользователей
func NewRepository(db DBExecutor, opts ...Option) *Repository {
	r := &Repository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetByID получает пользователя по ID
// Внутри транзакции строка блокируется (FOR UPDATE), чтобы параллельные отмены
// и бронирования одного пользователя выполнялись последовательно.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if r.autoCreate {
		if err := r.ensure(ctx, id); err != nil {
			return nil, err
		}
	}

	selectBuilder := psqlbuilder.Select(
		"id",
		"consecutive_deletions",
		"last_deletion_time",
		"cooldown_until",
		"created_at",
		"updated_at",
	).
		From(tableUsers).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var user domain.User
	var lastDeletion, cooldownUntil, createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Penalty.ConsecutiveDeletions,
		&lastDeletion,
		&cooldownUntil,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan user: %w", ErrScanRow, err)
	}

	user.Penalty.LastDeletionTime = nullTimePtr(lastDeletion)
	user.Penalty.CooldownUntil = nullTimePtr(cooldownUntil)
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time

	return &user, nil
}

// SavePenalty сохраняет состояние штрафов пользователя целиком
func (r *Repository) SavePenalty(ctx context.Context, userID int64, state domain.PenaltyState) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableUsers).
		Set("consecutive_deletions", state.ConsecutiveDeletions).
		Set("last_deletion_time", state.LastDeletionTime).
		Set("cooldown_until", state.CooldownUntil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SavePenalty - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SavePenalty - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SavePenalty - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ensure создает пустую запись пользователя, если её еще нет
func (r *Repository) ensure(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableUsers).
		Columns("id").
		Values(id).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ensure - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ensure - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
