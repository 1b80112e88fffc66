package reservation

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
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const tableReservations = "reservations"

var reservationColumns = []string{
	"id",
	"user_id",
	"branch",
	"booking_date",
	"time_slot",
	"adults",
	"children",
	"status",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями столов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Проверка вместимости слота должна выполняться в той же транзакции после LockSlot.
func (r *Repository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableReservations).
		Columns(
			"user_id",
			"branch",
			"booking_date",
			"time_slot",
			"adults",
			"children",
			"status",
		).
		Values(
			reservation.UserID,
			reservation.Branch,
			domain.DateOnly(reservation.Date),
			reservation.TimeSlot,
			reservation.Adults,
			reservation.Children,
			reservation.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&reservation.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return reservation, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return reservation, nil
}

// List получает бронирования с фильтрацией
// Поддерживает фильтрацию по владельцу, филиалу, дате и статусу.
// Результат отсортирован по дате и времени слота (ASC), затем по ID.
//
// Примеры использования:
//
// 1. Активные бронирования пользователя:
//    status := domain.StatusActive
//    filter := domain.ReservationsFilter{UserID: &userID, Status: &status}
//
// 2. Все бронирования филиала на дату:
//    filter := domain.ReservationsFilter{Branch: &branch, Date: &date}
func (r *Repository) List(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		OrderBy("booking_date ASC", "time_slot ASC", "id ASC")

	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Branch != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"branch": *filter.Branch})
	}
	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"booking_date": domain.DateOnly(*filter.Date)})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// LockSlot берет транзакционную advisory-блокировку на (филиал, дата, слот).
// Postgres не допускает FOR UPDATE вместе с агрегатами, поэтому подсчет занятых мест
// сериализуется этой блокировкой. Блокировка снимается при завершении транзакции.
func (r *Repository) LockSlot(ctx context.Context, key domain.SlotKey) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: LockSlot - slot %s: no active transaction", ErrTransaction, key)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(hashtext(?))", key.String())).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockSlot - build lock query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockSlot - execute lock: %w", ErrExecQuery, err)
	}

	return nil
}

// CountActiveInSlot считает активные бронирования в слоте
// excludeID исключает бронирование из подсчета (используется при редактировании)
func (r *Repository) CountActiveInSlot(ctx context.Context, key domain.SlotKey, excludeID *int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("COUNT(*)").
		From(tableReservations).
		Where(squirrel.Eq{
			"branch":       key.Branch,
			"booking_date": domain.DateOnly(key.Date),
			"time_slot":    key.TimeSlot,
			"status":       domain.StatusActive,
		})

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveInSlot - build select query: %w", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveInSlot - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// CountActiveByDate возвращает количество активных бронирований по слотам филиала на дату
// Слоты без бронирований в результат не попадают
func (r *Repository) CountActiveByDate(ctx context.Context, branch domain.Branch, date time.Time) (map[types.TimeString]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("time_slot", "COUNT(*)").
		From(tableReservations).
		Where(squirrel.Eq{
			"branch":       branch,
			"booking_date": domain.DateOnly(date),
			"status":       domain.StatusActive,
		}).
		GroupBy("time_slot").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveByDate - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveByDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[types.TimeString]int)
	for rows.Next() {
		var slot types.TimeString
		var count int
		if err := rows.Scan(&slot, &count); err != nil {
			return nil, fmt.Errorf("%w: CountActiveByDate - scan row: %w", ErrScanRow, err)
		}
		counts[slot] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountActiveByDate - rows error: %w", ErrScanRow, err)
	}

	return counts, nil
}

// UpdateStatus меняет статус активного бронирования владельца
// Возвращает ErrReservationNotFound, если бронирование не найдено, чужое или уже не активно
func (r *Repository) UpdateStatus(ctx context.Context, id int64, ownerID int64, status domain.ReservationStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableReservations).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":      id,
			"user_id": ownerID,
			"status":  domain.StatusActive,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// Update сохраняет новые филиал, дату, слот и состав гостей активного бронирования владельца
func (r *Repository) Update(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableReservations).
		Set("branch", reservation.Branch).
		Set("booking_date", domain.DateOnly(reservation.Date)).
		Set("time_slot", reservation.TimeSlot).
		Set("adults", reservation.Adults).
		Set("children", reservation.Children).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":      reservation.ID,
			"user_id": reservation.UserID,
			"status":  domain.StatusActive,
		}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	reservation.UpdatedAt = updatedAt.Time

	return reservation, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var reservation domain.Reservation
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.Branch,
		&reservation.Date,
		&reservation.TimeSlot,
		&reservation.Adults,
		&reservation.Children,
		&reservation.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.Date = domain.DateOnly(reservation.Date)
	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return &reservation, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func (r *Repository) scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}
