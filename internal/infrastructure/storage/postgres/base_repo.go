package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"dcolumn/internal/core/apperror"
)

// Entity is the minimal persistence surface of a domain entity.
type Entity interface {
	GetID() int64
	SetID(int64)
}

// BaseRepo provides common CRUD over a bigserial-keyed table with the
// standard active/version columns. Embed it in concrete repositories.
type BaseRepo[T Entity] struct {
	txm       *TxManager
	tableName string
	cols      []string
	orderBy   string
	newFn     func() T
}

// NewBaseRepo creates a base repository. orderBy names the default listing
// column.
func NewBaseRepo[T Entity](txm *TxManager, tableName, orderBy string, newFn func() T) *BaseRepo[T] {
	return &BaseRepo[T]{
		txm:       txm,
		tableName: tableName,
		cols:      ExtractDBColumns[T](),
		orderBy:   orderBy,
		newFn:     newFn,
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *BaseRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the active transaction or the pool.
func (r *BaseRepo[T]) Querier(ctx context.Context) Querier {
	return r.txm.GetQuerier(ctx)
}

// TableName returns the backing table.
func (r *BaseRepo[T]) TableName() string { return r.tableName }

func (r *BaseRepo[T]) insertMap(e T) map[string]any {
	data := StructToMap(e)
	delete(data, "id") // bigserial
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if col == "id" {
			continue
		}
		if v, ok := data[col]; ok {
			filtered[col] = v
		}
	}
	return filtered
}

// Create inserts the entity and records the generated id on it.
func (r *BaseRepo[T]) Create(ctx context.Context, e T) error {
	if init, ok := any(e).(interface{ InitDefaults() }); ok {
		init.InitDefaults()
	}
	data := r.insertMap(e)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity for %s", r.tableName)
	}

	sql, args, err := r.Builder().
		Insert(r.tableName).
		SetMap(data).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return r.mapWriteError(err)
	}
	e.SetID(id)
	return nil
}

// Update modifies the entity with optimistic locking on version.
func (r *BaseRepo[T]) Update(ctx context.Context, e T) error {
	data := StructToMap(e)
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity in %s has no int version field", r.tableName)
	}

	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if col == "id" || col == "version" {
			continue
		}
		if v, ok := data[col]; ok {
			filtered[col] = v
		}
	}

	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": e.GetID()}).
		// The entity carries the already-incremented version; expect the
		// previous one in the row.
		Where(squirrel.Eq{"version": version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteError(err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, e.GetID())
	}
	return nil
}

func (r *BaseRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.cols...).From(r.tableName)
}

// GetByID retrieves one entity.
func (r *BaseRepo[T]) GetByID(ctx context.Context, id int64) (T, error) {
	return r.GetBy(ctx, "id", id)
}

// GetBy retrieves one entity by an arbitrary column.
func (r *BaseRepo[T]) GetBy(ctx context.Context, column string, value any) (T, error) {
	return r.GetWhere(ctx, value, squirrel.Eq{column: value})
}

// GetWhere retrieves one entity matching a predicate. notFoundKey labels
// the NOT_FOUND error.
func (r *BaseRepo[T]) GetWhere(ctx context.Context, notFoundKey any, pred squirrel.Sqlizer) (T, error) {
	e := r.newFn()

	sql, args, err := r.baseSelect().
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.tableName, notFoundKey)
		}
		return e, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return e, nil
}

// List retrieves entities ordered by the default column.
func (r *BaseRepo[T]) List(ctx context.Context, activeOnly bool) ([]T, error) {
	q := r.baseSelect().OrderBy(r.orderBy)
	if activeOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return items, nil
}

// ListByIDs retrieves entities by id set, ordered by the default column.
func (r *BaseRepo[T]) ListByIDs(ctx context.Context, ids []int64) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": ids}).
		OrderBy(r.orderBy).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s by ids: %w", r.tableName, err)
	}
	return items, nil
}

// Delete soft-deletes by clearing the active flag.
func (r *BaseRepo[T]) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.Builder().
		Update(r.tableName).
		Set("active", false).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, id)
	}
	return nil
}

func (r *BaseRepo[T]) mapWriteError(err error) error {
	if IsUniqueViolation(err) {
		return apperror.NewConflict(fmt.Sprintf("duplicate row in %s", r.tableName)).WithCause(err)
	}
	return fmt.Errorf("write %s: %w", r.tableName, err)
}

// IsUniqueViolation reports a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
