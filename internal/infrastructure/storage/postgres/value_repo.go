package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dcolumn/internal/core/apperror"
	"dcolumn/internal/domain/record"
)

// KeyValueRepo persists dynamic value rows. Every host type stores its
// rows in its own table so (record_id, dynamic_column_id) stays unique
// without mixing host id spaces.
type KeyValueRepo struct {
	txm    *TxManager
	tables map[string]string // host type -> value table
}

var _ record.ValueRepository = (*KeyValueRepo)(nil)

// NewKeyValueRepo creates the value repository with the host-to-table map.
func NewKeyValueRepo(txm *TxManager, tables map[string]string) *KeyValueRepo {
	m := make(map[string]string, len(tables))
	for k, v := range tables {
		m[k] = v
	}
	return &KeyValueRepo{txm: txm, tables: m}
}

var keyValueCols = ExtractDBColumns[record.KeyValue]()

func (r *KeyValueRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *KeyValueRepo) table(hostType string) (string, error) {
	t, ok := r.tables[hostType]
	if !ok {
		return "", apperror.New(apperror.CodeInternal,
			fmt.Sprintf("no value table registered for host type %q", hostType), 500)
	}
	return t, nil
}

// Get returns the row for (record, column), or NOT_FOUND.
func (r *KeyValueRepo) Get(ctx context.Context, hostType string, recordID, columnID int64) (*record.KeyValue, error) {
	table, err := r.table(hostType)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.builder().
		Select(keyValueCols...).
		From(table).
		Where(squirrel.Eq{"record_id": recordID, "dynamic_column_id": columnID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	kv := &record.KeyValue{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), kv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(table, columnID).
				WithDetail("record_id", recordID)
		}
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	return kv, nil
}

// Upsert inserts or updates the single row for (record, column). The
// unique constraint on the pair arbitrates concurrent inserts; losers
// update the winner's row instead.
func (r *KeyValueRepo) Upsert(ctx context.Context, hostType string, kv *record.KeyValue) error {
	table, err := r.table(hostType)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().
		Insert(table).
		Columns("record_id", "dynamic_column_id", "value").
		Values(kv.RecordID, kv.ColumnID, kv.Value).
		Suffix("ON CONFLICT (record_id, dynamic_column_id) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&kv.ID)
	if IsUniqueViolation(err) {
		// Two inserts can still collide before the conflict arbitration
		// sees the winner's row. Retry once; the row exists now.
		err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&kv.ID)
		if IsUniqueViolation(err) {
			return apperror.NewDuplicateValueRow(kv.RecordID, kv.ColumnID).WithCause(err)
		}
	}
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// ListForRecord returns all rows of one host record.
func (r *KeyValueRepo) ListForRecord(ctx context.Context, hostType string, recordID int64) ([]*record.KeyValue, error) {
	table, err := r.table(hostType)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.builder().
		Select(keyValueCols...).
		From(table).
		Where(squirrel.Eq{"record_id": recordID}).
		OrderBy("dynamic_column_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*record.KeyValue
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return rows, nil
}

// DeleteForRecord removes all rows of one host record.
func (r *KeyValueRepo) DeleteForRecord(ctx context.Context, hostType string, recordID int64) error {
	table, err := r.table(hostType)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().
		Delete(table).
		Where(squirrel.Eq{"record_id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete %s rows: %w", table, err)
	}
	return nil
}
