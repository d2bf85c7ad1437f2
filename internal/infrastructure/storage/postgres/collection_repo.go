package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dcolumn/internal/domain/collection"
)

// ColumnCollectionRepo persists collections and their descriptor
// membership in the collection_columns join table.
type ColumnCollectionRepo struct {
	*BaseRepo[*collection.ColumnCollection]
	txm *TxManager
}

var _ collection.Repository = (*ColumnCollectionRepo)(nil)

// NewColumnCollectionRepo creates the collection repository.
func NewColumnCollectionRepo(txm *TxManager) *ColumnCollectionRepo {
	return &ColumnCollectionRepo{
		BaseRepo: NewBaseRepo(txm, "column_collections", "name",
			func() *collection.ColumnCollection { return &collection.ColumnCollection{} }),
		txm: txm,
	}
}

// GetActiveByName returns the active collection with the given name.
func (r *ColumnCollectionRepo) GetActiveByName(ctx context.Context, name string) (*collection.ColumnCollection, error) {
	return r.GetWhere(ctx, name, squirrel.And{
		squirrel.Eq{"name": name},
		squirrel.Eq{"active": true},
	})
}

// SyncColumns reconciles the join table to exactly the given descriptor
// ids. Runs in one transaction so readers never see a half-synced set.
func (r *ColumnCollectionRepo) SyncColumns(ctx context.Context, collectionID int64, columnIDs []int64) error {
	want := make(map[int64]struct{}, len(columnIDs))
	for _, id := range columnIDs {
		want[id] = struct{}{}
	}

	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := r.columnIDs(ctx, collectionID)
		if err != nil {
			return err
		}
		have := make(map[int64]struct{}, len(current))
		for _, id := range current {
			have[id] = struct{}{}
		}

		var toAdd, toRemove []int64
		for id := range want {
			if _, ok := have[id]; !ok {
				toAdd = append(toAdd, id)
			}
		}
		for id := range have {
			if _, ok := want[id]; !ok {
				toRemove = append(toRemove, id)
			}
		}

		if len(toRemove) > 0 {
			sql, args, err := r.Builder().
				Delete("collection_columns").
				Where(squirrel.Eq{"column_collection_id": collectionID}).
				Where(squirrel.Eq{"dynamic_column_id": toRemove}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build membership delete: %w", err)
			}
			if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("remove collection columns: %w", err)
			}
		}

		if len(toAdd) > 0 {
			q := r.Builder().
				Insert("collection_columns").
				Columns("column_collection_id", "dynamic_column_id")
			for _, id := range toAdd {
				q = q.Values(collectionID, id)
			}
			sql, args, err := q.ToSql()
			if err != nil {
				return fmt.Errorf("build membership insert: %w", err)
			}
			if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("add collection columns: %w", err)
			}
		}
		return nil
	})
}

// LoadColumnIDs fills ColumnIDs from the join table.
func (r *ColumnCollectionRepo) LoadColumnIDs(ctx context.Context, c *collection.ColumnCollection) error {
	ids, err := r.columnIDs(ctx, c.ID)
	if err != nil {
		return err
	}
	c.ColumnIDs = ids
	return nil
}

func (r *ColumnCollectionRepo) columnIDs(ctx context.Context, collectionID int64) ([]int64, error) {
	sql, args, err := r.Builder().
		Select("dynamic_column_id").
		From("collection_columns").
		Where(squirrel.Eq{"column_collection_id": collectionID}).
		OrderBy("dynamic_column_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build membership query: %w", err)
	}

	var ids []int64
	if err := pgxscan.Select(ctx, r.Querier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("load collection columns: %w", err)
	}
	return ids, nil
}

// ListUnassignedColumnIDs returns descriptor ids that belong to no
// collection.
func (r *ColumnCollectionRepo) ListUnassignedColumnIDs(ctx context.Context) ([]int64, error) {
	sql, args, err := r.Builder().
		Select("dc.id").
		From("dynamic_columns dc").
		LeftJoin("collection_columns cc ON cc.dynamic_column_id = dc.id").
		Where("cc.dynamic_column_id IS NULL").
		Where(squirrel.Eq{"dc.active": true}).
		OrderBy("dc.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unassigned query: %w", err)
	}

	var ids []int64
	if err := pgxscan.Select(ctx, r.Querier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list unassigned columns: %w", err)
	}
	return ids, nil
}
