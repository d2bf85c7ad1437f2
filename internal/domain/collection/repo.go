package collection

import "context"

// Repository persists collections and their descriptor membership.
type Repository interface {
	Create(ctx context.Context, c *ColumnCollection) error
	Update(ctx context.Context, c *ColumnCollection) error
	GetByID(ctx context.Context, id int64) (*ColumnCollection, error)

	// GetActiveByName returns the active collection with the given name,
	// or a NOT_FOUND error.
	GetActiveByName(ctx context.Context, name string) (*ColumnCollection, error)

	List(ctx context.Context, activeOnly bool) ([]*ColumnCollection, error)
	Delete(ctx context.Context, id int64) error

	// SyncColumns reconciles the join table to exactly the given descriptor
	// ids, adding and removing memberships in one transaction.
	SyncColumns(ctx context.Context, collectionID int64, columnIDs []int64) error

	// LoadColumnIDs fills ColumnIDs from the join table.
	LoadColumnIDs(ctx context.Context, c *ColumnCollection) error

	// ListUnassignedColumnIDs returns descriptor ids that belong to no
	// collection at all.
	ListUnassignedColumnIDs(ctx context.Context) ([]int64, error)
}
