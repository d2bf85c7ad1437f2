package dcolumn

import "context"

// Repository persists dynamic column descriptors.
type Repository interface {
	Create(ctx context.Context, dc *DynamicColumn) error
	Update(ctx context.Context, dc *DynamicColumn) error
	GetByID(ctx context.Context, id int64) (*DynamicColumn, error)
	GetBySlug(ctx context.Context, slug string) (*DynamicColumn, error)
	List(ctx context.Context, activeOnly bool) ([]*DynamicColumn, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*DynamicColumn, error)
	Delete(ctx context.Context, id int64) error
}
