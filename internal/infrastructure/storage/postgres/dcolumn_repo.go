package postgres

import (
	"context"

	"dcolumn/internal/domain/dcolumn"
)

// DynamicColumnRepo persists column descriptors.
type DynamicColumnRepo struct {
	*BaseRepo[*dcolumn.DynamicColumn]
}

var _ dcolumn.Repository = (*DynamicColumnRepo)(nil)

// NewDynamicColumnRepo creates the descriptor repository.
func NewDynamicColumnRepo(txm *TxManager) *DynamicColumnRepo {
	return &DynamicColumnRepo{
		BaseRepo: NewBaseRepo(txm, "dynamic_columns", "name",
			func() *dcolumn.DynamicColumn { return &dcolumn.DynamicColumn{} }),
	}
}

// GetBySlug retrieves one descriptor by its derived slug.
func (r *DynamicColumnRepo) GetBySlug(ctx context.Context, slug string) (*dcolumn.DynamicColumn, error) {
	return r.GetBy(ctx, "slug", slug)
}
