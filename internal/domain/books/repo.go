package books

import "context"

// Repository is the common persistence surface of the catalog entities.
type Repository[T any] interface {
	Create(ctx context.Context, e T) error
	Update(ctx context.Context, e T) error
	GetByID(ctx context.Context, id int64) (T, error)
	List(ctx context.Context, activeOnly bool) ([]T, error)
	Delete(ctx context.Context, id int64) error
}
