package postgres

import (
	"dcolumn/internal/domain/books"
)

// Book catalog repositories, all riding on BaseRepo.

// NewBookRepo persists books.
func NewBookRepo(txm *TxManager) *BaseRepo[*books.Book] {
	return NewBaseRepo(txm, "books", "title", func() *books.Book { return &books.Book{} })
}

// NewAuthorRepo persists authors.
func NewAuthorRepo(txm *TxManager) *BaseRepo[*books.Author] {
	return NewBaseRepo(txm, "authors", "name", func() *books.Author { return &books.Author{} })
}

// NewPublisherRepo persists publishers.
func NewPublisherRepo(txm *TxManager) *BaseRepo[*books.Publisher] {
	return NewBaseRepo(txm, "publishers", "name", func() *books.Publisher { return &books.Publisher{} })
}

// NewPromotionRepo persists promotions.
func NewPromotionRepo(txm *TxManager) *BaseRepo[*books.Promotion] {
	return NewBaseRepo(txm, "promotions", "name", func() *books.Promotion { return &books.Promotion{} })
}

// Compile-time checks that BaseRepo satisfies the books repository surface.
var (
	_ books.Repository[*books.Book]      = (*BaseRepo[*books.Book])(nil)
	_ books.Repository[*books.Author]    = (*BaseRepo[*books.Author])(nil)
	_ books.Repository[*books.Publisher] = (*BaseRepo[*books.Publisher])(nil)
	_ books.Repository[*books.Promotion] = (*BaseRepo[*books.Promotion])(nil)
)
