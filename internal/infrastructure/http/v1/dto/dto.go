// Package dto defines request and response shapes for the v1 API.
package dto

import (
	"time"

	"dcolumn/internal/domain/books"
	"dcolumn/internal/domain/collection"
	"dcolumn/internal/domain/dcolumn"
)

// LoginRequest carries credentials for token issuance.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the signed API token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterUserRequest creates an API account.
type RegisterUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"isAdmin"`
}

// DynamicColumnRequest creates or updates a column descriptor. The slug is
// always derived server-side.
type DynamicColumnRequest struct {
	Name          string `json:"name" binding:"required"`
	PreferredSlug string `json:"preferredSlug"`
	ValueType     int    `json:"valueType" binding:"required"`
	RelationID    *int   `json:"relationId"`
	Required      bool   `json:"required"`
	StoreRelation bool   `json:"storeRelation"`
	Location      string `json:"location"`
	Order         int    `json:"order"`
}

// ToModel builds the descriptor entity.
func (r *DynamicColumnRequest) ToModel() *dcolumn.DynamicColumn {
	return &dcolumn.DynamicColumn{
		Name:          r.Name,
		PreferredSlug: r.PreferredSlug,
		ValueType:     dcolumn.ValueType(r.ValueType),
		RelationID:    r.RelationID,
		Required:      r.Required,
		StoreRelation: r.StoreRelation,
		Location:      r.Location,
		Order:         r.Order,
	}
}

// CollectionRequest creates or updates a column collection and its
// descriptor membership.
type CollectionRequest struct {
	Name         string  `json:"name" binding:"required"`
	RelatedModel string  `json:"relatedModel" binding:"required"`
	ColumnIDs    []int64 `json:"columnIds"`
}

// ToModel builds the collection entity.
func (r *CollectionRequest) ToModel() *collection.ColumnCollection {
	return &collection.ColumnCollection{
		Name:         r.Name,
		RelatedModel: r.RelatedModel,
		ColumnIDs:    r.ColumnIDs,
	}
}

// BookRequest creates or updates a book. Values holds the dynamic form
// input keyed by column slug.
type BookRequest struct {
	Title       string            `json:"title" binding:"required"`
	AuthorID    *int64            `json:"authorId"`
	PublisherID *int64            `json:"publisherId"`
	ISBN10      string            `json:"isbn10"`
	ISBN13      string            `json:"isbn13"`
	Values      map[string]string `json:"values"`
}

// ToModel builds the book entity. Dynamic values are applied separately.
func (r *BookRequest) ToModel() *books.Book {
	return &books.Book{
		Title:       r.Title,
		AuthorID:    r.AuthorID,
		PublisherID: r.PublisherID,
		ISBN10:      r.ISBN10,
		ISBN13:      r.ISBN13,
	}
}

// NamedRequest creates a simple named catalog entity.
type NamedRequest struct {
	Name string `json:"name" binding:"required"`
}

// PromotionRequest creates a promotion.
type PromotionRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

// ToModel builds the promotion entity.
func (r *PromotionRequest) ToModel() *books.Promotion {
	return &books.Promotion{
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}
