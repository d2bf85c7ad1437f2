// Package collection groups dynamic column descriptors into named sets,
// each bound to exactly one host entity type.
package collection

import (
	"context"
	"strings"

	"dcolumn/internal/core/apperror"
	"dcolumn/internal/core/entity"
	"dcolumn/internal/domain/dcolumn"
)

// ColumnCollection is a named set of column descriptors for one host type.
// At most one active collection per host type is honored at runtime.
type ColumnCollection struct {
	entity.Base

	// Name identifies the collection ("Books", "Suppliers").
	Name string `db:"name" json:"name"`

	// RelatedModel is the host entity type name this collection serves.
	RelatedModel string `db:"related_model" json:"relatedModel"`

	// ColumnIDs is the descriptor membership, loaded from the join table.
	ColumnIDs []int64 `db:"-" json:"columnIds,omitempty"`

	// Columns carries the loaded descriptors when the caller asked for them.
	Columns []*dcolumn.DynamicColumn `db:"-" json:"columns,omitempty"`
}

// Validate implements entity.Validatable.
func (c *ColumnCollection) Validate(_ context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("collection name must not be empty")
	}
	if strings.TrimSpace(c.RelatedModel) == "" {
		return apperror.NewValidation("collection must name a related model").
			WithDetail("name", c.Name)
	}
	return nil
}

// HasColumn reports whether the descriptor id is a member.
func (c *ColumnCollection) HasColumn(id int64) bool {
	for _, cid := range c.ColumnIDs {
		if cid == id {
			return true
		}
	}
	return false
}
