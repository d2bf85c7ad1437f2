// Package entity provides base types for all domain entities.
package entity

import (
	"context"
	"time"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Identifiable exposes the primary key of a persisted entity.
type Identifiable interface {
	GetID() int64
}

// Base contains common fields for all persisted entities: primary key,
// soft-delete flag, optimistic locking version and audit fields.
type Base struct {
	// ID is the primary key (bigserial)
	ID int64 `db:"id" json:"id"`

	// Active is the soft-delete flag; inactive rows are hidden from normal reads
	Active bool `db:"active" json:"active"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	// Audit fields
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatorID int64     `db:"creator_id" json:"creatorId,omitempty"`
	UpdaterID int64     `db:"updater_id" json:"updaterId,omitempty"`
}

// NewBase creates a Base with audit timestamps set to now.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		Active:    true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// InitDefaults fills the standard fields before the first save. Entities
// built from request bodies arrive with a zero Base.
func (b *Base) InitDefaults() {
	if b.Version == 0 {
		b.Version = 1
	}
	if b.CreatedAt.IsZero() {
		now := time.Now().UTC()
		b.CreatedAt = now
		b.UpdatedAt = now
		b.Active = true
	}
}

// GetID implements Identifiable.
func (b *Base) GetID() int64 { return b.ID }

// SetID records the generated primary key after insert.
func (b *Base) SetID(id int64) { b.ID = id }

// Touch updates the UpdatedAt timestamp and increments version.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// Deactivate sets the soft-delete flag.
func (b *Base) Deactivate() { b.Active = false }

// Reactivate clears the soft-delete flag.
func (b *Base) Reactivate() { b.Active = true }

// SetAudit records the acting user on create or update.
func (b *Base) SetAudit(userID int64) {
	if b.CreatorID == 0 {
		b.CreatorID = userID
	}
	b.UpdaterID = userID
}
