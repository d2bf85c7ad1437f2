// Package record stores and retrieves the dynamic values of host entities.
// A host embeds CollectionRecord and gains typed access to its key/value
// rows through the Store service.
package record

import (
	"context"
	"time"
)

// KeyValue is one stored dynamic value: opaque text bound to a host record
// and a column descriptor. Interpretation happens at the edges, driven by
// the descriptor's value type.
type KeyValue struct {
	ID        int64     `db:"id" json:"id"`
	RecordID  int64     `db:"record_id" json:"recordId"`
	ColumnID  int64     `db:"dynamic_column_id" json:"columnId"`
	Value     string    `db:"value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Host is implemented by entities that carry dynamic values.
type Host interface {
	GetID() int64

	// HostType names the entity type for collection binding and value
	// table routing ("Book").
	HostType() string

	// Record returns the embedded collection record state.
	Record() *CollectionRecord
}

// pendingWrite is a Set captured before the host row exists.
type pendingWrite struct {
	slug  string
	value any
	force bool
}

// CollectionRecord is embedded in host entities. It queues writes made
// before the host has a primary key; Store.Flush drains the queue in
// arrival order once the host is saved.
type CollectionRecord struct {
	pending []pendingWrite
}

// Defer queues a write for the next Flush.
func (cr *CollectionRecord) Defer(slug string, value any, force bool) {
	cr.pending = append(cr.pending, pendingWrite{slug: slug, value: value, force: force})
}

// PendingCount reports queued writes awaiting Flush.
func (cr *CollectionRecord) PendingCount() int {
	return len(cr.pending)
}

func (cr *CollectionRecord) takePending() []pendingWrite {
	p := cr.pending
	cr.pending = nil
	return p
}

// ValueRepository persists key/value rows. Each host type has its own
// value table; the hostType argument routes to it.
type ValueRepository interface {
	// Get returns the row for (record, column), or a NOT_FOUND error.
	Get(ctx context.Context, hostType string, recordID, columnID int64) (*KeyValue, error)

	// Upsert inserts or updates the single row for (record, column).
	// A lost insert race surfaces as DUPLICATE_VALUE_ROW after one retry.
	Upsert(ctx context.Context, hostType string, kv *KeyValue) error

	// ListForRecord returns all rows of one host record.
	ListForRecord(ctx context.Context, hostType string, recordID int64) ([]*KeyValue, error)

	// DeleteForRecord removes all rows of one host record.
	DeleteForRecord(ctx context.Context, hostType string, recordID int64) error
}
