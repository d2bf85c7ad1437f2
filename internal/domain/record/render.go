package record

import (
	"context"
	"strconv"

	"dcolumn/internal/choices"
	"dcolumn/internal/core/apperror"
	"dcolumn/internal/domain/collection"
)

// DisplayContext is the payload a UI needs to render dynamic fields.
// DynamicColumns carries the sentinel-headed option lists of every choice
// column keyed by slug; Relations carries the serialized descriptors keyed
// by pk, each with its stored value when rendered for an existing record.
type DisplayContext struct {
	ClassName      string                           `json:"class_name"`
	DynamicColumns map[string][]choices.Option      `json:"dynamicColumns"`
	Relations      map[string]collection.ColumnView `json:"relations"`
}

// Renderer produces display-ready payloads. The Store implements it;
// alternative front ends can supply their own.
type Renderer interface {
	// CollectionContext renders the descriptors of a collection for a
	// blank form, no record values included.
	CollectionContext(ctx context.Context, collectionName string) (*DisplayContext, error)

	// RecordContext renders the descriptors plus the host's stored values.
	RecordContext(ctx context.Context, host Host) (*DisplayContext, error)
}

// CollectionContext implements Renderer.
func (s *Store) CollectionContext(ctx context.Context, collectionName string) (*DisplayContext, error) {
	cols, err := s.collections.DescriptorsFor(ctx, collectionName, false)
	if err != nil {
		return nil, err
	}
	choiceMaps, err := s.collections.ChoiceMaps(ctx, cols)
	if err != nil {
		return nil, err
	}
	views := collection.Serialize(cols, s.registry)
	return &DisplayContext{
		ClassName:      collectionName,
		DynamicColumns: choiceMaps,
		Relations:      collection.ViewMap(views, false),
	}, nil
}

// RecordContext implements Renderer.
func (s *Store) RecordContext(ctx context.Context, host Host) (*DisplayContext, error) {
	name, ok := s.registry.CollectionName(host.HostType())
	if !ok {
		return nil, apperror.NewCollectionMissing(host.HostType())
	}
	dc, err := s.CollectionContext(ctx, name)
	if err != nil {
		return nil, err
	}
	values, err := s.SerializeValues(ctx, host, true)
	if err != nil {
		return nil, err
	}
	for pk, view := range dc.Relations {
		if v, ok := values[view.Slug]; ok {
			view.Value = v
			dc.Relations[pk] = view
		}
	}
	return dc, nil
}

// RelationsBySlug rekeys a context's descriptor map by slug, the shape
// template-driven front ends prefer.
func (dc *DisplayContext) RelationsBySlug() map[string]collection.ColumnView {
	out := make(map[string]collection.ColumnView, len(dc.Relations))
	for _, view := range dc.Relations {
		out[view.Slug] = view
	}
	return out
}

// PKKey formats a descriptor pk the way Relations keys it.
func PKKey(pk int64) string { return strconv.FormatInt(pk, 10) }
