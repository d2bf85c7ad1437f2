package collection

import (
	"context"
	"sort"
	"strconv"

	"dcolumn/internal/choices"
	"dcolumn/internal/core/apperror"
	appctx "dcolumn/internal/core/context"
	"dcolumn/internal/core/tx"
	"dcolumn/internal/domain/dcolumn"
	"dcolumn/pkg/logger"
)

// Service manages collections and answers the central runtime question:
// which descriptors apply to a given host type right now.
type Service struct {
	repo     Repository
	columns  dcolumn.Repository
	registry *choices.Registry
	txr      tx.Runner
	audit    dcolumn.Auditor
	log      *logger.Logger
}

// NewService creates a collection service.
func NewService(repo Repository, columns dcolumn.Repository, registry *choices.Registry, txr tx.Runner, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		columns:  columns,
		registry: registry,
		txr:      txr,
		log:      log.WithComponent("collection.service"),
	}
}

// WithAuditor attaches an optional change recorder.
func (s *Service) WithAuditor(a dcolumn.Auditor) *Service {
	s.audit = a
	return s
}

func (s *Service) recordChange(ctx context.Context, c *ColumnCollection, action string) {
	if s.audit == nil {
		return
	}
	changes := map[string]any{
		"name":          c.Name,
		"related_model": c.RelatedModel,
		"column_ids":    c.ColumnIDs,
	}
	if err := s.audit.LogChange(ctx, "column_collection", c.ID, action, changes); err != nil {
		s.log.WithContext(ctx).Warnw("audit write failed", "id", c.ID, "error", err)
	}
}

// Slug uniqueness is scoped to one collection; two descriptors may share
// a slug as long as no collection contains both.
func (s *Service) checkSlugUniqueness(ctx context.Context, ids []int64) error {
	if len(ids) < 2 {
		return nil
	}
	cols, err := s.columns.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(cols))
	for _, dc := range cols {
		if _, dup := seen[dc.Slug]; dup {
			return apperror.NewValidation("collection contains descriptors with the same slug").
				WithDetail("slug", dc.Slug)
		}
		seen[dc.Slug] = struct{}{}
	}
	return nil
}

// Create validates and stores a new collection with its membership.
func (s *Service) Create(ctx context.Context, c *ColumnCollection) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkSlugUniqueness(ctx, c.ColumnIDs); err != nil {
		return err
	}
	c.SetAudit(appctx.GetUserID(ctx))
	return s.txr.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		if len(c.ColumnIDs) > 0 {
			if err := s.repo.SyncColumns(ctx, c.ID, c.ColumnIDs); err != nil {
				return err
			}
		}
		s.recordChange(ctx, c, "create")
		s.log.WithContext(ctx).Infow("collection created",
			"id", c.ID, "name", c.Name, "related_model", c.RelatedModel)
		return nil
	})
}

// Update stores the collection and reconciles its membership as a
// symmetric diff against the submitted descriptor ids, in one transaction.
func (s *Service) Update(ctx context.Context, c *ColumnCollection) error {
	if c.ID == 0 {
		return apperror.NewValidation("collection id is required for update")
	}
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkSlugUniqueness(ctx, c.ColumnIDs); err != nil {
		return err
	}
	c.Touch()
	c.SetAudit(appctx.GetUserID(ctx))
	return s.txr.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, c); err != nil {
			return err
		}
		if err := s.repo.SyncColumns(ctx, c.ID, c.ColumnIDs); err != nil {
			return err
		}
		s.recordChange(ctx, c, "update")
		s.log.WithContext(ctx).Infow("collection updated", "id", c.ID, "name", c.Name)
		return nil
	})
}

// GetByID returns one collection with its membership loaded.
func (s *Service) GetByID(ctx context.Context, id int64) (*ColumnCollection, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.LoadColumnIDs(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetActive returns the active collection with the given name, or
// COLLECTION_MISSING when none exists.
func (s *Service) GetActive(ctx context.Context, name string) (*ColumnCollection, error) {
	c, err := s.repo.GetActiveByName(ctx, name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewCollectionMissing(name).WithCause(err)
		}
		return nil, err
	}
	if err := s.repo.LoadColumnIDs(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetActiveForHost resolves a host type name through the registry's
// collection binding and returns its active collection.
func (s *Service) GetActiveForHost(ctx context.Context, hostType string) (*ColumnCollection, error) {
	name, ok := s.registry.CollectionName(hostType)
	if !ok {
		return nil, apperror.NewCollectionMissing(hostType)
	}
	return s.GetActive(ctx, name)
}

// List returns collections, active ones only unless includeInactive.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]*ColumnCollection, error) {
	return s.repo.List(ctx, !includeInactive)
}

// Delete soft-deletes a collection. Membership rows and stored values
// survive for reactivation.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithContext(ctx).Infow("collection deactivated", "id", id)
	return nil
}

// DescriptorsFor returns the active descriptors of the named collection.
// With includeUnassigned, descriptors belonging to no collection are
// appended so admin forms can offer them for adoption.
func (s *Service) DescriptorsFor(ctx context.Context, name string, includeUnassigned bool) ([]*dcolumn.DynamicColumn, error) {
	c, err := s.GetActive(ctx, name)
	if err != nil {
		return nil, err
	}

	ids := append([]int64(nil), c.ColumnIDs...)
	if includeUnassigned {
		extra, err := s.repo.ListUnassignedColumnIDs(ctx)
		if err != nil {
			return nil, err
		}
		ids = append(ids, extra...)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cols, err := s.columns.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	active := cols[:0]
	for _, dc := range cols {
		if dc.Active {
			active = append(active, dc)
		}
	}
	SortColumns(active)
	return active, nil
}

// RelationOptions builds, for every choice column in the descriptor list,
// the (pk, label) options of its target, headed by a generic sentinel.
// Keyed by relation id, matching what selection widgets consume.
func (s *Service) RelationOptions(ctx context.Context, cols []*dcolumn.DynamicColumn) (map[int][]choices.Option, error) {
	out := make(map[int][]choices.Option)
	for _, dc := range cols {
		if !dc.IsChoice() || dc.RelationID == nil {
			continue
		}
		relID := *dc.RelationID
		if _, done := out[relID]; done {
			continue
		}
		entry, ok := s.registry.Resolve(relID)
		if !ok {
			return nil, apperror.New(apperror.CodeNotRegistered,
				"descriptor references an unregistered relation", 500).
				WithDetail("slug", dc.Slug).
				WithDetail("relation_id", relID)
		}
		opts, err := choices.TargetChoices(ctx, entry.Target, entry.DisplayField, false, true)
		if err != nil {
			return nil, err
		}
		out[relID] = append([]choices.Option{{PK: 0, Label: "Choose a value"}}, opts...)
	}
	return out, nil
}

// ChoiceMaps builds the option lists of every choice column keyed by
// slug, the shape selection widgets consume.
func (s *Service) ChoiceMaps(ctx context.Context, cols []*dcolumn.DynamicColumn) (map[string][]choices.Option, error) {
	byRelation, err := s.RelationOptions(ctx, cols)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]choices.Option)
	for _, dc := range cols {
		if !dc.IsChoice() || dc.RelationID == nil {
			continue
		}
		out[dc.Slug] = byRelation[*dc.RelationID]
	}
	return out, nil
}

// ChoiceList returns the active collections as (pk, name) options for
// admin selects, headed by a sentinel.
func (s *Service) ChoiceList(ctx context.Context) ([]choices.Option, error) {
	items, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	opts := make([]choices.Option, 0, len(items)+1)
	opts = append(opts, choices.Option{PK: 0, Label: "Choose a Collection"})
	for _, c := range items {
		opts = append(opts, choices.Option{PK: c.ID, Label: c.Name})
	}
	return opts, nil
}

// ChoicePair is one (key, name) entry for selects over descriptors
// themselves. Key is the descriptor slug, or its pk when requested.
type ChoicePair struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// DescriptorChoices lists the named collection's active descriptors as
// (slug, name) pairs in display order; usePK keys by pk instead.
func (s *Service) DescriptorChoices(ctx context.Context, name string, usePK bool) ([]ChoicePair, error) {
	cols, err := s.DescriptorsFor(ctx, name, false)
	if err != nil {
		return nil, err
	}
	out := make([]ChoicePair, len(cols))
	for i, dc := range cols {
		key := dc.Slug
		if usePK {
			key = strconv.FormatInt(dc.ID, 10)
		}
		out[i] = ChoicePair{Key: key, Name: dc.Name}
	}
	return out, nil
}

// ActiveReferenceTargets returns the registry entries referenced by the
// named collection's active choice descriptors, keyed by relation id.
func (s *Service) ActiveReferenceTargets(ctx context.Context, name string) (map[int]choices.Entry, error) {
	cols, err := s.DescriptorsFor(ctx, name, false)
	if err != nil {
		return nil, err
	}
	out := make(map[int]choices.Entry)
	for _, dc := range cols {
		if !dc.IsChoice() || dc.RelationID == nil {
			continue
		}
		entry, ok := s.registry.Resolve(*dc.RelationID)
		if !ok {
			return nil, apperror.New(apperror.CodeNotRegistered,
				"descriptor references an unregistered relation", 500).
				WithDetail("slug", dc.Slug).
				WithDetail("relation_id", *dc.RelationID)
		}
		out[*dc.RelationID] = entry
	}
	return out, nil
}

// SortColumns orders descriptors for display: by location, then order,
// then name.
func SortColumns(cols []*dcolumn.DynamicColumn) {
	sort.SliceStable(cols, func(i, j int) bool {
		a, b := cols[i], cols[j]
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
}
