package dcolumn

import (
	"context"
	"fmt"

	"dcolumn/internal/choices"
	"dcolumn/internal/core/apperror"
	appctx "dcolumn/internal/core/context"
	"dcolumn/pkg/logger"
)

// Auditor records entity changes. Descriptor edits matter most here: a
// changed value type or slug explains later unreadable stored values.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID int64, action string, changes map[string]any) error
}

// Service validates and persists column descriptors. Relation ids are
// checked against the choice registry at save time so a descriptor can
// never point at a target that was not registered.
type Service struct {
	repo     Repository
	registry *choices.Registry
	audit    Auditor
	log      *logger.Logger
}

// NewService creates a descriptor service.
func NewService(repo Repository, registry *choices.Registry, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		log:      log.WithComponent("dcolumn.service"),
	}
}

// WithAuditor attaches an optional change recorder.
func (s *Service) WithAuditor(a Auditor) *Service {
	s.audit = a
	return s
}

func (s *Service) recordChange(ctx context.Context, dc *DynamicColumn, action string) {
	if s.audit == nil {
		return
	}
	changes := map[string]any{
		"name":       dc.Name,
		"slug":       dc.Slug,
		"value_type": int(dc.ValueType),
	}
	if dc.RelationID != nil {
		changes["relation_id"] = *dc.RelationID
	}
	if err := s.audit.LogChange(ctx, "dynamic_column", dc.ID, action, changes); err != nil {
		s.log.WithContext(ctx).Warnw("audit write failed", "id", dc.ID, "error", err)
	}
}

func (s *Service) prepare(ctx context.Context, dc *DynamicColumn) error {
	dc.DeriveSlug()
	if err := dc.Validate(ctx); err != nil {
		return err
	}
	if dc.RelationID != nil {
		if _, ok := s.registry.Resolve(*dc.RelationID); !ok {
			return apperror.New(apperror.CodeNotRegistered,
				fmt.Sprintf("relation id %d has no registered target", *dc.RelationID), 400).
				WithDetail("relation_id", *dc.RelationID)
		}
	}
	return nil
}

// Create derives the slug, validates and stores a new descriptor.
func (s *Service) Create(ctx context.Context, dc *DynamicColumn) error {
	if err := s.prepare(ctx, dc); err != nil {
		return err
	}
	dc.SetAudit(appctx.GetUserID(ctx))
	if err := s.repo.Create(ctx, dc); err != nil {
		return err
	}
	s.recordChange(ctx, dc, "create")
	s.log.WithContext(ctx).Infow("dynamic column created",
		"id", dc.ID, "slug", dc.Slug, "value_type", dc.ValueType.String())
	return nil
}

// Update re-derives the slug and stores the descriptor. A rename changes
// the slug; values stored under the old slug become unreachable, which is
// the documented cost of renaming.
func (s *Service) Update(ctx context.Context, dc *DynamicColumn) error {
	if dc.ID == 0 {
		return apperror.NewValidation("dynamic column id is required for update")
	}
	if err := s.prepare(ctx, dc); err != nil {
		return err
	}
	dc.Touch()
	dc.SetAudit(appctx.GetUserID(ctx))
	if err := s.repo.Update(ctx, dc); err != nil {
		return err
	}
	s.recordChange(ctx, dc, "update")
	s.log.WithContext(ctx).Infow("dynamic column updated", "id", dc.ID, "slug", dc.Slug)
	return nil
}

// GetByID returns one descriptor.
func (s *Service) GetByID(ctx context.Context, id int64) (*DynamicColumn, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug returns one descriptor by its derived slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*DynamicColumn, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// List returns descriptors, active ones only unless includeInactive.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]*DynamicColumn, error) {
	return s.repo.List(ctx, !includeInactive)
}

// Delete soft-deletes a descriptor. Stored values survive and resurface if
// the descriptor is reactivated.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		if err := s.audit.LogChange(ctx, "dynamic_column", id, "delete", map[string]any{"active": false}); err != nil {
			s.log.WithContext(ctx).Warnw("audit write failed", "id", id, "error", err)
		}
	}
	s.log.WithContext(ctx).Infow("dynamic column deactivated", "id", id)
	return nil
}

// Relations exposes the registry's relation options for admin widgets.
func (s *Service) Relations() []choices.RelationOption {
	return s.registry.Relations()
}

// ValueTypeOption is one (id, display name) pair for admin widgets.
type ValueTypeOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ValueTypeOptions lists the nine value types for admin widgets.
func (s *Service) ValueTypeOptions() []ValueTypeOption {
	types := ValueTypes()
	opts := make([]ValueTypeOption, len(types))
	for i, vt := range types {
		opts[i] = ValueTypeOption{ID: int(vt), Name: vt.String()}
	}
	return opts
}
