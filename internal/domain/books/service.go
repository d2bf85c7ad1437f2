package books

import (
	"context"

	"dcolumn/internal/choices"
	"dcolumn/internal/core/apperror"
	appctx "dcolumn/internal/core/context"
	"dcolumn/internal/core/tx"
	"dcolumn/internal/domain/record"
	"dcolumn/pkg/logger"
)

// Service manages books and the catalog entities serving as choice
// targets. Dynamic values ride along through the record store: a book and
// its values commit or roll back together.
type Service struct {
	books      Repository[*Book]
	authors    Repository[*Author]
	publishers Repository[*Publisher]
	promotions Repository[*Promotion]
	store      *record.Store
	txr        tx.Runner
	log        *logger.Logger
}

// NewService creates the books service.
func NewService(
	books Repository[*Book],
	authors Repository[*Author],
	publishers Repository[*Publisher],
	promotions Repository[*Promotion],
	store *record.Store,
	txr tx.Runner,
	log *logger.Logger,
) *Service {
	return &Service{
		books:      books,
		authors:    authors,
		publishers: publishers,
		promotions: promotions,
		store:      store,
		txr:        txr,
		log:        log.WithComponent("books.service"),
	}
}

// fieldErrorsToAppError folds per-field messages into one validation
// error for API rendering.
func fieldErrorsToAppError(errs record.FieldErrors) error {
	if !errs.HasErrors() {
		return nil
	}
	return apperror.NewValidation("dynamic field validation failed").
		WithDetail("fields", map[string][]string(errs))
}

// CreateBook stores a book together with its dynamic form values. Writes
// queued on the book before save are flushed in the same transaction.
func (s *Service) CreateBook(ctx context.Context, b *Book, values map[string]string) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	b.SetAudit(appctx.GetUserID(ctx))

	return s.txr.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.books.Create(ctx, b); err != nil {
			return err
		}
		if err := s.store.Flush(ctx, b); err != nil {
			return err
		}
		if len(values) > 0 {
			errs, err := s.store.SaveForm(ctx, b, values)
			if err != nil {
				return err
			}
			if err := fieldErrorsToAppError(errs); err != nil {
				return err
			}
		}
		s.log.WithContext(ctx).Infow("book created", "id", b.ID, "title", b.Title)
		return nil
	})
}

// UpdateBook stores native fields and dynamic values in one transaction.
func (s *Service) UpdateBook(ctx context.Context, b *Book, values map[string]string) error {
	if b.ID == 0 {
		return apperror.NewValidation("book id is required for update")
	}
	if err := b.Validate(ctx); err != nil {
		return err
	}
	b.Touch()
	b.SetAudit(appctx.GetUserID(ctx))

	return s.txr.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.books.Update(ctx, b); err != nil {
			return err
		}
		if err := s.store.Flush(ctx, b); err != nil {
			return err
		}
		if len(values) > 0 {
			errs, err := s.store.SaveForm(ctx, b, values)
			if err != nil {
				return err
			}
			if err := fieldErrorsToAppError(errs); err != nil {
				return err
			}
		}
		s.log.WithContext(ctx).Infow("book updated", "id", b.ID)
		return nil
	})
}

// GetBook returns one book.
func (s *Service) GetBook(ctx context.Context, id int64) (*Book, error) {
	return s.books.GetByID(ctx, id)
}

// GetBookContext returns a book with its full display context: serialized
// descriptors, relation options and stored values.
func (s *Service) GetBookContext(ctx context.Context, id int64) (*Book, *record.DisplayContext, error) {
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	dc, err := s.store.RecordContext(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return b, dc, nil
}

// ListBooks returns books, active only unless includeInactive.
func (s *Service) ListBooks(ctx context.Context, includeInactive bool) ([]*Book, error) {
	return s.books.List(ctx, !includeInactive)
}

// DeleteBook soft-deletes a book. Its value rows stay for reactivation.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.books.Delete(ctx, id)
}

// Store exposes the record store for handlers needing direct value access.
func (s *Service) Store() *record.Store { return s.store }

// --- catalog entities ---

// CreateAuthor validates and stores an author.
func (s *Service) CreateAuthor(ctx context.Context, a *Author) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}
	a.SetAudit(appctx.GetUserID(ctx))
	return s.authors.Create(ctx, a)
}

// ListAuthors returns active authors.
func (s *Service) ListAuthors(ctx context.Context) ([]*Author, error) {
	return s.authors.List(ctx, true)
}

// CreatePublisher validates and stores a publisher.
func (s *Service) CreatePublisher(ctx context.Context, p *Publisher) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.SetAudit(appctx.GetUserID(ctx))
	return s.publishers.Create(ctx, p)
}

// ListPublishers returns active publishers.
func (s *Service) ListPublishers(ctx context.Context) ([]*Publisher, error) {
	return s.publishers.List(ctx, true)
}

// CreatePromotion validates and stores a promotion.
func (s *Service) CreatePromotion(ctx context.Context, p *Promotion) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.SetAudit(appctx.GetUserID(ctx))
	return s.promotions.Create(ctx, p)
}

// ListPromotions returns active promotions.
func (s *Service) ListPromotions(ctx context.Context) ([]*Promotion, error) {
	return s.promotions.List(ctx, true)
}

// --- choice targets ---

// AuthorTarget adapts authors to the choice capability set.
func (s *Service) AuthorTarget() *choices.EntityTarget[*Author] {
	return choices.NewEntityTarget("Author", s.authors.List, s.authors.GetByID)
}

// PublisherTarget adapts publishers to the choice capability set.
func (s *Service) PublisherTarget() *choices.EntityTarget[*Publisher] {
	return choices.NewEntityTarget("Publisher", s.publishers.List, s.publishers.GetByID)
}

// PromotionTarget adapts promotions to the choice capability set.
func (s *Service) PromotionTarget() *choices.EntityTarget[*Promotion] {
	return choices.NewEntityTarget("Promotion", s.promotions.List, s.promotions.GetByID)
}

// BookTarget adapts books themselves, so other hosts can reference them.
func (s *Service) BookTarget() *choices.EntityTarget[*Book] {
	return choices.NewEntityTarget("Book", s.books.List, s.books.GetByID)
}
