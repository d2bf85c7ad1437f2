// Package books is the reference host domain: a small catalog of books
// whose extra fields live entirely in dynamic columns. Authors, publishers
// and promotions double as choice targets.
package books

import (
	"context"
	"strings"
	"time"

	"dcolumn/internal/choices"
	"dcolumn/internal/core/apperror"
	"dcolumn/internal/core/entity"
	"dcolumn/internal/domain/record"
)

// Languages is the static choice set registered for book language columns.
var Languages = choices.MustSimpleSet("Language",
	"Chinese", "English", "Portuguese", "Russian", "Japanese")

// Author is a persistent choice target.
type Author struct {
	entity.Base
	Name string `db:"name" json:"name"`
}

// Validate implements entity.Validatable.
func (a *Author) Validate(_ context.Context) error {
	if strings.TrimSpace(a.Name) == "" {
		return apperror.NewValidation("author name must not be empty")
	}
	return nil
}

// Publisher is a persistent choice target.
type Publisher struct {
	entity.Base
	Name string `db:"name" json:"name"`
}

// Validate implements entity.Validatable.
func (p *Publisher) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("publisher name must not be empty")
	}
	return nil
}

// Promotion is a persistent choice target with a validity window.
type Promotion struct {
	entity.Base
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	StartDate   time.Time `db:"start_date" json:"startDate"`
	EndDate     time.Time `db:"end_date" json:"endDate"`
}

// Validate implements entity.Validatable.
func (p *Promotion) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("promotion name must not be empty")
	}
	if !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		return apperror.NewValidation("promotion end date precedes start date").
			WithDetail("name", p.Name)
	}
	return nil
}

// Current reports whether the promotion is running at the given time.
func (p *Promotion) Current(at time.Time) bool {
	if at.Before(p.StartDate) {
		return false
	}
	return p.EndDate.IsZero() || !at.After(p.EndDate)
}

// Book is the host entity. Native columns cover the identity of a book;
// everything else hangs off the embedded collection record.
type Book struct {
	entity.Base
	record.CollectionRecord

	Title       string `db:"title" json:"title"`
	AuthorID    *int64 `db:"author_id" json:"authorId,omitempty"`
	PublisherID *int64 `db:"publisher_id" json:"publisherId,omitempty"`
	ISBN10      string `db:"isbn10" json:"isbn10,omitempty"`
	ISBN13      string `db:"isbn13" json:"isbn13,omitempty"`
}

// HostType implements record.Host.
func (b *Book) HostType() string { return "Book" }

// Record implements record.Host.
func (b *Book) Record() *record.CollectionRecord { return &b.CollectionRecord }

// Validate implements entity.Validatable.
func (b *Book) Validate(_ context.Context) error {
	if strings.TrimSpace(b.Title) == "" {
		return apperror.NewValidation("book title must not be empty")
	}
	return nil
}
