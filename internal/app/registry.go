package app

import (
	"dcolumn/internal/choices"
	"dcolumn/internal/domain/books"
)

// Relation ids are part of stored descriptor rows. Never renumber them.
const (
	RelLanguage  = 1
	RelAuthor    = 2
	RelPublisher = 3
	RelPromotion = 4
	RelBook      = 5
)

// SetupChoiceRegistry registers every choice target, the display
// containers and the host-to-collection bindings.
func SetupChoiceRegistry(registry *choices.Registry, svc *books.Service) error {
	if err := registry.Register(books.Languages, RelLanguage, "name"); err != nil {
		return err
	}
	if err := registry.Register(svc.AuthorTarget(), RelAuthor, "name"); err != nil {
		return err
	}
	if err := registry.Register(svc.PublisherTarget(), RelPublisher, "name"); err != nil {
		return err
	}
	if err := registry.Register(svc.PromotionTarget(), RelPromotion, "name"); err != nil {
		return err
	}
	if err := registry.Register(svc.BookTarget(), RelBook, "title"); err != nil {
		return err
	}

	if err := registry.RegisterContainers([]choices.Container{
		{Key: "top", Class: "container-top"},
		{Key: "center", Class: "container-center"},
		{Key: "bottom", Class: "container-bottom"},
	}); err != nil {
		return err
	}

	registry.BindCollection("Book", "Books")
	return nil
}

// ValueTables maps host types to their value storage tables.
func ValueTables() map[string]string {
	return map[string]string{
		"Book": "book_values",
	}
}
