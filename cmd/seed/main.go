// Command seed loads a sample catalog: an admin account, choice target
// rows, the book column descriptors, the Books collection and one book
// with dynamic values.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"dcolumn/internal/app"
	"dcolumn/internal/config"
	"dcolumn/internal/core/apperror"
	"dcolumn/internal/domain/books"
	"dcolumn/internal/domain/collection"
	"dcolumn/internal/domain/dcolumn"
	"dcolumn/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal(context.Background(), "config load failed", "error", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: true})
	if err != nil {
		logger.Fatal(context.Background(), "logger init failed", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithContext(ctx).Fatalw("wiring failed", "error", err)
	}
	defer a.Close()

	if err := seed(ctx, a); err != nil {
		log.WithContext(ctx).Fatalw("seed failed", "error", err)
	}
	log.WithContext(ctx).Infow("seed complete")
}

func intPtr(v int) *int { return &v }

func seed(ctx context.Context, a *app.App) error {
	if _, err := a.Collections.GetActive(ctx, "Books"); err == nil {
		return fmt.Errorf("collection %q already exists, refusing to reseed", "Books")
	} else if !apperror.HasCode(err, apperror.CodeCollectionMissing) {
		return err
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	if _, err := a.Auth.RegisterUser(ctx, "admin", "admin@example.com", password, true); err != nil {
		if !apperror.HasCode(err, apperror.CodeConflict) {
			return err
		}
	}

	author := &books.Author{Name: "Jose Saramago"}
	if err := a.Books.CreateAuthor(ctx, author); err != nil {
		return err
	}
	publisher := &books.Publisher{Name: "Harcourt"}
	if err := a.Books.CreatePublisher(ctx, publisher); err != nil {
		return err
	}
	promotion := &books.Promotion{
		Name:      "Spring Sale",
		StartDate: time.Now().UTC(),
		EndDate:   time.Now().UTC().AddDate(0, 1, 0),
	}
	if err := a.Books.CreatePromotion(ctx, promotion); err != nil {
		return err
	}

	columns := []*dcolumn.DynamicColumn{
		{Name: "Web Site", ValueType: dcolumn.TypeText, Location: "top", Order: 1},
		{Name: "Language", ValueType: dcolumn.TypeChoice, RelationID: intPtr(app.RelLanguage), Required: true, Location: "center", Order: 1},
		{Name: "Edition", ValueType: dcolumn.TypeNumber, Location: "center", Order: 2},
		{Name: "Published", ValueType: dcolumn.TypeDate, Location: "center", Order: 3},
		{Name: "Promotion", ValueType: dcolumn.TypeChoice, RelationID: intPtr(app.RelPromotion), StoreRelation: true, Location: "bottom", Order: 1},
		{Name: "Out of Print", ValueType: dcolumn.TypeBoolean, Location: "bottom", Order: 2},
	}
	ids := make([]int64, 0, len(columns))
	for _, dc := range columns {
		if err := a.Columns.Create(ctx, dc); err != nil {
			return err
		}
		ids = append(ids, dc.ID)
	}

	coll := &collection.ColumnCollection{
		Name:         "Books",
		RelatedModel: "Book",
		ColumnIDs:    ids,
	}
	if err := a.Collections.Create(ctx, coll); err != nil {
		return err
	}

	book := &books.Book{
		Title:       "Blindness",
		AuthorID:    &author.ID,
		PublisherID: &publisher.ID,
		ISBN10:      "0156007754",
	}
	values := map[string]string{
		"web_site":     "https://example.com/blindness",
		"language":     "3", // Portuguese
		"edition":      "1",
		"published":    "1995-01-01",
		"promotion":    strconv.FormatInt(promotion.ID, 10),
		"out_of_print": "0",
	}
	return a.Books.CreateBook(ctx, book, values)
}
