package record

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcolumn/internal/core/apperror"
)

func TestStoreSetGetText(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	require.NoError(t, env.store.Set(ctx, book, "web_site", "https://example.com"))

	v, err := env.store.Get(ctx, book, "web_site")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", v)
}

func TestStoreUnknownSlug(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	_, err := env.store.Get(ctx, book, "no_such_slug")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownSlug))

	err = env.store.Set(ctx, book, "no_such_slug", "x")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownSlug))
}

func TestStoreAbsentValueIsEmptyString(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	v, err := env.store.Get(ctx, book, "web_site")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestStoreEmptyValueRejectedWithoutForce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	err := env.store.Set(ctx, book, "web_site", "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeEmptyValue))

	// Forced empty write clears any previous value.
	require.NoError(t, env.store.Set(ctx, book, "web_site", "something"))
	require.NoError(t, env.store.Set(ctx, book, "web_site", "", WithForce()))

	v, err := env.store.Get(ctx, book, "web_site")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestStoreChoiceResolution(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	require.NoError(t, env.store.Set(ctx, book, "language", "2"))

	v, err := env.store.Get(ctx, book, "language")
	require.NoError(t, err)
	assert.Equal(t, "English", v)

	v, err = env.store.Get(ctx, book, "language", WithRawChoice())
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = env.store.Get(ctx, book, "language", WithField("pk"))
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestStoreChoiceBrokenReference(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	// Writes are not referentially verified; reads fail loudly.
	require.NoError(t, env.store.Set(ctx, book, "language", "42"))

	_, err := env.store.Get(ctx, book, "language")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownReference))
}

func TestStoreChoiceNoReference(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	require.NoError(t, env.store.Set(ctx, book, "language", "0"))

	v, err := env.store.Get(ctx, book, "language")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestStoreStoreRelation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	// Denormalized columns take and return display text directly.
	require.NoError(t, env.store.Set(ctx, book, "promotion", "Spring Sale"))

	v, err := env.store.Get(ctx, book, "promotion")
	require.NoError(t, err)
	assert.Equal(t, "Spring Sale", v)

	raw, err := env.values.Get(ctx, "Book", book.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, "Spring Sale", raw.Value)
}

func TestStoreChoiceObjectValues(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	// A target row stores its pk like a submitted digit string would.
	entry, ok := env.reg.Resolve(1)
	require.True(t, ok)
	rows, err := entry.Target.Enumerate(ctx, true)
	require.NoError(t, err)
	require.NoError(t, env.store.Set(ctx, book, "language", rows[1]))

	v, err := env.store.Get(ctx, book, "language")
	require.NoError(t, err)
	assert.Equal(t, "English", v)

	// Denormalized columns read the display field off the value itself.
	promoEntry, ok := env.reg.Resolve(2)
	require.True(t, ok)
	promoRows, err := promoEntry.Target.Enumerate(ctx, true)
	require.NoError(t, err)
	require.NoError(t, env.store.Set(ctx, book, "promotion", promoRows[0]))

	v, err = env.store.Get(ctx, book, "promotion")
	require.NoError(t, err)
	assert.Equal(t, "Spring Sale", v)

	// Entities contribute their db-tagged display field the same way.
	promo := &testPromotion{Name: "50% off"}
	promo.ID = 9
	require.NoError(t, env.store.Set(ctx, book, "promotion", promo))

	v, err = env.store.Get(ctx, book, "promotion")
	require.NoError(t, err)
	assert.Equal(t, "50% off", v)
}

func TestStoreNumberIncrementDecrement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	// Increment from absent starts at zero.
	require.NoError(t, env.store.Set(ctx, book, "edition", "increment"))
	v, err := env.store.Get(ctx, book, "edition")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	require.NoError(t, env.store.Set(ctx, book, "edition", "increment"))
	require.NoError(t, env.store.Set(ctx, book, "edition", "increment"))
	require.NoError(t, env.store.Set(ctx, book, "edition", "decrement"))

	v, err = env.store.Get(ctx, book, "edition")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestStoreDateNaturalInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	require.NoError(t, env.store.Set(ctx, book, "published", "3 April, 2016"))

	raw, err := env.values.Get(ctx, "Book", book.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, "2016-04-03", raw.Value)

	v, err := env.store.Get(ctx, book, "published")
	require.NoError(t, err)
	ts, ok := v.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2016, ts.Year())
}

func TestStoreBooleanNative(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	require.NoError(t, env.store.Set(ctx, book, "out_of_print", true))

	raw, err := env.values.Get(ctx, "Book", book.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, "1", raw.Value)

	v, err := env.store.Get(ctx, book, "out_of_print")
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestStoreBadInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	err := env.store.Set(ctx, book, "edition", "not a number")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadInput))
}

func TestStoreBadStoredValue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	// Corrupt the row behind the store's back.
	require.NoError(t, env.values.Upsert(ctx, "Book", &KeyValue{
		RecordID: book.ID, ColumnID: 4, Value: "never a date",
	}))

	_, err := env.store.Get(ctx, book, "published")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBadStoredValue))
}

func TestStoreDeferredWrites(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	book := &testBook{Title: "Dune"} // unsaved, ID zero

	// Writes before save queue silently, even bad ones.
	require.NoError(t, env.store.Set(ctx, book, "web_site", "https://example.com"))
	require.NoError(t, env.store.Set(ctx, book, "language", "1"))
	assert.Equal(t, 2, book.Record().PendingCount())

	// Flush before save is refused.
	err := env.store.Flush(ctx, book)
	require.Error(t, err)

	book.ID = 7
	require.NoError(t, env.store.Flush(ctx, book))
	assert.Equal(t, 0, book.Record().PendingCount())

	v, err := env.store.Get(ctx, book, "language")
	require.NoError(t, err)
	assert.Equal(t, "Chinese", v)

	// Second flush is a no-op.
	require.NoError(t, env.store.Flush(ctx, book))
}

func TestStoreExplicitDeferred(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	require.NoError(t, env.store.Set(ctx, book, "web_site", "https://a.example", Deferred()))

	// Nothing stored until Flush.
	v, err := env.store.Get(ctx, book, "web_site")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, env.store.Flush(ctx, book))
	v, err = env.store.Get(ctx, book, "web_site")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", v)
}

func TestStoreSerializeValues(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	require.NoError(t, env.store.Set(ctx, book, "web_site", "https://example.com"))
	require.NoError(t, env.store.Set(ctx, book, "language", "3"))

	bySlug, err := env.store.SerializeValues(ctx, book, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"web_site": "https://example.com",
		"language": "3",
	}, bySlug)

	byPK, err := env.store.SerializeValues(ctx, book, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "https://example.com", "2": "3"}, byPK)
}

func TestStoreAllSlugsAndNames(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	slugs, err := env.store.AllSlugs(ctx, book)
	require.NoError(t, err)
	// Location keys sort alphabetically: bottom, center, top.
	assert.Equal(t, []string{
		"promotion", "out_of_print",
		"language", "edition", "published",
		"web_site",
	}, slugs)

	names, err := env.store.AllNames(ctx, book)
	require.NoError(t, err)
	assert.Equal(t, "Promotion", names[0])
}

func TestStoreRecordContext(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	require.NoError(t, env.store.Set(ctx, book, "language", "2"))

	dc, err := env.store.RecordContext(ctx, book)
	require.NoError(t, err)

	assert.Equal(t, "Books", dc.ClassName)
	require.Len(t, dc.Relations, 6)

	// Option lists are keyed by slug, sentinel first.
	require.Contains(t, dc.DynamicColumns, "language")
	assert.Equal(t, "Choose a value", dc.DynamicColumns["language"][0].Label)

	// Descriptor views are keyed by pk and carry the stored value.
	bySlug := dc.RelationsBySlug()
	assert.Equal(t, "2", bySlug["language"].Value)
	assert.Equal(t, "container-bottom", bySlug["promotion"].Location)
	assert.Equal(t, "", bySlug["web_site"].Value)
}

func TestNativeFieldsAndSlugs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	native := NativeFields(book)
	assert.Contains(t, native, "id")
	assert.Contains(t, native, "title")

	all, err := env.store.FieldsAndSlugs(ctx, book)
	require.NoError(t, err)
	assert.Contains(t, all, "title")
	assert.Contains(t, all, "web_site")
	assert.Greater(t, len(all), len(native))
}
