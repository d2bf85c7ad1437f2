package record

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanFormHappyPath(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	cleaned, errs, err := env.store.CleanForm(ctx, book, map[string]string{
		"web_site":     "https://example.com",
		"language":     "2",
		"edition":      "3",
		"published":    "3 April, 2016",
		"promotion":    "1",
		"out_of_print": "yes",
	})
	require.NoError(t, err)
	require.False(t, errs.HasErrors())

	assert.Equal(t, "https://example.com", cleaned["web_site"])
	assert.Equal(t, "2", cleaned["language"])
	assert.Equal(t, "2016-04-03", cleaned["published"])
	// store_relation pk resolved to display text during cleaning.
	assert.Equal(t, "Spring Sale", cleaned["promotion"])
	assert.Equal(t, "1", cleaned["out_of_print"])
}

func TestCleanFormAccumulatesErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	_, errs, err := env.store.CleanForm(ctx, book, map[string]string{
		"language":  "0",             // required choice left on sentinel
		"edition":   "twelve",        // not a number
		"published": "sometime soon", // not a date
		"promotion": "99",            // unknown reference
	})
	require.NoError(t, err)
	require.True(t, errs.HasErrors())

	require.Contains(t, errs, "language")
	assert.Equal(t, "Language field is required.", errs["language"][0])

	require.Contains(t, errs, "edition")
	assert.Equal(t, "Edition field is not a number.", errs["edition"][0])

	require.Contains(t, errs, "published")
	assert.Contains(t, errs["published"][0], "invalid date")

	require.Contains(t, errs, "promotion")
	assert.Contains(t, errs["promotion"][0], "unknown reference")
}

func TestCleanFormMissingOptionalFields(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	cleaned, errs, err := env.store.CleanForm(ctx, book, map[string]string{
		"language": "1",
	})
	require.NoError(t, err)
	require.False(t, errs.HasErrors())

	// Absent optional fields stay out of the cleaned map entirely.
	assert.NotContains(t, cleaned, "web_site")
	assert.NotContains(t, cleaned, "promotion")
	assert.Equal(t, "1", cleaned["language"])
}

func TestCleanFormBooleanNo(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	// Optional booleans store their "no" as a real value.
	cleaned, errs, err := env.store.CleanForm(ctx, book, map[string]string{
		"language":     "1",
		"out_of_print": "no",
	})
	require.NoError(t, err)
	require.False(t, errs.HasErrors())
	assert.Equal(t, "0", cleaned["out_of_print"])

	// Required booleans treat it as the unanswered sentinel.
	env.cols.cols[7].Required = true
	_, errs, err = env.store.CleanForm(ctx, book, map[string]string{
		"language":     "1",
		"out_of_print": "no",
	})
	require.NoError(t, err)
	require.True(t, errs.HasErrors())
	assert.Equal(t, "Out Of Print field is required.", errs["out_of_print"][0])
}

func TestCleanFormTooLong(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	_, errs, err := env.store.CleanForm(ctx, book, map[string]string{
		"language": "1",
		"web_site": strings.Repeat("x", 251),
	})
	require.NoError(t, err)
	require.True(t, errs.HasErrors())
	assert.Contains(t, errs["web_site"][0], "too long")
}

func TestSaveForm(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	errs, err := env.store.SaveForm(ctx, book, map[string]string{
		"language": "2",
		"web_site": "https://example.com",
	})
	require.NoError(t, err)
	require.False(t, errs.HasErrors())

	v, err := env.store.Get(ctx, book, "language")
	require.NoError(t, err)
	assert.Equal(t, "English", v)

	// Invalid input reports field errors and writes nothing.
	errs, err = env.store.SaveForm(ctx, book, map[string]string{
		"language": "0",
		"web_site": "https://changed.example",
	})
	require.NoError(t, err)
	require.True(t, errs.HasErrors())

	v, err = env.store.Get(ctx, book, "web_site")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", v)

	// Unsaved hosts cannot save form values.
	_, err = env.store.SaveForm(ctx, &testBook{}, map[string]string{"language": "1"})
	require.Error(t, err)
}

func TestSaveFormPartialUpdateKeepsStoredValues(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	book := savedBook("Dune")

	require.NoError(t, env.store.Set(ctx, book, "web_site", "https://keep.example"))

	// A submission without web_site must not clear it.
	errs, err := env.store.SaveForm(ctx, book, map[string]string{"language": "2"})
	require.NoError(t, err)
	require.False(t, errs.HasErrors())

	v, err := env.store.Get(ctx, book, "web_site")
	require.NoError(t, err)
	assert.Equal(t, "https://keep.example", v)
}
