package choices

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcolumn/internal/core/apperror"
	"dcolumn/internal/core/entity"
)

func TestStaticSetDeclarationErrors(t *testing.T) {
	_, err := NewStaticSet("Language", nil, []string{"English"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingFields))

	_, err = NewStaticSet("Language", []string{"name"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingValues))

	_, err = NewStaticSet("Language", []string{"pk", "name"}, []string{"1", "English"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTarget))

	_, err = NewStaticSet("Language", []string{"name", "code"}, []string{"English"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingValues))
}

func TestStaticSetEnumerate(t *testing.T) {
	ctx := context.Background()
	s, err := NewStaticSet("Country",
		[]string{"name", "code"},
		[]string{"Brazil", "BR"},
		[]string{"Japan", "JP"},
	)
	require.NoError(t, err)

	rows, err := s.Enumerate(ctx, true)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0].PK())
	name, ok := rows[0].Field("name")
	require.True(t, ok)
	assert.Equal(t, "Brazil", name)

	code, ok := rows[1].Field("code")
	require.True(t, ok)
	assert.Equal(t, "JP", code)

	pk, ok := rows[1].Field("pk")
	require.True(t, ok)
	assert.Equal(t, "2", pk)

	_, ok = rows[0].Field("missing")
	assert.False(t, ok)
}

func TestStaticSetLookupByPK(t *testing.T) {
	ctx := context.Background()
	s := newLanguageSet(t)

	v, err := s.LookupByPK(ctx, 2, "name")
	require.NoError(t, err)
	assert.Equal(t, "English", v)

	// pk 0 is "no reference", not an error.
	v, err = s.LookupByPK(ctx, 0, "name")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = s.LookupByPK(ctx, 42, "name")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownReference))

	_, err = s.LookupByPK(ctx, 1, "title")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownField))
}

func TestStaticSetFieldNames(t *testing.T) {
	s := newLanguageSet(t)
	assert.Equal(t, []string{"name", "pk"}, s.FieldNames())
}

type choiceAuthor struct {
	entity.Base
	Name string `db:"name" json:"name"`
}

func TestEntityTarget(t *testing.T) {
	ctx := context.Background()

	authors := []*choiceAuthor{
		{Base: entity.Base{ID: 10, Active: true}, Name: "Ursula K. Le Guin"},
		{Base: entity.Base{ID: 11, Active: true}, Name: "Stanislaw Lem"},
	}

	target := NewEntityTarget[*choiceAuthor]("Author",
		func(_ context.Context, _ bool) ([]*choiceAuthor, error) {
			return authors, nil
		},
		func(_ context.Context, pk int64) (*choiceAuthor, error) {
			for _, a := range authors {
				if a.ID == pk {
					return a, nil
				}
			}
			return nil, apperror.NewNotFound("author", pk)
		},
	)

	assert.Equal(t, "Author", target.Name())
	assert.Contains(t, target.FieldNames(), "name")
	assert.Contains(t, target.FieldNames(), "id")
	assert.Contains(t, target.FieldNames(), "pk")

	rows, err := target.Enumerate(ctx, true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(10), rows[0].PK())

	name, ok := rows[1].Field("name")
	require.True(t, ok)
	assert.Equal(t, "Stanislaw Lem", name)

	v, err := target.LookupByPK(ctx, 10, "name")
	require.NoError(t, err)
	assert.Equal(t, "Ursula K. Le Guin", v)

	v, err = target.LookupByPK(ctx, 0, "name")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = target.LookupByPK(ctx, 999, "name")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestEntityTargetInRegistry(t *testing.T) {
	reg := NewRegistry()
	target := NewEntityTarget[*choiceAuthor]("Author",
		func(_ context.Context, _ bool) ([]*choiceAuthor, error) { return nil, nil },
		func(_ context.Context, pk int64) (*choiceAuthor, error) {
			return nil, apperror.NewNotFound("author", pk)
		},
	)

	require.NoError(t, reg.Register(target, 3, "name"))

	err := reg.Register(newLanguageSet(t), 4, "name")
	require.NoError(t, err)

	entry, ok := reg.Resolve(3)
	require.True(t, ok)
	assert.Equal(t, "Author", entry.Target.Name())
}
