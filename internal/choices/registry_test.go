package choices

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcolumn/internal/core/apperror"
)

func newLanguageSet(t *testing.T) *StaticSet {
	t.Helper()
	s, err := NewSimpleSet("Language",
		"Chinese", "English", "Portuguese", "Russian", "Japanese")
	require.NoError(t, err)
	return s
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	lang := newLanguageSet(t)

	require.NoError(t, reg.Register(lang, 1, "name"))

	entry, ok := reg.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, "Language", entry.Target.Name())
	assert.Equal(t, "name", entry.DisplayField)

	_, ok = reg.Resolve(99)
	assert.False(t, ok)
}

func TestRegistryRegisterDuplicateRelation(t *testing.T) {
	reg := NewRegistry()
	lang := newLanguageSet(t)
	other, err := NewSimpleSet("Status", "Open", "Closed")
	require.NoError(t, err)

	require.NoError(t, reg.Register(lang, 1, "name"))
	err = reg.Register(other, 1, "name")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateRelation))
}

func TestRegistryRegisterInvalidTarget(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register("not a target", 1, "name")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTarget))
}

func TestRegistryRegisterUnknownField(t *testing.T) {
	reg := NewRegistry()
	lang := newLanguageSet(t)

	err := reg.Register(lang, 1, "title")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownField))
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()
	lang := newLanguageSet(t)

	require.NoError(t, reg.Register(lang, 1, "name"))
	require.NoError(t, reg.Unregister(lang))

	_, ok := reg.Resolve(1)
	assert.False(t, ok)

	err := reg.Unregister(lang)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotRegistered))
}

func TestRegistryRelations(t *testing.T) {
	reg := NewRegistry()
	lang := newLanguageSet(t)
	status, err := NewSimpleSet("Availability", "In stock", "Sold out")
	require.NoError(t, err)

	require.NoError(t, reg.Register(lang, 5, "name"))
	require.NoError(t, reg.Register(status, 2, "name"))

	rels := reg.Relations()
	require.Len(t, rels, 3)

	// Sentinel first, then sorted by target name.
	assert.Equal(t, RelationOption{ID: 0, Name: "Choose a Relation"}, rels[0])
	assert.Equal(t, RelationOption{ID: 2, Name: "Availability"}, rels[1])
	assert.Equal(t, RelationOption{ID: 5, Name: "Language"}, rels[2])

	dm := reg.DisplayMap()
	assert.Equal(t, map[int]string{5: "Language", 2: "Availability"}, dm)
}

func TestRegistryContainers(t *testing.T) {
	reg := NewRegistry()

	err := reg.RegisterContainers(nil)
	require.Error(t, err)

	err = reg.RegisterContainers([]Container{
		{Key: "top", Class: "container-top"},
		{Key: "top", Class: "container-dup"},
	})
	require.Error(t, err)

	require.NoError(t, reg.RegisterContainers([]Container{
		{Key: "top", Class: "container-top"},
		{Key: "center", Class: "container-center"},
		{Key: "bottom", Class: "container-bottom"},
	}))

	assert.Equal(t, "container-center", reg.ContainerClass("center"))
	assert.Equal(t, "", reg.ContainerClass("missing"))

	list := reg.Containers()
	require.Len(t, list, 3)
	assert.Equal(t, "top", list[0].Key)
	assert.Equal(t, "bottom", list[2].Key)
}

func TestRegistryCollectionBinding(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.CollectionName("Book")
	assert.False(t, ok)

	reg.BindCollection("Book", "Books")
	name, ok := reg.CollectionName("Book")
	require.True(t, ok)
	assert.Equal(t, "Books", name)
}

func TestTargetChoices(t *testing.T) {
	ctx := context.Background()
	lang := newLanguageSet(t)

	opts, err := TargetChoices(ctx, lang, "name", true, true)
	require.NoError(t, err)
	require.Len(t, opts, 6)

	assert.Equal(t, Option{PK: 0, Label: "Please choose a Language"}, opts[0])
	assert.Equal(t, "Chinese", opts[1].Label)
	assert.Equal(t, "Russian", opts[5].Label)

	// Unsorted keeps declaration order with stable pks.
	opts, err = TargetChoices(ctx, lang, "name", false, false)
	require.NoError(t, err)
	require.Len(t, opts, 5)
	assert.Equal(t, Option{PK: 1, Label: "Chinese"}, opts[0])
	assert.Equal(t, Option{PK: 5, Label: "Japanese"}, opts[4])
}
