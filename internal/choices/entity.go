package choices

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"dcolumn/internal/core/apperror"
)

// identifiable matches entities embedding a numeric primary key.
type identifiable interface {
	GetID() int64
}

// EntityTarget adapts a repository-backed entity type to the Target
// capability set. Field names come from the entity's db tags, so the same
// names work in choice display fields and in SQL.
type EntityTarget[T identifiable] struct {
	name      string
	fields    []string
	index     map[string][]int
	enumerate func(ctx context.Context, activeOnly bool) ([]T, error)
	lookup    func(ctx context.Context, pk int64) (T, error)
}

// NewEntityTarget wraps list and get functions of an entity repository.
// The zero value of T determines the available field names.
func NewEntityTarget[T identifiable](
	name string,
	enumerate func(ctx context.Context, activeOnly bool) ([]T, error),
	lookup func(ctx context.Context, pk int64) (T, error),
) *EntityTarget[T] {
	var zero T
	idx := dbFieldIndex(reflect.TypeOf(zero))

	fields := make([]string, 0, len(idx)+1)
	for f := range idx {
		fields = append(fields, f)
	}
	fields = append(fields, "pk")

	return &EntityTarget[T]{
		name:      name,
		fields:    fields,
		index:     idx,
		enumerate: enumerate,
		lookup:    lookup,
	}
}

// Name implements Target.
func (t *EntityTarget[T]) Name() string { return t.name }

// FieldNames implements Target.
func (t *EntityTarget[T]) FieldNames() []string {
	return append([]string(nil), t.fields...)
}

// Enumerate implements Target.
func (t *EntityTarget[T]) Enumerate(ctx context.Context, activeOnly bool) ([]Row, error) {
	items, err := t.enumerate(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = entityRow[T]{entity: item, index: t.index}
	}
	return rows, nil
}

// LookupByPK implements Target. A pk of 0 is "no reference"; a pk the
// repository cannot find surfaces as the repository's not-found error.
func (t *EntityTarget[T]) LookupByPK(ctx context.Context, pk int64, field string) (string, error) {
	if pk == 0 {
		return "", nil
	}
	item, err := t.lookup(ctx, pk)
	if err != nil {
		return "", err
	}
	row := entityRow[T]{entity: item, index: t.index}
	v, ok := row.Field(field)
	if !ok {
		return "", apperror.New(apperror.CodeUnknownField,
			fmt.Sprintf("the %q target does not have the field %q", t.name, field), 500).
			WithDetail("target", t.name).
			WithDetail("field", field)
	}
	return v, nil
}

// ReferencePK extracts the primary key of a referenceable value: a choice
// Row or any entity exposing GetID.
func ReferencePK(v any) (int64, bool) {
	switch x := v.(type) {
	case Row:
		return x.PK(), true
	case identifiable:
		return x.GetID(), true
	}
	return 0, false
}

// DisplayValue reads the named field of a referenceable value as display
// text. Rows answer directly; entities answer through their db tags.
func DisplayValue(v any, field string) (string, bool) {
	if row, ok := v.(Row); ok {
		return row.Field(field)
	}
	if field == "pk" {
		if id, ok := v.(identifiable); ok {
			return fmt.Sprintf("%d", id.GetID()), true
		}
		return "", false
	}
	path, ok := dbFieldIndex(reflect.TypeOf(v))[field]
	if !ok {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	return formatFieldValue(rv.FieldByIndex(path).Interface()), true
}

// entityRow projects one entity through the db-tag field index.
type entityRow[T identifiable] struct {
	entity T
	index  map[string][]int
}

func (r entityRow[T]) PK() int64 { return r.entity.GetID() }

func (r entityRow[T]) Field(name string) (string, bool) {
	if name == "pk" {
		return fmt.Sprintf("%d", r.entity.GetID()), true
	}
	path, ok := r.index[name]
	if !ok {
		return "", false
	}
	v := reflect.ValueOf(r.entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	fv := v.FieldByIndex(path)
	return formatFieldValue(fv.Interface()), true
}

func formatFieldValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// dbFieldIndex walks a struct type (through pointers and embedded structs)
// and maps db tag names to field index paths.
func dbFieldIndex(t reflect.Type) map[string][]int {
	idx := make(map[string][]int)
	if t == nil {
		return idx
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return idx
	}
	collectDBFields(t, nil, idx)
	return idx
}

func collectDBFields(t reflect.Type, prefix []int, idx map[string][]int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		path := append(append([]int(nil), prefix...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectDBFields(f.Type, path, idx)
			continue
		}

		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if _, exists := idx[name]; !exists {
			idx[name] = path
		}
	}
}
