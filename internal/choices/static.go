package choices

import (
	"context"
	"fmt"
	"sync"

	"dcolumn/internal/core/apperror"
)

// StaticSet exposes a declared tuple list as a choice target. Rows behave
// like persistent ones but live only in memory; primary keys are assigned
// sequentially from 1 in declaration order and never reshuffle.
type StaticSet struct {
	name   string
	fields []string
	values [][]string

	once sync.Once
	rows []Row
	byPK map[int64]staticRow
}

// staticRow is one materialized tuple.
type staticRow struct {
	pk     int64
	fields map[string]string
}

func (r staticRow) PK() int64 { return r.pk }

func (r staticRow) Field(name string) (string, bool) {
	if name == "pk" {
		return fmt.Sprintf("%d", r.pk), true
	}
	v, ok := r.fields[name]
	return v, ok
}

// NewStaticSet declares an enumeration with named fields and value tuples.
// The pk field is injected and must not be declared. Every tuple must have
// exactly one value per declared field.
func NewStaticSet(name string, fields []string, values ...[]string) (*StaticSet, error) {
	if name == "" {
		return nil, apperror.New(apperror.CodeInvalidTarget,
			"a static choice set needs a name", 500)
	}
	if len(fields) == 0 {
		return nil, apperror.New(apperror.CodeMissingFields,
			fmt.Sprintf("no fields declared for the %q choice set", name), 500).
			WithDetail("target", name)
	}
	if len(values) == 0 {
		return nil, apperror.New(apperror.CodeMissingValues,
			fmt.Sprintf("no values declared for the %q choice set", name), 500).
			WithDetail("target", name)
	}
	for _, f := range fields {
		if f == "pk" {
			return nil, apperror.New(apperror.CodeInvalidTarget,
				fmt.Sprintf("the pk field of the %q choice set is assigned automatically", name), 500).
				WithDetail("target", name)
		}
	}
	for i, tuple := range values {
		if len(tuple) != len(fields) {
			return nil, apperror.New(apperror.CodeMissingValues,
				fmt.Sprintf("tuple %d of the %q choice set has %d values, want %d",
					i, name, len(tuple), len(fields)), 500).
				WithDetail("target", name)
		}
	}

	return &StaticSet{name: name, fields: fields, values: values}, nil
}

// NewSimpleSet declares a single-field enumeration where each value is one
// row with a "name" field. Covers the common language/status list case.
func NewSimpleSet(name string, values ...string) (*StaticSet, error) {
	tuples := make([][]string, len(values))
	for i, v := range values {
		tuples[i] = []string{v}
	}
	return NewStaticSet(name, []string{"name"}, tuples...)
}

// MustStaticSet is NewStaticSet for package-level declarations; a bad
// declaration is a programming error.
func MustStaticSet(name string, fields []string, values ...[]string) *StaticSet {
	s, err := NewStaticSet(name, fields, values...)
	if err != nil {
		panic(err)
	}
	return s
}

// MustSimpleSet is NewSimpleSet for package-level declarations.
func MustSimpleSet(name string, values ...string) *StaticSet {
	s, err := NewSimpleSet(name, values...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name implements Target.
func (s *StaticSet) Name() string { return s.name }

// FieldNames implements Target. The injected pk is listed last.
func (s *StaticSet) FieldNames() []string {
	return append(append([]string(nil), s.fields...), "pk")
}

func (s *StaticSet) materialize() {
	s.once.Do(func() {
		s.rows = make([]Row, 0, len(s.values))
		s.byPK = make(map[int64]staticRow, len(s.values))
		for i, tuple := range s.values {
			row := staticRow{pk: int64(i + 1), fields: make(map[string]string, len(s.fields))}
			for j, f := range s.fields {
				row.fields[f] = tuple[j]
			}
			s.rows = append(s.rows, row)
			s.byPK[row.pk] = row
		}
	})
}

// Enumerate implements Target. Static rows are always active.
func (s *StaticSet) Enumerate(_ context.Context, _ bool) ([]Row, error) {
	s.materialize()
	return s.rows, nil
}

// LookupByPK implements Target. pk 0 means "no reference" and resolves to
// an empty string; any other unknown pk is a broken reference.
func (s *StaticSet) LookupByPK(_ context.Context, pk int64, field string) (string, error) {
	if pk == 0 {
		return "", nil
	}
	s.materialize()

	row, ok := s.byPK[pk]
	if !ok {
		return "", apperror.New(apperror.CodeUnknownReference,
			fmt.Sprintf("the %q choice set has no row with pk %d", s.name, pk), 500).
			WithDetail("target", s.name).
			WithDetail("pk", pk)
	}
	v, ok := row.Field(field)
	if !ok {
		return "", apperror.New(apperror.CodeUnknownField,
			fmt.Sprintf("the %q choice set does not have the field %q", s.name, field), 500).
			WithDetail("target", s.name).
			WithDetail("field", field)
	}
	return v, nil
}

// Choices builds the (pk, label) list over the given field, optionally
// sorted by label and headed by the sentinel option.
func (s *StaticSet) Choices(ctx context.Context, field string, includeSentinel, sortByLabel bool) ([]Option, error) {
	return TargetChoices(ctx, s, field, includeSentinel, sortByLabel)
}
