// Package dcolumn defines dynamic column descriptors: admin-authored field
// definitions that drive validation, storage and rendering of user-defined
// values without schema changes.
package dcolumn

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"dcolumn/internal/core/apperror"
	"dcolumn/internal/core/entity"
)

// ValueType selects the interpretation of a column's stored text.
type ValueType int

const (
	TypeBoolean   ValueType = 1
	TypeChoice    ValueType = 2
	TypeDate      ValueType = 3
	TypeDateTime  ValueType = 4
	TypeFloat     ValueType = 5
	TypeNumber    ValueType = 6
	TypeText      ValueType = 7
	TypeTextBlock ValueType = 8
	TypeTime      ValueType = 9
)

var valueTypeNames = map[ValueType]string{
	TypeBoolean:   "Boolean",
	TypeChoice:    "Choice",
	TypeDate:      "Date",
	TypeDateTime:  "Date Time",
	TypeFloat:     "Floating Point",
	TypeNumber:    "Number",
	TypeText:      "Text",
	TypeTextBlock: "Text Block",
	TypeTime:      "Time",
}

// String returns the display name of the value type.
func (vt ValueType) String() string {
	if name, ok := valueTypeNames[vt]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", int(vt))
}

// Valid reports whether the value type is one of the nine known kinds.
func (vt ValueType) Valid() bool {
	_, ok := valueTypeNames[vt]
	return ok
}

// ValueTypes returns all known value types in ascending order.
func ValueTypes() []ValueType {
	return []ValueType{
		TypeBoolean, TypeChoice, TypeDate, TypeDateTime, TypeFloat,
		TypeNumber, TypeText, TypeTextBlock, TypeTime,
	}
}

// DynamicColumn is an admin-authored field definition. Its slug is the
// stable lookup key derived from the name (or the preferred slug) at save
// time; renames therefore change the slug and orphan stored values on
// purpose, the same way a schema rename would.
type DynamicColumn struct {
	entity.Base

	// Name is the human label shown in forms and detail pages.
	Name string `db:"name" json:"name"`

	// PreferredSlug, when set, overrides the name as slug source.
	PreferredSlug string `db:"preferred_slug" json:"preferredSlug,omitempty"`

	// Slug is derived on save; never written directly.
	Slug string `db:"slug" json:"slug"`

	// ValueType selects the column's codec.
	ValueType ValueType `db:"value_type" json:"valueType"`

	// RelationID points into the choice registry. Set exactly when
	// ValueType is TypeChoice.
	RelationID *int `db:"relation_id" json:"relationId,omitempty"`

	// Required marks the column mandatory in form validation.
	Required bool `db:"required" json:"required"`

	// StoreRelation, for choice columns, stores the display value instead
	// of the target primary key. Trades referential updates for survival
	// of target row deletion.
	StoreRelation bool `db:"store_relation" json:"storeRelation"`

	// Location is the display container key (resolved to a CSS class
	// through the registry's container map).
	Location string `db:"location" json:"location"`

	// Order positions the column within its container.
	Order int `db:"col_order" json:"order"`
}

// Slugify derives the stable lookup key: lowercase, with every run of
// non-alphanumeric characters collapsed to a single underscore.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	return b.String()
}

// DeriveSlug recomputes the slug from the preferred slug when present,
// otherwise from the name. Called on every save.
func (dc *DynamicColumn) DeriveSlug() {
	if dc.PreferredSlug != "" {
		dc.Slug = Slugify(dc.PreferredSlug)
		return
	}
	dc.Slug = Slugify(dc.Name)
}

// Validate implements entity.Validatable.
func (dc *DynamicColumn) Validate(_ context.Context) error {
	if strings.TrimSpace(dc.Name) == "" {
		return apperror.NewValidation("dynamic column name must not be empty")
	}
	if !dc.ValueType.Valid() {
		return apperror.New(apperror.CodeUnknownValueType,
			fmt.Sprintf("unknown value type %d", int(dc.ValueType)), 400).
			WithDetail("value_type", int(dc.ValueType))
	}
	if dc.ValueType == TypeChoice && dc.RelationID == nil {
		return apperror.New(apperror.CodeInconsistentRelation,
			"a choice column must declare a relation", 400).
			WithDetail("name", dc.Name)
	}
	if dc.ValueType != TypeChoice && dc.RelationID != nil {
		return apperror.New(apperror.CodeInconsistentRelation,
			fmt.Sprintf("a %s column must not declare a relation", dc.ValueType), 400).
			WithDetail("name", dc.Name).
			WithDetail("relation_id", *dc.RelationID)
	}
	if dc.ValueType != TypeChoice && dc.StoreRelation {
		return apperror.New(apperror.CodeInconsistentRelation,
			"store_relation only applies to choice columns", 400).
			WithDetail("name", dc.Name)
	}
	return nil
}

// IsChoice reports whether the column resolves through the choice registry.
func (dc *DynamicColumn) IsChoice() bool {
	return dc.ValueType == TypeChoice
}
