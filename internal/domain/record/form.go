package record

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"dcolumn/internal/core/apperror"
	"dcolumn/internal/domain/dcolumn"
)

// FieldErrors accumulates validation messages per slug. Every failing
// field reports; validation never stops at the first problem.
type FieldErrors map[string][]string

// Add appends a message for a slug.
func (e FieldErrors) Add(slug, msg string) {
	e[slug] = append(e[slug], msg)
}

// HasErrors reports whether any field failed.
func (e FieldErrors) HasErrors() bool { return len(e) > 0 }

// CleanForm validates raw form input against the host's active collection
// and returns canonical values ready for SetMany. Empty optional fields
// stay out of the result, so a partial submission never clears stored
// values. Choice columns arrive as primary keys; for denormalized
// (store_relation) columns the pk is resolved to display text here, so
// storage never sees the pk.
func (s *Store) CleanForm(ctx context.Context, host Host, input map[string]string) (map[string]string, FieldErrors, error) {
	cols, err := s.Columns(ctx, host)
	if err != nil {
		return nil, nil, err
	}

	cleaned := make(map[string]string, len(cols))
	errs := make(FieldErrors)

	for _, col := range cols {
		raw := strings.TrimSpace(input[col.Slug])
		value, ok := s.cleanField(ctx, col, raw, errs)
		if ok {
			cleaned[col.Slug] = value
		}
	}

	if errs.HasErrors() {
		return nil, errs, nil
	}
	return cleaned, nil, nil
}

func (s *Store) cleanField(ctx context.Context, col *dcolumn.DynamicColumn, raw string, errs FieldErrors) (string, bool) {
	if col.Required && (raw == "" || sentinelValue(col, raw)) {
		errs.Add(col.Slug, fmt.Sprintf("%s field is required.", col.Name))
		return "", false
	}

	// Omitted and unchosen optional fields never reach storage.
	if raw == "" || (col.IsChoice() && raw == "0") {
		return "", false
	}

	if col.IsChoice() {
		return s.cleanChoiceField(ctx, col, raw, errs)
	}

	codec, err := dcolumn.CodecFor(col.ValueType)
	if err != nil {
		errs.Add(col.Slug, fmt.Sprintf("%s field has an unknown type.", col.Name))
		return "", false
	}

	canonical, err := codec.ParseInput(raw)
	if err != nil {
		switch col.ValueType {
		case dcolumn.TypeNumber:
			errs.Add(col.Slug, fmt.Sprintf("%s field is not a number.", col.Name))
		case dcolumn.TypeDate, dcolumn.TypeDateTime, dcolumn.TypeTime:
			errs.Add(col.Slug, fmt.Sprintf("%s field has an invalid date and/or time.", col.Name))
		default:
			errs.Add(col.Slug, fmt.Sprintf("%s field has an invalid value.", col.Name))
		}
		return "", false
	}

	if len(canonical) > codec.MaxLength() {
		errs.Add(col.Slug, fmt.Sprintf("%s field is too long, maximum length is %d characters.",
			col.Name, codec.MaxLength()))
		return "", false
	}
	return canonical, true
}

// sentinelValue reports whether raw is the type's "nothing chosen" form
// token: the zero pk of a choice select, or a boolean widget's no.
func sentinelValue(col *dcolumn.DynamicColumn, raw string) bool {
	switch {
	case col.IsChoice():
		return raw == "0"
	case col.ValueType == dcolumn.TypeBoolean:
		switch strings.ToLower(raw) {
		case "0", "no", "false":
			return true
		}
	}
	return false
}

func (s *Store) cleanChoiceField(ctx context.Context, col *dcolumn.DynamicColumn, raw string, errs FieldErrors) (string, bool) {
	pk, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || pk < 0 {
		errs.Add(col.Slug, fmt.Sprintf("%s field is not a number.", col.Name))
		return "", false
	}

	if !col.StoreRelation {
		return strconv.FormatInt(pk, 10), true
	}

	// Denormalize now: resolve the pk to the target's display value.
	if col.RelationID == nil {
		errs.Add(col.Slug, fmt.Sprintf("%s field has no relation configured.", col.Name))
		return "", false
	}
	entry, ok := s.registry.Resolve(*col.RelationID)
	if !ok {
		errs.Add(col.Slug, fmt.Sprintf("%s field references an unregistered relation.", col.Name))
		return "", false
	}
	display, err := entry.Target.LookupByPK(ctx, pk, entry.DisplayField)
	if err != nil {
		errs.Add(col.Slug, fmt.Sprintf("%s field has an unknown reference.", col.Name))
		return "", false
	}

	textCodec, _ := dcolumn.CodecFor(dcolumn.TypeText)
	if len(display) > textCodec.MaxLength() {
		errs.Add(col.Slug, fmt.Sprintf("%s field is too long, maximum length is %d characters.",
			col.Name, textCodec.MaxLength()))
		return "", false
	}
	return display, true
}

// SaveForm validates raw input and, when clean, writes all values in one
// transaction. Field errors come back in the first return; the second is
// reserved for infrastructure failures.
func (s *Store) SaveForm(ctx context.Context, host Host, input map[string]string) (FieldErrors, error) {
	if host.GetID() == 0 {
		return nil, apperror.NewValidation("cannot save values for an unsaved record").
			WithDetail("host_type", host.HostType())
	}

	cleaned, errs, err := s.CleanForm(ctx, host, input)
	if err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		return errs, nil
	}
	return nil, s.SetMany(ctx, host, cleaned)
}
