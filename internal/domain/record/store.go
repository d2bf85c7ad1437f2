package record

import (
	"context"
	"reflect"
	"strconv"
	"strings"

	"dcolumn/internal/choices"
	"dcolumn/internal/core/apperror"
	"dcolumn/internal/core/tx"
	"dcolumn/internal/domain/collection"
	"dcolumn/internal/domain/dcolumn"
	"dcolumn/pkg/logger"
)

// Store is the typed access layer over a host's key/value rows. It owns
// the slug-to-descriptor resolution, the per-type codec dispatch and the
// choice registry lookups; hosts never touch stored text directly.
type Store struct {
	collections *collection.Service
	values      ValueRepository
	registry    *choices.Registry
	txr         tx.Runner
	audit       dcolumn.Auditor
	log         *logger.Logger
}

// NewStore creates a value store.
func NewStore(collections *collection.Service, values ValueRepository, registry *choices.Registry, txr tx.Runner, log *logger.Logger) *Store {
	return &Store{
		collections: collections,
		values:      values,
		registry:    registry,
		txr:         txr,
		log:         log.WithComponent("record.store"),
	}
}

// WithAuditor attaches an optional change recorder for batch value saves.
func (s *Store) WithAuditor(a dcolumn.Auditor) *Store {
	s.audit = a
	return s
}

type getOptions struct {
	field     string
	rawChoice bool
}

// GetOption adjusts how Get resolves a value.
type GetOption func(*getOptions)

// WithField overrides the display field used for choice resolution.
func WithField(field string) GetOption {
	return func(o *getOptions) { o.field = field }
}

// WithRawChoice returns the stored primary key of a choice column instead
// of resolving it to a display value.
func WithRawChoice() GetOption {
	return func(o *getOptions) { o.rawChoice = true }
}

type setOptions struct {
	force    bool
	deferred bool
}

// SetOption adjusts how Set treats a write.
type SetOption func(*setOptions)

// WithForce allows storing an empty value, which otherwise is rejected.
func WithForce() SetOption {
	return func(o *setOptions) { o.force = true }
}

// Deferred queues the write for Flush even when the host is saved.
func Deferred() SetOption {
	return func(o *setOptions) { o.deferred = true }
}

// Columns returns the active descriptors applying to the host right now.
func (s *Store) Columns(ctx context.Context, host Host) ([]*dcolumn.DynamicColumn, error) {
	name, ok := s.registry.CollectionName(host.HostType())
	if !ok {
		return nil, apperror.NewCollectionMissing(host.HostType())
	}
	return s.collections.DescriptorsFor(ctx, name, false)
}

func (s *Store) columnBySlug(ctx context.Context, host Host, slug string) (*dcolumn.DynamicColumn, error) {
	cols, err := s.Columns(ctx, host)
	if err != nil {
		return nil, err
	}
	for _, dc := range cols {
		if dc.Slug == slug {
			return dc, nil
		}
	}
	return nil, apperror.NewUnknownSlug(slug)
}

// Get returns the host's value for a slug as its native Go type: bool,
// int64, time.Time, decimal.Decimal or string. Choice columns resolve to
// the registered display field unless overridden. An absent or empty row
// yields an empty string regardless of type.
func (s *Store) Get(ctx context.Context, host Host, slug string, opts ...GetOption) (any, error) {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	col, err := s.columnBySlug(ctx, host, slug)
	if err != nil {
		return nil, err
	}

	kv, err := s.values.Get(ctx, host.HostType(), host.GetID(), col.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", nil
		}
		return nil, err
	}
	if kv.Value == "" {
		return "", nil
	}

	if col.IsChoice() {
		return s.resolveChoice(ctx, col, kv.Value, o)
	}

	codec, err := dcolumn.CodecFor(col.ValueType)
	if err != nil {
		return nil, err
	}
	v, err := codec.ParseStore(kv.Value)
	if err != nil {
		return nil, withSlug(err, slug)
	}
	return v, nil
}

// GetText returns the display string for a slug: the resolved choice
// label, or the canonical stored text for every other type.
func (s *Store) GetText(ctx context.Context, host Host, slug string) (string, error) {
	col, err := s.columnBySlug(ctx, host, slug)
	if err != nil {
		return "", err
	}
	kv, err := s.values.Get(ctx, host.HostType(), host.GetID(), col.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	if !col.IsChoice() || col.StoreRelation || kv.Value == "" {
		return kv.Value, nil
	}
	v, err := s.resolveChoice(ctx, col, kv.Value, getOptions{})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Store) resolveChoice(ctx context.Context, col *dcolumn.DynamicColumn, stored string, o getOptions) (any, error) {
	// Denormalized columns already hold the display value.
	if col.StoreRelation {
		return stored, nil
	}

	codec, _ := dcolumn.CodecFor(dcolumn.TypeChoice)
	pkVal, err := codec.ParseStore(stored)
	if err != nil {
		return nil, withSlug(err, col.Slug)
	}
	pk := pkVal.(int64)
	if o.rawChoice {
		return pk, nil
	}

	if col.RelationID == nil {
		return nil, apperror.New(apperror.CodeInconsistentRelation,
			"choice column has no relation", 500).WithDetail("slug", col.Slug)
	}
	entry, ok := s.registry.Resolve(*col.RelationID)
	if !ok {
		return nil, apperror.New(apperror.CodeNotRegistered,
			"choice column references an unregistered relation", 500).
			WithDetail("slug", col.Slug).
			WithDetail("relation_id", *col.RelationID)
	}

	field := o.field
	if field == "" {
		field = entry.DisplayField
	}
	v, err := entry.Target.LookupByPK(ctx, pk, field)
	if err != nil {
		return nil, withSlug(err, col.Slug)
	}
	return v, nil
}

// Set writes the host's value for a slug. Before the host row exists the
// write queues on the embedded record and Flush replays it. Empty values
// are rejected unless forced. Number columns accept the special tokens
// "increment" and "decrement".
func (s *Store) Set(ctx context.Context, host Host, slug string, value any, opts ...SetOption) error {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}

	if host.GetID() == 0 || o.deferred {
		host.Record().Defer(slug, value, o.force)
		return nil
	}
	return s.setNow(ctx, host, slug, value, o.force)
}

func (s *Store) setNow(ctx context.Context, host Host, slug string, value any, force bool) error {
	col, err := s.columnBySlug(ctx, host, slug)
	if err != nil {
		return err
	}

	canonical, err := s.encode(ctx, host, col, value, force)
	if err != nil {
		return err
	}

	kv := &KeyValue{RecordID: host.GetID(), ColumnID: col.ID, Value: canonical}
	if err := s.values.Upsert(ctx, host.HostType(), kv); err != nil {
		return err
	}
	s.log.WithContext(ctx).Debugw("dynamic value set",
		"host_type", host.HostType(), "record_id", host.GetID(), "slug", slug)
	return nil
}

func (s *Store) encode(ctx context.Context, host Host, col *dcolumn.DynamicColumn, value any, force bool) (string, error) {
	if isEmptyValue(value) {
		if !force {
			return "", apperror.NewEmptyValue(col.Slug)
		}
		return "", nil
	}

	if col.ValueType == dcolumn.TypeNumber {
		if tok, ok := value.(string); ok {
			switch strings.ToLower(strings.TrimSpace(tok)) {
			case "increment":
				return s.stepNumber(ctx, host, col, 1)
			case "decrement":
				return s.stepNumber(ctx, host, col, -1)
			}
		}
	}

	if col.IsChoice() {
		return s.encodeChoice(col, value)
	}

	codec, err := dcolumn.CodecFor(col.ValueType)
	if err != nil {
		return "", err
	}

	var canonical string
	if raw, ok := value.(string); ok {
		canonical, err = codec.ParseInput(raw)
	} else {
		canonical, err = codec.EncodeStore(value)
	}
	if err != nil {
		return "", withSlug(err, col.Slug)
	}
	if len(canonical) > codec.MaxLength() {
		return "", apperror.NewBadInput(col.Slug, value).WithDetail("reason", "too long")
	}
	return canonical, nil
}

func (s *Store) encodeChoice(col *dcolumn.DynamicColumn, value any) (string, error) {
	// Denormalized choice columns store display text, capped like TEXT.
	// A referenceable value contributes its registered display field.
	if col.StoreRelation {
		text, ok := value.(string)
		if !ok && col.RelationID != nil {
			if entry, found := s.registry.Resolve(*col.RelationID); found {
				text, ok = choices.DisplayValue(value, entry.DisplayField)
			}
		}
		if !ok {
			return "", apperror.NewBadInput(col.Slug, value).
				WithDetail("reason", "store_relation columns take display text or a referenceable value")
		}
		textCodec, _ := dcolumn.CodecFor(dcolumn.TypeText)
		if len(text) > textCodec.MaxLength() {
			return "", apperror.NewBadInput(col.Slug, value).WithDetail("reason", "too long")
		}
		return text, nil
	}

	// Rows and entities store their pk.
	if pk, ok := choices.ReferencePK(value); ok {
		return strconv.FormatInt(pk, 10), nil
	}

	codec, _ := dcolumn.CodecFor(dcolumn.TypeChoice)
	var canonical string
	var err error
	if raw, ok := value.(string); ok {
		canonical, err = codec.ParseInput(raw)
	} else {
		canonical, err = codec.EncodeStore(value)
	}
	if err != nil {
		return "", withSlug(err, col.Slug)
	}
	return canonical, nil
}

func (s *Store) stepNumber(ctx context.Context, host Host, col *dcolumn.DynamicColumn, delta int64) (string, error) {
	var current int64
	kv, err := s.values.Get(ctx, host.HostType(), host.GetID(), col.ID)
	if err == nil && kv.Value != "" {
		current, err = strconv.ParseInt(kv.Value, 10, 64)
		if err != nil {
			return "", apperror.NewBadStoredValue(col.Slug, kv.Value)
		}
	} else if err != nil && !apperror.IsNotFound(err) {
		return "", err
	}
	return strconv.FormatInt(current+delta, 10), nil
}

// Flush replays queued writes in arrival order inside one transaction.
// The host must be saved first.
func (s *Store) Flush(ctx context.Context, host Host) error {
	if host.GetID() == 0 {
		return apperror.NewValidation("cannot flush values for an unsaved record").
			WithDetail("host_type", host.HostType())
	}
	pending := host.Record().takePending()
	if len(pending) == 0 {
		return nil
	}
	return s.txr.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, p := range pending {
			if err := s.setNow(ctx, host, p.slug, p.value, p.force); err != nil {
				return err
			}
		}
		return nil
	})
}

// Values returns all stored values of the host keyed by slug, as raw
// canonical text. Rows whose descriptor left the collection are skipped.
func (s *Store) Values(ctx context.Context, host Host) (map[string]string, error) {
	return s.SerializeValues(ctx, host, true)
}

// SerializeValues returns all stored values keyed by slug, or by the
// descriptor pk in decimal form when bySlug is false.
func (s *Store) SerializeValues(ctx context.Context, host Host, bySlug bool) (map[string]string, error) {
	cols, err := s.Columns(ctx, host)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*dcolumn.DynamicColumn, len(cols))
	for _, dc := range cols {
		byID[dc.ID] = dc
	}

	rows, err := s.values.ListForRecord(ctx, host.HostType(), host.GetID())
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, kv := range rows {
		dc, ok := byID[kv.ColumnID]
		if !ok {
			continue
		}
		if bySlug {
			out[dc.Slug] = kv.Value
		} else {
			out[strconv.FormatInt(dc.ID, 10)] = kv.Value
		}
	}
	return out, nil
}

// SetMany writes a batch of canonical slug/value pairs in one transaction.
// Used by validated form saves; empty values are forced through to clear
// previously stored text.
func (s *Store) SetMany(ctx context.Context, host Host, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	err := s.txr.RunInTransaction(ctx, func(ctx context.Context) error {
		for slug, v := range values {
			if err := s.setNow(ctx, host, slug, v, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.audit != nil {
		changes := make(map[string]any, len(values))
		for slug, v := range values {
			changes[slug] = v
		}
		if aerr := s.audit.LogChange(ctx, "record:"+host.HostType(), host.GetID(), "update", changes); aerr != nil {
			s.log.WithContext(ctx).Warnw("audit write failed",
				"host_type", host.HostType(), "record_id", host.GetID(), "error", aerr)
		}
	}
	return nil
}

// AllSlugs lists the slugs of the host's active descriptors in display
// order.
func (s *Store) AllSlugs(ctx context.Context, host Host) ([]string, error) {
	cols, err := s.Columns(ctx, host)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(cols))
	for i, dc := range cols {
		slugs[i] = dc.Slug
	}
	return slugs, nil
}

// AllNames lists the display names of the host's active descriptors in
// display order.
func (s *Store) AllNames(ctx context.Context, host Host) ([]string, error) {
	cols, err := s.Columns(ctx, host)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, dc := range cols {
		names[i] = dc.Name
	}
	return names, nil
}

// NativeFields lists the db-tagged field names of the host struct itself,
// so callers can tell native columns and dynamic slugs apart.
func NativeFields(host Host) []string {
	var fields []string
	collectNativeFields(reflect.TypeOf(host).Elem(), &fields)
	return fields
}

func collectNativeFields(t reflect.Type, out *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectNativeFields(f.Type, out)
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		*out = append(*out, tag)
	}
}

// FieldsAndSlugs lists native field names followed by the active dynamic
// slugs, the full addressable surface of a host.
func (s *Store) FieldsAndSlugs(ctx context.Context, host Host) ([]string, error) {
	slugs, err := s.AllSlugs(ctx, host)
	if err != nil {
		return nil, err
	}
	return append(NativeFields(host), slugs...), nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func withSlug(err error, slug string) error {
	if ae, ok := apperror.AsAppError(err); ok {
		ae.WithDetail("slug", slug)
	}
	return err
}
