// Package choices unifies referenceable targets behind one capability set.
// A target is either a persistent entity manager (EntityTarget) or a static
// enumeration (StaticSet); CHOICE-typed dynamic columns resolve their stored
// primary keys through a Registry of such targets.
package choices

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dcolumn/internal/core/apperror"
)

// Row is one referenceable row of a target: a primary key plus named fields.
type Row interface {
	PK() int64
	// Field returns the string form of a named field, false if the field
	// does not exist on the row.
	Field(name string) (string, bool)
}

// Target is the capability set shared by persistent entity managers and
// static enumerations. The registry cannot tell the two apart.
type Target interface {
	// Name identifies the target; persisted column descriptors never store
	// it, only the numeric relation id, so targets may be renamed freely.
	Name() string

	// FieldNames lists the attributes available on a fresh row, used to
	// validate display fields at registration time.
	FieldNames() []string

	// Enumerate returns the target's rows, restricted to active ones when
	// activeOnly is set.
	Enumerate(ctx context.Context, activeOnly bool) ([]Row, error)

	// LookupByPK resolves a primary key to the value of the named field.
	// pk 0 means "no reference" and yields an empty string; a non-zero pk
	// that does not exist is an error.
	LookupByPK(ctx context.Context, pk int64, field string) (string, error)
}

// Option is one (pk, label) pair for a selection widget.
type Option struct {
	PK    int64  `json:"pk"`
	Label string `json:"label"`
}

// RelationOption is one (relation id, target name) pair for admin widgets.
type RelationOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Container is one (key, CSS class) display-location pair.
type Container struct {
	Key   string `json:"key"`
	Class string `json:"class"`
}

// Entry is a registered target with its declared display field.
type Entry struct {
	RelationID   int
	Target       Target
	DisplayField string
}

// Registry maps stable relation ids to referenceable targets. Registration
// is single-writer at process initialization; reads are concurrent and the
// registry is treated as immutable afterwards.
type Registry struct {
	mu           sync.RWMutex
	entries      map[int]Entry
	byName       map[string]int
	containers   []Container
	containerMap map[string]string
	collections  map[string]string // host type name -> collection name
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:      make(map[int]Entry),
		byName:       make(map[string]int),
		containerMap: make(map[string]string),
		collections:  make(map[string]string),
	}
}

// defaultRegistry is the process-wide view. Components take an explicit
// *Registry; this facade exists for wiring at the program edge.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register adds a target under a relation id with a display field.
// The target must implement the Target capability set, the relation id must
// be unused, and the display field must be an attribute of a fresh row.
func (r *Registry) Register(target any, relationID int, displayField string) error {
	t, ok := target.(Target)
	if !ok || t.Name() == "" {
		return apperror.New(apperror.CodeInvalidTarget,
			fmt.Sprintf("target %T does not implement the choice capability set", target), 500)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.entries[relationID]; taken {
		return apperror.New(apperror.CodeDuplicateRelation,
			fmt.Sprintf("relation id %d is already used", relationID), 500).
			WithDetail("relation_id", relationID)
	}

	if !containsString(t.FieldNames(), displayField) {
		return apperror.New(apperror.CodeUnknownField,
			fmt.Sprintf("the %q target does not have the field %q", t.Name(), displayField), 500).
			WithDetail("target", t.Name()).
			WithDetail("field", displayField)
	}

	r.entries[relationID] = Entry{RelationID: relationID, Target: t, DisplayField: displayField}
	r.byName[t.Name()] = relationID
	return nil
}

// Unregister removes a target. Test-only; never expose to request workers.
func (r *Registry) Unregister(target any) error {
	t, ok := target.(Target)
	if !ok {
		return apperror.New(apperror.CodeInvalidTarget,
			fmt.Sprintf("target %T does not implement the choice capability set", target), 500)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byName[t.Name()]
	if !ok {
		return apperror.New(apperror.CodeNotRegistered,
			fmt.Sprintf("target %q was never registered", t.Name()), 500).
			WithDetail("target", t.Name())
	}
	delete(r.entries, id)
	delete(r.byName, t.Name())
	return nil
}

// Resolve returns the entry for a relation id.
func (r *Registry) Resolve(relationID int) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[relationID]
	return e, ok
}

// ResolveByName returns the entry for a target name.
func (r *Registry) ResolveByName(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[id], true
}

// Relations returns (relation id, target name) pairs sorted by target name,
// with a sentinel entry prepended for UI select lists.
func (r *Registry) Relations() []RelationOption {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := make([]RelationOption, 0, len(r.entries)+1)
	for id, e := range r.entries {
		opts = append(opts, RelationOption{ID: id, Name: e.Target.Name()})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })

	return append([]RelationOption{{ID: 0, Name: "Choose a Relation"}}, opts...)
}

// DisplayMap returns relation id -> target name.
func (r *Registry) DisplayMap() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := make(map[int]string, len(r.entries))
	for id, e := range r.entries {
		m[id] = e.Target.Name()
	}
	return m
}

// RegisterContainers installs the ordered display-location mapping consulted
// by the UI layer. The list must be non-empty and duplicate-free.
func (r *Registry) RegisterContainers(list []Container) error {
	if len(list) == 0 {
		return apperror.NewValidation("must supply at least one CSS container")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(list))
	for _, c := range list {
		if _, dup := seen[c.Key]; dup {
			return apperror.NewValidation("duplicate CSS container key").WithDetail("key", c.Key)
		}
		seen[c.Key] = struct{}{}
	}

	r.containers = append([]Container(nil), list...)
	r.containerMap = make(map[string]string, len(list))
	for _, c := range list {
		r.containerMap[c.Key] = c.Class
	}
	return nil
}

// Containers returns the ordered display-location pairs.
func (r *Registry) Containers() []Container {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Container(nil), r.containers...)
}

// ContainerClass resolves a location key to its CSS class, empty when unknown.
func (r *Registry) ContainerClass(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.containerMap[key]
}

// ContainerMap returns key -> CSS class.
func (r *Registry) ContainerMap() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := make(map[string]string, len(r.containerMap))
	for k, v := range r.containerMap {
		m[k] = v
	}
	return m
}

// BindCollection maps a host entity type name to its collection name.
// Replaces the legacy reflective module scan with an explicit map.
func (r *Registry) BindCollection(hostType, collectionName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[hostType] = collectionName
}

// CollectionName resolves a host type name to its collection name.
func (r *Registry) CollectionName(hostType string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.collections[hostType]
	return name, ok
}

// TargetChoices builds the (pk, label) list for a target's selection widget.
// The sentinel head, when requested, is (0, "Please choose a <TargetName>").
func TargetChoices(ctx context.Context, t Target, field string, includeSentinel, sortByLabel bool) ([]Option, error) {
	rows, err := t.Enumerate(ctx, true)
	if err != nil {
		return nil, err
	}

	opts := make([]Option, 0, len(rows)+1)
	for _, row := range rows {
		label, ok := row.Field(field)
		if !ok {
			return nil, apperror.New(apperror.CodeUnknownField,
				fmt.Sprintf("the %q target does not have the field %q", t.Name(), field), 500)
		}
		opts = append(opts, Option{PK: row.PK(), Label: label})
	}

	if sortByLabel {
		sort.Slice(opts, func(i, j int) bool { return opts[i].Label < opts[j].Label })
	}
	if includeSentinel {
		opts = append([]Option{{PK: 0, Label: "Please choose a " + t.Name()}}, opts...)
	}
	return opts, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
