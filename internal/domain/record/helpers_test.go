package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"dcolumn/internal/choices"
	"dcolumn/internal/core/apperror"
	"dcolumn/internal/core/entity"
	"dcolumn/internal/core/tx"
	"dcolumn/internal/domain/collection"
	"dcolumn/internal/domain/dcolumn"
	"dcolumn/pkg/logger"
)

// testBook is a minimal host entity for store tests.
type testBook struct {
	entity.Base
	CollectionRecord
	Title string `db:"title"`
}

func (b *testBook) HostType() string          { return "Book" }
func (b *testBook) Record() *CollectionRecord { return &b.CollectionRecord }

// testPromotion is a minimal persisted choice target for write tests.
type testPromotion struct {
	entity.Base
	Name string `db:"name"`
}

type valueKey struct {
	recordID int64
	columnID int64
}

type fakeValueRepo struct {
	rows   map[string]map[valueKey]*KeyValue
	nextID int64
}

func newFakeValueRepo() *fakeValueRepo {
	return &fakeValueRepo{rows: make(map[string]map[valueKey]*KeyValue), nextID: 1}
}

func (r *fakeValueRepo) table(hostType string) map[valueKey]*KeyValue {
	t, ok := r.rows[hostType]
	if !ok {
		t = make(map[valueKey]*KeyValue)
		r.rows[hostType] = t
	}
	return t
}

func (r *fakeValueRepo) Get(_ context.Context, hostType string, recordID, columnID int64) (*KeyValue, error) {
	kv, ok := r.table(hostType)[valueKey{recordID, columnID}]
	if !ok {
		return nil, apperror.NewNotFound("key value", columnID)
	}
	cp := *kv
	return &cp, nil
}

func (r *fakeValueRepo) Upsert(_ context.Context, hostType string, kv *KeyValue) error {
	t := r.table(hostType)
	key := valueKey{kv.RecordID, kv.ColumnID}
	if existing, ok := t[key]; ok {
		existing.Value = kv.Value
		kv.ID = existing.ID
		return nil
	}
	kv.ID = r.nextID
	r.nextID++
	cp := *kv
	t[key] = &cp
	return nil
}

func (r *fakeValueRepo) ListForRecord(_ context.Context, hostType string, recordID int64) ([]*KeyValue, error) {
	var out []*KeyValue
	for key, kv := range r.table(hostType) {
		if key.recordID == recordID {
			cp := *kv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeValueRepo) DeleteForRecord(_ context.Context, hostType string, recordID int64) error {
	t := r.table(hostType)
	for key := range t {
		if key.recordID == recordID {
			delete(t, key)
		}
	}
	return nil
}

type fakeColumnRepo struct {
	cols map[int64]*dcolumn.DynamicColumn
}

func (r *fakeColumnRepo) Create(_ context.Context, dc *dcolumn.DynamicColumn) error { return nil }
func (r *fakeColumnRepo) Update(_ context.Context, dc *dcolumn.DynamicColumn) error { return nil }

func (r *fakeColumnRepo) GetByID(_ context.Context, id int64) (*dcolumn.DynamicColumn, error) {
	dc, ok := r.cols[id]
	if !ok {
		return nil, apperror.NewNotFound("dynamic column", id)
	}
	return dc, nil
}

func (r *fakeColumnRepo) GetBySlug(_ context.Context, slug string) (*dcolumn.DynamicColumn, error) {
	for _, dc := range r.cols {
		if dc.Slug == slug {
			return dc, nil
		}
	}
	return nil, apperror.NewNotFound("dynamic column", slug)
}

func (r *fakeColumnRepo) List(_ context.Context, activeOnly bool) ([]*dcolumn.DynamicColumn, error) {
	var out []*dcolumn.DynamicColumn
	for _, dc := range r.cols {
		if !activeOnly || dc.Active {
			out = append(out, dc)
		}
	}
	return out, nil
}

func (r *fakeColumnRepo) ListByIDs(_ context.Context, ids []int64) ([]*dcolumn.DynamicColumn, error) {
	var out []*dcolumn.DynamicColumn
	for _, id := range ids {
		if dc, ok := r.cols[id]; ok {
			out = append(out, dc)
		}
	}
	return out, nil
}

func (r *fakeColumnRepo) Delete(_ context.Context, id int64) error { return nil }

type fakeCollectionRepo struct {
	byName  map[string]*collection.ColumnCollection
	members map[int64][]int64
}

func (r *fakeCollectionRepo) Create(_ context.Context, c *collection.ColumnCollection) error {
	return nil
}
func (r *fakeCollectionRepo) Update(_ context.Context, c *collection.ColumnCollection) error {
	return nil
}

func (r *fakeCollectionRepo) GetByID(_ context.Context, id int64) (*collection.ColumnCollection, error) {
	for _, c := range r.byName {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("collection", id)
}

func (r *fakeCollectionRepo) GetActiveByName(_ context.Context, name string) (*collection.ColumnCollection, error) {
	c, ok := r.byName[name]
	if !ok || !c.Active {
		return nil, apperror.NewNotFound("collection", name)
	}
	return c, nil
}

func (r *fakeCollectionRepo) List(_ context.Context, _ bool) ([]*collection.ColumnCollection, error) {
	return nil, nil
}

func (r *fakeCollectionRepo) Delete(_ context.Context, _ int64) error { return nil }

func (r *fakeCollectionRepo) SyncColumns(_ context.Context, collectionID int64, columnIDs []int64) error {
	r.members[collectionID] = columnIDs
	return nil
}

func (r *fakeCollectionRepo) LoadColumnIDs(_ context.Context, c *collection.ColumnCollection) error {
	c.ColumnIDs = append([]int64(nil), r.members[c.ID]...)
	return nil
}

func (r *fakeCollectionRepo) ListUnassignedColumnIDs(_ context.Context) ([]int64, error) {
	return nil, nil
}

// testEnv wires a Store over in-memory fakes with a Books collection:
// text, choice, denormalized choice, number, date and boolean columns.
type testEnv struct {
	store  *Store
	values *fakeValueRepo
	cols   *fakeColumnRepo
	reg    *choices.Registry
}

func col(id int64, name string, vt dcolumn.ValueType, location string, order int) *dcolumn.DynamicColumn {
	dc := &dcolumn.DynamicColumn{Name: name, ValueType: vt, Location: location, Order: order}
	dc.ID = id
	dc.Active = true
	dc.DeriveSlug()
	return dc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	reg := choices.NewRegistry()
	lang, err := choices.NewSimpleSet("Language", "Chinese", "English", "Portuguese")
	require.NoError(t, err)
	require.NoError(t, reg.Register(lang, 1, "name"))

	promo, err := choices.NewSimpleSet("Promotion", "Spring Sale", "Summer Clearance")
	require.NoError(t, err)
	require.NoError(t, reg.Register(promo, 2, "name"))

	require.NoError(t, reg.RegisterContainers([]choices.Container{
		{Key: "top", Class: "container-top"},
		{Key: "center", Class: "container-center"},
		{Key: "bottom", Class: "container-bottom"},
	}))
	reg.BindCollection("Book", "Books")

	relLang, relPromo := 1, 2

	language := col(2, "Language", dcolumn.TypeChoice, "center", 1)
	language.RelationID = &relLang
	language.Required = true

	promotion := col(6, "Promotion", dcolumn.TypeChoice, "bottom", 1)
	promotion.RelationID = &relPromo
	promotion.StoreRelation = true

	colrepo := &fakeColumnRepo{cols: map[int64]*dcolumn.DynamicColumn{
		1: col(1, "Web Site", dcolumn.TypeText, "top", 1),
		2: language,
		3: col(3, "Edition", dcolumn.TypeNumber, "center", 2),
		4: col(4, "Published", dcolumn.TypeDate, "center", 3),
		6: promotion,
		7: col(7, "Out Of Print", dcolumn.TypeBoolean, "bottom", 2),
	}}

	books := &collection.ColumnCollection{Name: "Books", RelatedModel: "Book"}
	books.ID = 1
	books.Active = true
	crepo := &fakeCollectionRepo{
		byName:  map[string]*collection.ColumnCollection{"Books": books},
		members: map[int64][]int64{1: {1, 2, 3, 4, 6, 7}},
	}

	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)

	colsvc := collection.NewService(crepo, colrepo, reg, tx.NopRunner{}, log)
	values := newFakeValueRepo()
	store := NewStore(colsvc, values, reg, tx.NopRunner{}, log)

	return &testEnv{store: store, values: values, cols: colrepo, reg: reg}
}

func savedBook(title string) *testBook {
	b := &testBook{Title: title}
	b.ID = 1
	b.Active = true
	return b
}
