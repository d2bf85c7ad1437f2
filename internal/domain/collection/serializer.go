package collection

import (
	"strconv"

	"dcolumn/internal/choices"
	"dcolumn/internal/domain/dcolumn"
)

// ColumnView is the wire shape of one descriptor for UI consumers. The
// location key is resolved to its CSS class through the registry's
// container map; an unknown key yields an empty class.
type ColumnView struct {
	PK            int64  `json:"pk"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	ValueType     int    `json:"value_type"`
	RelationID    *int   `json:"relation,omitempty"`
	Required      bool   `json:"required"`
	StoreRelation bool   `json:"store_relation"`
	Location      string `json:"location"`
	Order         int    `json:"order"`
	Widget        string `json:"widget"`

	// Value carries the record's stored text when serializing for an
	// existing host; empty on blank-form serialization.
	Value string `json:"value,omitempty"`
}

// WidgetFor maps a value type to the input widget a form should render.
func WidgetFor(vt dcolumn.ValueType) string {
	switch vt {
	case dcolumn.TypeBoolean:
		return "checkbox"
	case dcolumn.TypeChoice:
		return "select"
	case dcolumn.TypeDate:
		return "date"
	case dcolumn.TypeDateTime:
		return "datetime"
	case dcolumn.TypeTime:
		return "time"
	case dcolumn.TypeFloat, dcolumn.TypeNumber:
		return "number"
	case dcolumn.TypeTextBlock:
		return "textarea"
	default:
		return "text"
	}
}

// Serialize renders descriptors in display order. The returned slice keys
// each view by descriptor pk; use SerializeBySlug for slug-keyed output.
func Serialize(cols []*dcolumn.DynamicColumn, registry *choices.Registry) []ColumnView {
	sorted := append([]*dcolumn.DynamicColumn(nil), cols...)
	SortColumns(sorted)

	views := make([]ColumnView, len(sorted))
	for i, dc := range sorted {
		views[i] = ColumnView{
			PK:            dc.ID,
			Name:          dc.Name,
			Slug:          dc.Slug,
			ValueType:     int(dc.ValueType),
			RelationID:    dc.RelationID,
			Required:      dc.Required,
			StoreRelation: dc.StoreRelation,
			Location:      registry.ContainerClass(dc.Location),
			Order:         dc.Order,
			Widget:        WidgetFor(dc.ValueType),
		}
	}
	return views
}

// ViewMap keys serialized views for JSON object consumers. bySlug keys by
// slug, otherwise by pk. Ordering lives in the slice from Serialize; the
// map is a lookup companion.
func ViewMap(views []ColumnView, bySlug bool) map[string]ColumnView {
	m := make(map[string]ColumnView, len(views))
	for _, v := range views {
		if bySlug {
			m[v.Slug] = v
		} else {
			m[strconv.FormatInt(v.PK, 10)] = v
		}
	}
	return m
}
