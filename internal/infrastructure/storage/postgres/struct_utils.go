package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns lists all column names from a struct's "db" tags,
// walking embedded structs. Called once per repository at construction, so
// reflection cost is irrelevant.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsFromType(reflect.TypeOf(zero))
}

func columnsFromType(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			cols = append(cols, columnsFromType(f.Type)...)
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}

// fieldPath caches the index path of each db-tagged field per type.
var fieldPathCache sync.Map // reflect.Type -> map[string][]int

func fieldPaths(t reflect.Type) map[string][]int {
	if cached, ok := fieldPathCache.Load(t); ok {
		return cached.(map[string][]int)
	}
	paths := make(map[string][]int)
	walkFieldPaths(t, nil, paths)
	fieldPathCache.Store(t, paths)
	return paths
}

func walkFieldPaths(t reflect.Type, prefix []int, paths map[string][]int) {
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), prefix...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			walkFieldPaths(f.Type, idx, paths)
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		if _, exists := paths[tag]; !exists {
			paths[tag] = idx
		}
	}
}

// StructToMap converts an entity to a column->value map using "db" tags,
// walking embedded structs. Used to feed squirrel's SetMap.
func StructToMap(entity any) map[string]any {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	paths := fieldPaths(v.Type())
	out := make(map[string]any, len(paths))
	for col, path := range paths {
		out[col] = v.FieldByIndex(path).Interface()
	}
	return out
}
