package beersql

import (
	"reflect"
	"sync"
)

// ExtractDBColumns extracts all column names from struct "db" tags,
// descending into embedded structs. Called once at initialization time.
func ExtractDBColumns[T any]() []string {
	var zero T
	return extractColumnsFromType(reflect.TypeOf(zero))
}

func extractColumnsFromType(t reflect.Type) []string {
	meta := getOrCreateTypeMetadata(t)
	if meta == nil {
		return nil
	}

	var cols []string
	for _, fi := range meta.fields {
		if fi.embedded {
			cols = append(cols, extractColumnsFromType(fi.typ)...)
			continue
		}
		cols = append(cols, fi.dbTag)
	}
	return cols
}

type fieldInfo struct {
	index    int
	dbTag    string
	embedded bool
	typ      reflect.Type
}

type typeMetadata struct {
	fields []fieldInfo
}

// typeCache holds *typeMetadata per reflect.Type.
var typeCache sync.Map

// getOrCreateTypeMetadata returns nil for non-struct types.
func getOrCreateTypeMetadata(t reflect.Type) *typeMetadata {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			meta.fields = append(meta.fields, fieldInfo{index: i, embedded: true, typ: field.Type})
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.fields = append(meta.fields, fieldInfo{index: i, dbTag: tag, typ: field.Type})
	}

	typeCache.Store(t, meta)
	return meta
}

// StructToMap converts a struct to a column→value map using "db" tags.
// Embedded structs are flattened into the same map.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	meta := getOrCreateTypeMetadata(rv.Type())
	if meta == nil {
		return nil
	}

	res := make(map[string]any, len(meta.fields))
	for _, fi := range meta.fields {
		if fi.embedded {
			for k, val := range StructToMap(rv.Field(fi.index).Interface()) {
				res[k] = val
			}
			continue
		}
		res[fi.dbTag] = rv.Field(fi.index).Interface()
	}
	return res
}
