package postgres

import (
	"reflect"
	"sync"
)

// column is a db-tagged field reachable from a struct, embedded structs included.
type column struct {
	name  string
	index []int
}

var columnCache sync.Map // map[reflect.Type][]column

// columnsOf returns the cached column layout of t (a struct or pointer to struct).
func columnsOf(t reflect.Type) []column {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]column)
	}

	var cols []column
	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if f.Anonymous {
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			cols = append(cols, column{name: tag, index: f.Index})
		}
	}

	actual, _ := columnCache.LoadOrStore(t, cols)
	return actual.([]column)
}

// ExtractDBColumns lists the "db" tags of T in declaration order,
// embedded structs (entity.Document and friends) first.
//
// Usage:
//
//	cols := ExtractDBColumns[purchase.Lot]()
//	// ["id", "version", "created_at", "updated_at", "invoice_number", ...]
func ExtractDBColumns[T any]() []string {
	cols := columnsOf(reflect.TypeFor[T]())
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// StructToMap maps db column names to field values.
// Fields tagged "-" or untagged are skipped; nil pointers map to nil.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	cols := columnsOf(rv.Type())
	res := make(map[string]any, len(cols))
	for _, c := range cols {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}

// ValuesFor returns the values of v for the given columns, in order.
// Unknown columns yield nil.
func ValuesFor(v any, columns []string) []any {
	m := StructToMap(v)
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = m[c]
	}
	return out
}
