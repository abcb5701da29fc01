package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// InsertModel starts an insert of one row built from the struct's db tags.
func InsertModel(table string, model any) (*InsertBuilder, error) {
	cols, vals, err := modelColumns(model)
	if err != nil {
		return nil, err
	}
	return InsertInto(table).Columns(cols...).Values(vals...), nil
}

// UpsertModel inserts one row and, when a row with the same conflict columns exists, overwrites
// every other tagged column with the new value.
func UpsertModel(table string, model any, conflictColumns ...string) (*InsertBuilder, error) {
	if len(conflictColumns) == 0 {
		return nil, fmt.Errorf("upsert into %s requires conflict columns", table)
	}
	builder, err := InsertModel(table, model)
	if err != nil {
		return nil, err
	}

	updates := make([]string, 0, len(builder.columns))
	for _, col := range builder.columns {
		if slices.Contains(conflictColumns, col) {
			continue
		}
		updates = append(updates, col+" = excluded."+col)
	}
	suffix := "ON CONFLICT(" + strings.Join(conflictColumns, ", ") + ") DO NOTHING"
	if len(updates) > 0 {
		suffix = "ON CONFLICT(" + strings.Join(conflictColumns, ", ") + ") DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return builder.Suffix(suffix), nil
}

func modelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model %s has no db columns", typ.Name())
	}
	return cols, vals, nil
}
