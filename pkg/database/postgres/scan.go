package postgres

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
)

var (
	structCache   = make(map[reflect.Type][]fieldInfo)
	structCacheMu sync.RWMutex
)

type fieldInfo struct {
	column string
	index  int
}

// structFields 返回结构体的列映射（带缓存），无 db tag 时使用 snake_case 字段名
func structFields(t reflect.Type) []fieldInfo {
	structCacheMu.RLock()
	fields, ok := structCache[t]
	structCacheMu.RUnlock()
	if ok {
		return fields
	}

	structCacheMu.Lock()
	defer structCacheMu.Unlock()
	if fields, ok := structCache[t]; ok {
		return fields
	}

	fields = make([]fieldInfo, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		column := f.Tag.Get("db")
		if column == "-" {
			continue
		}
		if column == "" {
			column = toSnakeCase(f.Name)
		}
		fields = append(fields, fieldInfo{column: column, index: i})
	}
	structCache[t] = fields
	return fields
}

func scanStruct(rows pgx.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}
	v = v.Elem()

	descriptions := rows.FieldDescriptions()
	columnIndex := make(map[string]int, len(descriptions))
	for i, fd := range descriptions {
		columnIndex[fd.Name] = i
	}

	values := make([]any, len(descriptions))
	for _, f := range structFields(v.Type()) {
		if idx, ok := columnIndex[f.column]; ok {
			values[idx] = v.Field(f.index).Addr().Interface()
		}
	}
	for i := range values {
		if values[i] == nil {
			var discard any
			values[i] = &discard
		}
	}

	return rows.Scan(values...)
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
