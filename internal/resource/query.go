package resource

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mdwit/spec2admin/internal/schema"
)

// ResolveQuery собирает строку query из пар key=value&.
// Ключи переводятся через алиасы и идут в лексическом порядке;
// завершающий & не удаляется.
//
// При validate ключ обязан иметь контракт: массив разворачивается в
// повтор ключа, boolean пишется как true/false. Без validate любое
// значение пишется в сыром строковом виде.
func (d *Descriptor) ResolveQuery(data Values, validate bool) (string, error) {
	var sb strings.Builder
	for _, key := range sortedKeys(data) {
		name := d.Aliases.Translate(key)
		value := data[key]

		if !validate {
			writePair(&sb, name, rawString(value))
			continue
		}

		contract, ok := d.Query[name]
		if !ok {
			return "", &QueryParameterError{Name: name, Path: d.WirePath}
		}
		switch contract.Type {
		case schema.TypeArray:
			items := elements(value)
			if items == nil {
				writePair(&sb, name, rawString(value))
				continue
			}
			for _, item := range items {
				writePair(&sb, name, rawString(item))
			}
		case schema.TypeBoolean:
			writePair(&sb, name, strconv.FormatBool(truthy(value)))
		default:
			writePair(&sb, name, rawString(value))
		}
	}
	return sb.String(), nil
}

func writePair(sb *strings.Builder, key, value string) {
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(value)
	sb.WriteByte('&')
}

// rawString строковая форма значения; массив через запятую, nil пустой.
func rawString(v any) string {
	v = deref(v)
	if v == nil {
		return ""
	}
	if items := elements(v); items != nil {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = rawString(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

// elements возвращает элементы среза или массива, иначе nil.
func elements(v any) []any {
	rv := reflect.ValueOf(deref(v))
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

func truthy(v any) bool {
	v = deref(v)
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b
		}
		return x != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	default:
		return true
	}
}
