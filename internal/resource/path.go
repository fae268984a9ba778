package resource

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
)

var wirePlaceholder = regexp.MustCompile(`\{([^{}]+)\}`)

// APIPath строит путь API с проверкой обязательных параметров и query.
func (d *Descriptor) APIPath(params, query Values) (string, error) {
	return d.BuildAPIPath(params, query, true)
}

// BuildAPIPath подставляет параметры в шаблон с {name}. При validate
// оставшийся плейсхолдер и неизвестный query-ключ считаются ошибкой.
// Значение null, массив или объект ошибка всегда.
func (d *Descriptor) BuildAPIPath(params, query Values, validate bool) (string, error) {
	path := d.WirePath
	for _, name := range sortedKeys(params) {
		value, err := pathValue(name, params[name])
		if err != nil {
			return "", err
		}
		path = strings.ReplaceAll(path, "{"+d.Aliases.Translate(name)+"}", value)
	}

	if validate {
		if m := wirePlaceholder.FindStringSubmatch(path); m != nil {
			return "", &PathParameterError{Name: m[1], Path: d.WirePath}
		}
	}

	qs, err := d.ResolveQuery(query, validate)
	if err != nil {
		return "", err
	}
	return withQuery(path, qs), nil
}

// LocalPath строит путь навигации; query не проверяется.
func (d *Descriptor) LocalPath(params, query Values) (string, error) {
	return d.BuildLocalPath(params, query, true)
}

// BuildLocalPath подставляет параметры в шаблон с :name. Заменяются и
// проверяются только имена из PathParamNames; литеральное двоеточие
// внутри сегмента (/posts:search) остается как есть. validate относится
// только к плейсхолдерам: query всегда добавляется без проверки.
func (d *Descriptor) BuildLocalPath(params, query Values, validate bool) (string, error) {
	path := d.NavigationPath
	known := d.PathParamNames()
	for _, name := range sortedKeys(params) {
		value, err := pathValue(name, params[name])
		if err != nil {
			return "", err
		}
		if wire := d.Aliases.Translate(name); slices.Contains(known, wire) {
			path = replaceColonParam(path, wire, value)
		}
	}

	if validate {
		for _, name := range known {
			if colonParam(path, name) >= 0 {
				return "", &PathParameterError{Name: name, Path: d.NavigationPath}
			}
		}
	}

	qs, err := d.ResolveQuery(query, false)
	if err != nil {
		return "", err
	}
	return withQuery(path, qs), nil
}

func withQuery(path, qs string) string {
	if qs == "" {
		return path
	}
	return path + "?" + qs
}

// MatchesNavigation сообщает, построен ли путь навигации (без query) из
// шаблона дескриптора: каждый :param совпадает с непустой частью сегмента,
// остальное сравнивается буквально.
func (d *Descriptor) MatchesNavigation(navPath string) bool {
	tpl := d.NavigationPath
	params := d.PathParamNames()

	var sb strings.Builder
	sb.WriteByte('^')
	for i := 0; i < len(tpl); {
		if name := paramAt(tpl, i, params); name != "" {
			sb.WriteString(`[^/]+`)
			i += 1 + len(name)
			continue
		}
		sb.WriteString(regexp.QuoteMeta(tpl[i : i+1]))
		i++
	}
	sb.WriteByte('$')

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return false
	}
	return re.MatchString(navPath)
}

// paramAt возвращает имя плейсхолдера, который начинается в позиции i.
func paramAt(tpl string, i int, params []string) string {
	if tpl[i] != ':' || (i > 0 && isIdentByte(tpl[i-1])) {
		return ""
	}
	for _, name := range params {
		end := i + 1 + len(name)
		if strings.HasPrefix(tpl[i+1:], name) && (end == len(tpl) || !isIdentByte(tpl[end])) {
			return name
		}
	}
	return ""
}

// replaceColonParam заменяет :name только целиком, :nameX не трогает.
func replaceColonParam(tpl, name, value string) string {
	var sb strings.Builder
	for {
		i := colonParam(tpl, name)
		if i < 0 {
			sb.WriteString(tpl)
			return sb.String()
		}
		sb.WriteString(tpl[:i])
		sb.WriteString(value)
		tpl = tpl[i+1+len(name):]
	}
}

// colonParam ищет плейсхолдер :name. Двоеточие должно начинать сегмент
// или стоять после разделителя, а не внутри слова; -1, если не найден.
func colonParam(tpl, name string) int {
	token := ":" + name
	for from := 0; from < len(tpl); {
		i := strings.Index(tpl[from:], token)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(token)
		if (i == 0 || !isIdentByte(tpl[i-1])) && (end == len(tpl) || !isIdentByte(tpl[end])) {
			return i
		}
		from = i + 1
	}
	return -1
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// pathValue возвращает строковую форму примитива.
func pathValue(name string, v any) (string, error) {
	if shape := shapeOf(v); shape != "" {
		return "", &PathParameterError{Name: name, Shape: shape}
	}
	return fmt.Sprint(deref(v)), nil
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// shapeOf описывает непримитивное значение; для примитива пусто.
func shapeOf(v any) string {
	if v == nil {
		return "null"
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "null"
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.Kind().String()
	default:
		return ""
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
