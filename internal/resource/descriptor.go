// Package resource описывает дескрипторы ресурсов: одно административное
// действие над одной группой, готовое к построению путей и вызову API.
package resource

import (
	"net/http"
	"slices"
	"strings"

	"github.com/mdwit/spec2admin/internal/schema"
)

// DefaultIDProperty имя свойства-идентификатора по умолчанию.
const DefaultIDProperty = "id"

// Values параметры пути или query.
type Values map[string]any

// QueryParam контракт объявленного query-параметра.
type QueryParam struct {
	Type        string
	Required    bool
	Description string
}

// Aliases таблица алиасов: внутреннее имя -> имя на проводе.
type Aliases map[string]string

// Translate переводит имя через таблицу; без алиаса имя не меняется.
func (a Aliases) Translate(name string) string {
	if wire, ok := a[name]; ok && wire != "" {
		return wire
	}
	return name
}

// Metadata свободные метаданные дескриптора.
type Metadata struct {
	IDProperty  string
	OperationID string
	Summary     string
}

// Descriptor скомпилированное представление одного действия группы.
// После построения реестра дескриптор не изменяется.
type Descriptor struct {
	Key          string
	GroupName    string
	ResourceName string
	Type         ActionType

	WirePath       string   // шаблон API-пути с {param}
	NavigationPath string   // шаблон навигации с :param и /<type>
	PathParams     []string // имена {param} из WirePath в порядке пути
	Method         string

	ContentType    string
	Query          map[string]QueryParam
	RequestSchema  *schema.Schema
	ResponseSchema *schema.Schema
	SuccessStatus  int

	Aliases  Aliases
	Metadata Metadata

	Transport Transport
}

// MakeKey строит уникальный ключ: метод + тип контента + путь.
func MakeKey(method, contentType, wirePath string) string {
	return strings.ToUpper(method) + " " + contentType + " " + wirePath
}

// LocalTemplate превращает {x} в :x и добавляет /<type>. Прочие символы,
// включая литеральное двоеточие, переносятся как есть.
func LocalTemplate(wirePath string, action ActionType) string {
	tpl := wirePlaceholder.ReplaceAllString(wirePath, ":$1")
	return strings.TrimRight(tpl, "/") + "/" + string(action)
}

// WireParams возвращает имена {param} шаблона без повторов.
func WireParams(wirePath string) []string {
	var names []string
	for _, m := range wirePlaceholder.FindAllStringSubmatch(wirePath, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// PathParamNames возвращает PathParams или вычисляет их по WirePath.
func (d *Descriptor) PathParamNames() []string {
	if d.PathParams != nil {
		return d.PathParams
	}
	return WireParams(d.WirePath)
}

// IDProperty возвращает имя свойства-идентификатора.
func (d *Descriptor) IDProperty() string {
	if d.Metadata.IDProperty == "" {
		return DefaultIDProperty
	}
	return d.Metadata.IDProperty
}

// Mutating сообщает, отправляет ли метод тело запроса.
func (d *Descriptor) Mutating() bool {
	switch strings.ToUpper(d.Method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

func (d *Descriptor) String() string {
	return d.GroupName + "." + string(d.Type) + " (" + d.Key + ")"
}
