package schema

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ComponentsPrefix префикс внутренних ссылок на схемы.
const ComponentsPrefix = "#/components/schemas/"

// Index это пре-пасс разрешения ссылок: адрес -> узел.
// Каждый адрес конвертируется один раз; повторные и циклические ссылки
// получают тот же указатель.
type Index struct {
	raw       openapi3.Schemas
	nodes     map[string]*Schema
	aliasing  map[string]bool
	converter *Converter
}

// NewIndex строит индекс по components.schemas. Если nested == false,
// вложенные ссылки внутри компонентов отбрасываются, а индекс
// используется только для ссылок верхнего уровня.
func NewIndex(schemas openapi3.Schemas, nested bool) *Index {
	idx := &Index{
		raw:      schemas,
		nodes:    make(map[string]*Schema),
		aliasing: make(map[string]bool),
	}
	if nested {
		idx.converter = NewConverter(idx)
	} else {
		idx.converter = NewConverter(nil)
	}
	return idx
}

// Converter возвращает конвертер, связанный с индексом.
func (idx *Index) Converter() *Converter {
	return idx.converter
}

// IsInternal сообщает, указывает ли ссылка на components.schemas.
func IsInternal(ref string) bool {
	return strings.HasPrefix(ref, ComponentsPrefix)
}

// Resolve реализует Resolver.
func (idx *Index) Resolve(ref string) (*Schema, bool) {
	if !IsInternal(ref) {
		return nil, false
	}
	if node, ok := idx.nodes[ref]; ok {
		return node, true
	}

	name := unescapePointer(strings.TrimPrefix(ref, ComponentsPrefix))
	raw, ok := idx.raw[name]
	if !ok || raw == nil {
		return nil, false
	}

	// компонент, который сам является ссылкой
	if raw.Ref != "" {
		if idx.aliasing[ref] {
			return nil, false
		}
		idx.aliasing[ref] = true
		defer delete(idx.aliasing, ref)

		node, ok := idx.Resolve(raw.Ref)
		if ok {
			idx.nodes[ref] = node
		}
		return node, ok
	}
	if raw.Value == nil {
		return nil, false
	}

	node := &Schema{}
	idx.nodes[ref] = node
	idx.converter.Fill(node, raw.Value)
	return node, true
}

// Len возвращает число уже разрешённых адресов.
func (idx *Index) Len() int {
	return len(idx.nodes)
}

func unescapePointer(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}
