package schema

// Примитивные типы схемы
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Schema представляет нормализованную JSON Schema.
// Ссылки здесь уже разрешены: узел никогда не хранит $ref.
type Schema struct {
	Type        string
	Format      string
	Title       string
	Description string
	Default     any
	Enum        []any
	Example     any
	Nullable    bool
	ReadOnly    bool
	WriteOnly   bool

	// IsRequired выставляется для свойства, перечисленного в Required родителя
	IsRequired bool
	Required   []string

	AllOf []*Schema
	OneOf []*Schema
	AnyOf []*Schema
	Not   *Schema

	Items                *Schema // для массивов
	Properties           map[string]*Schema
	AdditionalProperties *AdditionalProperties
}

// AdditionalProperties либо флаг, либо схема.
type AdditionalProperties struct {
	Allowed *bool
	Schema  *Schema
}

// Is сообщает, совпадает ли тип схемы с typ.
func (s *Schema) Is(typ string) bool {
	return s != nil && s.Type == typ
}

// HasProperty сообщает, объявлено ли свойство name.
func (s *Schema) HasProperty(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Properties[name]
	return ok
}
