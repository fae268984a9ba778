// Package schema нормализует схемы kin-openapi во внутреннее представление.
//
// Конвертер никогда не возвращает ошибку: неразрешимый фрагмент
// (голая ссылка без резолвера, внешняя ссылка) превращается в nil
// на своей позиции, остальная схема сохраняется.
package schema

import (
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
)

// Resolver разрешает внутреннюю ссылку в общий узел.
// ok == false означает, что ссылка неразрешима.
type Resolver interface {
	Resolve(ref string) (*Schema, bool)
}

// Converter рекурсивно конвертирует схемы.
// Без Resolver голые ссылки отбрасываются.
type Converter struct {
	resolver Resolver
}

// NewConverter создаёт конвертер; resolver может быть nil.
func NewConverter(resolver Resolver) *Converter {
	return &Converter{resolver: resolver}
}

// Convert конвертирует узел схемы. Для голой ссылки результат берётся у
// резолвера, при его отсутствии возвращается nil.
func (c *Converter) Convert(ref *openapi3.SchemaRef) *Schema {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		return c.resolve(ref.Ref)
	}
	if ref.Value == nil {
		return nil
	}
	s := &Schema{}
	c.Fill(s, ref.Value)
	return s
}

// Fill заполняет заранее выделенный узел dst. Используется пре-пассом
// ссылок, которому нужен адрес узла до его заполнения.
func (c *Converter) Fill(dst *Schema, s *openapi3.Schema) {
	if types := s.Type.Slice(); len(types) > 0 {
		dst.Type = types[0]
	}
	dst.Format = s.Format
	dst.Title = s.Title
	dst.Description = s.Description
	dst.Default = s.Default
	dst.Example = s.Example
	dst.Nullable = s.Nullable
	dst.ReadOnly = s.ReadOnly
	dst.WriteOnly = s.WriteOnly
	if len(s.Enum) > 0 {
		dst.Enum = slices.Clone(s.Enum)
	}
	if len(s.Required) > 0 {
		dst.Required = slices.Clone(s.Required)
	}

	dst.AllOf = c.convertList(s.AllOf)
	dst.OneOf = c.convertList(s.OneOf)
	dst.AnyOf = c.convertList(s.AnyOf)
	dst.Not = c.Convert(s.Not)
	dst.Items = c.Convert(s.Items)

	if len(s.Properties) > 0 {
		dst.Properties = make(map[string]*Schema, len(s.Properties))
		for name, propRef := range s.Properties {
			prop := c.Convert(propRef)
			if prop == nil {
				continue
			}
			if slices.Contains(s.Required, name) && propRef.Ref == "" {
				prop.IsRequired = true
			}
			dst.Properties[name] = prop
		}
	}

	dst.AdditionalProperties = c.convertAdditional(s.AdditionalProperties)
}

func (c *Converter) convertList(refs openapi3.SchemaRefs) []*Schema {
	if len(refs) == 0 {
		return nil
	}
	out := make([]*Schema, 0, len(refs))
	for _, ref := range refs {
		if s := c.Convert(ref); s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *Converter) convertAdditional(ap openapi3.AdditionalProperties) *AdditionalProperties {
	if ap.Has != nil {
		allowed := *ap.Has
		return &AdditionalProperties{Allowed: &allowed}
	}
	if ap.Schema != nil {
		if s := c.Convert(ap.Schema); s != nil {
			return &AdditionalProperties{Schema: s}
		}
	}
	return nil
}

func (c *Converter) resolve(ref string) *Schema {
	if c.resolver == nil {
		return nil
	}
	s, ok := c.resolver.Resolve(ref)
	if !ok {
		return nil
	}
	return s
}
