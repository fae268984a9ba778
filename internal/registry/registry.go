// Package registry агрегирует дескрипторы по имени группы и типу действия.
// Реестр строится один раз через Builder и дальше только читается.
package registry

import (
	"github.com/mdwit/spec2admin/internal/resource"
)

// Group до шести дескрипторов одной группы, по одному на тип действия.
type Group struct {
	Name  string
	slots map[resource.ActionType]*resource.Descriptor
}

// Resources возвращает занятые слоты в порядке create, read, update,
// delete, list, search.
func (g *Group) Resources() []*resource.Descriptor {
	out := make([]*resource.Descriptor, 0, len(g.slots))
	for _, action := range resource.ActionOrder {
		if d, ok := g.slots[action]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Registry неизменяемый граф ресурсов.
type Registry struct {
	groups map[string]*Group
	order  []string
}

// Builder накапливает дескрипторы до построения реестра.
type Builder struct {
	reg *Registry
}

// NewBuilder создаёт пустой построитель.
func NewBuilder() *Builder {
	return &Builder{reg: &Registry{groups: make(map[string]*Group)}}
}

// Put кладёт дескриптор в слот (группа, тип). Занятый слот
// перезаписывается; порядок групп определяется первым появлением.
// Возвращает вытесненный дескриптор, если он был.
func (b *Builder) Put(d *resource.Descriptor) *resource.Descriptor {
	g, ok := b.reg.groups[d.GroupName]
	if !ok {
		g = &Group{Name: d.GroupName, slots: make(map[resource.ActionType]*resource.Descriptor)}
		b.reg.groups[d.GroupName] = g
		b.reg.order = append(b.reg.order, d.GroupName)
	}
	prev := g.slots[d.Type]
	g.slots[d.Type] = d
	return prev
}

// Build возвращает реестр. Builder после этого использовать нельзя.
func (b *Builder) Build() *Registry {
	reg := b.reg
	b.reg = nil
	return reg
}

// Resource точный поиск по группе и типу.
func (r *Registry) Resource(group string, action resource.ActionType) (*resource.Descriptor, error) {
	g, ok := r.groups[group]
	if !ok {
		return nil, &ResourceNotFoundError{Group: group, Type: action}
	}
	d, ok := g.slots[action]
	if !ok {
		return nil, &ResourceNotFoundError{Group: group, Type: action}
	}
	return d, nil
}

// ResourceSafe то же, что Resource, но отсутствие даёт nil.
func (r *Registry) ResourceSafe(group string, action resource.ActionType) *resource.Descriptor {
	d, err := r.Resource(group, action)
	if err != nil {
		return nil
	}
	return d
}

// ResourcesByGroup возвращает занятые слоты группы.
func (r *Registry) ResourcesByGroup(group string) []*resource.Descriptor {
	g, ok := r.groups[group]
	if !ok {
		return nil
	}
	return g.Resources()
}

// Resources все дескрипторы: группы в порядке вставки.
func (r *Registry) Resources() []*resource.Descriptor {
	var out []*resource.Descriptor
	for _, name := range r.order {
		out = append(out, r.groups[name].Resources()...)
	}
	return out
}

// GroupNames имена групп в порядке вставки.
func (r *Registry) GroupNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len число групп.
func (r *Registry) Len() int {
	return len(r.order)
}
