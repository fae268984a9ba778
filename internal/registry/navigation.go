package registry

import (
	"strings"

	"github.com/mdwit/spec2admin/internal/naming"
	"github.com/mdwit/spec2admin/internal/resource"
)

// CurrentResource находит дескриптор, который построил бы путь навигации.
//
// Порядок:
//  1. корень, пустой путь или неизвестный тип в последнем сегменте -> nil;
//     путь из одного сегмента (/list у группы с путем /) допустим;
//  2. первый сегмент в единственном числе с заглавной буквы + тип;
//  3. буквальное совпадение сохранённого шаблона навигации;
//  4. совпадение по шаблону (Descriptor.MatchesNavigation): :param, где
//     param объявлен в пути API, совпадает с любым значением внутри сегмента;
//  5. nil.
func (r *Registry) CurrentResource(navPath string) *resource.Descriptor {
	segments := splitPath(navPath)
	if len(segments) == 0 {
		return nil
	}

	action := resource.ActionType(segments[len(segments)-1])
	if !action.Valid() {
		return nil
	}

	name := naming.Capitalize(naming.ToSingular(segments[0]))
	if d := r.ResourceSafe(name, action); d != nil {
		return d
	}

	candidates := r.resourcesOfType(action)
	for _, d := range candidates {
		if d.NavigationPath == navPath {
			return d
		}
	}
	normalized := "/" + strings.Join(segments, "/")
	for _, d := range candidates {
		if d.MatchesNavigation(normalized) {
			return d
		}
	}
	return nil
}

func (r *Registry) resourcesOfType(action resource.ActionType) []*resource.Descriptor {
	var out []*resource.Descriptor
	for _, name := range r.order {
		if d, ok := r.groups[name].slots[action]; ok {
			out = append(out, d)
		}
	}
	return out
}

func splitPath(p string) []string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
