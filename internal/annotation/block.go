// Package annotation разбирает вендорское расширение x-admin.
//
// На уровне операции блок описывает, какими действиями операция
// становится в админке. На уровне документа тот же блок хранится в
// редактируемой форме path -> method -> block.
package annotation

import (
	"encoding/json"
	"fmt"

	"github.com/mdwit/spec2admin/internal/resource"
)

// Extension имя вендорского расширения.
const Extension = "x-admin"

// Reference алиасы одного типа действия.
type Reference struct {
	Query map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
}

// Block закрытая запись аннотации. Неизвестные ключи игнорируются.
type Block struct {
	Types        []resource.ActionType             `json:"types,omitempty" yaml:"types,omitempty"`
	ResourceName string                            `json:"resourceName,omitempty" yaml:"resourceName,omitempty"`
	GroupName    string                            `json:"groupName,omitempty" yaml:"groupName,omitempty"`
	IDProperty   string                            `json:"idProperty,omitempty" yaml:"idProperty,omitempty"`
	References   map[resource.ActionType]Reference `json:"references,omitempty" yaml:"references,omitempty"`
}

// rawBlock форма на проводе: типы ещё строки.
type rawBlock struct {
	Types        []string             `json:"types"`
	ResourceName string               `json:"resourceName"`
	GroupName    string               `json:"groupName"`
	IDProperty   string               `json:"idProperty"`
	References   map[string]Reference `json:"references"`
}

// Decode разбирает значение расширения. Неизвестные типы действий
// отбрасываются и возвращаются вторым значением.
func Decode(value any) (*Block, []string, error) {
	data, err := toJSON(value)
	if err != nil {
		return nil, nil, err
	}

	var raw rawBlock
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("invalid %s block: %w", Extension, err)
	}

	b := &Block{
		ResourceName: raw.ResourceName,
		GroupName:    raw.GroupName,
		IDProperty:   raw.IDProperty,
	}

	var dropped []string
	for _, t := range raw.Types {
		action, err := resource.ParseActionType(t)
		if err != nil {
			dropped = append(dropped, t)
			continue
		}
		b.Types = append(b.Types, action)
	}

	for key, ref := range raw.References {
		action, err := resource.ParseActionType(key)
		if err != nil {
			dropped = append(dropped, key)
			continue
		}
		if b.References == nil {
			b.References = make(map[resource.ActionType]Reference)
		}
		b.References[action] = ref
	}

	return b, dropped, nil
}

// Identity возвращает имена группы и ресурса. Если задано только одно,
// второе равно ему; если заданы оба, ресурс принудительно равен группе.
// ok == false, когда нет ни одного.
func (b *Block) Identity() (group, resourceName string, ok bool) {
	switch {
	case b.GroupName != "":
		return b.GroupName, b.GroupName, true
	case b.ResourceName != "":
		return b.ResourceName, b.ResourceName, true
	default:
		return "", "", false
	}
}

// Aliases таблица алиасов для типа действия.
func (b *Block) Aliases(action resource.ActionType) resource.Aliases {
	ref, ok := b.References[action]
	if !ok || len(ref.Query) == 0 {
		return nil
	}
	aliases := make(resource.Aliases, len(ref.Query))
	for k, v := range ref.Query {
		aliases[k] = v
	}
	return aliases
}

// toMap переводит блок в обобщённую форму для записи в Extensions.
func (b *Block) toMap() (map[string]any, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func toJSON(value any) ([]byte, error) {
	switch v := value.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s block: %w", Extension, err)
		}
		return data, nil
	}
}
