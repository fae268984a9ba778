package parser

import (
	"slices"

	"go.yaml.in/yaml/v4"
)

// orderIndex хранит дерево узлов исходника, чтобы ключи отображений
// можно было перечислить в порядке документа. nil-индекс допустим:
// тогда порядок лексический.
type orderIndex struct {
	root *yaml.Node
}

func newOrderIndex(doc *yaml.Node) *orderIndex {
	if doc == nil {
		return nil
	}
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return &orderIndex{root: root}
}

// keys возвращает ключи отображения по пути из ключей.
func (o *orderIndex) keys(path ...string) []string {
	if o == nil {
		return nil
	}
	node := o.root
	for _, key := range path {
		node = child(node, key)
		if node == nil {
			return nil
		}
	}
	node = unalias(node)
	if node.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, node.Content[i].Value)
	}
	return out
}

func child(node *yaml.Node, key string) *yaml.Node {
	node = unalias(node)
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func unalias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// ordered возвращает ключи present: сначала в порядке listed, затем
// оставшиеся в лексическом порядке.
func ordered[V any](listed []string, present map[string]V) []string {
	out := make([]string, 0, len(present))
	seen := make(map[string]bool, len(present))
	for _, k := range listed {
		if _, ok := present[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range present {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}
