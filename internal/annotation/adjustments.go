package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.yaml.in/yaml/v4"
)

// Adjustments редактируемая форма аннотаций: path -> method -> block.
// Методы хранятся в нижнем регистре.
type Adjustments map[string]map[string]Block

// Set кладёт блок для пути и метода.
func (a Adjustments) Set(path, method string, b Block) {
	m, ok := a[path]
	if !ok {
		m = make(map[string]Block)
		a[path] = m
	}
	m[strings.ToLower(method)] = b
}

// Get возвращает блок для пути и метода.
func (a Adjustments) Get(path, method string) (Block, bool) {
	b, ok := a[path][strings.ToLower(method)]
	return b, ok
}

// FromOperation читает блок операции. nil без ошибки, если блока нет.
func FromOperation(op *openapi3.Operation) (*Block, []string, error) {
	if op == nil || op.Extensions == nil {
		return nil, nil, nil
	}
	value, ok := op.Extensions[Extension]
	if !ok || value == nil {
		return nil, nil, nil
	}
	return Decode(value)
}

// FromDocument читает блок уровня документа. nil без ошибки, если блока нет.
func FromDocument(doc *openapi3.T) (Adjustments, error) {
	if doc == nil || doc.Extensions == nil {
		return nil, nil
	}
	value, ok := doc.Extensions[Extension]
	if !ok || value == nil {
		return nil, nil
	}

	data, err := toJSON(value)
	if err != nil {
		return nil, err
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid document-level %s block: %w", Extension, err)
	}
	return decodeAll(raw)
}

func decodeAll(raw map[string]map[string]any) (Adjustments, error) {
	adj := make(Adjustments, len(raw))
	for path, methods := range raw {
		for method, value := range methods {
			b, _, err := Decode(value)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			adj.Set(path, method, *b)
		}
	}
	return adj, nil
}

// Extract собирает аннотации всех операций документа в редактируемую форму.
func Extract(doc *openapi3.T) (Adjustments, error) {
	adj := make(Adjustments)
	if doc == nil || doc.Paths == nil {
		return adj, nil
	}
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			b, _, err := FromOperation(op)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", method, path, err)
			}
			if b != nil {
				adj.Set(path, method, *b)
			}
		}
	}
	return adj, nil
}

// Commit записывает блоки в операции и удаляет блок уровня документа.
// Записи без соответствующей операции возвращаются ошибкой, остальные
// применяются.
func Commit(doc *openapi3.T, adj Adjustments) error {
	var errs []error
	for path, methods := range adj {
		var item *openapi3.PathItem
		if doc.Paths != nil {
			item = doc.Paths.Value(path)
		}
		for method, b := range methods {
			var op *openapi3.Operation
			if item != nil {
				op = item.GetOperation(strings.ToUpper(method))
			}
			if op == nil {
				errs = append(errs, fmt.Errorf("no operation %s %s", strings.ToUpper(method), path))
				continue
			}
			m, err := b.toMap()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err))
				continue
			}
			if op.Extensions == nil {
				op.Extensions = make(map[string]any)
			}
			op.Extensions[Extension] = m
		}
	}
	if doc.Extensions != nil {
		delete(doc.Extensions, Extension)
	}
	return errors.Join(errs...)
}

// LoadAdjustments читает правки из YAML-файла.
func LoadAdjustments(path string) (Adjustments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse adjustments: %w", err)
	}
	return decodeAll(raw)
}

// Save пишет правки в YAML-файл.
func (a Adjustments) Save(path string) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode adjustments: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
