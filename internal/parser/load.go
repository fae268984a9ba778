package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.yaml.in/yaml/v4"
)

// ParseSource загружает документ из файла или URL и компилирует его
func ParseSource(ctx context.Context, source string, opts *ParseOptions) (*Result, error) {
	data, err := LoadSource(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	return ParseData(data, opts)
}

// LoadSource читает сырые байты документа из файла или URL
func LoadSource(ctx context.Context, source string, opts *ParseOptions) ([]byte, error) {
	if opts == nil {
		opts = &ParseOptions{}
	}
	if source == "" {
		return nil, ErrSourceRequired
	}

	if isURL(source) {
		return loadFromURL(ctx, source, opts)
	}
	return loadFromFile(source, opts.MaxDocumentSize)
}

// ParseData компилирует документ из JSON или YAML
func ParseData(data []byte, opts *ParseOptions) (*Result, error) {
	doc, order, err := decode(data)
	if err != nil {
		return nil, err
	}
	return parse(doc, order, opts)
}

// Decode разбирает документ без разрешения ссылок
func Decode(data []byte) (*openapi3.T, error) {
	doc, _, err := decode(data)
	return doc, err
}

func loadFromFile(path string, limit int64) ([]byte, error) {
	if limit > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
		}
		if info.Size() > limit {
			return nil, fmt.Errorf("document %s is %d bytes, limit is %d", path, info.Size(), limit)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	return data, nil
}

func loadFromURL(ctx context.Context, rawURL string, opts *ParseOptions) ([]byte, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Скачиваем файл
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if opts.MaxDocumentSize > 0 {
		body = io.LimitReader(resp.Body, opts.MaxDocumentSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if opts.MaxDocumentSize > 0 && int64(len(data)) > opts.MaxDocumentSize {
		return nil, fmt.Errorf("document at %s exceeds limit of %d bytes", rawURL, opts.MaxDocumentSize)
	}
	return data, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// decode разбирает байты в дерево узлов (JSON это тоже YAML), строит из
// него индекс порядка ключей и модель kin-openapi. Ссылки остаются
// неразрешёнными: этим занимается пре-пасс парсера.
func decode(data []byte) (*openapi3.T, *orderIndex, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return nil, nil, errors.New("failed to parse document: empty document")
	}

	value, err := nodeValue(&root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if _, ok := value.(map[string]any); !ok {
		return nil, nil, fmt.Errorf("failed to parse document: top level is %T, expected a mapping", value)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-encode document: %w", err)
	}

	doc := &openapi3.T{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	return doc, newOrderIndex(&root), nil
}

// nodeValue переводит узел в обобщённое значение с ключами-строками.
func nodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return nodeValue(node.Content[0])
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, nil
		}
		return nodeValue(node.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := nodeValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[node.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, 0, len(node.Content))
		for _, c := range node.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return v, nil
	}
}
