// Package generator пишет Markdown-манифест скомпилированного реестра:
// индекс групп, файл на каждую группу и список пропущенных операций.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mdwit/spec2admin/internal/config"
	"github.com/mdwit/spec2admin/internal/parser"
	"github.com/mdwit/spec2admin/internal/resource"
	"github.com/mdwit/spec2admin/internal/schema"
)

// IndexFile имя индексного файла манифеста
const IndexFile = "admin.md"

// Generator генерирует манифест
type Generator struct {
	cfg   *config.Config
	res   *parser.Result
	files map[string]string // группа -> имя файла
}

// New создаёт новый генератор
func New(cfg *config.Config, res *parser.Result) *Generator {
	g := &Generator{cfg: cfg, res: res}
	if res.Registry != nil {
		g.files = groupFilenames(res.Registry.GroupNames())
	}
	return g
}

// Generate генерирует все файлы
func (g *Generator) Generate() error {
	groupsDir := filepath.Join(g.cfg.Output, "groups")
	if err := os.MkdirAll(groupsDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reg := g.res.Registry
	for _, name := range reg.GroupNames() {
		path := filepath.Join(groupsDir, g.files[name])
		content := g.generateGroupFile(name, reg.ResourcesByGroup(name))
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	indexPath := filepath.Join(g.cfg.Output, IndexFile)
	if err := os.WriteFile(indexPath, []byte(g.generateIndex()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", IndexFile, err)
	}

	return nil
}

func (g *Generator) title() string {
	if g.cfg.Title != "" {
		return g.cfg.Title
	}
	if g.res.Title != "" {
		return g.res.Title
	}
	return "Admin"
}

func (g *Generator) baseURL() string {
	if g.cfg.BaseURL != "" {
		return g.cfg.BaseURL
	}
	return g.res.BaseURL
}

func (g *Generator) generateIndex() string {
	var sb strings.Builder

	sb.WriteString("# " + g.title() + "\n\n")

	if baseURL := g.baseURL(); baseURL != "" {
		sb.WriteString("Base URL: `" + baseURL + "`\n\n")
	}
	if g.res.Version != "" {
		sb.WriteString("Version: " + g.res.Version + "\n\n")
	}

	sb.WriteString("## Resources\n\n")
	reg := g.res.Registry
	if reg.Len() == 0 {
		sb.WriteString("No annotated operations.\n\n")
	}
	for _, name := range reg.GroupNames() {
		resources := reg.ResourcesByGroup(name)
		actions := make([]string, 0, len(resources))
		for _, d := range resources {
			actions = append(actions, string(d.Type))
		}
		sb.WriteString(fmt.Sprintf("- [%s](./groups/%s) - %s\n",
			name, g.files[name], strings.Join(actions, ", ")))
	}
	sb.WriteString("\n")

	if len(g.res.Skipped) > 0 {
		sb.WriteString("## Skipped operations\n\n")
		sb.WriteString("| Method | Path | Reason |\n")
		sb.WriteString("|--------|------|--------|\n")
		for _, s := range g.res.Skipped {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", s.Method, s.Path, s.Reason))
		}
		sb.WriteString("\n")
	}

	if len(g.res.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range g.res.Warnings {
			sb.WriteString("- " + w + "\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (g *Generator) generateGroupFile(name string, resources []*resource.Descriptor) string {
	var sb strings.Builder

	sb.WriteString("# " + name + "\n\n")

	for i, d := range resources {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString(g.generateResource(d))
	}

	return sb.String()
}

func (g *Generator) generateResource(d *resource.Descriptor) string {
	var sb strings.Builder

	header := fmt.Sprintf("## %s: %s %s", d.Type, d.Method, d.WirePath)
	if d.Metadata.Summary != "" {
		header += " - " + d.Metadata.Summary
	}
	sb.WriteString(header + "\n\n")

	sb.WriteString(fmt.Sprintf("- **Navigation**: `%s`\n", d.NavigationPath))
	sb.WriteString(fmt.Sprintf("- **Content-Type**: `%s`\n", d.ContentType))
	sb.WriteString(fmt.Sprintf("- **Success status**: %d\n", d.SuccessStatus))
	sb.WriteString(fmt.Sprintf("- **ID property**: `%s`\n", d.IDProperty()))
	if d.Metadata.OperationID != "" {
		sb.WriteString(fmt.Sprintf("- **Operation ID**: `%s`\n", d.Metadata.OperationID))
	}
	sb.WriteString("\n")

	if len(d.Query) > 0 {
		sb.WriteString("### Query parameters\n\n")
		sb.WriteString("| Name | Type | Required | Description |\n")
		sb.WriteString("|------|------|----------|-------------|\n")

		names := make([]string, 0, len(d.Query))
		for name := range d.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			p := d.Query[name]
			required := ""
			if p.Required {
				required = "✓"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", name, p.Type, required, p.Description))
		}
		sb.WriteString("\n")
	}

	if len(d.Aliases) > 0 {
		sb.WriteString("### Aliases\n\n")
		names := make([]string, 0, len(d.Aliases))
		for name := range d.Aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteString(fmt.Sprintf("- `%s` → `%s`\n", name, d.Aliases[name]))
		}
		sb.WriteString("\n")
	}

	if d.RequestSchema != nil {
		sb.WriteString("### Request Body\n\n")
		sb.WriteString(g.generateSchemaDoc(d.RequestSchema, 0))
	}

	if d.ResponseSchema != nil {
		sb.WriteString("### Response\n\n")
		sb.WriteString(g.generateSchemaDoc(d.ResponseSchema, 0))
	}

	sb.WriteString("### Example\n\n")
	sb.WriteString(g.generateCurlExample(d))

	return sb.String()
}

func (g *Generator) generateSchemaDoc(s *schema.Schema, depth int) string {
	if s == nil || depth > 4 {
		return ""
	}

	var sb strings.Builder

	if s.Is(schema.TypeObject) && len(s.Properties) > 0 {
		sb.WriteString("```json\n")
		sb.WriteString(g.renderJSONSchema(s, 0, 2))
		sb.WriteString("\n```\n\n")

		sb.WriteString(g.generateFieldsTable(s))
	} else if s.Is(schema.TypeArray) && s.Items != nil {
		itemType := s.Items.Type
		if itemType == "" {
			itemType = schema.TypeObject
		}
		sb.WriteString(fmt.Sprintf("Array of `%s`\n\n", itemType))
		if s.Items.Is(schema.TypeObject) && len(s.Items.Properties) > 0 {
			sb.WriteString(g.generateSchemaDoc(s.Items, depth+1))
		}
	} else if s.Type != "" {
		sb.WriteString(fmt.Sprintf("Type: `%s`\n\n", s.Type))
	}

	return sb.String()
}

// renderJSONSchema рисует пример JSON. Глубина ограничена: схемы после
// разрешения ссылок могут быть циклическими.
func (g *Generator) renderJSONSchema(s *schema.Schema, indent, maxDepth int) string {
	if s == nil {
		return "null"
	}
	if indent > maxDepth {
		return shallowExample(s)
	}

	var sb strings.Builder
	prefix := strings.Repeat("  ", indent)

	switch {
	case s.Is(schema.TypeObject) && len(s.Properties) > 0:
		sb.WriteString("{\n")

		props := sortedProperties(s)
		for i, name := range props {
			comma := ","
			if i == len(props)-1 {
				comma = ""
			}
			sb.WriteString(prefix + "  \"" + name + "\": ")
			sb.WriteString(g.renderPropertyValue(s.Properties[name], indent+1, maxDepth))
			sb.WriteString(comma + "\n")
		}

		sb.WriteString(prefix + "}")
	case s.Is(schema.TypeArray):
		if s.Items == nil {
			sb.WriteString("[]")
		} else {
			sb.WriteString("[" + g.renderJSONSchema(s.Items, indent+1, maxDepth) + "]")
		}
	default:
		sb.WriteString(getTypeExample(s))
	}

	return sb.String()
}

func (g *Generator) renderPropertyValue(prop *schema.Schema, indent, maxDepth int) string {
	if prop == nil {
		return "null"
	}
	if prop.Example != nil {
		return formatExample(prop.Example)
	}
	return g.renderJSONSchema(prop, indent, maxDepth)
}

func shallowExample(s *schema.Schema) string {
	switch s.Type {
	case schema.TypeObject, "":
		return "{}"
	case schema.TypeArray:
		return "[]"
	default:
		return getTypeExample(s)
	}
}

func getTypeExample(s *schema.Schema) string {
	if s == nil {
		return "null"
	}

	if s.Example != nil {
		return formatExample(s.Example)
	}
	if len(s.Enum) > 0 {
		return formatExample(s.Enum[0])
	}

	switch s.Type {
	case schema.TypeString:
		switch s.Format {
		case "date-time":
			return "\"2024-01-15T10:00:00Z\""
		case "date":
			return "\"2024-01-15\""
		case "email":
			return "\"user@example.com\""
		case "uri", "url":
			return "\"https://example.com\""
		}
		return "\"string\""
	case schema.TypeInteger:
		return "0"
	case schema.TypeNumber:
		return "0.0"
	case schema.TypeBoolean:
		return "true"
	case schema.TypeArray:
		if s.Items != nil {
			return "[" + shallowExample(s.Items) + "]"
		}
		return "[]"
	case schema.TypeObject, "":
		return "{}"
	default:
		return "null"
	}
}

func formatExample(example any) string {
	switch v := example.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (g *Generator) generateFieldsTable(s *schema.Schema) string {
	if s == nil || len(s.Properties) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("| Field | Type | Required | Description |\n")
	sb.WriteString("|-------|------|----------|-------------|\n")

	for _, name := range sortedProperties(s) {
		prop := s.Properties[name]

		typeStr := prop.Type
		if prop.Format != "" {
			typeStr += " (" + prop.Format + ")"
		}
		if prop.Is(schema.TypeArray) && prop.Items != nil {
			typeStr = "array[" + prop.Items.Type + "]"
		}

		required := ""
		if prop.IsRequired {
			required = "✓"
		}

		desc := prop.Description
		if prop.ReadOnly {
			desc = strings.TrimSpace(desc + " Read-only.")
		}
		if len(prop.Enum) > 0 {
			values := make([]string, 0, len(prop.Enum))
			for _, v := range prop.Enum {
				values = append(values, fmt.Sprint(v))
			}
			desc += " Values: `" + strings.Join(values, "`, `") + "`"
		}

		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", name, typeStr, required, desc))
	}

	sb.WriteString("\n")
	return sb.String()
}

func sortedProperties(s *schema.Schema) []string {
	props := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		props = append(props, name)
	}
	sort.Strings(props)
	return props
}

func (g *Generator) generateCurlExample(d *resource.Descriptor) string {
	var sb strings.Builder

	baseURL := g.baseURL()
	if baseURL == "" || strings.HasPrefix(baseURL, "/") {
		baseURL = "https://api.example.com" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	// Подставляем примеры вместо параметров пути
	params := make(resource.Values)
	for _, name := range d.PathParamNames() {
		params[name] = "1"
	}
	path, err := d.BuildAPIPath(params, nil, false)
	if err != nil {
		path = d.WirePath
	}

	sb.WriteString("```bash\n")
	sb.WriteString(fmt.Sprintf("curl -X %s \"%s\"", d.Method, baseURL+path))
	if d.ContentType != "" {
		sb.WriteString(fmt.Sprintf(" \\\n  -H \"Content-Type: %s\"", d.ContentType))
	}

	if d.RequestSchema != nil && d.Mutating() {
		body := g.renderJSONSchema(d.RequestSchema, 0, 1)
		if body != "" {
			sb.WriteString(" \\\n  -d '" + body + "'")
		}
	}

	sb.WriteString("\n```\n\n")
	return sb.String()
}

func groupFilename(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	return name + ".md"
}

// groupFilenames назначает группам файлы. Имена, совпавшие после
// нормализации, получают суффикс -2, -3 в порядке групп.
func groupFilenames(names []string) map[string]string {
	files := make(map[string]string, len(names))
	used := make(map[string]bool, len(names))
	for _, name := range names {
		file := groupFilename(name)
		base := strings.TrimSuffix(file, ".md")
		for n := 2; used[file]; n++ {
			file = fmt.Sprintf("%s-%d.md", base, n)
		}
		used[file] = true
		files[name] = file
	}
	return files
}
