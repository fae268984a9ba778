// Package parser компилирует аннотированный OpenAPI-документ в реестр
// дескрипторов ресурсов.
//
// Разбор терпим к неполным операциям: они пропускаются и попадают в
// Result.Skipped. Фатальна только схема ответа list-операции, которая
// не является объектом.
package parser

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mdwit/spec2admin/internal/annotation"
	"github.com/mdwit/spec2admin/internal/registry"
	"github.com/mdwit/spec2admin/internal/resource"
	"github.com/mdwit/spec2admin/internal/schema"
)

// methodOrder порядок методов, когда порядок документа неизвестен
var methodOrder = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

const (
	responsesPrefix     = "#/components/responses/"
	requestBodiesPrefix = "#/components/requestBodies/"
	parametersPrefix    = "#/components/parameters/"
)

// Parse компилирует уже загруженный документ. Порядок путей и ответов
// для такого документа лексический.
func Parse(doc *openapi3.T, opts *ParseOptions) (*Result, error) {
	return parse(doc, nil, opts)
}

type compiler struct {
	doc       *openapi3.T
	order     *orderIndex
	opts      *ParseOptions
	logger    *slog.Logger
	index     *schema.Index
	converter *schema.Converter
	adjusted  annotation.Adjustments
	builder   *registry.Builder
	result    *Result
}

func parse(doc *openapi3.T, order *orderIndex, opts *ParseOptions) (*Result, error) {
	if opts == nil {
		opts = &ParseOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var schemas openapi3.Schemas
	if doc.Components != nil {
		schemas = doc.Components.Schemas
	}
	index := schema.NewIndex(schemas, !opts.DropNestedRefs)

	c := &compiler{
		doc:       doc,
		order:     order,
		opts:      opts,
		logger:    logger,
		index:     index,
		converter: index.Converter(),
		builder:   registry.NewBuilder(),
		result:    &Result{},
	}

	if doc.Info != nil {
		c.result.Title = doc.Info.Title
		c.result.Version = doc.Info.Version
	}
	// Извлекаем базовый URL из серверов
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		c.result.BaseURL = doc.Servers[0].URL
	}

	if !opts.IgnoreDocumentBlock {
		adjusted, err := annotation.FromDocument(doc)
		if err != nil {
			c.warn("", "", "document-level block ignored: "+err.Error())
		}
		c.adjusted = adjusted
	}

	if doc.Paths != nil {
		paths := doc.Paths.Map()
		for _, path := range ordered(c.order.keys("paths"), paths) {
			item := paths[path]
			if item == nil {
				continue
			}
			for _, method := range c.methods(path, item) {
				if err := c.operation(path, method, item, item.GetOperation(strings.ToUpper(method))); err != nil {
					return nil, err
				}
			}
		}
	}

	c.result.Registry = c.builder.Build()
	logger.Info("document compiled",
		"groups", c.result.Registry.Len(),
		"resources", len(c.result.Registry.Resources()),
		"resolved_schemas", index.Len(),
		"skipped", len(c.result.Skipped),
	)
	return c.result, nil
}

// methods возвращает методы пути в порядке документа, в нижнем регистре.
func (c *compiler) methods(path string, item *openapi3.PathItem) []string {
	present := make(map[string]bool)
	for method, op := range item.Operations() {
		if op != nil {
			present[strings.ToLower(method)] = true
		}
	}

	var out []string
	for _, m := range c.order.keys("paths", path) {
		if present[m] {
			out = append(out, m)
			delete(present, m)
		}
	}
	for _, m := range methodOrder {
		if present[m] {
			out = append(out, m)
		}
	}
	return out
}

func (c *compiler) operation(path, method string, item *openapi3.PathItem, op *openapi3.Operation) error {
	upper := strings.ToUpper(method)

	block, err := c.block(path, method, op)
	if err != nil {
		c.skip(path, upper, ReasonInvalidAnnotation+": "+err.Error())
		return nil
	}
	if block == nil {
		c.skip(path, upper, ReasonNoAnnotation)
		return nil
	}

	group, resourceName, ok := block.Identity()
	if !ok {
		c.skip(path, upper, ReasonNoIdentity)
		return nil
	}
	if len(block.Types) == 0 {
		c.skip(path, upper, ReasonNoTypes)
		return nil
	}

	status, response := c.firstResponse(path, method, op)
	if response == nil {
		c.skip(path, upper, ReasonNoResponse)
		return nil
	}
	contentType, media := c.content(response.Content, path, method, "responses", status, "content")
	if media == nil || media.Schema == nil {
		c.skip(path, upper, ReasonNoContent)
		return nil
	}
	responseSchema := c.resolveSchema(media.Schema)
	if responseSchema == nil {
		c.skip(path, upper, ReasonUnresolvedRef+": "+media.Schema.Ref)
		return nil
	}

	requestSchema := c.requestSchema(op, contentType, path, method)
	query := c.queryParams(item, op)
	pathParams := resource.WireParams(path)

	for _, action := range block.Types {
		if action == resource.ActionList && !responseSchema.Is(schema.TypeObject) {
			return &SpecificationBuildError{Path: path, Method: upper, Kind: responseSchema.Type}
		}

		d := &resource.Descriptor{
			Key:            resource.MakeKey(method, contentType, path),
			GroupName:      group,
			ResourceName:   resourceName,
			Type:           action,
			WirePath:       path,
			NavigationPath: resource.LocalTemplate(path, action),
			PathParams:     pathParams,
			Method:         upper,
			ContentType:    contentType,
			Query:          query,
			RequestSchema:  requestSchema,
			ResponseSchema: responseSchema,
			SuccessStatus:  statusCode(status),
			Aliases:        block.Aliases(action),
			Metadata: resource.Metadata{
				IDProperty:  block.IDProperty,
				OperationID: op.OperationID,
				Summary:     op.Summary,
			},
			Transport: c.opts.Transport,
		}
		if d.Metadata.IDProperty == "" {
			d.Metadata.IDProperty = resource.DefaultIDProperty
		}

		if prev := c.builder.Put(d); prev != nil {
			c.warn(path, upper, "overwrites "+prev.Key+" in slot "+group+"."+string(action))
		}
		c.logger.Debug("resource registered", "group", group, "type", action, "key", d.Key)
	}
	return nil
}

// block выбирает аннотацию: блок документа важнее блока операции.
func (c *compiler) block(path, method string, op *openapi3.Operation) (*annotation.Block, error) {
	if b, ok := c.adjusted.Get(path, method); ok {
		return &b, nil
	}
	b, dropped, err := annotation.FromOperation(op)
	if err != nil {
		return nil, err
	}
	for _, t := range dropped {
		c.warn(path, strings.ToUpper(method), "unknown action type "+strconv.Quote(t)+" ignored")
	}
	return b, nil
}

// firstResponse возвращает первый по документу код ответа.
func (c *compiler) firstResponse(path, method string, op *openapi3.Operation) (string, *openapi3.Response) {
	if op.Responses == nil {
		return "", nil
	}
	responses := op.Responses.Map()
	codes := ordered(c.order.keys("paths", path, method, "responses"), responses)
	if len(codes) == 0 {
		return "", nil
	}
	code := codes[0]
	return code, c.resolveResponse(responses[code])
}

func (c *compiler) resolveResponse(ref *openapi3.ResponseRef) *openapi3.Response {
	if ref == nil {
		return nil
	}
	if ref.Ref == "" {
		return ref.Value
	}
	if c.doc.Components == nil || !strings.HasPrefix(ref.Ref, responsesPrefix) {
		return nil
	}
	target := c.doc.Components.Responses[strings.TrimPrefix(ref.Ref, responsesPrefix)]
	if target == nil || target.Ref != "" {
		return nil
	}
	return target.Value
}

// content выбирает первый по документу тип контента.
func (c *compiler) content(content openapi3.Content, keyPath ...string) (string, *openapi3.MediaType) {
	if len(content) == 0 {
		return "", nil
	}
	types := ordered(c.order.keys(keyPath...), content)
	return types[0], content[types[0]]
}

// resolveSchema разрешает схему верхнего уровня. Внутренние ссылки идут
// через индекс, остальные дают nil.
func (c *compiler) resolveSchema(ref *openapi3.SchemaRef) *schema.Schema {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		s, ok := c.index.Resolve(ref.Ref)
		if !ok {
			return nil
		}
		return s
	}
	return c.converter.Convert(ref)
}

func (c *compiler) requestSchema(op *openapi3.Operation, contentType, path, method string) *schema.Schema {
	if op.RequestBody == nil {
		return nil
	}
	body := op.RequestBody.Value
	if op.RequestBody.Ref != "" {
		body = nil
		if c.doc.Components != nil && strings.HasPrefix(op.RequestBody.Ref, requestBodiesPrefix) {
			if target := c.doc.Components.RequestBodies[strings.TrimPrefix(op.RequestBody.Ref, requestBodiesPrefix)]; target != nil && target.Ref == "" {
				body = target.Value
			}
		}
	}
	if body == nil || len(body.Content) == 0 {
		return nil
	}

	media := body.Content[contentType]
	if media == nil {
		_, media = c.content(body.Content, "paths", path, method, "requestBody", "content")
	}
	if media == nil {
		return nil
	}
	return c.resolveSchema(media.Schema)
}

// queryParams собирает контракты query-параметров. Параметры уровня пути
// перекрываются параметрами операции. Параметр со схемой-ссылкой или без
// схемы пропускается.
func (c *compiler) queryParams(item *openapi3.PathItem, op *openapi3.Operation) map[string]resource.QueryParam {
	query := make(map[string]resource.QueryParam)
	for _, params := range []openapi3.Parameters{item.Parameters, op.Parameters} {
		for _, ref := range params {
			p := c.resolveParameter(ref)
			if p == nil || p.In != openapi3.ParameterInQuery {
				continue
			}
			if p.Schema == nil || p.Schema.Ref != "" || p.Schema.Value == nil {
				delete(query, p.Name)
				continue
			}
			var typ string
			if types := p.Schema.Value.Type.Slice(); len(types) > 0 {
				typ = types[0]
			}
			query[p.Name] = resource.QueryParam{
				Type:        typ,
				Required:    p.Required,
				Description: p.Description,
			}
		}
	}
	return query
}

func (c *compiler) resolveParameter(ref *openapi3.ParameterRef) *openapi3.Parameter {
	if ref == nil {
		return nil
	}
	if ref.Ref == "" {
		return ref.Value
	}
	if c.doc.Components == nil || !strings.HasPrefix(ref.Ref, parametersPrefix) {
		return nil
	}
	target := c.doc.Components.Parameters[strings.TrimPrefix(ref.Ref, parametersPrefix)]
	if target == nil || target.Ref != "" {
		return nil
	}
	return target.Value
}

func (c *compiler) skip(path, method, reason string) {
	c.result.Skipped = append(c.result.Skipped, Skipped{Path: path, Method: method, Reason: reason})
	c.logger.Debug("operation skipped", "path", path, "method", method, "reason", reason)
}

func (c *compiler) warn(path, method, msg string) {
	if path != "" {
		msg = method + " " + path + ": " + msg
	}
	c.result.Warnings = append(c.result.Warnings, msg)
	c.logger.Warn(msg)
}

// statusCode переводит код ответа в число; default и 2XX дают 200.
func statusCode(code string) int {
	if n, err := strconv.Atoi(code); err == nil {
		return n
	}
	return http.StatusOK
}

// SkippedFor возвращает пропуски для пути.
func (r *Result) SkippedFor(path string) []Skipped {
	var out []Skipped
	for _, s := range r.Skipped {
		if s.Path == path {
			out = append(out, s)
		}
	}
	return slices.Clip(out)
}
