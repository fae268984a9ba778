package resource

import (
	"context"
	"fmt"
	"strings"
)

// CallParams аргументы вызова: параметры пути, query и тело.
type CallParams struct {
	Params Values
	Query  Values
	Body   map[string]any
}

// Request запрос к транспорту.
type Request struct {
	Method      string
	Path        string
	ContentType string
	Body        map[string]any
}

// Response ответ транспорта.
type Response struct {
	Data   any
	Status int
}

// Transport внешний сетевой коллаборатор. Его ошибки возвращаются
// вызывающему без изменений.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Call строит путь API, выбирает метод и для POST/PUT/PATCH отправляет
// тело, очищенное через FixBody.
func (d *Descriptor) Call(ctx context.Context, p CallParams) (*Response, error) {
	if d.Transport == nil {
		return nil, ErrNoTransport
	}

	path, err := d.APIPath(p.Params, p.Query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.GroupName+"."+string(d.Type), err)
	}

	req := &Request{
		Method:      strings.ToUpper(d.Method),
		Path:        path,
		ContentType: d.ContentType,
	}
	if d.Mutating() {
		req.Body = d.FixBody(p.Body)
	}

	return d.Transport.Do(ctx, req)
}

// FixBody оставляет только ключи, объявленные в схеме запроса (после
// перевода через алиасы). Без тела возвращает nil; без схемы запроса
// ключи только переводятся.
func (d *Descriptor) FixBody(body map[string]any) map[string]any {
	if body == nil {
		return nil
	}
	fixed := make(map[string]any, len(body))
	for key, value := range body {
		name := d.Aliases.Translate(key)
		if d.RequestSchema != nil && !d.RequestSchema.HasProperty(name) {
			continue
		}
		fixed[name] = value
	}
	return fixed
}
