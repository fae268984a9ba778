package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPTransport транспорт по умолчанию поверх net/http.
type HTTPTransport struct {
	BaseURL string
	Client  *http.Client
	Header  http.Header
}

// NewHTTPTransport создаёт транспорт с таймаутом 30 секунд.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
		Header:  make(http.Header),
	}
}

// Do выполняет запрос. Ответ с JSON-телом декодируется, иначе
// возвращается строкой. Статус вне 2xx превращается в *HTTPError.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	url := t.BaseURL + req.Path

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range t.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Accept", req.ContentType)
		if body != nil {
			httpReq.Header.Set("Content-Type", req.ContentType)
		}
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	data := decodeData(raw, resp.Header.Get("Content-Type"))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Method: req.Method, URL: url, Status: resp.StatusCode, Data: data}
	}
	return &Response{Data: data, Status: resp.StatusCode}, nil
}

func decodeData(raw []byte, contentType string) any {
	if len(raw) == 0 {
		return nil
	}
	if strings.Contains(contentType, "json") {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}
