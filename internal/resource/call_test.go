package resource

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdwit/spec2admin/internal/schema"
)

type recordingTransport struct {
	mu       sync.Mutex
	requests []*Request
	fail     map[string]error
}

func (r *recordingTransport) Do(_ context.Context, req *Request) (*Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if err := r.fail[req.Path]; err != nil {
		return nil, err
	}
	return &Response{Data: map[string]any{"ok": true}, Status: http.StatusOK}, nil
}

func newPostDescriptor(typ ActionType, method, wire string, tr Transport) *Descriptor {
	return &Descriptor{
		Key:            MakeKey(method, "application/json", wire),
		GroupName:      "posts",
		ResourceName:   "posts",
		Type:           typ,
		WirePath:       wire,
		NavigationPath: LocalTemplate(wire, typ),
		Method:         method,
		ContentType:    "application/json",
		RequestSchema: &schema.Schema{
			Type: schema.TypeObject,
			Properties: map[string]*schema.Schema{
				"title":     {Type: schema.TypeString},
				"author_id": {Type: schema.TypeInteger},
			},
		},
		Aliases:   Aliases{"author": "author_id"},
		Transport: tr,
	}
}

func TestFixBody(t *testing.T) {
	d := newPostDescriptor(ActionCreate, "POST", "/posts", nil)

	assert.Nil(t, d.FixBody(nil))
	assert.Equal(t,
		map[string]any{"title": "x", "author_id": 3},
		d.FixBody(map[string]any{"title": "x", "author": 3, "admin": true}),
	)

	d.RequestSchema = nil
	assert.Equal(t,
		map[string]any{"author_id": 3, "admin": true},
		d.FixBody(map[string]any{"author": 3, "admin": true}),
	)
}

func TestCallSendsBodyOnlyForMutatingMethods(t *testing.T) {
	tr := &recordingTransport{}

	update := newPostDescriptor(ActionUpdate, "PUT", "/posts/{id}", tr)
	resp, err := update.Call(context.Background(), CallParams{
		Params: Values{"id": 1},
		Body:   map[string]any{"title": "new", "extra": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	read := newPostDescriptor(ActionRead, "get", "/posts/{id}", tr)
	_, err = read.Call(context.Background(), CallParams{Params: Values{"id": 1}, Body: map[string]any{"title": "x"}})
	require.NoError(t, err)

	require.Len(t, tr.requests, 2)
	assert.Equal(t, "PUT", tr.requests[0].Method)
	assert.Equal(t, "/posts/1", tr.requests[0].Path)
	assert.Equal(t, map[string]any{"title": "new"}, tr.requests[0].Body)
	assert.Equal(t, "GET", tr.requests[1].Method)
	assert.Nil(t, tr.requests[1].Body)
}

func TestCallErrors(t *testing.T) {
	d := newPostDescriptor(ActionRead, "GET", "/posts/{id}", nil)
	_, err := d.Call(context.Background(), CallParams{Params: Values{"id": 1}})
	assert.ErrorIs(t, err, ErrNoTransport)

	transportErr := errors.New("connection refused")
	tr := &recordingTransport{fail: map[string]error{"/posts/1": transportErr}}
	d.Transport = tr

	_, err = d.Call(context.Background(), CallParams{})
	assert.ErrorIs(t, err, ErrPathParameter)
	assert.Empty(t, tr.requests)

	_, err = d.Call(context.Background(), CallParams{Params: Values{"id": 1}})
	assert.Same(t, transportErr, err)
}

func TestCallAll(t *testing.T) {
	failure := errors.New("boom")
	tr := &recordingTransport{fail: map[string]error{"/posts/2": failure}}
	d := newPostDescriptor(ActionDelete, "DELETE", "/posts/{id}", tr)

	var calls []Invocation
	for _, id := range []int{1, 2, 3} {
		calls = append(calls, Invocation{Descriptor: d, Params: CallParams{Params: Values{"id": id}}})
	}

	responses, err := CallAll(context.Background(), calls...)
	assert.ErrorIs(t, err, failure)
	// остальные вызовы всё равно выполнены
	assert.Len(t, tr.requests, 3)
	assert.NotNil(t, responses[0])
	assert.Nil(t, responses[1])
	assert.NotNil(t, responses[2])

	tr.fail = nil
	responses, err = CallAll(context.Background(), calls...)
	require.NoError(t, err)
	assert.Len(t, responses, 3)
}

func TestHTTPTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "secret", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			var got map[string]any
			assert.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, map[string]any{"title": "hello"}, got)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 10, "title": "hello"}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "not found"}`))
		}
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL + "/api/")
	tr.Header.Set("Authorization", "secret")

	create := newPostDescriptor(ActionCreate, "POST", "/posts", tr)
	resp, err := create.Call(context.Background(), CallParams{Body: map[string]any{"title": "hello", "admin": true}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, map[string]any{"id": float64(10), "title": "hello"}, resp.Data)

	read := newPostDescriptor(ActionRead, "GET", "/posts/{id}", tr)
	_, err = read.Call(context.Background(), CallParams{Params: Values{"id": 99}})
	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusNotFound, herr.Status)
	assert.Equal(t, map[string]any{"error": "not found"}, herr.Data)
}
