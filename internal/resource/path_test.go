package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentDescriptor() *Descriptor {
	wire := "/posts/{postId}/comments/{commentId}"
	return &Descriptor{
		Key:            MakeKey("get", "application/json", wire),
		GroupName:      "comments",
		ResourceName:   "comments",
		Type:           ActionRead,
		WirePath:       wire,
		NavigationPath: LocalTemplate(wire, ActionRead),
		Method:         "GET",
		ContentType:    "application/json",
		Query: map[string]QueryParam{
			"expand": {Type: "boolean"},
			"fields": {Type: "array"},
			"q":      {Type: "string"},
		},
	}
}

func TestLocalTemplate(t *testing.T) {
	assert.Equal(t, "/posts/list", LocalTemplate("/posts", ActionList))
	assert.Equal(t, "/posts/:id/read", LocalTemplate("/posts/{id}", ActionRead))
	assert.Equal(t, "/posts/:id/update", LocalTemplate("/posts/{id}/", ActionUpdate))
	assert.Equal(t, "/search", LocalTemplate("/", ActionSearch))
	assert.Equal(t, "/posts:search/search", LocalTemplate("/posts:search", ActionSearch))
	assert.Equal(t, "/posts/:id:publish/update", LocalTemplate("/posts/{id}:publish", ActionUpdate))
}

func TestWireParams(t *testing.T) {
	assert.Equal(t, []string{"postId", "id"}, WireParams("/posts/{postId}/comments/{id}"))
	assert.Equal(t, []string{"id"}, WireParams("/a/{id}/b/{id}"))
	assert.Empty(t, WireParams("/posts:search"))

	d := &Descriptor{WirePath: "/posts/{id}"}
	assert.Equal(t, []string{"id"}, d.PathParamNames())
	d.PathParams = []string{"id", "extra"}
	assert.Equal(t, []string{"id", "extra"}, d.PathParamNames())
}

func TestMakeKey(t *testing.T) {
	assert.Equal(t, "GET application/json /posts", MakeKey("get", "application/json", "/posts"))
}

func TestAPIPathRequiresAllPlaceholders(t *testing.T) {
	d := newCommentDescriptor()

	tests := []struct {
		name    string
		params  Values
		wantErr bool
		want    string
	}{
		{name: "none", params: nil, wantErr: true},
		{name: "one of two", params: Values{"postId": 1}, wantErr: true},
		{name: "all", params: Values{"postId": 1, "commentId": "abc"}, want: "/posts/1/comments/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := d.APIPath(tt.params, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrPathParameter))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, path)

			// без проверки ошибки нет никогда
			_, err = d.BuildAPIPath(tt.params, nil, false)
			assert.NoError(t, err)
		})
	}

	path, err := d.BuildAPIPath(Values{"postId": 7}, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "/posts/7/comments/{commentId}", path)
}

func TestAPIPathRejectsNonPrimitiveValues(t *testing.T) {
	d := newCommentDescriptor()

	tests := []struct {
		value any
		shape string
	}{
		{nil, "null"},
		{[]int{1, 2}, "array"},
		{map[string]any{"a": 1}, "object"},
		{struct{ ID int }{1}, "object"},
		{(*int)(nil), "null"},
	}

	for _, tt := range tests {
		for _, validate := range []bool{true, false} {
			_, err := d.BuildAPIPath(Values{"postId": tt.value, "commentId": 1}, nil, validate)
			var perr *PathParameterError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "postId", perr.Name)
			assert.Equal(t, tt.shape, perr.Shape)
			assert.Contains(t, err.Error(), "postId")
		}
	}
}

func TestAPIPathWithAliasesAndQuery(t *testing.T) {
	d := newCommentDescriptor()
	d.Aliases = Aliases{"post": "postId", "comment": "commentId", "only": "fields"}

	n := 3
	path, err := d.APIPath(Values{"post": &n, "comment": 4.0}, Values{"only": []string{"a", "b"}, "expand": true})
	require.NoError(t, err)
	assert.Equal(t, "/posts/3/comments/4?expand=true&fields=a&fields=b&", path)

	_, err = d.APIPath(Values{"post": 1, "comment": 2}, Values{"unknown": 1})
	assert.ErrorIs(t, err, ErrQueryParameter)

	path, err = d.BuildAPIPath(Values{"post": 1, "comment": 2}, Values{"unknown": 1}, false)
	require.NoError(t, err)
	assert.Equal(t, "/posts/1/comments/2?unknown=1&", path)
}

func TestLocalPath(t *testing.T) {
	d := newCommentDescriptor()

	path, err := d.LocalPath(Values{"postId": 5, "commentId": 6}, Values{"page": 2})
	require.NoError(t, err)
	assert.Equal(t, "/posts/5/comments/6/read?page=2&", path)

	_, err = d.LocalPath(Values{"postId": 5}, nil)
	assert.ErrorIs(t, err, ErrPathParameter)

	path, err = d.BuildLocalPath(Values{"postId": 5}, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "/posts/5/comments/:commentId/read", path)

	_, err = d.BuildLocalPath(Values{"postId": []any{1}}, nil, false)
	assert.ErrorIs(t, err, ErrPathParameter)
}

func TestReplaceColonParamWholeToken(t *testing.T) {
	assert.Equal(t, "/a/1/b/:idx", replaceColonParam("/a/:id/b/:idx", "id", "1"))
	assert.Equal(t, "/a/1.json", replaceColonParam("/a/:id.json", "id", "1"))
	assert.Equal(t, "/a:id/1", replaceColonParam("/a:id/:id", "id", "1"))
	assert.Equal(t, "/f/a.b", replaceColonParam("/f/a.:ext", "ext", "b"))
}

func TestLocalPathLiteralColon(t *testing.T) {
	search := &Descriptor{
		Type:           ActionSearch,
		WirePath:       "/posts:search",
		NavigationPath: LocalTemplate("/posts:search", ActionSearch),
	}

	path, err := search.LocalPath(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/posts:search/search", path)

	// параметр с тем же именем не трогает литерал
	path, err = search.LocalPath(Values{"search": "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/posts:search/search", path)

	publish := &Descriptor{
		Type:           ActionUpdate,
		WirePath:       "/posts/{id}:publish",
		NavigationPath: LocalTemplate("/posts/{id}:publish", ActionUpdate),
		PathParams:     WireParams("/posts/{id}:publish"),
	}

	path, err = publish.LocalPath(Values{"id": 5, "publish": "no"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/posts/5:publish/update", path)

	_, err = publish.LocalPath(nil, nil)
	var perr *PathParameterError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "id", perr.Name)

	wire, err := publish.APIPath(Values{"id": 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/posts/5:publish", wire)
}

func TestMatchesNavigation(t *testing.T) {
	d := newCommentDescriptor()

	assert.True(t, d.MatchesNavigation("/posts/5/comments/6/read"))
	assert.True(t, d.MatchesNavigation("/posts/:postId/comments/:commentId/read"))
	assert.False(t, d.MatchesNavigation("/posts/5/comments/read"))
	assert.False(t, d.MatchesNavigation("/posts/5/6/comments/7/read"))

	files := &Descriptor{WirePath: "/files/{name}.{ext}", NavigationPath: LocalTemplate("/files/{name}.{ext}", ActionRead)}
	assert.True(t, files.MatchesNavigation("/files/report.pdf/read"))
	assert.False(t, files.MatchesNavigation("/files/report/read"))

	literal := &Descriptor{WirePath: "/v1/:raw", NavigationPath: LocalTemplate("/v1/:raw", ActionList)}
	assert.True(t, literal.MatchesNavigation("/v1/:raw/list"))
	assert.False(t, literal.MatchesNavigation("/v1/x/list"))
}
