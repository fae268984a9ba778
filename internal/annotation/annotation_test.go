package annotation

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdwit/spec2admin/internal/resource"
)

func TestDecode(t *testing.T) {
	b, dropped, err := Decode(map[string]any{
		"types":        []any{"list", "export", "read"},
		"groupName":    "posts",
		"resourceName": "post",
		"idProperty":   "slug",
		"unknownKey":   true,
		"references": map[string]any{
			"list":  map[string]any{"query": map[string]any{"author": "author_id"}},
			"bogus": map[string]any{"query": map[string]any{"a": "b"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []resource.ActionType{resource.ActionList, resource.ActionRead}, b.Types)
	assert.ElementsMatch(t, []string{"export", "bogus"}, dropped)
	assert.Equal(t, "slug", b.IDProperty)
	assert.Equal(t, resource.Aliases{"author": "author_id"}, b.Aliases(resource.ActionList))
	assert.Nil(t, b.Aliases(resource.ActionRead))
}

func TestDecodeRawMessage(t *testing.T) {
	b, _, err := Decode(json.RawMessage(`{"types": ["create"], "resourceName": "users"}`))
	require.NoError(t, err)
	assert.Equal(t, []resource.ActionType{resource.ActionCreate}, b.Types)

	_, _, err = Decode(json.RawMessage(`{"types": "create"}`))
	assert.Error(t, err)
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		block    Block
		group    string
		resource string
		ok       bool
	}{
		{Block{GroupName: "posts", ResourceName: "post"}, "posts", "posts", true},
		{Block{GroupName: "posts"}, "posts", "posts", true},
		{Block{ResourceName: "users"}, "users", "users", true},
		{Block{}, "", "", false},
	}

	for _, tt := range tests {
		group, res, ok := tt.block.Identity()
		assert.Equal(t, tt.group, group)
		assert.Equal(t, tt.resource, res)
		assert.Equal(t, tt.ok, ok)
	}
}

func loadDoc(t *testing.T, raw string) *openapi3.T {
	t.Helper()
	doc := &openapi3.T{}
	require.NoError(t, json.Unmarshal([]byte(raw), doc))
	return doc
}

const adjustableDoc = `{
	"openapi": "3.0.3",
	"info": {"title": "Blog", "version": "1.0.0"},
	"x-admin": {
		"/posts": {"get": {"groupName": "articles", "types": ["list"]}}
	},
	"paths": {
		"/posts": {
			"get": {
				"x-admin": {"groupName": "posts", "types": ["list"]},
				"responses": {"200": {"description": "ok"}}
			},
			"post": {
				"responses": {"201": {"description": "created"}}
			}
		}
	}
}`

func TestFromDocumentAndCommit(t *testing.T) {
	doc := loadDoc(t, adjustableDoc)

	adj, err := FromDocument(doc)
	require.NoError(t, err)
	b, ok := adj.Get("/posts", "GET")
	require.True(t, ok)
	assert.Equal(t, "articles", b.GroupName)

	adj.Set("/posts", "post", Block{GroupName: "articles", Types: []resource.ActionType{resource.ActionCreate}})
	adj.Set("/missing", "get", Block{GroupName: "x"})

	err = Commit(doc, adj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing")
	assert.NotContains(t, doc.Extensions, Extension)

	got, _, err := FromOperation(doc.Paths.Value("/posts").Get)
	require.NoError(t, err)
	assert.Equal(t, "articles", got.GroupName)

	got, _, err = FromOperation(doc.Paths.Value("/posts").Post)
	require.NoError(t, err)
	assert.Equal(t, []resource.ActionType{resource.ActionCreate}, got.Types)
}

func TestExtractAndFileRoundTrip(t *testing.T) {
	doc := loadDoc(t, adjustableDoc)

	adj, err := Extract(doc)
	require.NoError(t, err)
	require.Len(t, adj, 1)
	b, ok := adj.Get("/posts", "get")
	require.True(t, ok)
	assert.Equal(t, "posts", b.GroupName)

	path := filepath.Join(t.TempDir(), "adjustments.yaml")
	require.NoError(t, adj.Save(path))

	loaded, err := LoadAdjustments(path)
	require.NoError(t, err)
	assert.Equal(t, adj, loaded)
}

func TestFromOperationWithoutBlock(t *testing.T) {
	b, dropped, err := FromOperation(&openapi3.Operation{})
	assert.NoError(t, err)
	assert.Nil(t, b)
	assert.Nil(t, dropped)
}
