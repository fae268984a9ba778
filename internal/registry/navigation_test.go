package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdwit/spec2admin/internal/resource"
)

func TestCurrentResource(t *testing.T) {
	postRead := descriptor("posts", resource.ActionRead, "GET", "/posts/{id}")
	postList := descriptor("posts", resource.ActionList, "GET", "/posts")
	categoryRead := descriptor("Category", resource.ActionRead, "GET", "/categories/{id}")
	commentRead := descriptor("comments", resource.ActionRead, "GET", "/posts/{postId}/comments/{id}")

	reg := buildRegistry(postRead, postList, categoryRead, commentRead)

	tests := []struct {
		name     string
		path     string
		expected *resource.Descriptor
	}{
		{"root", "/", nil},
		{"empty", "", nil},
		{"single segment", "/posts", nil},
		{"unknown action", "/posts/5/export", nil},
		{"canonical singularized", "/categories/3/read", categoryRead},
		{"literal template", "/posts/:id/read", postRead},
		{"literal list", "/posts/list", postList},
		{"template match", "/posts/5/read", postRead},
		{"nested template match", "/posts/5/comments/7/read", commentRead},
		{"query ignored", "/posts/5/read?tab=meta", postRead},
		{"no match", "/users/1/read", nil},
		{"segment count mismatch", "/posts/5/6/read", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reg.CurrentResource(tt.path)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			assert.Same(t, tt.expected, got)
		})
	}
}

func TestCurrentResourceCanonicalWins(t *testing.T) {
	// каноническое имя важнее совпадения шаблона
	plain := descriptor("posts", resource.ActionRead, "GET", "/posts/{id}")
	canonical := descriptor("Post", resource.ActionRead, "GET", "/v2/posts/{id}")
	reg := buildRegistry(plain, canonical)

	assert.Same(t, canonical, reg.CurrentResource("/posts/5/read"))
}

func TestCurrentResourceSingleSegment(t *testing.T) {
	home := descriptor("home", resource.ActionList, "GET", "/")
	postList := descriptor("posts", resource.ActionList, "GET", "/posts")
	reg := buildRegistry(home, postList)

	assert.Equal(t, "/list", home.NavigationPath)
	assert.Same(t, home, reg.CurrentResource("/list"))
	assert.Same(t, home, reg.CurrentResource("/list?page=2"))
	assert.Nil(t, reg.CurrentResource("/read"))
	assert.Nil(t, reg.CurrentResource("/"))
}

func TestCurrentResourceLiteralColon(t *testing.T) {
	search := descriptor("posts", resource.ActionSearch, "POST", "/posts:search")
	publish := descriptor("publications", resource.ActionUpdate, "POST", "/posts/{id}:publish")
	reg := buildRegistry(search, publish)

	assert.Same(t, search, reg.CurrentResource("/posts:search/search"))
	assert.Nil(t, reg.CurrentResource("/anything/search"))
	assert.Same(t, publish, reg.CurrentResource("/posts/:id:publish/update"))
	assert.Same(t, publish, reg.CurrentResource("/posts/5:publish/update"))
	// :publish литерал, а не плейсхолдер
	assert.Nil(t, reg.CurrentResource("/posts/5/update"))
	assert.Nil(t, reg.CurrentResource("/posts/5:archive/update"))
}
