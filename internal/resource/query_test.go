package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveQuery(t *testing.T) {
	d := &Descriptor{
		WirePath: "/posts",
		Query: map[string]QueryParam{
			"tags":   {Type: "array"},
			"active": {Type: "boolean"},
			"limit":  {Type: "integer"},
			"q":      {Type: "string"},
		},
	}

	tests := []struct {
		name     string
		data     Values
		validate bool
		expected string
	}{
		{"array", Values{"tags": []int{1, 2, 3}}, true, "tags=1&tags=2&tags=3&"},
		{"boolean", Values{"active": true}, true, "active=true&"},
		{"boolean false", Values{"active": false}, true, "active=false&"},
		{"boolean from string", Values{"active": "0"}, true, "active=false&"},
		{"integer", Values{"limit": 10}, true, "limit=10&"},
		{"array scalar", Values{"tags": "x"}, true, "tags=x&"},
		{"no validation array", Values{"tags": []int{1, 2}}, false, "tags=1,2&"},
		{"no validation unknown", Values{"foo": "bar"}, false, "foo=bar&"},
		{"sorted keys", Values{"q": "x", "limit": 1}, true, "limit=1&q=x&"},
		{"empty", nil, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := d.ResolveQuery(tt.data, tt.validate)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, qs)
		})
	}
}

func TestResolveQueryUnknownKey(t *testing.T) {
	d := &Descriptor{WirePath: "/posts", Query: map[string]QueryParam{}}

	_, err := d.ResolveQuery(Values{"foo": 1}, true)
	var qerr *QueryParameterError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "foo", qerr.Name)
	assert.Contains(t, err.Error(), "not a valid query parameter")
}

func TestResolveQueryAliases(t *testing.T) {
	d := &Descriptor{
		WirePath: "/posts",
		Query:    map[string]QueryParam{"author_id": {Type: "integer"}},
		Aliases:  Aliases{"author": "author_id"},
	}

	qs, err := d.ResolveQuery(Values{"author": 9}, true)
	require.NoError(t, err)
	assert.Equal(t, "author_id=9&", qs)
}
