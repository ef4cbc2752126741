package http

import (
	"encoding/json"
	"math"
	"net/url"
	"testing"

	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBuilder_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		base     string
		path     string
		query    url.Values
		expected string
	}{
		{name: "leading slash", base: "https://api.github.com", path: "/users/octocat", expected: "https://api.github.com/users/octocat"},
		{name: "no leading slash", base: "https://api.github.com", path: "users/octocat", expected: "https://api.github.com/users/octocat"},
		{name: "trailing slash on base", base: "https://api.github.com/", path: "/users/octocat", expected: "https://api.github.com/users/octocat"},
		{name: "base with prefix", base: "https://ghe.example.com/api/v3", path: "/rate_limit", expected: "https://ghe.example.com/api/v3/rate_limit"},
		{
			name:     "absolute URL is used verbatim",
			base:     "https://api.github.com",
			path:     "https://api.github.com/user/1/repos?per_page=100&page=2",
			expected: "https://api.github.com/user/1/repos?per_page=100&page=2",
		},
		{name: "path with query", base: "https://api.github.com", path: "/search/repositories?q=go", expected: "https://api.github.com/search/repositories?q=go"},
		{
			name:     "query values are merged",
			base:     "https://api.github.com",
			path:     "/users/octocat/repos?type=owner",
			query:    url.Values{"per_page": {"100"}},
			expected: "https://api.github.com/users/octocat/repos?per_page=100&type=owner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			builder := newRequestBuilder(tt.base, "t0ken", "ghapi-test")

			out, err := builder.build(&ghapi.Request{Method: ghapi.MethodGet, Path: tt.path, Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.URL)
		})
	}
}

func TestRequestBuilder_Headers(t *testing.T) {
	t.Parallel()

	t.Run("protocol headers", func(t *testing.T) {
		t.Parallel()

		builder := newRequestBuilder("https://api.github.com", "t0ken", "ghapi-test")

		out, err := builder.build(&ghapi.Request{Path: "/user"})
		require.NoError(t, err)
		assert.Equal(t, ghapi.MethodGet, out.Method)
		assert.Equal(t, "application/vnd.github+json", out.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", out.Header.Get("X-GitHub-Api-Version"))
		assert.Equal(t, "Bearer t0ken", out.Header.Get("Authorization"))
		assert.Equal(t, "ghapi-test", out.Header.Get("User-Agent"))
		assert.Empty(t, out.Header.Get("Content-Type"))
		assert.Nil(t, out.Body)
	})

	t.Run("caller headers cannot replace protocol headers", func(t *testing.T) {
		t.Parallel()

		builder := newRequestBuilder("https://api.github.com", "t0ken", "ghapi-test")

		out, err := builder.build(&ghapi.Request{
			Path: "/user",
			Headers: map[string]string{
				"Accept":        "text/html",
				"Authorization": "Bearer other",
				"X-Extra":       "1",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "application/vnd.github+json", out.Header.Get("Accept"))
		assert.Equal(t, "Bearer t0ken", out.Header.Get("Authorization"))
		assert.Equal(t, "1", out.Header.Get("X-Extra"))
	})

	t.Run("no token sends no authorization", func(t *testing.T) {
		t.Parallel()

		builder := newRequestBuilder("https://api.github.com", "", "ghapi-test")

		out, err := builder.build(&ghapi.Request{Path: "/zen", Headers: map[string]string{"Authorization": "Bearer leaked"}})
		require.NoError(t, err)
		assert.Empty(t, out.Header.Get("Authorization"))
	})
}

func TestRequestBuilder_Body(t *testing.T) {
	t.Parallel()

	builder := newRequestBuilder("https://api.github.com", "t0ken", "ghapi-test")

	t.Run("value is encoded as JSON", func(t *testing.T) {
		t.Parallel()

		out, err := builder.build(&ghapi.Request{
			Method: ghapi.MethodPost,
			Path:   "/repos/o/r/issues",
			Body:   map[string]string{"title": "bug"},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"bug"}`, string(out.Body))
		assert.Equal(t, "application/json", out.Header.Get("Content-Type"))
	})

	t.Run("raw JSON passes through", func(t *testing.T) {
		t.Parallel()

		out, err := builder.build(&ghapi.Request{
			Method: ghapi.MethodPatch,
			Path:   "/repos/o/r",
			Body:   json.RawMessage(`{"archived":true}`),
		})
		require.NoError(t, err)
		assert.Equal(t, `{"archived":true}`, string(out.Body))
	})

	t.Run("unencodable body fails", func(t *testing.T) {
		t.Parallel()

		_, err := builder.build(&ghapi.Request{Method: ghapi.MethodPost, Path: "/x", Body: math.Inf(1)})
		require.ErrorIs(t, err, ghapi.ErrEncodeBody)
	})

	t.Run("unsupported method fails", func(t *testing.T) {
		t.Parallel()

		_, err := builder.build(&ghapi.Request{Method: "TRACE", Path: "/x"})
		require.ErrorIs(t, err, ghapi.ErrInvalidMethod)
	})
}
