package ghapi_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type mockPage struct {
	body string
	next string
	err  error
}

// MockClient serves canned pages keyed by request path.
type MockClient struct {
	pages    map[string]mockPage
	requests []string
}

func (m *MockClient) Do(ctx context.Context, req *ghapi.Request) (*ghapi.Response, error) {
	m.requests = append(m.requests, req.Path)

	page, ok := m.pages[req.Path]
	if !ok {
		return nil, ghapi.NewStatusError(req.Method, &ghapi.Response{StatusCode: 404, URL: req.Path, Body: []byte(`{"message":"Not Found"}`)})
	}

	if page.err != nil {
		return nil, page.err
	}

	header := http.Header{}
	if page.next != "" {
		header.Set("Link", fmt.Sprintf(`<%s>; rel="next", <https://api.github.com/last>; rel="last"`, page.next))
	}

	return &ghapi.Response{StatusCode: 200, Header: header, Body: []byte(page.body), URL: req.Path}, nil
}

func (m *MockClient) RateLimit() ghapi.RateLimitState {
	return ghapi.RateLimitState{}
}

func (m *MockClient) BaseURL() string {
	return "https://api.github.com"
}

func chainedPages(n int) map[string]mockPage {
	pages := make(map[string]mockPage, n)

	for i := 1; i <= n; i++ {
		path := "/users/octocat/repos"
		if i > 1 {
			path = fmt.Sprintf("https://api.github.com/user/583231/repos?page=%d", i)
		}

		page := mockPage{body: fmt.Sprintf(`[{"id":%d,"name":"repo-%d-a"},{"id":%d,"name":"repo-%d-b"}]`, i*10, i, i*10+1, i)}
		if i < n {
			page.next = fmt.Sprintf("https://api.github.com/user/583231/repos?page=%d", i+1)
		}

		pages[path] = page
	}

	return pages
}

func TestPaginator_SinglePage(t *testing.T) {
	t.Parallel()

	client := &MockClient{pages: chainedPages(1)}
	paginator := ghapi.NewPaginator[testRepo](client, "/users/octocat/repos")

	assert.False(t, paginator.Done())

	page, err := paginator.NextPage(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Empty(t, page.NextURL)
	assert.True(t, paginator.Done())

	_, err = paginator.NextPage(context.Background())
	require.ErrorIs(t, err, ghapi.ErrNoMorePages)
	assert.Len(t, client.requests, 1)
}

func TestPaginator_FollowsNextLinks(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d pages", n), func(t *testing.T) {
			t.Parallel()

			client := &MockClient{pages: chainedPages(n)}

			repos, err := ghapi.Paginate[testRepo](client, "/users/octocat/repos").All(context.Background())
			require.NoError(t, err)
			require.Len(t, repos, 2*n)

			for i := 1; i <= n; i++ {
				assert.Equal(t, fmt.Sprintf("repo-%d-a", i), repos[2*(i-1)].Name)
				assert.Equal(t, fmt.Sprintf("repo-%d-b", i), repos[2*(i-1)+1].Name)
			}

			assert.Len(t, client.requests, n)

			for i := 2; i <= n; i++ {
				assert.Equal(t, fmt.Sprintf("https://api.github.com/user/583231/repos?page=%d", i), client.requests[i-1])
			}
		})
	}
}

func TestPaginator_IsLazy(t *testing.T) {
	t.Parallel()

	client := &MockClient{pages: chainedPages(3)}
	paginator := ghapi.Paginate[testRepo](client, "/users/octocat/repos")

	var names []string

	for repo, err := range paginator.Items(context.Background()) {
		require.NoError(t, err)

		names = append(names, repo.Name)
		if len(names) == 3 {
			break
		}
	}

	assert.Equal(t, []string{"repo-1-a", "repo-1-b", "repo-2-a"}, names)
	assert.Len(t, client.requests, 2)
	assert.Equal(t, 2, paginator.Pages())
	assert.False(t, paginator.Done())
}

func TestPaginator_ErrorEndsSequence(t *testing.T) {
	t.Parallel()

	errBoom := ghapi.NewStatusError(ghapi.MethodGet, &ghapi.Response{StatusCode: 502, Body: []byte("bad gateway")})

	pages := chainedPages(3)
	page2 := pages["https://api.github.com/user/583231/repos?page=2"]
	page2.err = errBoom
	pages["https://api.github.com/user/583231/repos?page=2"] = page2

	client := &MockClient{pages: pages}
	paginator := ghapi.Paginate[testRepo](client, "/users/octocat/repos")

	var (
		names []string
		errs  []error
	)

	for repo, err := range paginator.Items(context.Background()) {
		if err != nil {
			errs = append(errs, err)

			continue
		}

		names = append(names, repo.Name)
	}

	assert.Equal(t, []string{"repo-1-a", "repo-1-b"}, names)
	require.Len(t, errs, 1)
	assert.True(t, ghapi.IsServerError(errs[0]))
	assert.True(t, paginator.Done())

	_, err := paginator.NextPage(context.Background())
	require.ErrorIs(t, err, ghapi.ErrNoMorePages)
	assert.Len(t, client.requests, 2)
}

func TestPaginator_AllReturnsPartialResults(t *testing.T) {
	t.Parallel()

	pages := chainedPages(2)
	page2 := pages["https://api.github.com/user/583231/repos?page=2"]
	page2.body = `{"message":"oops"}`
	pages["https://api.github.com/user/583231/repos?page=2"] = page2

	repos, err := ghapi.Paginate[testRepo](&MockClient{pages: pages}, "/users/octocat/repos").All(context.Background())
	require.Error(t, err)
	assert.True(t, ghapi.IsDecodeError(err))
	require.ErrorIs(t, err, ghapi.ErrUnexpectedPageShape)
	assert.Len(t, repos, 2)

	apiErr, ok := ghapi.AsError(err)
	require.True(t, ok)
	assert.JSONEq(t, `{"message":"oops"}`, string(apiErr.Body))
}

func TestPaginator_RefusesForeignNextLink(t *testing.T) {
	t.Parallel()

	client := &MockClient{pages: map[string]mockPage{
		"/users/octocat/repos": {body: `[{"id":1,"name":"one"}]`, next: "https://evil.example.com/steal?page=2"},
	}}
	paginator := ghapi.Paginate[testRepo](client, "/users/octocat/repos")

	page, err := paginator.NextPage(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, paginator.Done())

	_, err = paginator.NextPage(context.Background())
	require.ErrorIs(t, err, ghapi.ErrForeignNextLink)
	assert.True(t, paginator.Done())
	assert.Len(t, client.requests, 1)
}

func TestPaginator_SearchResults(t *testing.T) {
	t.Parallel()

	client := &MockClient{pages: map[string]mockPage{
		"/search/repositories?q=go": {
			body: `{"total_count":3,"incomplete_results":false,"items":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}`,
			next: "https://api.github.com/search/repositories?q=go&page=2",
		},
		"https://api.github.com/search/repositories?q=go&page=2": {
			body: `{"total_count":3,"incomplete_results":true,"items":[{"id":3,"name":"c"}]}`,
		},
	}}
	paginator := ghapi.Paginate[testRepo](client, "/search/repositories?q=go")

	first, err := paginator.NextPage(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first.TotalCount)
	assert.Equal(t, int64(3), *first.TotalCount)
	require.NotNil(t, first.IncompleteResults)
	assert.False(t, *first.IncompleteResults)
	assert.Equal(t, "https://api.github.com/search/repositories?q=go&page=2", first.NextURL)

	second, err := paginator.NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []testRepo{{ID: 3, Name: "c"}}, second.Items)
	assert.True(t, *second.IncompleteResults)
}

func TestDecodePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		items   int
		wantErr error
	}{
		{name: "array", body: `[{"id":1},{"id":2}]`, items: 2},
		{name: "empty array", body: `[]`, items: 0},
		{name: "object with one list", body: `{"total_count":1,"workflows":[{"id":1}]}`, items: 1},
		{name: "object with no list", body: `{"total_count":0}`, wantErr: ghapi.ErrUnexpectedPageShape},
		{name: "object with two lists", body: `{"a":[],"b":[]}`, wantErr: ghapi.ErrUnexpectedPageShape},
		{name: "scalar", body: `42`, wantErr: ghapi.ErrUnexpectedPageShape},
		{name: "empty", body: ``, wantErr: ghapi.ErrUnexpectedPageShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page, err := ghapi.DecodePage[testRepo]([]byte(tt.body))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, page.Items, tt.items)
		})
	}

	_, err := ghapi.DecodePage[testRepo]([]byte(`[{"id":"not a number"}]`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ghapi.ErrUnexpectedPageShape))
}

func TestNextLink(t *testing.T) {
	t.Parallel()

	header := http.Header{}
	assert.Empty(t, ghapi.NextLink(header))

	header.Set("Link", `<https://api.github.com/user/1/repos?page=1>; rel="prev", <https://api.github.com/user/1/repos?page=3>; rel="next"`)
	assert.Equal(t, "https://api.github.com/user/1/repos?page=3", ghapi.NextLink(header))

	header.Set("Link", `<https://api.github.com/user/1/repos?page=1>; rel="first"`)
	assert.Empty(t, ghapi.NextLink(header))
}
