package ghapi_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDialFailed = errors.New("dial tcp: connection refused")

func response(status int, body string) *ghapi.Response {
	return &ghapi.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Body:       []byte(body),
		URL:        "https://api.github.com/repos/octocat/hello-world",
	}
}

func TestError_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       *ghapi.Error
		kind      ghapi.ErrorKind
		retryable bool
	}{
		{name: "transport", err: ghapi.NewTransportError(ghapi.MethodGet, "https://api.github.com/", errDialFailed), kind: ghapi.KindTransport, retryable: true},
		{name: "server", err: ghapi.NewStatusError(ghapi.MethodGet, response(503, "")), kind: ghapi.KindServer, retryable: true},
		{name: "client", err: ghapi.NewStatusError(ghapi.MethodGet, response(422, "")), kind: ghapi.KindClient, retryable: false},
		{name: "rate limited", err: ghapi.NewRateLimitedError(ghapi.MethodGet, response(429, ""), time.Second), kind: ghapi.KindRateLimited, retryable: true},
		{name: "decode", err: ghapi.NewDecodeError(ghapi.MethodGet, response(200, "{"), errDialFailed), kind: ghapi.KindDecode, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.retryable, tt.err.Kind.Retryable())
			assert.Equal(t, tt.name, tt.err.Kind.String())
		})
	}
}

func TestError_Display(t *testing.T) {
	t.Parallel()

	t.Run("terse form omits the body", func(t *testing.T) {
		t.Parallel()

		body := "upstream exploded at rack 7\nstack trace follows"
		err := ghapi.NewStatusError(ghapi.MethodPost, response(500, body))

		assert.Equal(t, "POST request to https://api.github.com/repos/octocat/hello-world returned 500 Internal Server Error", err.Error())
		assert.NotContains(t, err.Error(), "rack 7")
		assert.NotContains(t, fmt.Sprintf("%v", err), "rack 7")
		assert.NotContains(t, fmt.Sprintf("%s", err), "rack 7")
	})

	t.Run("verbose form contains the body", func(t *testing.T) {
		t.Parallel()

		body := "Bad credentials for this token"
		err := ghapi.NewStatusError(ghapi.MethodGet, response(401, body))

		verbose := fmt.Sprintf("%+v", err)
		assert.Contains(t, verbose, body)
		assert.True(t, strings.HasPrefix(verbose, err.Error()))
		assert.Equal(t, err.Verbose(), verbose)
		assert.Contains(t, verbose, "\n\n    Bad credentials")
	})

	t.Run("JSON message is shown tersely and the body pretty printed", func(t *testing.T) {
		t.Parallel()

		body := `{"message":"Validation Failed","errors":[{"resource":"Issue","field":"title","code":"missing_field"}]}`
		err := ghapi.NewStatusError(ghapi.MethodPost, response(422, body))

		assert.Equal(t,
			"POST request to https://api.github.com/repos/octocat/hello-world returned 422 Unprocessable Entity: Validation Failed",
			err.Error())
		assert.NotContains(t, err.Error(), "missing_field")

		verbose := fmt.Sprintf("%+v", err)
		assert.Contains(t, verbose, `    {`)
		assert.Contains(t, verbose, `      "message": "Validation Failed",`)
		assert.Contains(t, verbose, `"code": "missing_field"`)
	})

	t.Run("long messages are truncated", func(t *testing.T) {
		t.Parallel()

		body := `{"message":"` + strings.Repeat("x", 500) + `"}`
		err := ghapi.NewStatusError(ghapi.MethodGet, response(400, body))

		assert.Less(t, len(err.Message()), 250)
		assert.True(t, strings.HasSuffix(err.Message(), "..."))
	})

	t.Run("rate limited mentions the wait", func(t *testing.T) {
		t.Parallel()

		err := ghapi.NewRateLimitedError(ghapi.MethodGet, response(403, `{"message":"API rate limit exceeded"}`), 61*time.Second)

		assert.Contains(t, err.Error(), "API rate limit exceeded")
		assert.Contains(t, err.Error(), "retry after 1m1s")
	})

	t.Run("transport and decode errors show their cause", func(t *testing.T) {
		t.Parallel()

		transportErr := ghapi.NewTransportError(ghapi.MethodGet, "https://api.github.com/user", errDialFailed)
		assert.Equal(t, "GET request to https://api.github.com/user failed: dial tcp: connection refused", transportErr.Error())
		assert.Equal(t, transportErr.Error(), fmt.Sprintf("%+v", transportErr))

		decodeErr := ghapi.NewDecodeError(ghapi.MethodGet, response(200, "<html>"), errDialFailed)
		assert.Contains(t, decodeErr.Error(), "failed to decode response")
		assert.Contains(t, fmt.Sprintf("%+v", decodeErr), "    <html>")
	})
}

func TestError_Helpers(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("loading repo: %w", ghapi.NewStatusError(ghapi.MethodGet, response(404, `{"message":"Not Found"}`)))

	assert.True(t, ghapi.IsNotFound(notFound))
	assert.True(t, ghapi.IsClientError(notFound))
	assert.False(t, ghapi.IsServerError(notFound))
	assert.False(t, ghapi.IsRateLimited(notFound))
	assert.False(t, ghapi.IsNotFound(errDialFailed))

	apiErr, ok := ghapi.AsError(notFound)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)

	transportErr := ghapi.NewTransportError(ghapi.MethodGet, "https://api.github.com/", errDialFailed)
	assert.True(t, ghapi.IsTransportError(transportErr))
	require.ErrorIs(t, transportErr, errDialFailed)

	assert.True(t, ghapi.IsDecodeError(ghapi.NewDecodeError(ghapi.MethodGet, response(200, "x"), errDialFailed)))
	assert.True(t, ghapi.IsRateLimited(ghapi.NewRateLimitedError(ghapi.MethodGet, response(429, ""), 0)))
}

func TestParseAPIError(t *testing.T) {
	t.Parallel()

	apiErr, err := ghapi.ParseAPIError([]byte(`{
		"message": "Validation Failed",
		"documentation_url": "https://docs.github.com/rest/issues/issues#create-an-issue",
		"errors": [
			{"resource": "Issue", "field": "title", "code": "missing_field"},
			{"message": "labels must be strings"}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Validation Failed", apiErr.Message)
	assert.Len(t, apiErr.Errors, 2)
	assert.Equal(t, "Validation Failed (Issue.title missing_field; labels must be strings)", apiErr.Error())

	_, err = ghapi.ParseAPIError([]byte("not json"))
	require.Error(t, err)
}
