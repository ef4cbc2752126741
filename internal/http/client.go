package http

import (
	"context"
	"net/url"
	"time"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
)

// Client is the request-execution engine behind ghapi.Client. A Client owns
// one credential and one rate-limit state and is meant for sequential use;
// it starts no goroutines.
type Client struct {
	baseURL       string
	userAgent     string
	httpTimeout   time.Duration
	mutationDelay time.Duration
	debug         bool
	retry         RetryPolicy

	builder   *requestBuilder
	transport ghapi.Transport
	limiter   *RateLimiter
	clock     ghapi.Clock
	logger    ghapi.Logger
	chain     *ghapi.InterceptorChain
}

var _ ghapi.Client = (*Client)(nil)

// NewClient creates a client for baseURL authenticating with token. An empty
// token sends requests without an Authorization header.
func NewClient(baseURL, token string, opts ...Option) *Client {
	client := &Client{
		baseURL:       baseURL,
		userAgent:     constants.DefaultUserAgent,
		httpTimeout:   constants.DefaultHTTPTimeout,
		mutationDelay: constants.DefaultMutationDelay,
		retry:         DefaultRetryPolicy(),
		clock:         SystemClock(),
		logger:        noopLogger{},
		chain:         ghapi.NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(client)
	}

	client.builder = newRequestBuilder(baseURL, token, client.userAgent)
	client.limiter = NewRateLimiter(client.clock, client.logger, client.mutationDelay)

	if client.transport == nil {
		var transportLogger ghapi.Logger
		if client.debug {
			transportLogger = client.logger
		}

		client.transport = NewRetryableTransport(client.httpTimeout, transportLogger)
	}

	return client
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RateLimit returns a snapshot of the rate-limit state.
func (c *Client) RateLimit() ghapi.RateLimitState {
	return c.limiter.Snapshot()
}

// Do executes req. Every failure after the request is built is an
// *ghapi.Error; a request that cannot be built (unsupported method,
// unencodable body) fails with a plain error.
func (c *Client) Do(ctx context.Context, req *ghapi.Request) (*ghapi.Response, error) {
	out, err := c.builder.build(req)
	if err != nil {
		return nil, err
	}

	return c.execute(ctx, out)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*ghapi.Response, error) {
	return c.Do(ctx, &ghapi.Request{Method: ghapi.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) (*ghapi.Response, error) {
	return c.Do(ctx, &ghapi.Request{Method: ghapi.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*ghapi.Response, error) {
	return c.Do(ctx, &ghapi.Request{Method: ghapi.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any) (*ghapi.Response, error) {
	return c.Do(ctx, &ghapi.Request{Method: ghapi.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*ghapi.Response, error) {
	return c.Do(ctx, &ghapi.Request{Method: ghapi.MethodDelete, Path: path})
}
