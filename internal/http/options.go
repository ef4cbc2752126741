package http

import (
	"time"

	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger ghapi.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig sets the number of retries and the backoff bounds.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retry.MaxRetries = max(maxRetries, 0)
		c.retry.WaitMin = waitMin
		c.retry.WaitMax = waitMax
	}
}

// WithRetryMaxElapsed bounds the total time spent on one request. Zero
// removes the bound.
func WithRetryMaxElapsed(d time.Duration) Option {
	return func(c *Client) {
		c.retry.MaxElapsed = d
	}
}

// WithMutationDelay sets the minimum spacing between mutating requests.
func WithMutationDelay(d time.Duration) Option {
	return func(c *Client) {
		c.mutationDelay = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithHTTPTimeout sets the timeout of the default transport.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpTimeout = timeout
	}
}

// WithTransport replaces the default transport.
func WithTransport(transport ghapi.Transport) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithClock replaces the wall clock.
func WithClock(clock ghapi.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithRequestInterceptor adds a request interceptor.
func WithRequestInterceptor(interceptor ghapi.RequestInterceptor) Option {
	return func(c *Client) {
		c.chain.AddRequestInterceptor(interceptor)
	}
}

// WithResponseInterceptor adds a response interceptor.
func WithResponseInterceptor(interceptor ghapi.ResponseInterceptor) Option {
	return func(c *Client) {
		c.chain.AddResponseInterceptor(interceptor)
	}
}
