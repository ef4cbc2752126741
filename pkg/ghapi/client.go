package ghapi

import (
	"context"
	"time"
)

// Client executes requests against the API. Implementations own one
// credential and one rate-limit state and are meant for sequential use.
type Client interface {
	// Do builds, paces, sends and retries req, returning the first
	// successful response or an *Error.
	Do(ctx context.Context, req *Request) (*Response, error)
	// RateLimit returns a snapshot of the current rate-limit state.
	RateLimit() RateLimitState
	// BaseURL returns the API root requests are resolved against.
	BaseURL() string
}

// Transport performs a single HTTP exchange. A non-nil error means no
// response was received; any received response, including 4xx and 5xx, is
// returned without error.
type Transport interface {
	RoundTrip(ctx context.Context, req *OutboundRequest) (*Response, error)
}

// Clock is the time source used for pacing, backoff and rate-limit waits.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a ghapi.Client.
//
// # Credentials
//
// Token is required and is sent as a Bearer token on every request. It is
// never logged and never appears in error text. Discovering a token (from
// environment variables, the gh CLI or a prompt) is left to the caller; see
// internal/auth for the CLI's implementation.
//
// # Retries and pacing
//
// Transport failures, 5xx responses and rate-limited responses are retried up
// to RetryMax times with exponential backoff between RetryWaitMin and
// RetryWaitMax. Rate-limited responses that carry a Retry-After or reset time
// wait exactly that long instead. RetryMaxElapsed bounds the total time spent
// on one request. Mutating requests (anything but GET) are spaced at least
// MutationDelay apart.
type Config struct {
	// Token: access token sent as "Authorization: Bearer <token>".
	Token string `validate:"required"`

	// Optional configurations
	// BaseURL: API root. Defaults to https://api.github.com.
	BaseURL string `validate:"omitempty,url"`
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// HTTPTimeout: timeout for a single HTTP exchange. Waits between
	// attempts are not included.
	HTTPTimeout time.Duration `validate:"gte=0"`
	// RetryMax: number of retries after the first attempt. If 0, a sensible
	// default is used; set DisableRetry for a single attempt.
	RetryMax int `validate:"gte=0,lte=20"`
	// DisableRetry: send every request exactly once.
	DisableRetry bool
	// RetryWaitMin: first backoff delay.
	RetryWaitMin time.Duration `validate:"gte=0"`
	// RetryWaitMax: maximum backoff delay.
	RetryWaitMax time.Duration `validate:"gte=0,gtefield=RetryWaitMin"`
	// RetryMaxElapsed: total time budget for one request across attempts.
	RetryMaxElapsed time.Duration `validate:"gte=0"`
	// MutationDelay: minimum spacing between mutating requests.
	MutationDelay time.Duration `validate:"gte=0"`
	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger

	// Transport: replaces the default HTTP transport.
	Transport Transport
	// Clock: replaces the wall clock, mainly for tests.
	Clock Clock
	// RequestInterceptors run on every attempt before it is sent.
	RequestInterceptors []RequestInterceptor
	// ResponseInterceptors run on every attempt after it completes.
	ResponseInterceptors []ResponseInterceptor
}
