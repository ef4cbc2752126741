package ghapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Method is an HTTP verb supported by the API.
type Method string

// Supported methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// ParseMethod parses a method name case-insensitively.
func ParseMethod(name string) (Method, error) {
	method := Method(strings.ToUpper(strings.TrimSpace(name)))
	if !method.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, name)
	}

	return method, nil
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	default:
		return false
	}
}

// IsMutating reports whether requests with this method change server state.
// Mutating requests are spaced apart by the rate limiter.
func (m Method) IsMutating() bool {
	return m != MethodGet
}

func (m Method) String() string {
	return string(m)
}

// Request is a logical API request. Path is relative to the client's base
// URL; an absolute URL is used as-is.
type Request struct {
	Method  Method
	Path    string
	Query   url.Values
	Headers map[string]string
	// Body is encoded as JSON. []byte and json.RawMessage are sent unchanged.
	Body any
}

// OutboundRequest is a fully built request handed to a Transport.
type OutboundRequest struct {
	Method Method
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a raw response as returned by a Transport.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	// URL is the request URL that produced this response.
	URL string
	// Elapsed is the duration of the exchange, excluding any waits.
	Elapsed time.Duration
}

// RateLimitState is a snapshot of the server-reported rate-limit window and
// local mutation pacing.
type RateLimitState struct {
	Limit     *int
	Remaining *int
	Used      *int
	Reset     time.Time
	Resource  string
	// BlockedUntil is set from a Retry-After header.
	BlockedUntil time.Time
	// LastMutation is when the most recent mutating request was sent.
	LastMutation time.Time
}

// Exhausted reports whether the window has no remaining requests and has not
// reset yet at now.
func (s RateLimitState) Exhausted(now time.Time) bool {
	return s.Remaining != nil && *s.Remaining <= 0 && s.Reset.After(now)
}

// Page is one decoded page of a list endpoint.
type Page[T any] struct {
	Items []T
	// NextURL is the rel="next" link, empty on the last page.
	NextURL string
	// TotalCount and IncompleteResults are only present on search results.
	TotalCount        *int64
	IncompleteResults *bool
}
