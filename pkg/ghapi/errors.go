package ghapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/ghapi/internal/constants"
)

// ErrorKind classifies an *Error. The set of kinds is closed.
type ErrorKind int

// Error kinds.
const (
	// KindTransport means no response was received.
	KindTransport ErrorKind = iota + 1
	// KindServer is a 5xx response.
	KindServer
	// KindClient is a 4xx response that is not a rate limit.
	KindClient
	// KindRateLimited is a response the server used to signal throttling.
	KindRateLimited
	// KindDecode is a successful response whose body could not be decoded.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindRateLimited:
		return "rate limited"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Retryable reports whether a request failing with this kind may be retried.
func (k ErrorKind) Retryable() bool {
	return k == KindTransport || k == KindServer || k == KindRateLimited
}

// Error is the failure type returned by Client.Do and the helpers built on it.
//
// The Error method gives a one-line summary without the response body.
// Formatting with %+v, or calling Verbose, appends the full body, pretty
// printed when it is JSON.
type Error struct {
	Kind       ErrorKind
	Method     Method
	URL        string
	StatusCode int
	Status     string
	// Body is the raw response body, when a response was received.
	Body []byte
	// RetryAfter is the server-requested wait for KindRateLimited, zero when
	// the server gave no hint.
	RetryAfter time.Duration
	// Err is the underlying cause for KindTransport and KindDecode.
	Err error
}

// NewTransportError reports a request that produced no response.
func NewTransportError(method Method, rawURL string, cause error) *Error {
	return &Error{Kind: KindTransport, Method: method, URL: rawURL, Err: cause}
}

// NewStatusError classifies a non-success response as KindServer or KindClient.
func NewStatusError(method Method, resp *Response) *Error {
	kind := KindClient
	if resp.StatusCode >= http.StatusInternalServerError {
		kind = KindServer
	}

	return &Error{
		Kind:       kind,
		Method:     method,
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       resp.Body,
	}
}

// NewRateLimitedError reports a throttled response. wait is zero when the
// server gave no hint.
func NewRateLimitedError(method Method, resp *Response, wait time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Method:     method,
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       resp.Body,
		RetryAfter: wait,
	}
}

// NewDecodeError reports a response body that did not match the expected shape.
func NewDecodeError(method Method, resp *Response, cause error) *Error {
	return &Error{
		Kind:       KindDecode,
		Method:     method,
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       resp.Body,
		Err:        cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("%s request to %s failed: %v", e.Method, e.URL, e.Err)
	case KindDecode:
		return fmt.Sprintf("failed to decode response to %s request to %s: %v", e.Method, e.URL, e.Err)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s request to %s returned %s", e.Method, e.URL, e.statusText())

	if msg := e.Message(); msg != "" {
		sb.WriteString(": ")
		sb.WriteString(msg)
	}

	if e.Kind == KindRateLimited {
		if e.RetryAfter > 0 {
			fmt.Fprintf(&sb, " (rate limited, retry after %s)", e.RetryAfter)
		} else {
			sb.WriteString(" (rate limited)")
		}
	}

	return sb.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Verbose returns the error text followed by the indented response body.
func (e *Error) Verbose() string {
	text := e.Error()

	detail := e.Detail()
	if detail == "" {
		return text
	}

	return text + "\n\n" + detail
}

// Detail returns the response body for display: pretty printed when it is
// JSON and indented by four spaces. It is empty when no body was received.
func (e *Error) Detail() string {
	body := bytes.TrimSpace(e.Body)
	if len(body) == 0 {
		return ""
	}

	var pretty bytes.Buffer
	if json.Valid(body) && json.Indent(&pretty, body, "", "  ") == nil {
		body = pretty.Bytes()
	}

	lines := strings.Split(string(body), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(constants.ErrorBodyIndent+line, " \t\r")
	}

	return strings.Join(lines, "\n")
}

// Format implements fmt.Formatter so that %+v prints the verbose form.
func (e *Error) Format(state fmt.State, verb rune) {
	switch verb {
	case 'v':
		if state.Flag('+') {
			_, _ = io.WriteString(state, e.Verbose())

			return
		}

		_, _ = io.WriteString(state, e.Error())
	case 's':
		_, _ = io.WriteString(state, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(state, "%q", e.Error())
	}
}

// Message returns the first line of the "message" field of a JSON error
// body, truncated for display.
func (e *Error) Message() string {
	apiErr, ok := e.APIError()
	if !ok {
		return ""
	}

	msg, _, _ := strings.Cut(strings.TrimSpace(apiErr.Message), "\n")
	if len(msg) > constants.MaxErrorMessageLength {
		msg = msg[:constants.MaxErrorMessageLength] + "..."
	}

	return msg
}

// APIError decodes the body as a structured API error.
func (e *Error) APIError() (*APIError, bool) {
	if len(e.Body) == 0 {
		return nil, false
	}

	apiErr, err := ParseAPIError(e.Body)
	if err != nil || apiErr.Message == "" {
		return nil, false
	}

	return apiErr, true
}

func (e *Error) statusText() string {
	if e.Status != "" {
		return e.Status
	}

	if text := http.StatusText(e.StatusCode); text != "" {
		return fmt.Sprintf("%d %s", e.StatusCode, text)
	}

	return fmt.Sprintf("%d", e.StatusCode)
}

// APIError is the JSON error document returned by the API.
type APIError struct {
	Message          string       `json:"message"                     yaml:"message"`
	DocumentationURL string       `json:"documentation_url,omitempty" yaml:"documentation_url,omitempty"`
	Status           string       `json:"status,omitempty"            yaml:"status,omitempty"`
	Errors           []FieldError `json:"errors,omitempty"            yaml:"errors,omitempty"`
}

// FieldError describes a single validation failure.
type FieldError struct {
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`
	Field    string `json:"field,omitempty"    yaml:"field,omitempty"`
	Code     string `json:"code,omitempty"     yaml:"code,omitempty"`
	Message  string `json:"message,omitempty"  yaml:"message,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}

	parts := make([]string, 0, len(e.Errors))
	for _, fieldErr := range e.Errors {
		if fieldErr.Message != "" {
			parts = append(parts, fieldErr.Message)
		} else {
			parts = append(parts, fmt.Sprintf("%s.%s %s", fieldErr.Resource, fieldErr.Field, fieldErr.Code))
		}
	}

	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// ParseAPIError parses an error response from JSON.
func ParseAPIError(data []byte) (*APIError, error) {
	var apiErr APIError

	err := json.Unmarshal(data, &apiErr)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal API error: %w", err)
	}

	return &apiErr, nil
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrTokenRequired       = errors.New("access token is required")
	ErrInvalidConfig       = errors.New("invalid client configuration")
	ErrInvalidMethod       = errors.New("unsupported HTTP method")
	ErrNoMorePages         = errors.New("no more pages")
	ErrUnexpectedPageShape = errors.New("unexpected page shape")
	ErrForeignNextLink     = errors.New("next link points outside the API base URL")
	ErrEncodeBody          = errors.New("failed to encode request body")
)

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	apiErr, ok := AsError(err)

	return ok && apiErr.Kind == KindClient && apiErr.StatusCode == http.StatusNotFound
}

// IsRateLimited checks if the error is a throttled response.
func IsRateLimited(err error) bool {
	return isKind(err, KindRateLimited)
}

// IsServerError checks if the error is a 5xx response.
func IsServerError(err error) bool {
	return isKind(err, KindServer)
}

// IsClientError checks if the error is a non-throttling 4xx response.
func IsClientError(err error) bool {
	return isKind(err, KindClient)
}

// IsTransportError checks if the request failed without a response.
func IsTransportError(err error) bool {
	return isKind(err, KindTransport)
}

// IsDecodeError checks if a response body could not be decoded.
func IsDecodeError(err error) bool {
	return isKind(err, KindDecode)
}

func isKind(err error, kind ErrorKind) bool {
	apiErr, ok := AsError(err)

	return ok && apiErr.Kind == kind
}
