package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/hashicorp/go-retryablehttp"
)

// RetryableTransport is the default ghapi.Transport. It sends each request
// exactly once through go-retryablehttp; retries are decided by the client.
type RetryableTransport struct {
	client *retryablehttp.Client
}

var _ ghapi.Transport = (*RetryableTransport)(nil)

// NewRetryableTransport creates a transport with the given exchange timeout.
// A nil logger disables transport logging.
func NewRetryableTransport(timeout time.Duration, logger ghapi.Logger) *RetryableTransport {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		return false, nil
	}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil

	if logger != nil {
		client.Logger = &leveledLogger{logger: logger}
	}

	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}

	return &RetryableTransport{client: client}
}

// RoundTrip performs one HTTP exchange and reads the full response body.
func (t *RetryableTransport) RoundTrip(ctx context.Context, out *ghapi.OutboundRequest) (*ghapi.Response, error) {
	var body interface{}
	if out.Body != nil {
		body = out.Body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, out.Method.String(), out.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header = out.Header.Clone()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &ghapi.Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
		URL:        out.URL,
	}, nil
}
