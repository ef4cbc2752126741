package http

import (
	"context"
	"time"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// RetryPolicy bounds how often and how long a request is retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// WaitMin is the delay before the first retry; each retry doubles it.
	WaitMin time.Duration
	// WaitMax caps the backoff delay.
	WaitMax time.Duration
	// MaxElapsed caps the total time of all attempts and waits. Zero means
	// no cap.
	MaxElapsed time.Duration
}

// DefaultRetryPolicy returns the default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: constants.DefaultRetryMax,
		WaitMin:    constants.DefaultRetryWaitMin,
		WaitMax:    constants.DefaultRetryWaitMax,
		MaxElapsed: constants.DefaultRetryMaxElapsed,
	}
}

// Attempts returns the total attempt budget.
func (p RetryPolicy) Attempts() int {
	return p.MaxRetries + 1
}

// Backoff returns the delay before retry number retry (0-based): WaitMin
// doubled per retry and capped at WaitMax.
func (p RetryPolicy) Backoff(retry int) time.Duration {
	return retryablehttp.DefaultBackoff(p.WaitMin, p.WaitMax, retry, nil)
}

// execute runs the attempt loop for one built request.
func (c *Client) execute(ctx context.Context, out *ghapi.OutboundRequest) (*ghapi.Response, error) {
	requestID := uuid.NewString()
	start := c.clock.Now()
	attempts := c.retry.Attempts()

	var lastErr *ghapi.Error

	for attempt := range attempts {
		err := c.limiter.Before(ctx, out.Method, requestID)
		if err != nil {
			return nil, ghapi.NewTransportError(out.Method, out.URL, err)
		}

		resp, apiErr := c.attempt(ctx, out, requestID, attempt)
		if apiErr == nil {
			return resp, nil
		}

		lastErr = apiErr

		if !apiErr.Kind.Retryable() || ctx.Err() != nil {
			return nil, apiErr
		}

		delay, ok := c.nextDelay(attempt, attempts, apiErr, start)
		if !ok {
			break
		}

		c.logger.Debug("Retrying request", map[string]interface{}{
			"method":     out.Method.String(),
			"url":        out.URL,
			"attempt":    attempt + 1,
			"kind":       apiErr.Kind.String(),
			"status":     apiErr.StatusCode,
			"wait":       delay.String(),
			"request_id": requestID,
		})

		err = c.clock.Sleep(ctx, delay)
		if err != nil {
			return nil, ghapi.NewTransportError(out.Method, out.URL, err)
		}
	}

	return nil, lastErr
}

// attempt sends one copy of out and classifies the outcome.
func (c *Client) attempt(ctx context.Context, out *ghapi.OutboundRequest, requestID string, attempt int) (*ghapi.Response, *ghapi.Error) {
	req := &ghapi.OutboundRequest{
		Method: out.Method,
		URL:    out.URL,
		Header: out.Header.Clone(),
		Body:   out.Body,
	}

	err := c.chain.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, ghapi.NewTransportError(req.Method, req.URL, err)
	}

	c.builder.applyProtocolHeaders(req)

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method.String(),
			"url":        req.URL,
			"attempt":    attempt + 1,
			"request_id": requestID,
		})
	}

	sent := c.clock.Now()

	resp, err := c.transport.RoundTrip(ctx, req)
	if err != nil {
		c.runResponseInterceptors(ctx, req, nil, err)

		return nil, ghapi.NewTransportError(req.Method, req.URL, err)
	}

	resp.Elapsed = c.clock.Now().Sub(sent)
	if resp.URL == "" {
		resp.URL = req.URL
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":     req.Method.String(),
			"url":        req.URL,
			"status":     resp.StatusCode,
			"elapsed":    resp.Elapsed.String(),
			"request_id": requestID,
		})
	}

	var apiErr *ghapi.Error

	verdict := c.limiter.After(resp)

	switch {
	case verdict.limited:
		apiErr = ghapi.NewRateLimitedError(req.Method, resp, verdict.wait)
	case resp.StatusCode >= 400:
		apiErr = ghapi.NewStatusError(req.Method, resp)
	}

	if apiErr != nil {
		c.runResponseInterceptors(ctx, req, resp, apiErr)

		return nil, apiErr
	}

	c.runResponseInterceptors(ctx, req, resp, nil)

	return resp, nil
}

// runResponseInterceptors runs the response chain. Interceptor failures are
// logged and do not change the outcome.
func (c *Client) runResponseInterceptors(ctx context.Context, req *ghapi.OutboundRequest, resp *ghapi.Response, reqErr error) {
	err := c.chain.ExecuteResponseInterceptors(ctx, req, resp, reqErr)
	if err != nil {
		c.logger.Warn("Response interceptor failed", map[string]interface{}{
			"method": req.Method.String(),
			"url":    req.URL,
			"error":  err.Error(),
		})
	}
}

// nextDelay returns the wait before the next attempt, or false when the
// attempt or time budget is spent. A server-provided wait is used as-is;
// otherwise the exponential schedule applies.
func (c *Client) nextDelay(attempt, attempts int, apiErr *ghapi.Error, start time.Time) (time.Duration, bool) {
	if attempt+1 >= attempts {
		return 0, false
	}

	delay := apiErr.RetryAfter
	if apiErr.Kind != ghapi.KindRateLimited || delay <= 0 {
		delay = c.retry.Backoff(attempt)
	}

	if c.retry.MaxElapsed > 0 {
		remaining := c.retry.MaxElapsed - c.clock.Now().Sub(start)
		if remaining <= 0 {
			return 0, false
		}

		delay = min(delay, remaining)
	}

	return delay, true
}
