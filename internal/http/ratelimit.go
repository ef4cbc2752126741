package http

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"golang.org/x/time/rate"
)

// RateLimiter paces requests for one client. Before blocks while the
// server's window is known to be exhausted and spaces mutating requests at
// least the mutation delay apart; After records the window reported by each
// response and recognizes throttling responses.
type RateLimiter struct {
	mu        sync.Mutex
	clock     ghapi.Clock
	logger    ghapi.Logger
	mutations *rate.Limiter
	state     ghapi.RateLimitState
}

// rateLimitVerdict is the outcome of inspecting one response.
type rateLimitVerdict struct {
	limited bool
	// wait is how long the server asked us to back off; zero means no hint.
	wait time.Duration
}

// NewRateLimiter creates a rate limiter. A zero mutationDelay disables
// mutation spacing.
func NewRateLimiter(clock ghapi.Clock, logger ghapi.Logger, mutationDelay time.Duration) *RateLimiter {
	limit := rate.Inf
	if mutationDelay > 0 {
		limit = rate.Every(mutationDelay)
	}

	if logger == nil {
		logger = noopLogger{}
	}

	return &RateLimiter{
		clock:     clock,
		logger:    logger,
		mutations: rate.NewLimiter(limit, 1),
	}
}

// Before blocks until req may be sent. It returns ctx.Err() if ctx ends
// while waiting.
func (l *RateLimiter) Before(ctx context.Context, method ghapi.Method, requestID string) error {
	now := l.clock.Now()

	if wait := l.windowWait(now); wait > 0 {
		l.logger.Debug("Waiting for rate limit window", map[string]interface{}{
			"wait":       wait.String(),
			"request_id": requestID,
		})

		err := l.clock.Sleep(ctx, wait)
		if err != nil {
			return err
		}
	}

	if !method.IsMutating() {
		return nil
	}

	now = l.clock.Now()
	reservation := l.mutations.ReserveN(now, 1)

	// Rounding absorbs float error in the limiter's token arithmetic.
	if delay := reservation.DelayFrom(now).Round(time.Microsecond); delay > 0 {
		l.logger.Debug("Sleeping before mutating request", map[string]interface{}{
			"wait":       delay.String(),
			"method":     method.String(),
			"request_id": requestID,
		})

		err := l.clock.Sleep(ctx, delay)
		if err != nil {
			reservation.CancelAt(l.clock.Now())

			return err
		}
	}

	l.mu.Lock()
	l.state.LastMutation = l.clock.Now()
	l.mu.Unlock()

	return nil
}

// After records the rate-limit headers of resp and reports whether resp is
// a throttling response.
func (l *RateLimiter) After(resp *ghapi.Response) rateLimitVerdict {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.update(resp.Header)

	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return rateLimitVerdict{}
	}

	if wait, ok := parseRetryAfter(resp.Header.Get(constants.HeaderRetryAfter), now); ok {
		wait += constants.RateLimitSlack
		l.state.BlockedUntil = now.Add(wait)

		return rateLimitVerdict{limited: true, wait: wait}
	}

	if strings.TrimSpace(resp.Header.Get(constants.HeaderRateLimitRemaining)) == "0" {
		reset, ok := parseEpoch(resp.Header.Get(constants.HeaderRateLimitReset))
		if !ok {
			return rateLimitVerdict{limited: true}
		}

		wait := reset.Sub(now) + constants.RateLimitSlack
		if wait < 0 {
			wait = 0
		}

		return rateLimitVerdict{limited: true, wait: wait}
	}

	if resp.StatusCode == http.StatusTooManyRequests || mentionsRateLimit(resp.Body) {
		return rateLimitVerdict{limited: true}
	}

	return rateLimitVerdict{}
}

// Snapshot returns a copy of the current state.
func (l *RateLimiter) Snapshot() ghapi.RateLimitState {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := l.state
	snapshot.Limit = copyInt(l.state.Limit)
	snapshot.Remaining = copyInt(l.state.Remaining)
	snapshot.Used = copyInt(l.state.Used)

	return snapshot
}

func (l *RateLimiter) windowWait(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	var wait time.Duration

	if l.state.BlockedUntil.After(now) {
		wait = l.state.BlockedUntil.Sub(now)
	}

	if l.state.Exhausted(now) {
		if untilReset := l.state.Reset.Sub(now) + constants.RateLimitSlack; untilReset > wait {
			wait = untilReset
		}
	}

	return wait
}

// update overwrites the fields present in header; absent fields keep their
// previous values.
func (l *RateLimiter) update(header http.Header) {
	if v, ok := parseIntHeader(header, constants.HeaderRateLimitLimit); ok {
		l.state.Limit = &v
	}

	if v, ok := parseIntHeader(header, constants.HeaderRateLimitRemaining); ok {
		l.state.Remaining = &v
	}

	if v, ok := parseIntHeader(header, constants.HeaderRateLimitUsed); ok {
		l.state.Used = &v
	}

	if reset, ok := parseEpoch(header.Get(constants.HeaderRateLimitReset)); ok {
		l.state.Reset = reset
	}

	if resource := header.Get(constants.HeaderRateLimitResource); resource != "" {
		l.state.Resource = resource
	}
}

func parseIntHeader(header http.Header, name string) (int, bool) {
	raw := strings.TrimSpace(header.Get(name))
	if raw == "" {
		return 0, false
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}

	return v, true
}

func parseEpoch(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs < 0 {
		return time.Time{}, false
	}

	return time.Unix(secs, 0), true
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(raw string, now time.Time) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if secs < 0 {
			return 0, false
		}

		return time.Duration(secs) * time.Second, true
	}

	at, err := http.ParseTime(raw)
	if err != nil {
		return 0, false
	}

	wait := at.Sub(now)
	if wait < 0 {
		wait = 0
	}

	return wait, true
}

func mentionsRateLimit(body []byte) bool {
	return bytes.Contains(bytes.ToLower(body), []byte("rate limit"))
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}
