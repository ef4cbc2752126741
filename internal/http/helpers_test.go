package http_test

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
)

// fakeClock advances only when Sleep is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.now = c.now.Add(d)
	}

	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]time.Duration(nil), c.sleeps...)
}

type step func(req *ghapi.OutboundRequest) (*ghapi.Response, error)

// scriptedTransport replays steps in order, repeating the last one.
type scriptedTransport struct {
	clock    *fakeClock
	steps    []step
	requests []*ghapi.OutboundRequest
	sentAt   []time.Time
}

func newScriptedTransport(clock *fakeClock, steps ...step) *scriptedTransport {
	return &scriptedTransport{clock: clock, steps: steps}
}

func (t *scriptedTransport) RoundTrip(ctx context.Context, req *ghapi.OutboundRequest) (*ghapi.Response, error) {
	t.requests = append(t.requests, req)
	t.sentAt = append(t.sentAt, t.clock.Now())

	i := min(len(t.requests)-1, len(t.steps)-1)

	return t.steps[i](req)
}

func (t *scriptedTransport) Calls() int {
	return len(t.requests)
}

// respond returns a step answering with status, body and header pairs.
func respond(status int, body string, headerPairs ...string) step {
	return func(req *ghapi.OutboundRequest) (*ghapi.Response, error) {
		header := make(http.Header)
		for i := 0; i+1 < len(headerPairs); i += 2 {
			header.Set(headerPairs[i], headerPairs[i+1])
		}

		return &ghapi.Response{
			StatusCode: status,
			Status:     strconv.Itoa(status) + " " + http.StatusText(status),
			Header:     header,
			Body:       []byte(body),
			URL:        req.URL,
		}, nil
	}
}

func failWith(err error) step {
	return func(req *ghapi.OutboundRequest) (*ghapi.Response, error) {
		return nil, err
	}
}

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) add(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.add("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.add("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.add("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.add("error", msg, fields) }

// engineMessages returns logged messages, skipping transport diagnostics.
func (l *MockLogger) engineMessages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var msgs []string

	for _, entry := range l.logs {
		if fields, ok := entry["fields"].(map[string]interface{}); ok && fields["component"] == "transport" {
			continue
		}

		msgs = append(msgs, entry["msg"].(string))
	}

	return msgs
}
