// Package testorigin provides a configurable HTTP origin for recorder
// tests. Tests register per-path responses, optionally with delays, and
// assert on how often the origin was actually contacted — the core
// check for replay tests, where the count must stay at zero.
package testorigin

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Origin is a test HTTP server with configurable per-path responses.
type Origin struct {
	server    *httptest.Server
	responses map[string]Response

	mu       sync.Mutex
	requests []ReceivedRequest
}

// Response defines what the origin returns for one path.
type Response struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// ReceivedRequest is one request the origin actually served.
type ReceivedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
	Header http.Header
}

// New starts an origin with no configured responses. Unknown paths
// return 404.
func New() *Origin {
	o := &Origin{
		responses: make(map[string]Response),
	}
	o.server = httptest.NewServer(http.HandlerFunc(o.handle))
	return o
}

// URL returns the origin's base URL.
func (o *Origin) URL() string {
	return o.server.URL
}

// Close shuts the origin down.
func (o *Origin) Close() {
	o.server.Close()
}

// SetResponse configures the response for a path.
func (o *Origin) SetResponse(path string, resp Response) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.responses[path] = resp
}

// RequestCount reports how many requests the origin has served.
func (o *Origin) RequestCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.requests)
}

// Requests returns a copy of every request served so far, in order.
func (o *Origin) Requests() []ReceivedRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ReceivedRequest, len(o.requests))
	copy(out, o.requests)
	return out
}

func (o *Origin) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	o.mu.Lock()
	o.requests = append(o.requests, ReceivedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   body,
		Header: r.Header.Clone(),
	})
	resp, ok := o.responses[r.URL.Path]
	o.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}
