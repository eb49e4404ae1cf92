package match

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"mercator-hq/callisto/pkg/interaction"
)

func recorded(method, url string, body string) interaction.Message {
	return interaction.Message{
		Request: interaction.Request{Method: method, URL: url},
		Response: interaction.Response{
			Status:     200,
			StatusText: "200 OK",
			Body:       []byte(body),
		},
	}
}

func liveRequest(t *testing.T, method, url string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, nil)
	return req
}

func poolOf(msgs ...interaction.Message) *Pool {
	in := interaction.New("test")
	for _, m := range msgs {
		in.Append(m)
	}
	return NewPool(in)
}

// TestMatchDefaultRules verifies the canonical method+URL matching.
func TestMatchDefaultRules(t *testing.T) {
	m := NewMatcher()
	pool := poolOf(
		recorded("GET", "https://api.example.com/users?page=1", "users"),
		recorded("POST", "https://api.example.com/users", "created"),
	)

	msg, err := m.Match(liveRequest(t, "POST", "https://api.example.com/users"), pool)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if string(msg.Response.Body) != "created" {
		t.Errorf("matched wrong message: body = %q", msg.Response.Body)
	}
}

// TestMatchMethodCaseInsensitive verifies method comparison folds case.
func TestMatchMethodCaseInsensitive(t *testing.T) {
	m := NewMatcher()
	pool := poolOf(recorded("get", "https://example.com/", "ok"))

	if _, err := m.Match(liveRequest(t, "GET", "https://example.com/"), pool); err != nil {
		t.Fatalf("Match failed: %v", err)
	}
}

// TestMatchURLSemantics verifies scheme/host fold case, path does not,
// and query order is irrelevant.
func TestMatchURLSemantics(t *testing.T) {
	tests := []struct {
		name     string
		recorded string
		live     string
		want     bool
	}{
		{"host case", "https://API.Example.com/x", "https://api.example.com/x", true},
		{"scheme case", "HTTPS://example.com/x", "https://example.com/x", true},
		{"path case differs", "https://example.com/Users", "https://example.com/users", false},
		{"query order", "https://example.com/x?a=1&b=2", "https://example.com/x?b=2&a=1", true},
		{"query multiset", "https://example.com/x?a=1&a=2", "https://example.com/x?a=2&a=1", true},
		{"query value differs", "https://example.com/x?a=1", "https://example.com/x?a=2", false},
		{"query missing", "https://example.com/x?a=1", "https://example.com/x", false},
		{"query encoded equivalence", "https://example.com/x?q=hello%20world", "https://example.com/x?q=hello+world", true},
		{"different host", "https://one.example.com/x", "https://two.example.com/x", false},
	}

	m := NewMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := poolOf(recorded("GET", tt.recorded, "ok"))
			_, err := m.Match(liveRequest(t, "GET", tt.live), pool)
			if got := err == nil; got != tt.want {
				t.Errorf("match = %v (err=%v), want %v", got, err, tt.want)
			}
		})
	}
}

// TestMatchOnceExhaustion verifies match-once consumption: two recorded
// messages for the same request satisfy exactly two live calls and the
// third fails.
func TestMatchOnceExhaustion(t *testing.T) {
	m := NewMatcher()
	pool := poolOf(
		recorded("GET", "https://example.com/x", "first"),
		recorded("GET", "https://example.com/x", "second"),
	)

	first, err := m.Match(liveRequest(t, "GET", "https://example.com/x"), pool)
	if err != nil {
		t.Fatalf("first Match failed: %v", err)
	}
	if string(first.Response.Body) != "first" {
		t.Errorf("first match body = %q, want first (recording order)", first.Response.Body)
	}

	second, err := m.Match(liveRequest(t, "GET", "https://example.com/x"), pool)
	if err != nil {
		t.Fatalf("second Match failed: %v", err)
	}
	if string(second.Response.Body) != "second" {
		t.Errorf("second match body = %q, want second", second.Response.Body)
	}

	_, err = m.Match(liveRequest(t, "GET", "https://example.com/x"), pool)
	var noMatch *NoMatchingInteractionError
	if !errors.As(err, &noMatch) {
		t.Fatalf("third Match error = %v, want NoMatchingInteractionError", err)
	}
	if noMatch.Method != "GET" || noMatch.URL != "https://example.com/x" {
		t.Errorf("error context = %s %s, want the attempted call", noMatch.Method, noMatch.URL)
	}
	if pool.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", pool.Remaining())
	}
}

// TestHeaderRuleOptIn verifies header comparison only applies when the
// rule is configured, and compares value sets order-insensitively.
func TestHeaderRuleOptIn(t *testing.T) {
	rec := recorded("GET", "https://example.com/x", "ok")
	rec.Request.Headers = []interaction.Header{
		{Name: "Accept", Value: "application/json"},
		{Name: "Accept", Value: "text/plain"},
	}

	// Default rules ignore headers entirely.
	def := NewMatcher()
	live := liveRequest(t, "GET", "https://example.com/x")
	live.Header.Set("Accept", "application/xml")
	if _, err := def.Match(live, poolOf(rec)); err != nil {
		t.Fatalf("default rules should ignore headers, got %v", err)
	}

	// With HeaderRule, the value multiset must coincide.
	withHeader := NewMatcher(MethodRule(), URLRule(), HeaderRule("Accept"))

	live = liveRequest(t, "GET", "https://example.com/x")
	live.Header.Add("Accept", "text/plain")
	live.Header.Add("Accept", "application/json")
	if _, err := withHeader.Match(live, poolOf(rec)); err != nil {
		t.Errorf("order-insensitive header values should match, got %v", err)
	}

	live = liveRequest(t, "GET", "https://example.com/x")
	live.Header.Add("Accept", "application/json")
	if _, err := withHeader.Match(live, poolOf(rec)); err == nil {
		t.Error("missing header value should not match under HeaderRule")
	}
}

// TestBodyRule verifies byte-exact body comparison.
func TestBodyRule(t *testing.T) {
	rec := recorded("POST", "https://example.com/x", "ok")
	rec.Request.Body = []byte(`{"a":1}`)

	m := NewMatcher(MethodRule(), URLRule(), BodyRule([]byte(`{"a":1}`)))
	if _, err := m.Match(liveRequest(t, "POST", "https://example.com/x"), poolOf(rec)); err != nil {
		t.Errorf("equal bodies should match, got %v", err)
	}

	m = NewMatcher(MethodRule(), URLRule(), BodyRule([]byte(`{"a":2}`)))
	if _, err := m.Match(liveRequest(t, "POST", "https://example.com/x"), poolOf(rec)); err == nil {
		t.Error("different bodies should not match under BodyRule")
	}
}

// TestMatchReturnsClone verifies consuming callers cannot mutate the
// pool's recordings.
func TestMatchReturnsClone(t *testing.T) {
	m := NewMatcher()
	rec := recorded("GET", "https://example.com/x", "original")
	pool := poolOf(rec, rec)

	first, err := m.Match(liveRequest(t, "GET", "https://example.com/x"), pool)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	first.Response.Body[0] = 'X'

	second, err := m.Match(liveRequest(t, "GET", "https://example.com/x"), pool)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if string(second.Response.Body) != "original" {
		t.Error("mutating a matched message leaked into the pool")
	}
}

// TestConcurrentMatchConsumption verifies exactly N of 2N concurrent
// identical calls succeed against N recordings.
func TestConcurrentMatchConsumption(t *testing.T) {
	const n = 8
	m := NewMatcher()

	msgs := make([]interaction.Message, n)
	for i := range msgs {
		msgs[i] = recorded("GET", "https://example.com/x", "ok")
	}
	pool := poolOf(msgs...)

	var wg sync.WaitGroup
	results := make(chan error, 2*n)
	for i := 0; i < 2*n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest("GET", "https://example.com/x", nil)
			_, err := m.Match(req, pool)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			failed++
		}
	}
	if succeeded != n || failed != n {
		t.Errorf("succeeded=%d failed=%d, want %d each", succeeded, failed, n)
	}
}
