package interaction

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestHeadersFromHTTP verifies deterministic cross-name ordering and
// preserved per-name value order.
func TestHeadersFromHTTP(t *testing.T) {
	h := http.Header{}
	h.Add("X-Trace", "a")
	h.Add("Accept", "text/plain")
	h.Add("X-Trace", "b")

	got := HeadersFromHTTP(h)
	want := []Header{
		{Name: "Accept", Value: "text/plain"},
		{Name: "X-Trace", Value: "a"},
		{Name: "X-Trace", Value: "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HeadersFromHTTP mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadersFromHTTPEmpty(t *testing.T) {
	if got := HeadersFromHTTP(nil); got != nil {
		t.Errorf("HeadersFromHTTP(nil) = %v, want nil", got)
	}
	if got := HeadersFromHTTP(http.Header{}); got != nil {
		t.Errorf("HeadersFromHTTP(empty) = %v, want nil", got)
	}
}

// TestHeadersToHTTP verifies the inverse conversion keeps multi-values.
func TestHeadersToHTTP(t *testing.T) {
	hs := []Header{
		{Name: "x-trace", Value: "a"},
		{Name: "X-Trace", Value: "b"},
		{Name: "Accept", Value: "*/*"},
	}
	h := HeadersToHTTP(hs)

	if got := h.Values("X-Trace"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Values(X-Trace) = %v, want [a b]", got)
	}
	if got := h.Get("Accept"); got != "*/*" {
		t.Errorf("Get(Accept) = %q, want */*", got)
	}
}

func TestHeaderGetCaseInsensitive(t *testing.T) {
	hs := []Header{
		{Name: "Authorization", Value: "Bearer abc"},
		{Name: "Accept", Value: "*/*"},
	}

	if got := HeaderGet(hs, "authorization"); got != "Bearer abc" {
		t.Errorf("HeaderGet(authorization) = %q, want Bearer abc", got)
	}
	if got := HeaderGet(hs, "X-Missing"); got != "" {
		t.Errorf("HeaderGet(X-Missing) = %q, want empty", got)
	}
}

func TestHeaderValuesOrder(t *testing.T) {
	hs := []Header{
		{Name: "Set-Cookie", Value: "a=1"},
		{Name: "Accept", Value: "*/*"},
		{Name: "set-cookie", Value: "b=2"},
	}
	got := HeaderValues(hs, "Set-Cookie")
	want := []string{"a=1", "b=2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HeaderValues mismatch (-want +got):\n%s", diff)
	}
}

// TestHeaderSet verifies replacement collapses duplicates to one value
// at the first occurrence's position and appends when absent.
func TestHeaderSet(t *testing.T) {
	hs := []Header{
		{Name: "Cookie", Value: "session=1"},
		{Name: "Accept", Value: "*/*"},
		{Name: "cookie", Value: "session=2"},
	}

	got := HeaderSet(hs, "Cookie", "***")
	want := []Header{
		{Name: "Cookie", Value: "***"},
		{Name: "Accept", Value: "*/*"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HeaderSet replace mismatch (-want +got):\n%s", diff)
	}

	got = HeaderSet(nil, "X-New", "v")
	want = []Header{{Name: "X-New", Value: "v"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HeaderSet append mismatch (-want +got):\n%s", diff)
	}
}

// TestCloneIsDeep verifies mutating a clone leaves the original intact.
func TestCloneIsDeep(t *testing.T) {
	orig := New("checkout")
	orig.Append(Message{
		Request: Request{
			Method:  "POST",
			URL:     "https://api.example.com/charge",
			Headers: []Header{{Name: "Authorization", Value: "Bearer tok"}},
			Body:    []byte(`{"amount":100}`),
		},
		Response: Response{
			Status:     200,
			StatusText: "200 OK",
			Body:       []byte(`{"ok":true}`),
		},
	})

	clone := orig.Clone()
	clone.Messages[0].Request.Body[0] = 'X'
	clone.Messages[0].Request.Headers[0].Value = "***"
	clone.Messages[0].Response.Status = 500

	if orig.Messages[0].Request.Body[0] != '{' {
		t.Error("clone shares request body with original")
	}
	if orig.Messages[0].Request.Headers[0].Value != "Bearer tok" {
		t.Error("clone shares headers with original")
	}
	if orig.Messages[0].Response.Status != 200 {
		t.Error("clone shares response with original")
	}
}

func TestEmpty(t *testing.T) {
	in := New("empty")
	if !in.Empty() {
		t.Error("new interaction should be empty")
	}
	in.Append(Message{Request: Request{Method: "GET", URL: "https://example.com/"}})
	if in.Empty() {
		t.Error("interaction with one message should not be empty")
	}
}
