package interaction

import (
	"net/http"
	"sort"
	"strings"
	"time"
)

// Interaction is a named, ordered sequence of Messages captured under one
// logical recording session. The name doubles as the archive key: the
// repository derives file paths and lock identity from it.
//
// Messages appear in call order and are never reordered. An Interaction
// with zero Messages is never persisted.
type Interaction struct {
	// Name identifies the interaction. It is chosen by the test or
	// session that owns the recording and maps to the on-disk archive.
	Name string

	// Messages holds the captured exchanges in the order the calls
	// were made.
	Messages []Message
}

// New creates an empty Interaction with the given name.
func New(name string) *Interaction {
	return &Interaction{Name: name}
}

// Append adds a Message to the end of the interaction.
func (in *Interaction) Append(msg Message) {
	in.Messages = append(in.Messages, msg)
}

// Empty reports whether the interaction holds no Messages.
func (in *Interaction) Empty() bool {
	return len(in.Messages) == 0
}

// Clone returns a deep copy. Messages are exclusively owned by their
// Interaction, so any hand-off across goroutines or stores copies first.
func (in *Interaction) Clone() *Interaction {
	out := &Interaction{Name: in.Name}
	if in.Messages != nil {
		out.Messages = make([]Message, len(in.Messages))
		for i := range in.Messages {
			out.Messages[i] = in.Messages[i].Clone()
		}
	}
	return out
}

// Message is one captured request/response pair together with its timing.
// A Message belongs to exactly one Interaction and is never shared.
type Message struct {
	Request  Request
	Response Response

	// Started is the wall-clock instant the outgoing call began.
	Started time.Time

	// Elapsed is the total round-trip duration of the call.
	Elapsed time.Duration
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	out.Request = m.Request.Clone()
	out.Response = m.Response.Clone()
	return out
}

// Request is the captured form of an outgoing HTTP request.
type Request struct {
	// Method is the HTTP method as sent, e.g. "GET".
	Method string

	// URL is the full request URL including scheme, host, path and
	// raw query.
	URL string

	// Headers preserves both per-name value order and a deterministic
	// cross-name order (sorted by canonical name at capture time).
	Headers []Header

	// Body holds the raw request body. nil means no body was sent.
	Body []byte
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	out := r
	out.Headers = cloneHeaders(r.Headers)
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// Response is the captured form of an HTTP response.
type Response struct {
	// Status is the numeric status code, e.g. 200.
	Status int

	// StatusText is the reason phrase, e.g. "200 OK". When the origin
	// sent none, it is synthesized from the status code.
	StatusText string

	Headers []Header

	// Body holds the raw response body. nil means the response had no
	// body.
	Body []byte

	// ContentLength is the declared body length. -1 means unknown;
	// replay recomputes it from the body.
	ContentLength int64
}

// Clone returns a deep copy of the response.
func (r Response) Clone() Response {
	out := r
	out.Headers = cloneHeaders(r.Headers)
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// Header is a single name/value pair. Headers are stored as a slice
// rather than a map so that repeated names and value order survive the
// round trip through the archive.
type Header struct {
	Name  string
	Value string
}

// Headers is a convenience alias for header slices captured on requests
// and responses.
type Headers = []Header

func cloneHeaders(hs []Header) []Header {
	if hs == nil {
		return nil
	}
	return append([]Header(nil), hs...)
}

// HeadersFromHTTP converts an http.Header into the captured form. Names
// are emitted in sorted order so captures are deterministic (http.Header
// is a map with no stable cross-name order); the value order under each
// name is preserved as the transport saw it.
func HeadersFromHTTP(h http.Header) []Header {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Header
	for _, name := range names {
		for _, v := range h[name] {
			out = append(out, Header{Name: name, Value: v})
		}
	}
	return out
}

// HeadersToHTTP reassembles an http.Header from the captured form,
// preserving per-name value order.
func HeadersToHTTP(hs []Header) http.Header {
	out := make(http.Header, len(hs))
	for _, h := range hs {
		out[http.CanonicalHeaderKey(h.Name)] = append(out[http.CanonicalHeaderKey(h.Name)], h.Value)
	}
	return out
}

// HeaderGet returns the first value for name, matched case-insensitively.
// It returns "" when the header is absent.
func HeaderGet(hs []Header, name string) string {
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// HeaderValues returns every value for name in capture order, matched
// case-insensitively. It returns nil when the header is absent.
func HeaderValues(hs []Header, name string) []string {
	var out []string
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			out = append(out, h.Value)
		}
	}
	return out
}

// HeaderSet replaces every value for name (case-insensitive) with the
// single given value, preserving the position of the first occurrence.
// When the header is absent it is appended.
func HeaderSet(hs []Header, name, value string) []Header {
	out := hs[:0:0]
	replaced := false
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			if !replaced {
				out = append(out, Header{Name: h.Name, Value: value})
				replaced = true
			}
			continue
		}
		out = append(out, h)
	}
	if !replaced {
		out = append(out, Header{Name: name, Value: value})
	}
	return out
}
