package archive

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"mercator-hq/callisto/pkg/interaction"
)

const (
	// Version is the HAR format version Callisto writes and the only
	// version it accepts when reading.
	Version = "1.2"

	// CreatorName identifies Callisto in the archive's creator block.
	CreatorName = "callisto"

	// CreatorVersion tracks the writer version for forward-compat
	// debugging of old archives.
	CreatorVersion = "0.1.0"

	// base64Encoding is the content/postData encoding marker for
	// binary bodies.
	base64Encoding = "base64"
)

// New returns an empty archive carrying the standard log header.
func New() *Archive {
	return &Archive{
		Log: Log{
			Version: Version,
			Creator: Creator{Name: CreatorName, Version: CreatorVersion},
			Entries: []Entry{},
		},
	}
}

// Build projects one interaction into a fresh archive. Every Message
// becomes exactly one Entry; the interaction name is carried as a page
// so it survives file-name sanitization.
func Build(in *interaction.Interaction) *Archive {
	a := New()
	a.AddInteraction(in)
	return a
}

// AddInteraction appends the interaction's messages as entries
// referencing a page named after the interaction. The page is created
// when absent, so aggregate archives can grow one interaction at a time.
func (a *Archive) AddInteraction(in *interaction.Interaction) {
	if !a.hasPage(in.Name) {
		started := ""
		if len(in.Messages) > 0 {
			started = formatTime(in.Messages[0].Started)
		}
		a.Log.Pages = append(a.Log.Pages, Page{
			StartedDateTime: started,
			ID:              in.Name,
			Title:           in.Name,
			PageTimings:     PageTimings{OnContentLoad: -1, OnLoad: -1},
		})
	}
	for _, msg := range in.Messages {
		a.Log.Entries = append(a.Log.Entries, EntryFromMessage(msg, in.Name))
	}
}

func (a *Archive) hasPage(id string) bool {
	for _, p := range a.Log.Pages {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Interactions is the inverse projection: it groups entries by pageref
// into interactions, ordered by first appearance. Entries without a
// pageref belong to the archive's implicit sole interaction, named "".
// It fails with MalformedArchiveError when an entry cannot be projected
// back to a Message.
func (a *Archive) Interactions() ([]*interaction.Interaction, error) {
	var order []string
	byName := make(map[string]*interaction.Interaction)

	for _, e := range a.Log.Entries {
		msg, err := MessageFromEntry(e)
		if err != nil {
			var malformed *MalformedArchiveError
			if !errors.As(err, &malformed) {
				err = NewMalformedArchiveError("invalid entry", err)
			}
			return nil, err
		}
		in, ok := byName[e.Pageref]
		if !ok {
			in = interaction.New(e.Pageref)
			byName[e.Pageref] = in
			order = append(order, e.Pageref)
		}
		in.Append(msg)
	}

	out := make([]*interaction.Interaction, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

// Interaction returns the named interaction from the archive, or nil
// when absent. A single-interaction archive whose entries carry no
// pageref matches any requested name.
func (a *Archive) Interaction(name string) (*interaction.Interaction, error) {
	ins, err := a.Interactions()
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		if in.Name == name {
			return in, nil
		}
	}
	if len(ins) == 1 && ins[0].Name == "" {
		in := ins[0]
		in.Name = name
		return in, nil
	}
	return nil, nil
}

// Encode serializes the archive as compact JSON. The output always ends
// with the entries array as the final property, which is what the splice
// append path relies on.
func Encode(a *Archive) ([]byte, error) {
	if a.Log.Entries == nil {
		a.Log.Entries = []Entry{}
	}
	return json.Marshal(a)
}

// Decode parses and validates archive bytes. It fails with
// MalformedArchiveError on invalid JSON or an unrecognized version.
func Decode(data []byte) (*Archive, error) {
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, NewMalformedArchiveError("invalid JSON", err)
	}
	if a.Log.Version != Version {
		return nil, &MalformedArchiveError{
			Reason:  "unsupported format version",
			Version: a.Log.Version,
		}
	}
	return &a, nil
}

// EntryFromMessage projects one captured Message into the wire schema.
// The projection is deterministic: identical messages produce identical
// entries.
func EntryFromMessage(msg interaction.Message, pageref string) Entry {
	req := msg.Request
	resp := msg.Response

	entry := Entry{
		StartedDateTime: formatTime(msg.Started),
		Time:            durationMillis(msg.Elapsed),
		Request: Request{
			Method:      req.Method,
			URL:         req.URL,
			HTTPVersion: "HTTP/1.1",
			Cookies:     requestCookies(req.Headers),
			Headers:     nameValues(req.Headers),
			QueryString: queryPairs(req.URL),
			HeadersSize: -1,
			BodySize:    len(req.Body),
		},
		Response: Response{
			Status:      resp.Status,
			StatusText:  resp.StatusText,
			HTTPVersion: "HTTP/1.1",
			Cookies:     responseCookies(resp.Headers),
			Headers:     nameValues(resp.Headers),
			Content:     contentFromBody(resp.Body, interaction.HeaderGet(resp.Headers, "Content-Type")),
			RedirectURL: redirectURL(resp),
			HeadersSize: -1,
			BodySize:    len(resp.Body),
		},
		Timings: Timings{Send: 0, Wait: durationMillis(msg.Elapsed), Receive: 0},
		Pageref: pageref,
	}

	if len(req.Body) > 0 {
		entry.Request.PostData = postDataFromBody(req.Body, interaction.HeaderGet(req.Headers, "Content-Type"))
	}
	return entry
}

// MessageFromEntry is the inverse projection. It fails with
// MalformedArchiveError when required fields are missing or malformed.
func MessageFromEntry(e Entry) (interaction.Message, error) {
	var msg interaction.Message

	if e.Request.Method == "" {
		return msg, NewMalformedArchiveError("entry missing request method", nil)
	}
	if e.Request.URL == "" {
		return msg, NewMalformedArchiveError("entry missing request url", nil)
	}
	if e.Response.Status == 0 {
		return msg, NewMalformedArchiveError("entry missing response status", nil)
	}

	started, err := parseTime(e.StartedDateTime)
	if err != nil {
		return msg, NewMalformedArchiveError("entry has invalid startedDateTime", err)
	}

	reqBody, err := bodyFromPostData(e.Request.PostData)
	if err != nil {
		return msg, err
	}
	respBody, err := bodyFromContent(e.Response.Content)
	if err != nil {
		return msg, err
	}

	msg = interaction.Message{
		Request: interaction.Request{
			Method:  e.Request.Method,
			URL:     e.Request.URL,
			Headers: headers(e.Request.Headers),
			Body:    reqBody,
		},
		Response: interaction.Response{
			Status:        e.Response.Status,
			StatusText:    e.Response.StatusText,
			Headers:       headers(e.Response.Headers),
			Body:          respBody,
			ContentLength: int64(len(respBody)),
		},
		Started: started,
		Elapsed: millisDuration(e.Time),
	}
	return msg, nil
}

func nameValues(hs []interaction.Header) []NameValue {
	out := make([]NameValue, 0, len(hs))
	for _, h := range hs {
		out = append(out, NameValue{Name: h.Name, Value: h.Value})
	}
	return out
}

func headers(nvs []NameValue) []interaction.Header {
	if len(nvs) == 0 {
		return nil
	}
	out := make([]interaction.Header, 0, len(nvs))
	for _, nv := range nvs {
		out = append(out, interaction.Header{Name: nv.Name, Value: nv.Value})
	}
	return out
}

// queryPairs decomposes the URL's raw query into decoded pairs in
// encounter order. Malformed pairs are skipped rather than failing the
// projection; the url field stays authoritative.
func queryPairs(rawURL string) []NameValue {
	out := []NameValue{}
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return out
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		dn, err := url.QueryUnescape(name)
		if err != nil {
			continue
		}
		dv, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		out = append(out, NameValue{Name: dn, Value: dv})
	}
	return out
}

// requestCookies parses the Cookie header into decomposed form. The
// header remains authoritative; parse failures simply yield no cookies.
func requestCookies(hs []interaction.Header) []Cookie {
	out := []Cookie{}
	r := http.Request{Header: interaction.HeadersToHTTP(hs)}
	for _, c := range r.Cookies() {
		out = append(out, Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// responseCookies parses Set-Cookie headers into decomposed form.
func responseCookies(hs []interaction.Header) []Cookie {
	out := []Cookie{}
	r := http.Response{Header: interaction.HeadersToHTTP(hs)}
	for _, c := range r.Cookies() {
		ck := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if !c.Expires.IsZero() {
			ck.Expires = formatTime(c.Expires)
		}
		out = append(out, ck)
	}
	return out
}

func redirectURL(resp interaction.Response) string {
	if resp.Status >= 300 && resp.Status < 400 {
		return interaction.HeaderGet(resp.Headers, "Location")
	}
	return ""
}

// postDataFromBody represents a request body losslessly: valid UTF-8
// text as-is, anything else base64 with the encoding extension set. Form
// bodies additionally get the parameter breakdown.
func postDataFromBody(body []byte, mimeType string) *PostData {
	pd := &PostData{MimeType: mimeType}
	if utf8.Valid(body) {
		pd.Text = string(body)
		if strings.HasPrefix(mimeType, "application/x-www-form-urlencoded") {
			pd.Params = formParams(string(body))
		}
	} else {
		pd.Text = base64.StdEncoding.EncodeToString(body)
		pd.Encoding = base64Encoding
	}
	return pd
}

func formParams(body string) []Param {
	var out []Param
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		dn, err := url.QueryUnescape(name)
		if err != nil {
			continue
		}
		dv, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		out = append(out, Param{Name: dn, Value: dv})
	}
	return out
}

func bodyFromPostData(pd *PostData) ([]byte, error) {
	if pd == nil {
		return nil, nil
	}
	if pd.Encoding == base64Encoding {
		body, err := base64.StdEncoding.DecodeString(pd.Text)
		if err != nil {
			return nil, NewMalformedArchiveError("invalid base64 postData text", err)
		}
		return body, nil
	}
	if pd.Text == "" && len(pd.Params) > 0 {
		// Foreign archives may carry params without text; rebuild the
		// form encoding from the breakdown.
		values := url.Values{}
		for _, p := range pd.Params {
			values.Add(p.Name, p.Value)
		}
		return []byte(values.Encode()), nil
	}
	if pd.Text == "" {
		return nil, nil
	}
	return []byte(pd.Text), nil
}

func contentFromBody(body []byte, mimeType string) Content {
	c := Content{Size: len(body), MimeType: mimeType}
	if len(body) == 0 {
		return c
	}
	if utf8.Valid(body) {
		c.Text = string(body)
	} else {
		c.Text = base64.StdEncoding.EncodeToString(body)
		c.Encoding = base64Encoding
	}
	return c
}

func bodyFromContent(c Content) ([]byte, error) {
	if c.Text == "" {
		return nil, nil
	}
	if c.Encoding == base64Encoding {
		body, err := base64.StdEncoding.DecodeString(c.Text)
		if err != nil {
			return nil, NewMalformedArchiveError("invalid base64 content text", err)
		}
		return body, nil
	}
	return []byte(c.Text), nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func millisDuration(ms float64) time.Duration {
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}
