package archive

// Wire schema for HTTP Archive (HAR) 1.2 files. Property names are
// lower-camel-case per the HAR specification; optional fields carry
// omitempty so absent values are omitted rather than serialized as null.
//
// Callisto extends the schema in one place: postData.encoding marks a
// base64-encoded binary request body, mirroring the standard
// content.encoding field on responses. Readers that do not know the
// extension still see valid HAR.

// Archive is the root object of a HAR file.
type Archive struct {
	Log Log `json:"log"`
}

// Log is the top-level container: format version, the tool that wrote
// the file, and the recorded entries. Pages group entries into named
// interactions; entries reference their page through pageref.
type Log struct {
	Version string  `json:"version"`
	Creator Creator `json:"creator"`
	Pages   []Page  `json:"pages,omitempty"`
	Entries []Entry `json:"entries"`
}

// Creator identifies the producing tool.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Page names one interaction inside the archive. The page ID carries the
// exact interaction name; file names are sanitized and therefore lossy.
type Page struct {
	StartedDateTime string      `json:"startedDateTime"`
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	PageTimings     PageTimings `json:"pageTimings"`
}

// PageTimings is required by the schema; Callisto records no page-level
// timing so both values stay at -1 (unknown).
type PageTimings struct {
	OnContentLoad float64 `json:"onContentLoad"`
	OnLoad        float64 `json:"onLoad"`
}

// Entry is the archive projection of one captured Message.
type Entry struct {
	StartedDateTime string   `json:"startedDateTime"`
	Time            float64  `json:"time"`
	Request         Request  `json:"request"`
	Response        Response `json:"response"`
	Cache           Cache    `json:"cache"`
	Timings         Timings  `json:"timings"`
	Pageref         string   `json:"pageref,omitempty"`
}

// Request is the entry's request section. QueryString decomposes the
// URL's query into decoded pairs; the url field remains authoritative.
type Request struct {
	Method      string      `json:"method"`
	URL         string      `json:"url"`
	HTTPVersion string      `json:"httpVersion"`
	Cookies     []Cookie    `json:"cookies"`
	Headers     []NameValue `json:"headers"`
	QueryString []NameValue `json:"queryString"`
	PostData    *PostData   `json:"postData,omitempty"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// PostData carries the request body. Text is the lossless
// representation; Params adds the form-parameter breakdown when the body
// is URL-encoded form data. Encoding is the Callisto extension marking
// base64 text for binary bodies.
type PostData struct {
	MimeType string  `json:"mimeType"`
	Params   []Param `json:"params,omitempty"`
	Text     string  `json:"text,omitempty"`
	Encoding string  `json:"encoding,omitempty"`
}

// Param is one decomposed form parameter.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Response is the entry's response section.
type Response struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Cookies     []Cookie    `json:"cookies"`
	Headers     []NameValue `json:"headers"`
	Content     Content     `json:"content"`
	RedirectURL string      `json:"redirectURL"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// Content holds the response body. Size is the decoded body length in
// bytes; Encoding is "base64" when Text is not the literal body.
type Content struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// NameValue is the pair shape shared by headers and query strings.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Cookie is the decomposed form of one request or response cookie. The
// headers remain authoritative; cookies are derived metadata.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Expires  string `json:"expires,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
}

// Cache is required by the schema; Callisto records nothing in it.
type Cache struct{}

// Timings splits the round trip. Callisto attributes the full measured
// duration to wait; send and receive are not measured separately.
type Timings struct {
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}
