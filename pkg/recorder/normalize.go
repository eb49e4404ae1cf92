package recorder

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"mercator-hq/callisto/pkg/interaction"
)

// normalizeResponse makes a buffered response indistinguishable from a
// fresh network response: when the body is seekable its true length is
// recomputed and attached as ContentLength and as the Content-Length
// header, and the read position is reset to the start. Responses with
// streaming bodies pass through untouched.
func normalizeResponse(resp *http.Response) *http.Response {
	if resp.Body == nil {
		return resp
	}
	seeker, ok := resp.Body.(io.Seeker)
	if !ok {
		return resp
	}

	size, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return resp
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return resp
	}

	resp.ContentLength = size
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	resp.Header.Set("Content-Length", strconv.FormatInt(size, 10))
	return resp
}

// responseFromMessage synthesizes an http.Response from a recorded
// message. A missing reason phrase is rebuilt from the status code so
// clients reading resp.Status always see the "200 OK" form.
func responseFromMessage(req *http.Request, msg interaction.Message) *http.Response {
	statusText := msg.Response.StatusText
	if statusText == "" {
		statusText = fmt.Sprintf("%d %s", msg.Response.Status, http.StatusText(msg.Response.Status))
	}

	return &http.Response{
		Status:        statusText,
		StatusCode:    msg.Response.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        interaction.HeadersToHTTP(msg.Response.Headers),
		Body:          newBodyReader(msg.Response.Body),
		ContentLength: msg.Response.ContentLength,
		Request:       req,
	}
}
