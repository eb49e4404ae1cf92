package recorder

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"mercator-hq/callisto/pkg/interaction"
	"mercator-hq/callisto/pkg/telemetry/tracing"
)

// Transport intercepts HTTP calls for one session. Behavior per call
// follows the session's resolved mode: forward, forward-and-record, or
// serve from the archive. Every returned response is normalized so the
// caller can re-read the body like a fresh network response.
//
// Concurrent calls through one Transport are safe. No lock is held
// across a network call; each call assembles its own Message.
type Transport struct {
	session *Session
	base    http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	mode, err := t.session.Mode(req.Context())
	if err != nil {
		return nil, err
	}

	switch mode {
	case Record:
		return t.record(req)
	case Replay:
		return t.replay(req)
	default:
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		return normalizeResponse(resp), nil
	}
}

// record forwards the call to the real transport, captures the exchange
// as a single-Message interaction named after the session, and stores
// it. Nothing is persisted for a call that failed or was cancelled.
func (t *Transport) record(req *http.Request) (*http.Response, error) {
	ctx, span := t.session.tracer.Start(req.Context(), tracing.SpanRecord)
	defer span.End()
	tracing.SetInteractionAttributes(span, t.session.name, Record.String())

	reqBody, fwd, err := bufferRequest(req)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	started := time.Now()
	resp, err := t.base.RoundTrip(fwd)
	elapsed := time.Since(started)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	in := interaction.New(t.session.name)
	in.Append(messageFromExchange(fwd, reqBody, resp, respBody, started, elapsed))

	storeCtx, storeSpan := t.session.tracer.Start(ctx, tracing.SpanStore)
	storeStart := time.Now()
	result, err := t.session.repo.Store(storeCtx, in)
	if t.session.metrics != nil {
		t.session.metrics.ObserveStoreDuration(time.Since(storeStart))
	}
	if err != nil {
		tracing.RecordError(storeSpan, err)
		storeSpan.End()
		tracing.RecordError(span, err)
		return nil, err
	}
	tracing.SetStoreAttributes(storeSpan, result.Persisted, result.Entries)
	storeSpan.End()

	if t.session.metrics != nil {
		t.session.metrics.RecordingCaptured()
	}
	t.session.logger.Debug("exchange recorded",
		"interaction", t.session.name,
		"method", fwd.Method,
		"url", fwd.URL.String(),
		"status", resp.StatusCode,
		"elapsed", elapsed,
		"persisted", result.Persisted,
	)

	resp.Body = newBodyReader(respBody)
	return normalizeResponse(resp), nil
}

// replay serves the live request from the session's archive, consuming
// the matched message. The live request body is never drained here;
// body-sensitive match rules take pre-buffered bytes.
func (t *Transport) replay(req *http.Request) (*http.Response, error) {
	_, span := t.session.tracer.Start(req.Context(), tracing.SpanReplay)
	defer span.End()
	tracing.SetInteractionAttributes(span, t.session.name, Replay.String())

	pool, err := t.session.replayPool(req.Context())
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	msg, err := t.session.matcher.Match(req, pool)
	if err != nil {
		if t.session.metrics != nil {
			t.session.metrics.MatchFailed()
		}
		tracing.RecordError(span, err)
		return nil, err
	}
	tracing.SetMatchAttributes(span, pool.Remaining())

	if t.session.metrics != nil {
		t.session.metrics.ReplayServed()
	}
	t.session.logger.Debug("exchange replayed",
		"interaction", t.session.name,
		"method", req.Method,
		"url", req.URL.String(),
		"status", msg.Response.Status,
		"remaining", pool.Remaining(),
	)

	return normalizeResponse(responseFromMessage(req, msg)), nil
}

// bufferRequest drains the request body and returns it along with a
// clone carrying a replayable copy. RoundTrippers may consume the
// incoming body but must not otherwise modify the request, so the
// original is left alone and the clone goes to the wire.
func bufferRequest(req *http.Request) ([]byte, *http.Request, error) {
	fwd := req.Clone(req.Context())

	if req.Body == nil || req.Body == http.NoBody {
		return nil, fwd, nil
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("reading request body: %w", err)
	}

	fwd.Body = newBodyReader(body)
	fwd.GetBody = func() (io.ReadCloser, error) {
		return newBodyReader(body), nil
	}
	fwd.ContentLength = int64(len(body))
	return body, fwd, nil
}

// messageFromExchange assembles the captured form of one completed
// call. Bodies arrive pre-buffered; header order is made deterministic
// by the interaction package.
func messageFromExchange(req *http.Request, reqBody []byte, resp *http.Response, respBody []byte, started time.Time, elapsed time.Duration) interaction.Message {
	var body []byte
	if len(respBody) > 0 {
		body = respBody
	}
	return interaction.Message{
		Request: interaction.Request{
			Method:  req.Method,
			URL:     req.URL.String(),
			Headers: interaction.HeadersFromHTTP(req.Header),
			Body:    reqBody,
		},
		Response: interaction.Response{
			Status:        resp.StatusCode,
			StatusText:    resp.Status,
			Headers:       interaction.HeadersFromHTTP(resp.Header),
			Body:          body,
			ContentLength: int64(len(respBody)),
		},
		Started: started,
		Elapsed: elapsed,
	}
}

// bodyReader is a seekable, re-readable response body. Close is a no-op
// so a replayed body can be read again after the client closes it.
type bodyReader struct {
	*bytes.Reader
}

// Close implements io.Closer.
func (bodyReader) Close() error { return nil }

// newBodyReader wraps buffered bytes as a response body.
func newBodyReader(b []byte) bodyReader {
	return bodyReader{bytes.NewReader(b)}
}
