package scrub

import (
	"regexp"
	"strings"

	"mercator-hq/callisto/pkg/interaction"
)

// Sentinel is the fixed replacement for masked header values.
const Sentinel = "***"

// MaskByte is the character body masking substitutes for each byte of a
// sensitive value, preserving the value's length.
const MaskByte = '*'

// HeaderRule masks every value of the named header. The name is matched
// case-insensitively; each matching value is replaced entirely with the
// replacement, so header count and order stay intact.
type HeaderRule struct {
	// Name is the header to mask, e.g. "Authorization".
	Name string

	// Replacement substitutes each matching value. Empty means
	// Sentinel.
	Replacement string
}

// BodyRule masks a sensitive fragment inside request and response
// bodies. The pattern's last capture group marks the secret; each of its
// bytes is replaced with the mask byte so the body length is unchanged.
// A pattern without capture groups masks the whole match.
type BodyRule struct {
	Pattern *regexp.Regexp
}

// Config enumerates the masking rules.
type Config struct {
	// HeaderRules lists the headers to mask.
	HeaderRules []HeaderRule

	// BodyRules lists the body patterns to mask.
	BodyRules []BodyRule
}

// DefaultConfig returns the stock rule set: credential-bearing headers
// and password/token/api-key values in form, query, and JSON bodies.
func DefaultConfig() *Config {
	return &Config{
		HeaderRules: []HeaderRule{
			{Name: "Authorization"},
			{Name: "Proxy-Authorization"},
			{Name: "Cookie"},
			{Name: "Set-Cookie"},
			{Name: "X-Api-Key"},
		},
		BodyRules: []BodyRule{
			{Pattern: regexp.MustCompile(`(?i)(password=)([^&\s"']+)`)},
			{Pattern: regexp.MustCompile(`(?i)("password"\s*:\s*")([^"]*)`)},
			{Pattern: regexp.MustCompile(`(?i)((?:access_|refresh_)?token=)([^&\s"']+)`)},
			{Pattern: regexp.MustCompile(`(?i)("(?:access_|refresh_)?token"\s*:\s*")([^"]*)`)},
			{Pattern: regexp.MustCompile(`(?i)(api[_-]?key=)([^&\s"']+)`)},
			{Pattern: regexp.MustCompile(`(?i)("api[_-]?key"\s*:\s*")([^"]*)`)},
			{Pattern: regexp.MustCompile(`(?i)("client_secret"\s*:\s*")([^"]*)`)},
		},
	}
}

// Scrubber redacts sensitive data from interactions before they are
// persisted. Scrubbing is idempotent and never fails: malformed or
// absent bodies are left alone, and a field no rule matches is a no-op.
type Scrubber struct {
	headers []HeaderRule
	bodies  []BodyRule
}

// NewScrubber creates a Scrubber. A nil config uses DefaultConfig.
func NewScrubber(cfg *Config) *Scrubber {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	headers := make([]HeaderRule, len(cfg.HeaderRules))
	copy(headers, cfg.HeaderRules)
	for i := range headers {
		if headers[i].Replacement == "" {
			headers[i].Replacement = Sentinel
		}
	}
	bodies := make([]BodyRule, 0, len(cfg.BodyRules))
	for _, r := range cfg.BodyRules {
		if r.Pattern != nil {
			bodies = append(bodies, r)
		}
	}
	return &Scrubber{headers: headers, bodies: bodies}
}

// Scrub returns a redacted deep copy of the interaction. The input is
// never modified. Scrubbing an already-scrubbed interaction returns an
// identical result.
func (s *Scrubber) Scrub(in *interaction.Interaction) *interaction.Interaction {
	out := in.Clone()
	for i := range out.Messages {
		msg := &out.Messages[i]
		msg.Request.Headers = s.scrubHeaders(msg.Request.Headers)
		msg.Response.Headers = s.scrubHeaders(msg.Response.Headers)
		msg.Request.Body = s.scrubBody(msg.Request.Body)
		msg.Response.Body = s.scrubBody(msg.Response.Body)
	}
	return out
}

// ScrubString applies the body rules to a standalone string. Log sinks
// use it to redact trace lines the same way archives are redacted.
func (s *Scrubber) ScrubString(v string) string {
	return string(s.scrubBody([]byte(v)))
}

func (s *Scrubber) scrubHeaders(hs []interaction.Header) []interaction.Header {
	if len(hs) == 0 {
		return hs
	}
	for i, h := range hs {
		for _, rule := range s.headers {
			if strings.EqualFold(h.Name, rule.Name) {
				hs[i].Value = rule.Replacement
				break
			}
		}
	}
	return hs
}

func (s *Scrubber) scrubBody(body []byte) []byte {
	if len(body) == 0 {
		return body
	}
	for _, rule := range s.bodies {
		body = maskPattern(body, rule.Pattern)
	}
	return body
}

// maskPattern overwrites the secret bytes of every match in place. The
// secret is the pattern's last capture group when present and matched,
// otherwise the full match.
func maskPattern(body []byte, re *regexp.Regexp) []byte {
	matches := re.FindAllSubmatchIndex(body, -1)
	if matches == nil {
		return body
	}
	group := re.NumSubexp()
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		if group > 0 && loc[2*group] >= 0 {
			start, end = loc[2*group], loc[2*group+1]
		}
		for i := start; i < end; i++ {
			body[i] = MaskByte
		}
	}
	return body
}
