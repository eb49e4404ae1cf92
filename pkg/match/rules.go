package match

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"mercator-hq/callisto/pkg/interaction"
)

// Rule decides whether one recorded message is compatible with a live
// request. Rules compose under logical AND: a candidate matches only if
// every configured rule accepts it.
type Rule interface {
	// Matches reports whether the recorded message satisfies the live
	// request under this rule.
	Matches(live *http.Request, recorded interaction.Message) bool
}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc func(live *http.Request, recorded interaction.Message) bool

// Matches calls the function.
func (f RuleFunc) Matches(live *http.Request, recorded interaction.Message) bool {
	return f(live, recorded)
}

// MethodRule matches on HTTP method, case-insensitively.
func MethodRule() Rule {
	return RuleFunc(func(live *http.Request, recorded interaction.Message) bool {
		return strings.EqualFold(live.Method, recorded.Request.Method)
	})
}

// URLRule matches on the full URL: scheme and host case-insensitively,
// path exactly, and the query as a decoded parameter multiset. Parameter
// order is irrelevant; the values under each name must coincide as
// multisets.
func URLRule() Rule {
	return RuleFunc(func(live *http.Request, recorded interaction.Message) bool {
		rec, err := url.Parse(recorded.Request.URL)
		if err != nil {
			return false
		}
		return urlsEqual(live.URL, rec)
	})
}

// HeaderRule matches when the live request carries the same value set
// for the named header as the recording. Comparison is order-insensitive
// over values; the name is matched case-insensitively. Header matching
// is opt-in: the default rule set ignores headers entirely, since
// transports and middlewares commonly inject per-run headers (dates,
// trace IDs) that would make replays brittle.
func HeaderRule(name string) Rule {
	return RuleFunc(func(live *http.Request, recorded interaction.Message) bool {
		liveValues := append([]string(nil), live.Header.Values(name)...)
		recValues := append([]string(nil), interaction.HeaderValues(recorded.Request.Headers, name)...)
		if len(liveValues) != len(recValues) {
			return false
		}
		sort.Strings(liveValues)
		sort.Strings(recValues)
		for i := range liveValues {
			if liveValues[i] != recValues[i] {
				return false
			}
		}
		return true
	})
}

// BodyRule matches when the live request body equals the recorded one
// byte for byte. The live body must already be buffered by the caller;
// the rule never reads request streams.
func BodyRule(liveBody []byte) Rule {
	return RuleFunc(func(live *http.Request, recorded interaction.Message) bool {
		return string(liveBody) == string(recorded.Request.Body)
	})
}

// DefaultRules returns the canonical rule set: method plus URL.
func DefaultRules() []Rule {
	return []Rule{MethodRule(), URLRule()}
}

func urlsEqual(live, recorded *url.URL) bool {
	if !strings.EqualFold(live.Scheme, recorded.Scheme) {
		return false
	}
	if !strings.EqualFold(live.Host, recorded.Host) {
		return false
	}
	if live.Path != recorded.Path {
		return false
	}
	return queriesEqual(live.Query(), recorded.Query())
}

// queriesEqual compares decoded query parameters order-insensitively:
// both sides must have the same names, and under each name the same
// multiset of values.
func queriesEqual(a, b url.Values) bool {
	if len(a) != len(b) {
		return false
	}
	for name, avs := range a {
		bvs, ok := b[name]
		if !ok || len(avs) != len(bvs) {
			return false
		}
		as := append([]string(nil), avs...)
		bs := append([]string(nil), bvs...)
		sort.Strings(as)
		sort.Strings(bs)
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
	}
	return true
}
