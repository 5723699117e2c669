package iternal

import (
	"net/url"
	"regexp"
	"strings"
)

// NormalizeURL resolves raw against base and drops query, fragment and the
// trailing slash. raw is returned unchanged if either does not parse.
func NormalizeURL(base, raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return raw
		}
		u = b.ResolveReference(u)
	}
	u.RawQuery = ""
	u.Fragment = ""
	clean := strings.TrimSuffix(u.String(), "/")
	return clean
}

// SearchQueryPattern matches a URL whose query has param set to keyword the
// way an HTML form submits it: spaces as '+', surrounding spaces kept.
func SearchQueryPattern(param, keyword string) *regexp.Regexp {
	encoded := url.QueryEscape(keyword)
	return regexp.MustCompile(`[?&]` + regexp.QuoteMeta(param+"="+encoded) + `(&|#|$)`)
}
