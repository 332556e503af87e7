package moderation

import (
	"net/url"
	"regexp"
	"strings"
)

var urlRE = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)

// ExternalLinks returns the http(s) URLs in content whose host is not an
// internal domain, in order of appearance. URLs that do not parse or carry
// no host are ignored.
func (e *Engine) ExternalLinks(content string) []string {
	var out []string
	for _, raw := range urlRE.FindAllString(content, -1) {
		raw = strings.TrimRight(raw, ".,;:!?)]}")
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
		if host == "" {
			continue
		}
		if !e.isInternal(host) {
			out = append(out, raw)
		}
	}
	return out
}

func (e *Engine) isInternal(host string) bool {
	for _, d := range e.cfg.internal {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
