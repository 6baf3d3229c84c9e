package scan

import (
	"net/url"
	"strings"

	"github.com/miekg/dns"
)

// Normalize reduces user input such as "HTTPS://user@Example.com:8443/path?q"
// to a bare lowercase host name.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	withScheme := s
	if !strings.Contains(s, "://") {
		withScheme = "http://" + s
	}
	if u, err := url.Parse(withScheme); err == nil && u.Host != "" {
		s = u.Hostname()
	} else {
		if i := strings.Index(s, "://"); i >= 0 {
			s = s[i+3:]
		}
		if i := strings.IndexAny(s, "/?#"); i >= 0 {
			s = s[:i]
		}
		if i := strings.LastIndex(s, "@"); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, ":"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSuffix(s, ".")
}

// Validate checks that domain is a syntactically valid host name with at
// least two labels.
func Validate(domain string) error {
	if domain == "" {
		return &InputError{Reason: "domain is required"}
	}
	if _, ok := dns.IsDomainName(domain); !ok || len(domain) > 253 {
		return &InputError{Reason: "invalid domain " + domain}
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return &InputError{Reason: "domain must have at least two labels: " + domain}
	}
	for _, l := range labels {
		if !validLabel(l) {
			return &InputError{Reason: "invalid domain " + domain}
		}
	}
	return nil
}

func validLabel(l string) bool {
	if l == "" || len(l) > 63 || l[0] == '-' || l[len(l)-1] == '-' {
		return false
	}
	for _, c := range l {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}
