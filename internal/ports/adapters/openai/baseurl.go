package openai

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://api.openai.com/v1"

var defaultAllowedHosts = []string{"api.openai.com"}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// endpointRules are checked in order; the first match rejects the URL.
var endpointRules = []struct {
	reason string
	broken func(u *url.URL) bool
}{
	{"absolute URL with host is required", func(u *url.URL) bool { return !u.IsAbs() || u.Hostname() == "" }},
	{"userinfo is not allowed", func(u *url.URL) bool { return u.User != nil }},
	{"query and fragment are not allowed", func(u *url.URL) bool { return u.RawQuery != "" || u.Fragment != "" }},
	{"https is required", func(u *url.URL) bool { return !strings.EqualFold(u.Scheme, "https") }},
}

// ValidateBaseURL rejects endpoints that are not plain https URLs or whose
// host is outside allowedHosts (api.openai.com when empty). Keys are sent to
// whatever host passes here.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid OPENAI_BASE_URL: %w", err)
	}
	for _, r := range endpointRules {
		if r.broken(u) {
			return fmt.Errorf("invalid OPENAI_BASE_URL %q: %s", baseURL, r.reason)
		}
	}

	host := strings.ToLower(u.Hostname())
	if !hostAllowed(host, allowedHosts) {
		return fmt.Errorf("invalid OPENAI_BASE_URL %q: host %q is not in OPENAI_ALLOWED_HOSTS", baseURL, host)
	}
	return nil
}

func hostAllowed(host string, allowedHosts []string) bool {
	for _, h := range normalizeAllowedHosts(allowedHosts) {
		if h == host {
			return true
		}
	}
	return false
}

// normalizeAllowedHosts reduces entries like "https://llm.internal:8443/" to
// bare lowercase host names.
func normalizeAllowedHosts(allowedHosts []string) []string {
	var out []string
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		if !strings.Contains(v, "://") {
			v = "//" + v
		}
		u, err := url.Parse(v)
		if err != nil || u.Hostname() == "" {
			continue
		}
		out = append(out, u.Hostname())
	}
	if len(out) == 0 {
		return defaultAllowedHosts
	}
	return out
}
