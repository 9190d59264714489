package payments

import (
	"net/url"
	"strings"
)

// NormalizeDomain turns the configured public domain into a base URL without a
// trailing slash. Missing or malformed values fall back to http://localhost:<port>.
func NormalizeDomain(raw, port string) string {
	fallback := "http://localhost"
	if p := strings.TrimSpace(port); p != "" {
		fallback += ":" + p
	}

	domain := strings.TrimSpace(raw)
	if domain == "" {
		return fallback
	}
	if !strings.Contains(domain, "://") {
		scheme := "https://"
		if isLocalHost(domain) {
			scheme = "http://"
		}
		domain = scheme + domain
	}

	parsed, err := url.Parse(domain)
	if err != nil || parsed.Host == "" || strings.ContainsAny(parsed.Host, " \t") {
		return fallback
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fallback
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return strings.TrimRight(parsed.String(), "/")
}

func isLocalHost(domain string) bool {
	host := strings.ToLower(domain)
	return strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1")
}
