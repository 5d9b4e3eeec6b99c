package parse

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// NormalizeURL standardizes a URL for comparison and storage
// It lowercases the scheme and host, removes default ports (80 for http, 443 for https), removes trailing slashes from paths (unless root "/"), ensures empty path becomes "/", and removes fragments
// An escaped path (RawPath) is trimmed alongside Path so %2F survives
// The query string is kept verbatim
// Does not modify the input *url.URL
func NormalizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	// Work on a copy
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)
	normalized.User = nil

	// Remove default ports
	host, port, err := net.SplitHostPort(normalized.Host)
	if err == nil { // Host included a port
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	// Handle path normalization
	if normalized.Path == "" {
		normalized.Path = "/"
		normalized.RawPath = ""
	} else if len(normalized.Path) > 1 && strings.HasSuffix(normalized.Path, "/") {
		normalized.Path = trimTrailingSlashes(normalized.Path)
		if normalized.RawPath != "" {
			normalized.RawPath = trimTrailingSlashes(normalized.RawPath)
		}
	}

	normalized.Fragment = ""
	normalized.RawFragment = ""
	normalized.ForceQuery = false

	return normalized.String()
}

// Normalize resolves href against base and returns the canonical absolute
// https URL. Same-host http links are upgraded to https. The second result is
// false when href is empty or unparseable, uses a non-http(s) scheme (mailto:,
// tel:, javascript:), or resolves to a host other than host. Such links are
// treated as "no link" by callers.
func Normalize(href string, base *url.URL, host string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)

	if !upgradeScheme(resolved) || !SameHost(resolved, host) {
		return "", false
	}
	return NormalizeURL(resolved), true
}

// ParseAndNormalize parses an absolute URL string using the stricter url.ParseRequestURI (requiring a scheme) and then normalizes it using NormalizeURL
// http URLs are upgraded to https; URLs off the target host wrap utils.ErrScopeViolation
// Returns the normalized string, the parsed URL object, and any error
func ParseAndNormalize(urlStr, host string) (string, *url.URL, error) {
	// ParseRequestURI does not split off a fragment
	candidate, _, _ := strings.Cut(strings.TrimSpace(urlStr), "#")
	parsed, err := url.ParseRequestURI(candidate) // Stricter parsing
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid URL '%s': %w", utils.ErrParsing, urlStr, err)
	}
	if !upgradeScheme(parsed) {
		return "", nil, fmt.Errorf("%w: unsupported scheme '%s' in '%s'", utils.ErrScopeViolation, parsed.Scheme, urlStr)
	}
	if !SameHost(parsed, host) {
		return "", nil, fmt.Errorf("%w: host '%s' is not '%s'", utils.ErrScopeViolation, parsed.Host, host)
	}
	normalizedStr := NormalizeURL(parsed)
	return normalizedStr, parsed, nil
}

// SameHost reports whether u points at host, ignoring case and default ports
func SameHost(u *url.URL, host string) bool {
	if u == nil || u.Host == "" {
		return false
	}
	return stripDefaultPort(strings.ToLower(u.Scheme), strings.ToLower(u.Host)) ==
		stripDefaultPort(strings.ToLower(u.Scheme), strings.ToLower(host))
}

func stripDefaultPort(scheme, hostport string) string {
	h, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		return h
	}
	return hostport
}

// upgradeScheme rewrites an http URL to https in place, dropping an explicit
// port 80. It returns false for any other non-https scheme.
func upgradeScheme(u *url.URL) bool {
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "https"
		return true
	case "http":
		if h, port, err := net.SplitHostPort(u.Host); err == nil && port == "80" {
			u.Host = h
		}
		u.Scheme = "https"
		return true
	}
	return false
}

func trimTrailingSlashes(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}
