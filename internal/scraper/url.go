package scraper

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	// ErrNoValidURLs is returned when none of the submitted URLs can be normalized.
	ErrNoValidURLs = errors.New("no valid urls supplied")
	// ErrNonPublicHost is returned for loopback, private and link-local targets.
	ErrNonPublicHost = errors.New("host is not publicly routable")
)

var hostProfile = idna.Lookup

// NormalizeURL returns the canonical form used as the dedup key for scraped
// companies: https scheme, lowercase ASCII host, no default port, no query or
// fragment and no trailing slash. A "www." prefix is kept as written.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("empty url")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	hostname := strings.TrimSuffix(u.Hostname(), ".")
	if hostname == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}
	ascii := hostname
	if ip := net.ParseIP(hostname); ip == nil {
		if ascii, err = hostProfile.ToASCII(strings.ToLower(hostname)); err != nil {
			return "", fmt.Errorf("invalid host %q: %w", hostname, err)
		}
		if ascii == "localhost" || strings.HasSuffix(ascii, ".localhost") {
			return "", fmt.Errorf("%w: %s", ErrNonPublicHost, ascii)
		}
		if !strings.Contains(ascii, ".") {
			return "", fmt.Errorf("invalid host %q", hostname)
		}
	} else {
		if !PublicIP(ip) {
			return "", fmt.Errorf("%w: %s", ErrNonPublicHost, hostname)
		}
		if strings.Contains(ascii, ":") {
			ascii = "[" + ascii + "]"
		}
	}

	host := ascii
	if port := u.Port(); port != "" && port != "80" && port != "443" {
		host = ascii + ":" + port
	}

	path := strings.TrimRight(u.EscapedPath(), "/")
	return "https://" + host + path, nil
}

// PublicIP reports whether ip may be fetched: not loopback, private,
// link-local, multicast or unspecified.
func PublicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() || ip.IsUnspecified())
}

// canonicalURLs normalizes raw and drops invalid entries and duplicates while
// preserving order.
func canonicalURLs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		canonical, err := NormalizeURL(r)
		if err != nil {
			continue
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

// origin returns scheme://host for a canonical URL.
func origin(canonical string) string {
	u, err := url.Parse(canonical)
	if err != nil {
		return canonical
	}
	return u.Scheme + "://" + u.Host
}
