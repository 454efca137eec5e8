package parser

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ErrInvalidURL is wrapped by every NormalizeURL failure.
var ErrInvalidURL = errors.New("invalid url")

var (
	schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	// A "name:" prefix not followed by a port, as in mailto:x@y or http:/x.
	bareSchemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:([^0-9]|$)`)
)

// NormalizeURL prefixes https:// when the input carries no scheme and checks that
// the result is an absolute http(s) URL with a host. It performs no network access.
func NormalizeURL(input string) (string, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidURL)
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidURL, raw)
	}
	if !schemeRe.MatchString(raw) {
		if bareSchemeRe.MatchString(raw) {
			return "", fmt.Errorf("%w: %q has a malformed or unsupported scheme", ErrInvalidURL, raw)
		}
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}
	if parsed.User != nil {
		return "", fmt.Errorf("%w: %q carries user info", ErrInvalidURL, raw)
	}
	parsed.Scheme = scheme
	return parsed.String(), nil
}

// Host returns the lower-cased host of rawURL without its port, or "" when it does not parse.
func Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// ResolveURL resolves ref against base. It returns ref unchanged when either side fails to parse.
func ResolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Host == "" {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
