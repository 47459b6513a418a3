package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidURL is returned when a bookmark URL is not an absolute URL.
var ErrInvalidURL = errors.New("invalid url")

// ParseURL validates raw as an absolute URL (scheme and host required).
// Surrounding whitespace is ignored.
func ParseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, trimmed, err)
	}
	if !u.IsAbs() || u.Host == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, trimmed)
	}

	return u, nil
}

// DomainOf returns the host of rawURL without port and leading "www.".
// It returns an empty string when rawURL cannot be parsed.
func DomainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// FallbackTitle derives a readable title from a domain.
// Examples:
//   - "github.com" -> "Github"
//   - "docs.google.com" -> "Docs Google"
//   - "localhost" -> "localhost"
func FallbackTitle(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}

	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		words = append(words, capitalize(part))
	}

	// Single-label hosts keep their name as-is
	if len(words) == 0 || !strings.Contains(domain, ".") {
		if domain == "" {
			return "Untitled"
		}
		return domain
	}

	return strings.Join(words, " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
