// Package urlutil provides URL manipulation helpers that preserve
// original encoding. Go's url.ResolveReference re-encodes special
// characters, which breaks CDN URLs using parentheses or brackets, so
// these helpers work on strings.
package urlutil

import (
	"net/url"
	"strings"
)

// ResolveURL resolves a potentially relative URL against a base URL.
func ResolveURL(urlStr string, baseURL string) string {
	if strings.HasPrefix(urlStr, "http://") || strings.HasPrefix(urlStr, "https://") {
		return urlStr
	}

	base := baseURL
	if idx := strings.Index(base, "?"); idx > 0 {
		base = base[:idx]
	}
	if lastSlash := strings.LastIndex(base, "/"); lastSlash > 0 {
		base = base[:lastSlash+1]
	}

	if strings.HasPrefix(urlStr, "/") {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return base + urlStr
		}
		return parsed.Scheme + "://" + parsed.Host + urlStr
	}

	if strings.HasPrefix(urlStr, "../") {
		result := base
		remaining := urlStr
		for strings.HasPrefix(remaining, "../") {
			remaining = remaining[3:]
			result = strings.TrimSuffix(result, "/")
			if lastSlash := strings.LastIndex(result, "/"); lastSlash > 0 {
				result = result[:lastSlash+1]
			}
		}
		return result + remaining
	}

	return base + urlStr
}

// Query returns the raw query string of a URL, without the '?'. Empty
// if there is none.
func Query(urlStr string) string {
	if idx := strings.Index(urlStr, "?"); idx >= 0 {
		return urlStr[idx+1:]
	}
	return ""
}

// HeaderSuffix encodes HTTP headers into the "|Key=Value&..." suffix
// that Kodi-style players accept on a stream URL. Keys are sorted by
// url.Values, so the output is stable.
func HeaderSuffix(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}
	v := url.Values{}
	for key, value := range headers {
		v.Set(key, value)
	}
	return "|" + v.Encode()
}

// HostSuffixMatch reports whether the URL's host equals or is a
// subdomain of any of the given suffixes.
func HostSuffixMatch(urlStr string, suffixes []string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, s := range suffixes {
		s = strings.ToLower(s)
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}
