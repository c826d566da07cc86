package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Proxy headers in priority order: CDN-set headers first, generic proxy
// headers after, direct connection last.
var headers = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP extracts the real client IP from the request, walking proxy headers
// in priority order and falling back to RemoteAddr. It always returns a
// string; when nothing validates, the raw RemoteAddr is returned as-is.
func GetIP(r *http.Request) string {
	for _, header := range headers {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		// X-Forwarded-For may hold "client, proxy1, proxy2"; the leftmost
		// entry is the original client.
		if header == "X-Forwarded-For" {
			if idx := strings.IndexByte(value, ','); idx >= 0 {
				value = value[:idx]
			}
		}

		if ip := normalize(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := normalize(host); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// normalize validates and canonicalizes an IP string, rejecting the
// meaningless 0.0.0.0 sentinel.
func normalize(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
