package auth

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ExternalURL reconstructs the URL the caller used to reach this request,
// honouring RFC 7239 Forwarded first and the X-Forwarded-* family second
// the query string is dropped
func ExternalURL(r *http.Request) *url.URL {
	u := BaseURL(r)
	u.Path = joinPath(u.Path, r.URL.Path)
	return u
}

// BaseURL is ExternalURL without the request path; it keeps X-Forwarded-Prefix
func BaseURL(r *http.Request) *url.URL {
	fwd := parseForwarded(r.Header.Get("Forwarded"))

	scheme := fwd["proto"]
	if scheme == "" {
		scheme = firstValue(r.Header.Get("X-Forwarded-Proto"))
	}
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	scheme = strings.ToLower(scheme)

	host := fwd["host"]
	if host == "" {
		host = firstValue(r.Header.Get("X-Forwarded-Host"))
	}
	if host == "" {
		host = r.Host
	}
	if port := firstValue(r.Header.Get("X-Forwarded-Port")); port != "" {
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		host = net.JoinHostPort(strings.Trim(host, "[]"), port)
	}
	host = stripDefaultPort(scheme, host)

	prefix := firstValue(r.Header.Get("X-Forwarded-Prefix"))
	return &url.URL{Scheme: scheme, Host: host, Path: joinPath("", prefix)}
}

// parseForwarded reads the first element of an RFC 7239 Forwarded header
func parseForwarded(v string) map[string]string {
	out := map[string]string{}
	if v == "" {
		return out
	}
	first, _, _ := strings.Cut(v, ",")
	for pair := range strings.SplitSeq(first, ";") {
		k, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.Trim(strings.TrimSpace(val), `"`)
	}
	return out
}

func firstValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

func stripDefaultPort(scheme, host string) string {
	h, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		if strings.Contains(h, ":") {
			return "[" + h + "]"
		}
		return h
	}
	return host
}

func joinPath(prefix, p string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if p == "" {
		return prefix
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return prefix + p
}
