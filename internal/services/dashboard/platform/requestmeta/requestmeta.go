// Package requestmeta inspects request origin metadata.
package requestmeta

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// IsMutation reports whether r changes server state.
func IsMutation(r *http.Request) bool {
	if r == nil {
		return false
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// CrossOrigin reports whether r carries an Origin or Referer header naming
// a different host than the one it was sent to. A request with neither
// header is not cross-origin: browsers always send one on form posts.
func CrossOrigin(r *http.Request) bool {
	if r == nil {
		return false
	}
	claimed := strings.TrimSpace(r.Header.Get("Origin"))
	if claimed == "" {
		claimed = strings.TrimSpace(r.Header.Get("Referer"))
	}
	if claimed == "" {
		return false
	}
	if claimed == "null" {
		return true
	}
	parsed, err := url.Parse(claimed)
	if err != nil || parsed.Host == "" {
		return true
	}
	return !sameHostPort(parsed, r)
}

func sameHostPort(origin *url.URL, r *http.Request) bool {
	requestHost, requestPort := splitHostPort(r.Host)
	if requestHost == "" {
		return false
	}
	if requestPort == "" {
		requestPort = defaultPortForScheme(requestScheme(r))
	}
	originHost := strings.ToLower(origin.Hostname())
	originPort := origin.Port()
	if originPort == "" {
		originPort = defaultPortForScheme(strings.ToLower(origin.Scheme))
	}
	return originHost == requestHost && originPort == requestPort
}

func splitHostPort(hostport string) (string, string) {
	hostport = strings.ToLower(strings.TrimSpace(hostport))
	if host, port, err := net.SplitHostPort(hostport); err == nil {
		return strings.Trim(host, "[]"), port
	}
	return strings.Trim(hostport, "[]"), ""
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func defaultPortForScheme(scheme string) string {
	switch scheme {
	case "https":
		return "443"
	case "http":
		return "80"
	default:
		return ""
	}
}
