package requestmeta

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsMutation(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		http.MethodGet:    false,
		http.MethodHead:   false,
		http.MethodPost:   true,
		http.MethodDelete: true,
	}
	for method, want := range tests {
		if got := IsMutation(httptest.NewRequest(method, "/", nil)); got != want {
			t.Fatalf("IsMutation(%s) = %v, want %v", method, got, want)
		}
	}
	if IsMutation(nil) {
		t.Fatal("IsMutation(nil) = true, want false")
	}
}

func TestCrossOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		host    string
		origin  string
		referer string
		want    bool
	}{
		{name: "no headers", host: "localhost:8090", want: false},
		{name: "same origin", host: "localhost:8090", origin: "http://localhost:8090", want: false},
		{name: "same origin default port", host: "dash.example", origin: "http://dash.example", want: false},
		{name: "same origin by referer", host: "localhost:8090", referer: "http://localhost:8090/dashboard", want: false},
		{name: "case insensitive host", host: "LocalHost:8090", origin: "http://localhost:8090", want: false},
		{name: "other host", host: "localhost:8090", origin: "http://evil.example", want: true},
		{name: "other port", host: "localhost:8090", origin: "http://localhost:9999", want: true},
		{name: "opaque origin", host: "localhost:8090", origin: "null", want: true},
		{name: "origin wins over referer", host: "localhost:8090", origin: "http://evil.example", referer: "http://localhost:8090/", want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/token", nil)
			req.Host = tc.host
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.referer != "" {
				req.Header.Set("Referer", tc.referer)
			}
			if got := CrossOrigin(req); got != tc.want {
				t.Fatalf("CrossOrigin() = %v, want %v", got, tc.want)
			}
		})
	}
}
