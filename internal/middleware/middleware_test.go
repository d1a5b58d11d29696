package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func TestForceHTTPS(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		host     string
		tls      bool
		proto    string
		wantCode int
	}{
		{"disabled", false, "api.example.com", false, "", http.StatusOK},
		{"plain http redirects", true, "api.example.com", false, "", http.StatusPermanentRedirect},
		{"tls passes", true, "api.example.com", true, "", http.StatusOK},
		{"proxy terminated tls", true, "api.example.com", false, "https", http.StatusOK},
		{"localhost exempt", true, "localhost:8080", false, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://"+tt.host+"/v1/models?x=1", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rr := httptest.NewRecorder()
			ForceHTTPS(tt.enabled)(ok).ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusPermanentRedirect {
				if loc := rr.Header().Get("Location"); loc != "https://api.example.com/v1/models?x=1" {
					t.Fatalf("Location = %q", loc)
				}
			}
		})
	}
}

func TestSecurity(t *testing.T) {
	rr := httptest.NewRecorder()
	Security(false)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("nosniff header missing")
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS set while disabled")
	}

	rr = httptest.NewRecorder()
	Security(true)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("HSTS missing while enabled")
	}
}

func TestRequestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core).Sugar()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	RequestLog(log)(ok).ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["ip"] != "203.0.113.9" {
		t.Fatalf("ip = %v, want 203.0.113.9", fields["ip"])
	}
	if fields["path"] != "/healthz" {
		t.Fatalf("path = %v", fields["path"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Fatalf("status = %#v", fields["status"])
	}
}

func TestClientIP_Fallbacks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	if got := clientIP(req).String(); got != "192.0.2.1" {
		t.Fatalf("RemoteAddr fallback = %s", got)
	}

	req.Header.Set("X-Real-Ip", "198.51.100.3")
	if got := clientIP(req).String(); got != "198.51.100.3" {
		t.Fatalf("X-Real-Ip = %s", got)
	}
}
