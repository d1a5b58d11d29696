package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// kvServer answers KV-v2 reads for secret/app/db with a password key.
func kvServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/app/db" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Vault-Token") != "test-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {
				"data": {"password": "s3cr3t", "port": 5432},
				"metadata": {
					"created_time": "2024-01-01T00:00:00Z",
					"deletion_time": "",
					"destroyed": false,
					"version": 1
				}
			}
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve(t *testing.T) {
	var hits int32
	srv := kvServer(t, &hits)

	c, err := New(Options{Address: srv.URL, Token: "test-token", TTL: time.Minute})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := c.Resolve(context.Background(), "vault:secret/app/db#password")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != "s3cr3t" {
			t.Fatalf("Resolve = %q, want s3cr3t", got)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("server hit %d times, want 1 (cached)", n)
	}
}

func TestGetKV_Errors(t *testing.T) {
	var hits int32
	srv := kvServer(t, &hits)
	c, err := New(Options{Address: srv.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if _, err := c.GetKV(ctx, "secret/app/db", "missing", 0); err == nil {
		t.Fatalf("missing key accepted")
	}
	if _, err := c.GetKV(ctx, "secret/app/db", "port", 0); err == nil {
		t.Fatalf("non-string value accepted")
	}
	if _, err := c.GetKV(ctx, "", "password", 0); err == nil {
		t.Fatalf("empty path accepted")
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref       string
		path, key string
		wantErr   bool
	}{
		{"vault:secret/app/db#password", "secret/app/db", "password", false},
		{"vault:kv/x#y", "kv/x", "y", false},
		{"secret/app/db#password", "", "", true},
		{"vault:secret/app/db", "", "", true},
		{"vault:#password", "", "", true},
		{"vault:secret/app/db#", "", "", true},
	}
	for _, tt := range tests {
		path, key, err := ParseRef(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
		}
		if path != tt.path || key != tt.key {
			t.Fatalf("ParseRef(%q) = %q, %q", tt.ref, path, key)
		}
	}
}

func TestSplitMount(t *testing.T) {
	if m, r := splitMount("secret/app/db"); m != "secret" || r != "app/db" {
		t.Fatalf("splitMount = %q, %q", m, r)
	}
}
