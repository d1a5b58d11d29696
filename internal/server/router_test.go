// internal/server/router_test.go
//
// Unit-tests for the route table.
//
// Context
// -------
// fakeGen and fakeDB stand in for the inference client and the database
// pool, so every route can be exercised through httptest without network
// access.  Tokens are minted by a real auth.Issuer.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/AdeptTravel/adept-settings/internal/auth"
	"github.com/AdeptTravel/adept-settings/internal/config"
	"github.com/AdeptTravel/adept-settings/internal/inference"
)

type fakeGen struct {
	gotModel, gotPrompt string
	gotOpts             inference.Options
	err                 error
}

func (f *fakeGen) Generate(_ context.Context, model, prompt string, opts inference.Options) (string, error) {
	f.gotModel, f.gotPrompt, f.gotOpts = model, prompt, opts
	if f.err != nil {
		return "", f.err
	}
	if strings.TrimSpace(prompt) == "" {
		return "", inference.ErrEmptyPrompt
	}
	return "generated: " + prompt, nil
}

type fakeDB struct{ err error }

func (f fakeDB) PingContext(context.Context) error { return f.err }

func testDeps(t *testing.T, gen Generator, db Pinger) (Deps, string) {
	t.Helper()
	iss, err := auth.NewIssuer(config.Auth{JWTSecret: "k", JWTAlgorithm: "HS256", ExpireMinutes: 5}, "adept")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	tok, _, err := iss.Issue("tester")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	src, err := config.NewSource(context.Background(), config.WithEnvFile(""), config.WithoutProcessEnv(),
		config.WithValues(map[string]string{
			"GOOGLE_API_KEY":               "k",
			"GEMINI_MODEL_2_5_FLASH":       "gemini-2.5-flash",
			"GEMINI_MODEL_2_5_FLASH_LITE":  "gemini-2.5-flash-lite",
			"GEMINI_MODEL_2_5_FLASH_LIVE":  "gemini-2.5-flash-live",
			"GEMINI_MODEL_2_5_FLASH_IMAGE": "gemini-2.5-flash-image",
		}))
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	ai, err := config.LoadAI(src)
	if err != nil {
		t.Fatalf("LoadAI: %v", err)
	}

	return Deps{
		App:       config.App{Name: "adept", Env: "dev", Host: "127.0.0.1", Port: 8080},
		AI:        ai,
		Issuer:    iss,
		Generator: gen,
		DB:        db,
		Log:       zap.NewNop().Sugar(),
	}, tok
}

func TestAddr(t *testing.T) {
	if got := Addr(config.App{Host: "::1", Port: 9000}); got != "[::1]:9000" {
		t.Fatalf("Addr = %q", got)
	}
	srv, err := New(config.App{Host: "0.0.0.0", Port: 8080}, http.NotFoundHandler())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if srv.Addr != "0.0.0.0:8080" || srv.ReadHeaderTimeout == 0 {
		t.Fatalf("unexpected server: addr=%q", srv.Addr)
	}
}

func TestNew_RejectsPortOutOfRange(t *testing.T) {
	for _, port := range []int{-1, 65536, 70000} {
		_, err := New(config.App{Host: "127.0.0.1", Port: port}, http.NotFoundHandler())
		var ce *config.Error
		if !errors.As(err, &ce) || ce.Field != "PORT" || !errors.Is(err, config.ErrMalformed) {
			t.Fatalf("port %d: err = %v, want malformed PORT", port, err)
		}
	}
	if _, err := New(config.App{Port: 0}, http.NotFoundHandler()); err != nil {
		t.Fatalf("port 0: %v", err)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		want int
	}{
		{"no database", nil, http.StatusOK},
		{"database up", fakeDB{}, http.StatusOK},
		{"database down", fakeDB{err: errors.New("down")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := testDeps(t, &fakeGen{}, tt.db)
			rr := httptest.NewRecorder()
			Router(d).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestModels_RequiresToken(t *testing.T) {
	d, tok := testDeps(t, &fakeGen{}, nil)
	h := Router(d)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var body struct {
		Models []modelEntry `json:"models"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Models) != 4 || body.Models[0].Key != "GEMINI_MODEL_2_5_FLASH" || body.Models[0].ID != "gemini-2.5-flash" {
		t.Fatalf("unexpected models: %+v", body.Models)
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		genErr error
		want   int
	}{
		{"ok", `{"model":"GEMINI_MODEL_2_5_FLASH","prompt":"hi","max_output_tokens":120,"temperature":0.7}`, nil, http.StatusOK},
		{"empty prompt", `{"prompt":"  "}`, nil, http.StatusBadRequest},
		{"unknown field", `{"prompt":"hi","stream":true}`, nil, http.StatusBadRequest},
		{"negative tokens", `{"prompt":"hi","max_output_tokens":-1}`, nil, http.StatusBadRequest},
		{"upstream failure", `{"prompt":"hi"}`, errors.New("503"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGen{err: tt.genErr}
			d, tok := testDeps(t, gen, nil)

			req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+tok)
			rr := httptest.NewRecorder()
			Router(d).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}

			var resp generateResp
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Text != "generated: hi" {
				t.Fatalf("text = %q", resp.Text)
			}
			if gen.gotModel != "GEMINI_MODEL_2_5_FLASH" || gen.gotOpts.MaxOutputTokens != 120 ||
				gen.gotOpts.Temperature == nil || *gen.gotOpts.Temperature != 0.7 {
				t.Fatalf("generator got model=%q opts=%+v", gen.gotModel, gen.gotOpts)
			}
		})
	}
}

func TestRouter_ProdRedirectsPlainHTTP(t *testing.T) {
	d, _ := testDeps(t, &fakeGen{}, nil)
	d.App.Env = ProdEnv

	rr := httptest.NewRecorder()
	Router(d).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://api.example.com/healthz", nil))
	if rr.Code != http.StatusPermanentRedirect {
		t.Fatalf("status = %d, want 308", rr.Code)
	}
}
