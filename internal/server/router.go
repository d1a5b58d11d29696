// internal/server/router.go
//
// Route table.
//
// Context
// -------
//
//	GET  /healthz       liveness plus database ping, no auth
//	GET  /metrics       Prometheus, no auth
//	GET  /v1/models     configured GEMINI_MODEL_* keys, bearer token
//	POST /v1/generate   prompt in, text out, bearer token
//
// Middleware order: request id → recoverer → access log → HTTPS redirect
// (prod) → security headers.  The bearer check wraps the /v1 group only.

package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AdeptTravel/adept-settings/internal/auth"
	"github.com/AdeptTravel/adept-settings/internal/config"
	"github.com/AdeptTravel/adept-settings/internal/inference"
	"github.com/AdeptTravel/adept-settings/internal/middleware"
)

// ProdEnv is the App.Env value that turns on HTTPS enforcement and HSTS.
const ProdEnv = "prod"

// Generator is the slice of *inference.Client the handlers need.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts inference.Options) (string, error)
}

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps bundles what the router hands to its handlers.  DB may be nil.
type Deps struct {
	App       config.App
	AI        config.AI
	Issuer    *auth.Issuer
	Generator Generator
	DB        Pinger
	Log       *zap.SugaredLogger
}

// Router builds the chi handler tree.
func Router(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.S()
	}
	prod := d.App.Env == ProdEnv

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(d.Log))
	r.Use(middleware.ForceHTTPS(prod))
	r.Use(middleware.Security(prod))

	h := &handlers{deps: d}
	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Require(d.Issuer))
		r.Get("/models", h.models)
		r.Post("/generate", h.generate)
	})
	return r
}
