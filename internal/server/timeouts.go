// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
// Production hardening recommends:
//
//   • ReadHeaderTimeout – abort slow-loris headers (10 s)
//   • WriteTimeout      – cap total response time; generous because a
//                         generate call waits on the model (90 s)
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//
// The bind address comes from App.Host and App.Port, so cmd/server never
// formats it by hand.  New rejects a PORT outside 0-65535.
//

package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/AdeptTravel/adept-settings/internal/config"
)

// Addr joins App.Host and App.Port, bracketing IPv6 literals.
func Addr(cfg config.App) string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// New constructs an *http.Server with sensible defaults.
func New(cfg config.App, handler http.Handler) (*http.Server, error) {
	if err := checkListen(cfg); err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              Addr(cfg),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		// TLSConfig may be injected by callers (e.g., autocert).
	}, nil
}
