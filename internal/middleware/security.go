// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects headers suited to a JSON API on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years), prod only
//   • Content-Security-Policy   –  nothing may load, nothing may frame us
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  no Referer at all
//   • Cache-Control             –  responses may carry tokens, never cache
//
// Notes
// -----
// • Headers are set before next.ServeHTTP so they reach the client even
//   when the handler writes the body immediately.  Handlers may still
//   override any of them.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// Security returns a header-setting wrapper.  hsts enables
// Strict-Transport-Security, which only makes sense behind real TLS.
func Security(hsts bool) func(http.Handler) http.Handler {
	const (
		hstsVal = "max-age=63072000; includeSubDomains"
		csp     = "default-src 'none'; frame-ancestors 'none'"
		nosn    = "nosniff"
		refer   = "no-referrer"
		cache   = "no-store"
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if hsts {
				h.Set("Strict-Transport-Security", hstsVal)
			}
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", nosn)
			h.Set("Referrer-Policy", refer)
			h.Set("Cache-Control", cache)

			next.ServeHTTP(w, r)
		})
	}
}
