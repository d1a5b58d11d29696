package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Require rejects requests without a valid `Authorization: Bearer` token
// and attaches the subject to the context for the rest.
func Require(iss *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			sub, err := iss.Verify(raw)
			if err != nil {
				zap.S().Debugw("token rejected", "path", r.URL.Path, "err", err)
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), sub)))
		})
	}
}

func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
