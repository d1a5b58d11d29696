// internal/config/derive.go
//
// Values computed from stored fields.  All of them are pure; the records are
// immutable, so recomputing on every call is observably identical to caching.

package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// DSN renders a postgresql:// connection string.  Only the password is
// escaped (query-component rules, so "@" becomes %40 and space becomes +).
//
//	network: postgresql://user:pw@host:port/db
//	socket:  postgresql://user:pw@/db?host=/cloudsql/instance
func (d Database) DSN() string {
	pw := url.QueryEscape(d.Password.Reveal())

	if strings.HasPrefix(d.Host, "/") {
		return fmt.Sprintf("postgresql://%s:%s@/%s?host=%s", d.User, pw, d.Name, d.Host)
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s", d.User, pw, d.Host, d.Port, d.Name)
}

// UsesSocket reports whether Host names a Unix-socket directory.
func (d Database) UsesSocket() bool { return strings.HasPrefix(d.Host, "/") }

// ClientSecret decodes GOOGLE_CLIENT_SECRET_B64.
func (a Auth) ClientSecret() (Secret, error) {
	raw, err := base64.StdEncoding.DecodeString(a.ClientSecretB64.Reveal())
	if err != nil {
		return "", malformed("auth", "GOOGLE_CLIENT_SECRET_B64", err)
	}
	if !utf8.Valid(raw) {
		return "", malformed("auth", "GOOGLE_CLIENT_SECRET_B64", errors.New("decoded secret is not valid UTF-8"))
	}
	return Secret(raw), nil
}

// TokenTTL is the access-token lifetime.
func (a Auth) TokenTTL() time.Duration {
	return time.Duration(a.ExpireMinutes) * time.Minute
}
