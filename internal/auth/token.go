// internal/auth/token.go
//
// JWT issue and verify, parameterised by config.Auth.
//
// Context
// -------
// JWT_SECRET_KEY is a shared secret, so only the HMAC family (HS256, HS384,
// HS512) can be served by it.  NewIssuer refuses anything else up front
// rather than failing on the first request.  Verification pins the method
// to the configured one, which blocks "alg: none" and algorithm-swap tokens.
//
// Notes
// -----
// • Lifetimes come from ACCESS_TOKEN_EXPIRE_MINUTES via Auth.TokenTTL.
// • Oxford commas, two spaces after periods.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AdeptTravel/adept-settings/internal/config"
)

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = errors.New("auth: invalid token")

// Issuer signs and verifies access tokens.  Safe for concurrent use.
type Issuer struct {
	method jwt.SigningMethod
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewIssuer validates the algorithm and secret from cfg.  name becomes the
// `iss` claim, usually App.Name.
func NewIssuer(cfg config.Auth, name string) (*Issuer, error) {
	method, ok := jwt.GetSigningMethod(cfg.JWTAlgorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, &config.Error{
			Record: "auth",
			Field:  "JWT_ALGORITHM",
			Err:    fmt.Errorf("%w: %q is not an HMAC algorithm", config.ErrMalformed, cfg.JWTAlgorithm),
		}
	}
	if cfg.JWTSecret.Reveal() == "" {
		return nil, &config.Error{Record: "auth", Field: "JWT_SECRET_KEY", Err: config.ErrMissing}
	}
	if cfg.TokenTTL() <= 0 {
		return nil, &config.Error{
			Record: "auth",
			Field:  "ACCESS_TOKEN_EXPIRE_MINUTES",
			Err:    fmt.Errorf("%w: must be positive", config.ErrMalformed),
		}
	}
	return &Issuer{
		method: method,
		key:    []byte(cfg.JWTSecret.Reveal()),
		ttl:    cfg.TokenTTL(),
		issuer: name,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for subject and its expiry.
func (i *Issuer) Issue(subject string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, method, issuer, and expiry, and returns the
// subject.
func (i *Issuer) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
