// internal/config/loader.go
//
// Record loaders.
//
/*
Context
--------
Each `LoadX(src)` decodes one record from a Source:

  1. Presence.  A key without a default must exist in some layer.  An
     explicitly empty value counts as present for text fields.
  2. Coercion.  Integers parse with strconv.Atoi.  Booleans accept
     1/0, true/false, t/f, yes/no, and on/off, case-insensitively.

Nothing beyond coercion is checked here: a PORT of 70000 loads, and the
server rejects it when it binds.

Every field is checked before returning, so one run reports all problems
at once.  No record is ever returned half-filled: on error the zero value
comes back with a non-nil error.

`Load()` builds the Source and runs all four loaders.  It replaces the old
package-level settings singletons.  main calls it once and passes records
down explicitly.

Instrumentation
---------------
  • DEBUG span: per-record success.
  • ERROR span: per-record failure, with the aggregated error.
  • INFO  span: final “config loaded” with non-secret highlights.
  • Logs use `zap.S()` so they reach the bootstrap console before the file
    logger is installed.
*/
package config

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/AdeptTravel/adept-settings/internal/metrics"
)

/*──────────────────────────── field reader ────────────────────────────────*/

// reader decodes fields of one record and remembers every failure.
type reader struct {
	src    *Source
	record string
	err    error
}

func (r *reader) fail(e *Error) { r.err = multierr.Append(r.err, e) }

func (r *reader) raw(key string) (string, bool) {
	val, ok := r.src.Lookup(key)
	if !ok {
		r.fail(missing(r.record, key))
	}
	return val, ok
}

func (r *reader) str(key string) string {
	val, _ := r.raw(key)
	return val
}

func (r *reader) strOr(key, def string) string {
	if val, ok := r.src.Lookup(key); ok {
		return val
	}
	return def
}

func (r *reader) secret(key string) Secret { return Secret(r.str(key)) }

func (r *reader) integer(key string) int {
	val, ok := r.raw(key)
	if !ok {
		return 0
	}
	return r.parseInt(key, val)
}

func (r *reader) integerOr(key string, def int) int {
	val, ok := r.src.Lookup(key)
	if !ok {
		return def
	}
	return r.parseInt(key, val)
}

func (r *reader) parseInt(key, val string) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		r.fail(malformed(r.record, key, err))
	}
	return n
}

func (r *reader) boolean(key string) bool {
	val, ok := r.raw(key)
	if !ok {
		return false
	}
	b, err := parseBool(val)
	if err != nil {
		r.fail(malformed(r.record, key, err))
	}
	return b
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, errors.New("invalid boolean " + strconv.Quote(s))
}

// finish bumps the load counters and returns rec unless a field failed.
func finish[T any](r *reader, rec T) (T, error) {
	metrics.ConfigLoadTotal.WithLabelValues(r.record).Inc()
	if r.err != nil {
		metrics.ConfigLoadErrorsTotal.WithLabelValues(r.record).Inc()
		zap.S().Errorw("config record invalid", "record", r.record, "err", r.err)
		var zero T
		return zero, r.err
	}
	zap.S().Debugw("config record loaded", "record", r.record)
	return rec, nil
}

/*──────────────────────────── record loaders ──────────────────────────────*/

// LoadApp decodes APP_NAME, ENV, HOST, PORT, and DEBUG.
func LoadApp(src *Source) (App, error) {
	r := &reader{src: src, record: "app"}
	return finish(r, App{
		Name:  r.str("APP_NAME"),
		Env:   r.str("ENV"),
		Host:  r.str("HOST"),
		Port:  r.integer("PORT"),
		Debug: r.boolean("DEBUG"),
	})
}

// LoadAI decodes the API key, the four named models, and every other
// GEMINI_MODEL_* key.
func LoadAI(src *Source) (AI, error) {
	r := &reader{src: src, record: "ai"}
	ai := AI{
		APIKey:     r.secret("GOOGLE_API_KEY"),
		Flash:      r.str("GEMINI_MODEL_2_5_FLASH"),
		FlashLite:  r.str("GEMINI_MODEL_2_5_FLASH_LITE"),
		FlashLive:  r.str("GEMINI_MODEL_2_5_FLASH_LIVE"),
		FlashImage: r.str("GEMINI_MODEL_2_5_FLASH_IMAGE"),
	}

	keys := src.KeysWithPrefix(ModelPrefix)
	ai.models = make(map[string]string, len(keys))
	for _, key := range keys {
		ai.models[key], _ = src.Lookup(key)
	}
	return finish(r, ai)
}

// LoadDatabase decodes the DB_*_SQL keys.  DB_PORT_SQL defaults to 5432.
func LoadDatabase(src *Source) (Database, error) {
	r := &reader{src: src, record: "database"}
	return finish(r, Database{
		User:     r.str("DB_USER_SQL"),
		Password: r.secret("DB_PASSWORD_SQL"),
		Name:     r.str("DB_NAME_SQL"),
		Host:     r.str("DB_HOST_SQL"),
		Port:     r.integerOr("DB_PORT_SQL", DefaultDatabasePort),
	})
}

// LoadAuth decodes OAuth and JWT keys.  JWT_ALGORITHM defaults to HS256.
func LoadAuth(src *Source) (Auth, error) {
	r := &reader{src: src, record: "auth"}
	return finish(r, Auth{
		ClientID:        r.str("OIDC_GOOGLE_CLIENT_ID"),
		JWTSecret:       r.secret("JWT_SECRET_KEY"),
		JWTAlgorithm:    r.strOr("JWT_ALGORITHM", DefaultJWTAlgorithm),
		ExpireMinutes:   r.integer("ACCESS_TOKEN_EXPIRE_MINUTES"),
		ClientSecretB64: r.secret("GOOGLE_CLIENT_SECRET_B64"),
	})
}

/*─────────────────────────────── Load ─────────────────────────────────────*/

// Load reads every source once and decodes all four records.  Errors from
// every record are aggregated; on any error the returned Settings is nil.
func Load(ctx context.Context, opts ...Option) (*Settings, error) {
	src, err := NewSource(ctx, opts...)
	if err != nil {
		return nil, err
	}

	var (
		s    Settings
		errs error
	)
	s.App, err = LoadApp(src)
	errs = multierr.Append(errs, err)
	s.AI, err = LoadAI(src)
	errs = multierr.Append(errs, err)
	s.Database, err = LoadDatabase(src)
	errs = multierr.Append(errs, err)
	s.Auth, err = LoadAuth(src)
	errs = multierr.Append(errs, err)

	if errs != nil {
		return nil, errs
	}

	zap.S().Infow("config loaded",
		"app", s.App.Name,
		"env", s.App.Env,
		"listen", s.App.Host+":"+strconv.Itoa(s.App.Port),
		"debug", s.App.Debug,
		"db_host", s.Database.Host,
		"models", len(s.AI.models),
		"jwt_alg", s.Auth.JWTAlgorithm,
	)
	return &s, nil
}
