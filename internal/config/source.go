// internal/config/source.go
//
// Layered key/value source.
//
/*
Context
--------
`NewSource()` flattens every place a setting can come from into one Koanf
tree (highest precedence last):

  1. Optional YAML defaults file, a flat `KEY: value` map.
  2. Optional dotenv file, `.env` in the working directory by default.
  3. Process environment.
  4. Explicit overrides passed with `WithValues`.

File values are defaults and real environment variables override them.
The dotenv file is *read*, never exported, so loading leaves the process
environment untouched.

Values that begin with `vault:` are handed to the optional SecretResolver
after merging, but only for keys a record reads (its koanf tags plus any
GEMINI_MODEL_* key).  Without a resolver the source performs file reads only.

Notes
-----
  • Keys are case-sensitive, exactly as they appear in the environment.
  • A missing dotenv or YAML file is fine.  An unreadable one is not.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// DefaultEnvFile is read when no WithEnvFile option is given.
const DefaultEnvFile = ".env"

// SecretPrefix marks a value that must be resolved through a SecretResolver.
const SecretPrefix = "vault:"

// SecretResolver turns a `vault:` reference into its plain value.
// internal/vault.Client satisfies it.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

/*──────────────────────────── options ─────────────────────────────────────*/

type options struct {
	defaultsFile string
	envFile      string
	processEnv   bool
	values       map[string]string
	resolver     SecretResolver
}

// Option customises NewSource and Load.
type Option func(*options)

// WithDefaultsFile adds a YAML file as the lowest-precedence layer.
func WithDefaultsFile(path string) Option { return func(o *options) { o.defaultsFile = path } }

// WithEnvFile replaces the dotenv path.  An empty path disables the layer.
func WithEnvFile(path string) Option { return func(o *options) { o.envFile = path } }

// WithoutProcessEnv skips os.Environ, leaving only files and overrides.
func WithoutProcessEnv() Option { return func(o *options) { o.processEnv = false } }

// WithValues overlays explicit values on top of every other layer.
func WithValues(v map[string]string) Option {
	return func(o *options) {
		if o.values == nil {
			o.values = make(map[string]string, len(v))
		}
		for k, val := range v {
			o.values[k] = val
		}
	}
}

// WithResolver enables `vault:` resolution.
func WithResolver(r SecretResolver) Option { return func(o *options) { o.resolver = r } }

/*──────────────────────────── source ──────────────────────────────────────*/

// Source is a read-only merged view of every configuration layer.
type Source struct {
	k *koanf.Koanf
}

// NewSource reads every layer once and returns the merged view.
func NewSource(ctx context.Context, opts ...Option) (*Source, error) {
	o := options{envFile: DefaultEnvFile, processEnv: true}
	for _, fn := range opts {
		fn(&o)
	}

	k := koanf.New(".")

	if o.defaultsFile != "" {
		switch _, err := os.Stat(o.defaultsFile); {
		case errors.Is(err, fs.ErrNotExist):
			zap.S().Debugw("config defaults file absent", "file", o.defaultsFile)
		case err != nil:
			return nil, &Error{Record: "source", Field: o.defaultsFile, Err: err}
		default:
			if err := k.Load(file.Provider(o.defaultsFile), yaml.Parser()); err != nil {
				zap.S().Errorw("config yaml load failed", "file", o.defaultsFile, "err", err)
				return nil, &Error{Record: "source", Field: o.defaultsFile, Err: err}
			}
			zap.S().Debugw("config yaml loaded", "file", o.defaultsFile)
		}
	}

	if o.envFile != "" {
		vals, err := godotenv.Read(o.envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			zap.S().Debugw("config env file absent", "file", o.envFile)
		case err != nil:
			zap.S().Errorw("config env file read failed", "file", o.envFile, "err", err)
			return nil, &Error{Record: "source", Field: o.envFile, Err: err}
		default:
			if err := k.Load(confmap.Provider(toAny(vals), ""), nil); err != nil {
				return nil, &Error{Record: "source", Field: o.envFile, Err: err}
			}
			zap.S().Debugw("config env file loaded", "file", o.envFile, "keys", len(vals))
		}
	}

	if o.processEnv {
		if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
			zap.S().Errorw("config env overlay failed", "err", err)
			return nil, &Error{Record: "source", Err: err}
		}
	}

	if len(o.values) > 0 {
		if err := k.Load(confmap.Provider(toAny(o.values), ""), nil); err != nil {
			return nil, &Error{Record: "source", Err: err}
		}
	}

	if o.resolver != nil {
		if err := resolveSecrets(ctx, k, o.resolver); err != nil {
			return nil, err
		}
	}

	return &Source{k: k}, nil
}

// Lookup returns the raw string for key and whether any layer set it.
func (s *Source) Lookup(key string) (string, bool) {
	if !s.k.Exists(key) {
		return "", false
	}
	return s.k.String(key), true
}

// KeysWithPrefix lists every top-level key that starts with prefix.
func (s *Source) KeysWithPrefix(prefix string) []string {
	var out []string
	for _, key := range s.k.Keys() {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// resolveSecrets swaps `vault:` references for their values.  Only keys a
// record reads are touched; the rest of the environment is never sent to
// the resolver.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, r SecretResolver) error {
	resolved := make(map[string]any)
	for key, raw := range k.All() {
		if !isRecordKey(key) {
			continue
		}
		ref, ok := raw.(string)
		if !ok || !strings.HasPrefix(ref, SecretPrefix) {
			continue
		}
		val, err := r.Resolve(ctx, ref)
		if err != nil {
			zap.S().Errorw("config secret resolve failed", "key", key, "err", err)
			return &Error{Record: "source", Field: key, Err: err}
		}
		resolved[key] = val
	}
	if len(resolved) == 0 {
		return nil
	}
	zap.S().Debugw("config secrets resolved", "count", len(resolved))
	return k.Load(confmap.Provider(resolved, ""), nil)
}

// recordKeys holds every fixed key the four records decode, read from their
// koanf tags.
var recordKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, rec := range []any{App{}, AI{}, Database{}, Auth{}} {
		t := reflect.TypeOf(rec)
		for i := 0; i < t.NumField(); i++ {
			if name := t.Field(i).Tag.Get("koanf"); name != "" {
				keys[name] = struct{}{}
			}
		}
	}
	return keys
}()

func isRecordKey(key string) bool {
	if _, ok := recordKeys[key]; ok {
		return true
	}
	return strings.HasPrefix(key, ModelPrefix)
}

func toAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
