// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// Four flat records, one per consumer:
//
//   • App       – bind address, environment name, and debug flag for the
//                 HTTP server,
//   • AI        – API key and model identifiers for the generative-AI client,
//   • Database  – credentials and location, rendered by DSN(),
//   • Auth      – OAuth client and JWT signing parameters.
//
// Struct tags carry the env key (`koanf:"…"`).  Loading only coerces types;
// range checks belong to the consumer that opens the socket.  Records are
// handed out by value, so a consumer can never change what another consumer
// sees.
//
// Notes
// -----
//   • Secret fields redact themselves under fmt and zap's sugared logger.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "sort"

// Secret is a string that never prints itself.
type Secret string

func (Secret) String() string   { return "[redacted]" }
func (Secret) GoString() string { return `"[redacted]"` }

// Reveal returns the plain value.  Call it only at the point of use.
func (s Secret) Reveal() string { return string(s) }

//
// App section
//

// App holds what the HTTP server needs to start.
type App struct {
	Name  string `koanf:"APP_NAME"`
	Env   string `koanf:"ENV"`
	Host  string `koanf:"HOST"`
	Port  int    `koanf:"PORT"`
	Debug bool   `koanf:"DEBUG"`
}

//
// AI section
//

// ModelPrefix selects the open set of model-identifier keys kept on AI.
const ModelPrefix = "GEMINI_MODEL_"

// AI configures the generative-AI client.  The four named models are
// required; any further GEMINI_MODEL_* key is kept and reachable through
// Model, so new variants need no code change.
type AI struct {
	APIKey     Secret `koanf:"GOOGLE_API_KEY"`
	Flash      string `koanf:"GEMINI_MODEL_2_5_FLASH"`
	FlashLite  string `koanf:"GEMINI_MODEL_2_5_FLASH_LITE"`
	FlashLive  string `koanf:"GEMINI_MODEL_2_5_FLASH_LIVE"`
	FlashImage string `koanf:"GEMINI_MODEL_2_5_FLASH_IMAGE"`

	models map[string]string
}

// Model looks up a model identifier by its env key.
func (a AI) Model(key string) (string, bool) {
	id, ok := a.models[key]
	return id, ok
}

// ModelKeys returns every configured model key in sorted order.
func (a AI) ModelKeys() []string {
	keys := make([]string, 0, len(a.models))
	for k := range a.models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

//
// Database section
//

// DefaultDatabasePort applies when DB_PORT_SQL is unset.
const DefaultDatabasePort = 5432

// Database locates the PostgreSQL instance.  A Host beginning with "/" is a
// Unix-socket directory (Cloud SQL style) rather than a network host.
type Database struct {
	User     string `koanf:"DB_USER_SQL"`
	Password Secret `koanf:"DB_PASSWORD_SQL"`
	Name     string `koanf:"DB_NAME_SQL"`
	Host     string `koanf:"DB_HOST_SQL"`
	Port     int    `koanf:"DB_PORT_SQL"`
}

//
// Auth section
//

// DefaultJWTAlgorithm applies when JWT_ALGORITHM is unset.
const DefaultJWTAlgorithm = "HS256"

// Auth holds OAuth and JWT parameters.  The OAuth client secret is stored
// base64-encoded; ClientSecret decodes it.
type Auth struct {
	ClientID        string `koanf:"OIDC_GOOGLE_CLIENT_ID"`
	JWTSecret       Secret `koanf:"JWT_SECRET_KEY"`
	JWTAlgorithm    string `koanf:"JWT_ALGORITHM"`
	ExpireMinutes   int    `koanf:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	ClientSecretB64 Secret `koanf:"GOOGLE_CLIENT_SECRET_B64"`
}

//
// Root aggregate
//

// Settings is everything Load produces.  main builds it once and passes the
// relevant record to each consumer.
type Settings struct {
	App      App
	AI       AI
	Database Database
	Auth     Auth
}
