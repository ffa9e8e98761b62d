// internal/config/model.go
//
// Typed configuration model for Sitedesk.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                             – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `SITEDESK_`-prefixed environment overrides  – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	TrustProxy   bool          `koanf:"trust_proxy"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

//
// Database section
//

// Database holds connection settings.  `Password` is normally a
// `vault:` reference so credentials stay out of flat files and git history.
type Database struct {
	Host         string `koanf:"host"           validate:"required"`
	Port         int    `koanf:"port"           validate:"required,min=1,max=65535"`
	User         string `koanf:"user"           validate:"required"`
	Password     string `koanf:"password"       validate:"required"`
	Name         string `koanf:"name"           validate:"required"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `koanf:"max_idle_conns" validate:"gte=0"`
}

//
// Auth section
//

// Auth configures bearer tokens and password hashing.
type Auth struct {
	JWTSecret  string        `koanf:"jwt_secret"  validate:"required,min=32"`
	Issuer     string        `koanf:"issuer"      validate:"required"`
	TokenTTL   time.Duration `koanf:"token_ttl"   validate:"required"`
	BcryptCost int           `koanf:"bcrypt_cost" validate:"gte=0,lte=31"`
}

//
// Analytics section
//

// Analytics holds the optional GeoLite2 path used by visit ingestion.
// Empty disables country lookup.
type Analytics struct {
	GeoIPPath string `koanf:"geoip_path"`
}

//
// Log section
//

// Log configures the zap logger.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // SITEDESK_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	Auth      Auth      `koanf:"auth"`
	Analytics Analytics `koanf:"analytics"`
	Log       Log       `koanf:"log"`
	Paths     Paths     `koanf:"-"`
}

// applyDefaults fills zero values that have an obvious default.
func (c *Config) applyDefaults() {
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "sitedesk"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
