// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `PETIT_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the Vault
// client *before* unmarshalling, so the model never stores Vault URIs.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr     string        `koanf:"listen_addr"     validate:"required,hostname_port"`
	ForceHTTPS     bool          `koanf:"force_https"`
	AllowedOrigins []string      `koanf:"allowed_origins" validate:"dive,required"`
	PublicURL      string        `koanf:"public_url"      validate:"omitempty,url"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gte=0"`
	MaxBodyBytes   int64         `koanf:"max_body_bytes"  validate:"gte=0"`
}

//
// Database section
//

// Database selects the driver and pool sizes.  DSN is usually a vault:
// reference so credentials stay out of flat files.
type Database struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=mysql pgx sqlite3"`
	DSN             string        `koanf:"dsn"               validate:"required"`
	MaxOpen         int           `koanf:"max_open"          validate:"gte=0"`
	MaxIdle         int           `koanf:"max_idle"          validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
	StmtTimeout     time.Duration `koanf:"stmt_timeout"      validate:"gte=0"`
}

//
// Auth section
//

// Auth configures admin session tokens.
type Auth struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=32"`
	TokenTTL  time.Duration `koanf:"token_ttl"  validate:"gte=0"`
	Issuer    string        `koanf:"issuer"`
}

//
// Upload section
//

// Upload selects where admin images go.
type Upload struct {
	Backend   string `koanf:"backend"    validate:"required,oneof=local s3"`
	Dir       string `koanf:"dir"        validate:"required_if=Backend local"`
	URLPrefix string `koanf:"url_prefix"`
	MaxBytes  int64  `koanf:"max_bytes"  validate:"gte=0"`
	S3Bucket  string `koanf:"s3_bucket"  validate:"required_if=Backend s3"`
	S3Region  string `koanf:"s3_region"  validate:"required_if=Backend s3"`
	S3Prefix  string `koanf:"s3_prefix"`
	PublicURL string `koanf:"public_url" validate:"omitempty,url"`
}

//
// Log section
//

// Log configures the zap sinks.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // PETIT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load().
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	Upload   Upload   `koanf:"upload"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"`
}
