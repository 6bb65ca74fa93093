// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env` file.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `PETIT_`, where `__` maps to “.”
     (e.g., `PETIT_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, every string value that starts with `vault:` is replaced by
the secret it names, then the tree is unmarshalled into typed structs,
defaulted, validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads during process wiring.

Instrumentation
---------------
  • DEBUG spans - root discovery, YAML read, env overlay.
  • ERROR spans - YAML parse, vault resolution, unmarshal, validation.
  • INFO  span  - final “config loaded” with key highlights (never secrets).
  • Logs use the global *sugared* logger (`zap.S()`), so early boot issues
    surface before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`; this
    lets `go run ./cmd/web` work from any sub-directory.
  • The Vault client is only constructed when a vault: value is present.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/vault"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "PETIT_"

var current atomic.Pointer[Config]

// SecretResolver turns a vault: reference into its value.  *vault.Client
// satisfies it.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves PETIT_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("PETIT_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root, connects to Vault if any value needs it, and
// delegates to LoadFrom.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, rootDir(), func() (SecretResolver, error) {
		return vault.New(ctx, zap.S().Infof)
	})
}

// LoadFrom reads .env, YAML, and env overrides under root.  newResolver is
// called at most once, and only when a vault: value is present.
func LoadFrom(ctx context.Context, root string, newResolver func() (SecretResolver, error)) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: PETIT_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, newResolver); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"db_driver", cfg.Database.Driver,
		"upload_backend", cfg.Upload.Backend,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets replaces every vault: string in k with its secret.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, newResolver func() (SecretResolver, error)) error {
	var res SecretResolver
	for _, key := range k.Keys() {
		raw, ok := k.Get(key).(string)
		if !ok || !vault.IsRef(raw) {
			continue
		}
		if res == nil {
			if newResolver == nil {
				return fmt.Errorf("config: %s needs vault but no resolver is configured", key)
			}
			r, err := newResolver()
			if err != nil {
				return fmt.Errorf("config: vault client: %w", err)
			}
			res = r
		}
		val, err := res.Resolve(ctx, raw)
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.HTTP.RequestTimeout == 0 {
		c.HTTP.RequestTimeout = 30 * time.Second
	}
	if c.HTTP.MaxBodyBytes == 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 15
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Database.StmtTimeout == 0 {
		c.Database.StmtTimeout = 10 * time.Second
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "petit"
	}
	if c.Upload.URLPrefix == "" {
		c.Upload.URLPrefix = "/uploads"
	}
	if c.Upload.Dir != "" && !filepath.IsAbs(c.Upload.Dir) {
		c.Upload.Dir = filepath.Join(c.Paths.Root, c.Upload.Dir)
	}
	if c.Log.Dir == "" {
		c.Log.Dir = filepath.Join(c.Paths.Root, "logs")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the last loaded Config, for process wiring only.
func Get() *Config { return current.Load() }
