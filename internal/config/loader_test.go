package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
http:
  listen_addr: ":8080"
  allowed_origins: ["http://localhost:4200"]
database:
  driver: mysql
  dsn: "vault:secret/petit/db#dsn"
auth:
  jwt_secret: "vault:secret/petit/auth#jwt"
upload:
  backend: local
  dir: uploads
`

type fakeVault map[string]string

func (f fakeVault) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := f[ref]
	if !ok {
		return "", errors.New("no such secret")
	}
	return v, nil
}

func writeRoot(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "conf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644))
	return root
}

func TestLoadResolvesVaultAndDefaults(t *testing.T) {
	root := writeRoot(t, baseYAML)
	calls := 0
	secrets := fakeVault{
		"vault:secret/petit/db#dsn":   "petit:pw@tcp(db:3306)/petit?parseTime=true",
		"vault:secret/petit/auth#jwt": "0123456789abcdef0123456789abcdef",
	}

	cfg, err := LoadFrom(context.Background(), root, func() (SecretResolver, error) {
		calls++
		return secrets, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "petit:pw@tcp(db:3306)/petit?parseTime=true", cfg.Database.DSN)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, filepath.Join(root, "uploads"), cfg.Upload.Dir)
	assert.Equal(t, "/uploads", cfg.Upload.URLPrefix)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.HTTP.AllowedOrigins)
	assert.Same(t, cfg, Get())
}

func TestLoadEnvOverride(t *testing.T) {
	root := writeRoot(t, baseYAML)
	t.Setenv("PETIT_HTTP__LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("PETIT_AUTH__TOKEN_TTL", "2h")

	cfg, err := LoadFrom(context.Background(), root, func() (SecretResolver, error) {
		return fakeVault{
			"vault:secret/petit/db#dsn":   "dsn",
			"vault:secret/petit/auth#jwt": "0123456789abcdef0123456789abcdef",
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.ListenAddr)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadWithoutVaultNeverDials(t *testing.T) {
	root := writeRoot(t, `
http: {listen_addr: ":8080"}
database: {driver: sqlite3, dsn: "file:petit.db"}
auth: {jwt_secret: "0123456789abcdef0123456789abcdef"}
upload: {backend: local, dir: /tmp/up}
`)
	cfg, err := LoadFrom(context.Background(), root, func() (SecretResolver, error) {
		t.Fatal("resolver constructed without vault: values")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/up", cfg.Upload.Dir)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"short secret": `
http: {listen_addr: ":8080"}
database: {driver: mysql, dsn: x}
auth: {jwt_secret: short}
upload: {backend: local, dir: up}
`,
		"bad driver": `
http: {listen_addr: ":8080"}
database: {driver: oracle, dsn: x}
auth: {jwt_secret: "0123456789abcdef0123456789abcdef"}
upload: {backend: local, dir: up}
`,
		"s3 without bucket": `
http: {listen_addr: ":8080"}
database: {driver: mysql, dsn: x}
auth: {jwt_secret: "0123456789abcdef0123456789abcdef"}
upload: {backend: s3}
`,
	}
	for name, yaml := range cases {
		_, err := LoadFrom(context.Background(), writeRoot(t, yaml), nil)
		assert.Error(t, err, name)
	}
}

func TestLoadVaultFailure(t *testing.T) {
	_, err := LoadFrom(context.Background(), writeRoot(t, baseYAML), func() (SecretResolver, error) {
		return fakeVault{}, nil
	})
	assert.Error(t, err)
}
