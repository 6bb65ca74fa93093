// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree and resolves vault: references.  Any
// validation error aborts startup, so the binary never runs with a
// malformed configuration.
//
// Cross-field rules live in the struct tags (`required_if=Backend s3`).
// One rule is custom: a resolved value must not still be a vault: URI.

package config

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})
	return val
}

//
// public API
//

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	return noVaultLeft(c)
}

// noVaultLeft fails when a secret-bearing field still holds a reference.
func noVaultLeft(c *Config) error {
	for name, val := range map[string]string{
		"database.dsn":    c.Database.DSN,
		"auth.jwt_secret": c.Auth.JWTSecret,
	} {
		if strings.HasPrefix(val, "vault:") {
			return &unresolvedError{key: name}
		}
	}
	return nil
}

type unresolvedError struct{ key string }

func (e *unresolvedError) Error() string {
	return "config: " + e.key + " is an unresolved vault reference"
}
