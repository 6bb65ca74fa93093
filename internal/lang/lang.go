// Package lang holds the fixed set of content languages.  Any operation
// that accepts a language must run it through Parse before touching the
// store.
package lang

import (
	"fmt"

	"github.com/joel-cespedes/petit/internal/apperr"
)

// Code is an ISO 639-1 language code from the supported set.
type Code string

const (
	EN Code = "en"
	ES Code = "es"
	NL Code = "nl"
)

// Default is used when a request omits ?lang.
const Default = EN

var all = []Code{EN, ES, NL}

// All returns the supported codes in column-declaration order.
func All() []Code {
	out := make([]Code, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c belongs to the supported set.  Comparison is
// exact; "EN" is not valid.
func (c Code) Valid() bool {
	for _, k := range all {
		if k == c {
			return true
		}
	}
	return false
}

// Parse maps a raw query value to a Code.  The empty string yields Default.
func Parse(raw string) (Code, error) {
	if raw == "" {
		return Default, nil
	}
	c := Code(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w %q: use one of %v", apperr.ErrInvalidLanguage, raw, all)
	}
	return c, nil
}
