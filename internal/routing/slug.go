// internal/routing/slug.go
//
// Slug and path helpers.
//
// • MakeSlug(title) ─ converts a content title into a URL-safe slug
//   restricted to ASCII a-z, 0-9 and “-”.  Used when an admin creates a
//   service, blog post, or tag without supplying one.
// • BuildPath(parent, name) ─ joins a URL prefix and a name with a single
//   “/” and guarantees exactly one leading slash.  Used for upload URLs.
//
// Rules (MakeSlug)
// ----------------
// 1. Decompose (NFD) and drop combining marks, so “Diseño” → “Diseno”.
// 2. Lower-case everything.
// 3. Convert any run of non-[a-z0-9] characters to one “-”.
// 4. Trim leading / trailing “-”.
// 5. If the result is empty, return "item".
//
// Notes
// -----
// • Titles arrive in English, Spanish, or Dutch; only Latin diacritics are
//   folded.  Other scripts collapse to dashes.
// • Slugs are max 100 bytes.

package routing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlug = 100

// MakeSlug converts title → lower-kebab ASCII.
func MakeSlug(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))

	lastWasDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > maxSlug {
		slug = strings.TrimRight(slug[:maxSlug], "-")
	}
	return slug
}

// BuildPath joins parent + name ensuring exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, name string) string {
	parent = strings.Trim(parent, "/")
	name = strings.Trim(name, "/")

	switch {
	case parent == "" && name == "":
		return "/"
	case parent == "":
		return "/" + name
	case name == "":
		return "/" + parent
	default:
		return "/" + parent + "/" + name
	}
}
