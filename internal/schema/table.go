// internal/schema/table.go
//
// ContentTable descriptors.
//
// Context
// -------
// Every store relation the API can read or write is described by one
// *Table value declared in catalog.go.  The descriptor is the only source
// of identifiers that may appear in statement text: table name, the
// allow-listed columns, the published/slug/order columns, and link tables.
// Nothing in this package is ever derived from request input.
//
// Column model
// ------------
//   - Plain columns hold language-agnostic values (slug, image URLs, flags).
//   - Localized columns are declared by base name and stored once per
//     language as `<base>_<lang>`; `title` → title_en, title_es, title_nl.
//   - System columns (id, created_at, updated_at) are managed by the store
//     and are never part of the allow-list.
//
// Notes
// -----
//   - Tables are sealed on construction; the allow-list is immutable.
//   - Column order is declaration order: plain columns first, then each
//     localized base for every language in lang.All() order.
package schema

import (
	"github.com/joel-cespedes/petit/internal/lang"
)

// Kind classifies how a table's rows are read.
type Kind int

const (
	SingletonPage       Kind = iota + 1 // one row, id = 1
	PublishedCollection                 // many rows, publish flag + order
	TaggedItem                          // taxonomy rows, slug addressed, no publish flag
	AppendOnly                          // public submissions
)

func (k Kind) String() string {
	switch k {
	case SingletonPage:
		return "singleton_page"
	case PublishedCollection:
		return "published_collection"
	case TaggedItem:
		return "tagged_item"
	case AppendOnly:
		return "append_only"
	default:
		return "unknown"
	}
}

// Strategy says how languages map onto physical columns.
type Strategy int

const (
	ColumnSuffixPerLanguage Strategy = iota + 1
	SingleLanguageAgnostic
)

// Order is a fixed, kind-specific ORDER BY clause.
type Order int

const (
	OrderID Order = iota
	OrderSortPosition
	OrderPublishedDesc
	OrderCreatedDesc
)

// Clause returns the ORDER BY body.  Strings are constants.
func (o Order) Clause() string {
	switch o {
	case OrderSortPosition:
		return "sort_order ASC, id ASC"
	case OrderPublishedDesc:
		return "published_at DESC, id DESC"
	case OrderCreatedDesc:
		return "created_at DESC, id DESC"
	default:
		return "id ASC"
	}
}

// System-managed column names.
const (
	ColID        = "id"
	ColCreatedAt = "created_at"
	ColUpdatedAt = "updated_at"
)

// IsSystem reports whether col is store-managed.
func IsSystem(col string) bool {
	return col == ColID || col == ColCreatedAt || col == ColUpdatedAt
}

// Link describes a many-to-many association edited as an id array, e.g.
// blogs.tag_ids ↔ blog_tags(blog_id, tag_id) ↔ tags.
type Link struct {
	Field        string // payload key, e.g. "tag_ids"
	JoinTable    string
	OwnerColumn  string // FK to the owning table
	TargetColumn string // FK to Target
	Target       *Table
	As           string // key under which resolved targets are attached, e.g. "tags"
}

// Table is the descriptor for one relation.  Construct with newTable.
type Table struct {
	Name      string // physical relation name
	Route     string // URL segment under /api and /api/admin
	Kind      Kind
	Strategy  Strategy
	Plain     []string
	Localized []string

	CreatedAt bool   // has created_at
	Stamped   bool   // has updated_at, refreshed on every update
	Published string // boolean publish column, "" when none
	Slug      string // unique slug column, "" when none
	Order     Order
	Links     []Link

	cols  []string
	set   map[string]struct{}
	links map[string]*Link
}

func newTable(t Table) *Table {
	tt := t
	tt.set = make(map[string]struct{})
	tt.links = make(map[string]*Link)
	for _, c := range tt.Plain {
		tt.add(c)
	}
	if tt.Strategy == ColumnSuffixPerLanguage {
		for _, base := range tt.Localized {
			for _, l := range lang.All() {
				tt.add(base + "_" + string(l))
			}
		}
	}
	for i := range tt.Links {
		tt.links[tt.Links[i].Field] = &tt.Links[i]
	}
	return &tt
}

func (t *Table) add(col string) {
	if _, dup := t.set[col]; dup || IsSystem(col) {
		panic("schema: bad column " + col + " on " + t.Name)
	}
	t.set[col] = struct{}{}
	t.cols = append(t.cols, col)
}

// Columns returns the allow-list in declaration order.  The slice is a
// copy.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// Has reports whether col is in the allow-list.
func (t *Table) Has(col string) bool {
	_, ok := t.set[col]
	return ok
}

// Link returns the association addressed by payload key field.
func (t *Table) Link(field string) (*Link, bool) {
	l, ok := t.links[field]
	return l, ok
}

// Projection is one selected physical column and the name it is presented
// under.
type Projection struct {
	Column string
	As     string
}

// LocalizedFor returns the projection of the table for one language:
// plain columns unchanged, localized columns `<base>_<lang>` aliased to
// `<base>`.  Other languages' columns are not included.
func (t *Table) LocalizedFor(l lang.Code) []Projection {
	out := make([]Projection, 0, len(t.Plain)+len(t.Localized))
	for _, c := range t.Plain {
		out = append(out, Projection{Column: c, As: c})
	}
	if t.Strategy != ColumnSuffixPerLanguage {
		return out
	}
	for _, base := range t.Localized {
		out = append(out, Projection{Column: base + "_" + string(l), As: base})
	}
	return out
}

// AdminColumns returns id, every allow-listed column, and the timestamps
// the table carries.  Used for admin reads where all languages are shown.
func (t *Table) AdminColumns() []string {
	out := make([]string, 0, len(t.cols)+3)
	out = append(out, ColID)
	out = append(out, t.cols...)
	if t.CreatedAt {
		out = append(out, ColCreatedAt)
	}
	if t.Stamped {
		out = append(out, ColUpdatedAt)
	}
	return out
}

// TitleColumn returns the English title-like column used to derive a slug,
// or "" when the table has none.
func (t *Table) TitleColumn() string {
	for _, base := range []string{"title", "name"} {
		if c := base + "_" + string(lang.EN); t.Has(c) {
			return c
		}
		if t.Has(base) {
			return base
		}
	}
	return ""
}
