// internal/content/resolver.go
//
// Content Resolver: public, language-aware reads.
//
// Context
// -------
// The public site asks for a page, a collection, or one item by slug, in
// one of the supported languages.  The resolver validates the language
// before anything else, picks the projection for that language from the
// table descriptor, and returns records whose localized columns are keyed
// by base name (`title`, not `title_es`).
//
// Notes
// -----
//   - A page whose row does not exist yet resolves to an empty record.
//   - Tables with links get the linked targets attached under Link.As with
//     one extra query for the whole collection.
package content

import (
	"context"
	"errors"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/lang"
	"github.com/joel-cespedes/petit/internal/query"
	"github.com/joel-cespedes/petit/internal/schema"
	"github.com/joel-cespedes/petit/internal/store"
)

// Reader is the read half of *store.Store.
type Reader interface {
	Get(ctx context.Context, st query.Statement) (store.Record, error)
	Select(ctx context.Context, st query.Statement) ([]store.Record, error)
}

// Resolver serves public reads.
type Resolver struct {
	store Reader
}

// NewResolver returns a Resolver reading from s.
func NewResolver(s Reader) *Resolver { return &Resolver{store: s} }

// Page resolves the singleton row of t in language rawLang.
func (r *Resolver) Page(ctx context.Context, t *schema.Table, rawLang string) (store.Record, error) {
	l, err := lang.Parse(rawLang)
	if err != nil {
		return nil, err
	}
	rec, err := r.store.Get(ctx, query.SelectPage(t, l))
	if errors.Is(err, apperr.ErrNotFound) {
		return store.Record{}, nil
	}
	return rec, err
}

// Collection resolves the visible rows of t in language rawLang.
func (r *Resolver) Collection(ctx context.Context, t *schema.Table, rawLang string, f query.Filter) ([]store.Record, error) {
	l, err := lang.Parse(rawLang)
	if err != nil {
		return nil, err
	}
	recs, err := r.store.Select(ctx, query.SelectCollection(t, l, f))
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, t, l, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Single resolves one visible row of t by slug.
func (r *Resolver) Single(ctx context.Context, t *schema.Table, rawLang, slug string) (store.Record, error) {
	l, err := lang.Parse(rawLang)
	if err != nil {
		return nil, err
	}
	if t.Slug == "" {
		return nil, apperr.NotFound(t.Route)
	}
	rec, err := r.store.Get(ctx, query.SelectBySlug(t, l, slug))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound(t.Route + " item")
	}
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, t, l, []store.Record{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

// attach loads every link target for recs and sets rec[link.As].
func (r *Resolver) attach(ctx context.Context, t *schema.Table, l lang.Code, recs []store.Record) error {
	if len(t.Links) == 0 {
		return nil
	}
	owners := make([]int64, 0, len(recs))
	for _, rec := range recs {
		if id, ok := asInt64(rec[schema.ColID]); ok {
			owners = append(owners, id)
		}
	}

	for i := range t.Links {
		link := &t.Links[i]
		byOwner := make(map[int64][]store.Record, len(owners))
		if len(owners) > 0 {
			rows, err := r.store.Select(ctx, query.SelectTagsFor(link, l, owners))
			if err != nil {
				return err
			}
			for _, row := range rows {
				owner, _ := asInt64(row["owner_id"])
				delete(row, "owner_id")
				byOwner[owner] = append(byOwner[owner], row)
			}
		}
		for _, rec := range recs {
			id, _ := asInt64(rec[schema.ColID])
			targets := byOwner[id]
			if targets == nil {
				targets = []store.Record{}
			}
			rec[link.As] = targets
		}
	}
	return nil
}

// asInt64 reads an id value in whichever integer shape the driver used.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
