// internal/content/editor.go
//
// Editor: generic admin CRUD over any catalog table.
//
// Context
// -------
// Every admin endpoint funnels through the same seven operations,
// parameterised by the table descriptor.  Input maps go through
// query.Validate, statements through the dialect's Builder, and writes
// through the store's commit boundary.
//
// Workflow
// --------
//   - Create: validate → fill slug from the English title when omitted →
//     insert → replace links (if any), in one unit.
//   - Update: validate → update by id (stamps updated_at) → replace links,
//     in one unit.  Zero rows matched is NotFound and rolls back.
//   - Delete: drop links and the row in one unit.  Missing rows are not an
//     error; RowsAffected reports 0.
//
// Notes
// -----
//   - Admin reads show every language column side by side.
//   - Link rows are written in the same transaction as the row they hang
//     off, so a bad id in tag_ids leaves the row untouched.
package content

import (
	"context"
	"errors"
	"strings"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/query"
	"github.com/joel-cespedes/petit/internal/routing"
	"github.com/joel-cespedes/petit/internal/schema"
	"github.com/joel-cespedes/petit/internal/store"
)

// Store is what the editor needs from *store.Store.
type Store interface {
	Reader
	Exec(ctx context.Context, st query.Statement) (store.Result, error)
	ExecBatch(ctx context.Context, stmts []query.Statement) ([]store.Result, error)
	ExecThen(ctx context.Context, first query.Statement, then store.Then) ([]store.Result, error)
	Builder() query.Builder
}

// Editor serves admin reads and writes.
type Editor struct {
	store Store
}

// NewEditor returns an Editor over s.
func NewEditor(s Store) *Editor { return &Editor{store: s} }

//
// Pages
//

// GetPage returns every allow-listed column of the singleton row.
func (e *Editor) GetPage(ctx context.Context, t *schema.Table) (store.Record, error) {
	rec, err := e.store.Get(ctx, query.SelectPageAdmin(t))
	if errors.Is(err, apperr.ErrNotFound) {
		return store.Record{}, nil
	}
	return rec, err
}

// UpdatePage applies input to the singleton row.
func (e *Editor) UpdatePage(ctx context.Context, t *schema.Table, input map[string]any) (store.Result, error) {
	return e.update(ctx, t, query.PageID, input)
}

//
// Collections
//

// List returns every row of t, published or not, in table order.
func (e *Editor) List(ctx context.Context, t *schema.Table) ([]store.Record, error) {
	return e.store.Select(ctx, query.SelectAll(t))
}

// Get returns one row by id with link fields as id arrays.
func (e *Editor) Get(ctx context.Context, t *schema.Table, id int64) (store.Record, error) {
	rec, err := e.store.Get(ctx, query.SelectByID(t, id))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound(t.Route + " item")
	}
	if err != nil {
		return nil, err
	}
	for i := range t.Links {
		link := &t.Links[i]
		rows, err := e.store.Select(ctx, query.SelectLinkIDs(link, id))
		if err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			if v, ok := asInt64(row[schema.ColID]); ok {
				ids = append(ids, v)
			}
		}
		rec[link.Field] = ids
	}
	return rec, nil
}

// Create inserts a row and returns its id.
func (e *Editor) Create(ctx context.Context, t *schema.Table, input map[string]any) (int64, error) {
	fs, err := query.Validate(t, input, query.Insert)
	if err != nil {
		return 0, err
	}
	fs = fillSlug(t, fs)

	b := e.store.Builder()
	st, err := b.Build(t, query.Insert, fs, nil)
	if err != nil {
		return 0, err
	}
	links := fs.Links()
	out, err := e.store.ExecThen(ctx, st, func(r store.Result) ([]query.Statement, error) {
		return e.linkStatements(t, r.GeneratedID, links), nil
	})
	if err != nil {
		return 0, err
	}
	return out[0].GeneratedID, nil
}

// Update applies input to one row by id.
func (e *Editor) Update(ctx context.Context, t *schema.Table, id int64, input map[string]any) (store.Result, error) {
	return e.update(ctx, t, id, input)
}

// Delete removes one row by id, including its link rows.
func (e *Editor) Delete(ctx context.Context, t *schema.Table, id int64) (store.Result, error) {
	b := e.store.Builder()
	var stmts []query.Statement
	for i := range t.Links {
		stmts = append(stmts, b.ReplaceLinks(&t.Links[i], id, nil)...)
	}
	del, err := b.Build(t, query.Delete, query.FieldSet{}, &query.Key{ID: id})
	if err != nil {
		return store.Result{}, err
	}
	res, err := e.store.ExecBatch(ctx, append(stmts, del))
	if err != nil {
		return store.Result{}, err
	}
	return res[len(res)-1], nil
}

func (e *Editor) update(ctx context.Context, t *schema.Table, id int64, input map[string]any) (store.Result, error) {
	fs, err := query.Validate(t, input, query.Update)
	if err != nil {
		return store.Result{}, err
	}
	links := fs.Links()

	if fs.Len() > 0 || t.Stamped {
		st, err := e.store.Builder().Build(t, query.Update, fs, &query.Key{ID: id})
		if err != nil {
			return store.Result{}, err
		}
		out, err := e.store.ExecThen(ctx, st, func(r store.Result) ([]query.Statement, error) {
			if r.RowsAffected == 0 {
				return nil, apperr.NotFound(t.Route + " item")
			}
			return e.linkStatements(t, id, links), nil
		})
		if err != nil {
			return store.Result{}, err
		}
		return out[0], nil
	}

	// Links only, on a table without updated_at.
	if _, err := e.Get(ctx, t, id); err != nil {
		return store.Result{}, err
	}
	if _, err := e.store.ExecBatch(ctx, e.linkStatements(t, id, links)); err != nil {
		return store.Result{}, err
	}
	return store.Result{}, nil
}

func (e *Editor) linkStatements(t *schema.Table, owner int64, links map[string][]int64) []query.Statement {
	if len(links) == 0 {
		return nil
	}
	b := e.store.Builder()
	var stmts []query.Statement
	for i := range t.Links {
		link := &t.Links[i]
		ids, ok := links[link.Field]
		if !ok {
			continue
		}
		stmts = append(stmts, b.ReplaceLinks(link, owner, ids)...)
	}
	return stmts
}

// fillSlug derives the slug from the English title when the table has a
// slug column and the caller left it out or blank.
func fillSlug(t *schema.Table, fs query.FieldSet) query.FieldSet {
	if t.Slug == "" {
		return fs
	}
	if v, ok := fs.Value(t.Slug); ok {
		if s, _ := v.(string); strings.TrimSpace(s) != "" {
			return fs
		}
	}
	title := ""
	if col := t.TitleColumn(); col != "" {
		if v, ok := fs.Value(col); ok {
			title, _ = v.(string)
		}
	}
	return fs.With(t.Slug, routing.MakeSlug(title))
}
