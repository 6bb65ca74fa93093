// internal/content/sqlite_test.go
//
// Editor against an in-memory SQLite database with foreign keys enforced.
//
// Run: go test ./internal/content -run SQLite -v

package content

import (
	"context"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/schema"
	"github.com/joel-cespedes/petit/internal/store"
)

// ddl renders a permissive CREATE TABLE for t; every allow-listed column
// is TEXT and the slug column, when present, is unique.
func ddl(t *schema.Table) string {
	cols := []string{"id INTEGER PRIMARY KEY AUTOINCREMENT"}
	for _, c := range t.Columns() {
		def := c + " TEXT"
		if c == t.Slug {
			def += " UNIQUE"
		}
		cols = append(cols, def)
	}
	if t.CreatedAt {
		cols = append(cols, "created_at DATETIME DEFAULT CURRENT_TIMESTAMP")
	}
	if t.Stamped {
		cols = append(cols, "updated_at DATETIME DEFAULT CURRENT_TIMESTAMP")
	}
	return "CREATE TABLE " + t.Name + " (" + strings.Join(cols, ", ") + ")"
}

const blogTagsDDL = `CREATE TABLE blog_tags (
	blog_id INTEGER NOT NULL REFERENCES blogs(id),
	tag_id  INTEGER NOT NULL REFERENCES tags(id),
	PRIMARY KEY (blog_id, tag_id)
)`

func openSQLite(t *testing.T) (*Editor, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, q := range []string{ddl(schema.Tags), ddl(schema.Blogs), blogTagsDDL} {
		_, err := db.Exec(q)
		require.NoError(t, err, q)
	}
	return NewEditor(store.New(db)), db
}

func count(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestSQLiteEditorRoundTrip(t *testing.T) {
	e, _ := openSQLite(t)
	ctx := context.Background()

	tag, err := e.Create(ctx, schema.Tags, map[string]any{"name_en": "Travel", "name_es": "Viajes"})
	require.NoError(t, err)

	in := map[string]any{
		"title_en":       "Hello World",
		"title_nl":       "Hallo Wereld",
		"description_es": "Hola",
	}
	id, err := e.Create(ctx, schema.Blogs, map[string]any{
		"title_en":       in["title_en"],
		"title_nl":       in["title_nl"],
		"description_es": in["description_es"],
		"tag_ids":        []any{float64(tag)},
	})
	require.NoError(t, err)
	require.Positive(t, id)

	rec, err := e.Get(ctx, schema.Blogs, id)
	require.NoError(t, err)
	for k, v := range in {
		assert.Equal(t, v, rec[k], k)
	}
	assert.Equal(t, "hello-world", rec["slug"])
	assert.Equal(t, id, rec["id"])
	assert.Equal(t, []int64{tag}, rec["tag_ids"])

	got, err := e.Get(ctx, schema.Tags, tag)
	require.NoError(t, err)
	assert.Equal(t, "travel", got["slug"])
	assert.Equal(t, "Viajes", got["name_es"])
}

func TestSQLiteCreateWithUnknownTagLeavesNoRow(t *testing.T) {
	e, db := openSQLite(t)
	ctx := context.Background()
	input := map[string]any{"title_en": "Hello", "tag_ids": []any{float64(999)}}

	_, err := e.Create(ctx, schema.Blogs, input)
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)
	assert.Zero(t, count(t, db, "blogs"))
	assert.Zero(t, count(t, db, "blog_tags"))

	// Nothing was committed, so the slug is still free.
	tag, err := e.Create(ctx, schema.Tags, map[string]any{"name_en": "Real"})
	require.NoError(t, err)
	input["tag_ids"] = []any{float64(tag)}
	_, err = e.Create(ctx, schema.Blogs, input)
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, db, "blogs"))
}

func TestSQLiteUpdateWithUnknownTagLeavesFields(t *testing.T) {
	e, _ := openSQLite(t)
	ctx := context.Background()

	tag, err := e.Create(ctx, schema.Tags, map[string]any{"name_en": "Travel"})
	require.NoError(t, err)
	id, err := e.Create(ctx, schema.Blogs, map[string]any{
		"title_en": "Before",
		"tag_ids":  []any{float64(tag)},
	})
	require.NoError(t, err)

	_, err = e.Update(ctx, schema.Blogs, id, map[string]any{
		"title_en": "After",
		"tag_ids":  []any{float64(999)},
	})
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)

	rec, err := e.Get(ctx, schema.Blogs, id)
	require.NoError(t, err)
	assert.Equal(t, "Before", rec["title_en"])
	assert.Equal(t, []int64{tag}, rec["tag_ids"])
}

func TestSQLiteUpdateMissingRowWritesNoLinks(t *testing.T) {
	e, db := openSQLite(t)
	ctx := context.Background()

	tag, err := e.Create(ctx, schema.Tags, map[string]any{"name_en": "Travel"})
	require.NoError(t, err)

	_, err = e.Update(ctx, schema.Blogs, 404, map[string]any{"tag_ids": []any{float64(tag)}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Zero(t, count(t, db, "blog_tags"))
}
