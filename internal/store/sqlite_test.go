package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/query"
	"github.com/joel-cespedes/petit/internal/schema"
)

const tagsDDL = `CREATE TABLE tags (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	slug       TEXT NOT NULL UNIQUE,
	name_en    TEXT,
	name_es    TEXT,
	name_nl    TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

func openSQLite(t *testing.T) *Store {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(tagsDDL)
	require.NoError(t, err)
	return New(db)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	b := s.Builder()

	in := map[string]any{"slug": "travel", "name_en": "Travel", "name_es": "Viajes", "name_nl": "Reizen"}
	fs, err := query.Validate(schema.Tags, in, query.Insert)
	require.NoError(t, err)
	st, err := b.Build(schema.Tags, query.Insert, fs, nil)
	require.NoError(t, err)

	res, err := s.Exec(ctx, st)
	require.NoError(t, err)
	require.Positive(t, res.GeneratedID)

	rec, err := s.Get(ctx, query.SelectByID(schema.Tags, res.GeneratedID))
	require.NoError(t, err)
	for k, v := range in {
		assert.Equal(t, v, rec[k], k)
	}
	assert.Equal(t, res.GeneratedID, rec["id"])
}

func TestSQLiteDuplicateSlug(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	fs := query.NewFieldSet(schema.Tags, query.Field{Column: "slug", Value: "dup"})
	st, err := s.Builder().Build(schema.Tags, query.Insert, fs, nil)
	require.NoError(t, err)

	_, err = s.Exec(ctx, st)
	require.NoError(t, err)
	_, err = s.Exec(ctx, st)
	assert.True(t, errors.Is(err, apperr.ErrConstraintViolation), "got %v", err)
}

func TestSQLiteDeleteIdempotent(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	b := s.Builder()

	fs := query.NewFieldSet(schema.Tags, query.Field{Column: "slug", Value: "gone"})
	ins, err := b.Build(schema.Tags, query.Insert, fs, nil)
	require.NoError(t, err)
	res, err := s.Exec(ctx, ins)
	require.NoError(t, err)

	del, err := b.Build(schema.Tags, query.Delete, query.FieldSet{}, &query.Key{ID: res.GeneratedID})
	require.NoError(t, err)

	first, err := s.Exec(ctx, del)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.RowsAffected)

	second, err := s.Exec(ctx, del)
	require.NoError(t, err)
	assert.EqualValues(t, 0, second.RowsAffected)

	_, err = s.Get(ctx, query.SelectByID(schema.Tags, res.GeneratedID))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
