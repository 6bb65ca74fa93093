// internal/content/content_test.go
//
// Resolver and Editor against sqlmock through the real store.
//
// Run: go test ./internal/content -v

package content

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/query"
	"github.com/joel-cespedes/petit/internal/schema"
	"github.com/joel-cespedes/petit/internal/store"
)

func newStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(sqlx.NewDb(db, "mysql")), mock
}

//
// Resolver
//

func TestResolverRejectsLanguageBeforeStore(t *testing.T) {
	s, mock := newStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	_, err := r.Page(ctx, schema.HomePage, "fr")
	assert.ErrorIs(t, err, apperr.ErrInvalidLanguage)
	_, err = r.Collection(ctx, schema.Services, "fr", query.Filter{})
	assert.ErrorIs(t, err, apperr.ErrInvalidLanguage)
	_, err = r.Single(ctx, schema.Blogs, "de", "x")
	assert.ErrorIs(t, err, apperr.ErrInvalidLanguage)
	_, err = r.Collection(ctx, schema.Partners, "xx", query.Filter{})
	assert.ErrorIs(t, err, apperr.ErrInvalidLanguage, "agnostic tables still validate")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolverPageMissingIsEmpty(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM blog_page WHERE id = ?`)).
		WithArgs(query.PageID).
		WillReturnRows(sqlmock.NewRows([]string{"page_title"}))

	rec, err := NewResolver(s).Page(context.Background(), schema.BlogPage, "")
	require.NoError(t, err)
	assert.Empty(t, rec)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolverPageAliases(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`page_title_es AS page_title`)).
		WillReturnRows(sqlmock.NewRows([]string{"background_image", "page_title", "page_breadcrumb", "read_more"}).
			AddRow("/uploads/bg.jpg", "Blog", "Inicio", "Leer más"))

	rec, err := NewResolver(s).Page(context.Background(), schema.BlogPage, "es")
	require.NoError(t, err)
	assert.Equal(t, "Leer más", rec["read_more"])
	assert.NotContains(t, rec, "read_more_es")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolverCollectionAttachesTags(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM blogs WHERE is_published = TRUE AND id IN (`)).
		WithArgs("travel").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "title"}).
			AddRow(int64(2), "b", "B").
			AddRow(int64(1), "a", "A"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM blog_tags jt JOIN tags tg ON tg.id = jt.tag_id WHERE jt.blog_id IN (?, ?)`)).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "id", "slug", "name"}).
			AddRow(int64(1), int64(5), "travel", "Travel"))

	recs, err := NewResolver(s).Collection(context.Background(), schema.Blogs, "en", query.Filter{Tag: "travel"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[0]["slug"])
	assert.Equal(t, []store.Record{}, recs[0]["tags"])
	tags := recs[1]["tags"].([]store.Record)
	require.Len(t, tags, 1)
	assert.Equal(t, "travel", tags[0]["slug"])
	assert.NotContains(t, tags[0], "owner_id")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolverEmptyCollectionSkipsTagQuery(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM blogs`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	recs, err := NewResolver(s).Collection(context.Background(), schema.Blogs, "nl", query.Filter{})
	require.NoError(t, err)
	assert.Empty(t, recs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolverSingleNotFound(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM blogs WHERE slug = ? AND is_published = TRUE LIMIT 1`)).
		WithArgs("unknown-slug").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewResolver(s).Single(context.Background(), schema.Blogs, "en", "unknown-slug")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

//
// Editor
//

func TestEditorUnknownFieldTouchesNothing(t *testing.T) {
	s, mock := newStore(t)

	_, err := NewEditor(s).Update(context.Background(), schema.Services, 42,
		map[string]any{"title_en": "X", "bogus_field": "Y"})

	var ufe *apperr.UnknownFieldError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "bogus_field", ufe.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditorCreateFillsSlug(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO services (slug, title_en) VALUES (?, ?)`)).
		WithArgs("interior-design", "Interior Design").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	id, err := NewEditor(s).Create(context.Background(), schema.Services,
		map[string]any{"title_en": "Interior Design"})
	require.NoError(t, err)
	assert.EqualValues(t, 5, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditorCreateKeepsGivenSlug(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags (slug, name_en) VALUES (?, ?)`)).
		WithArgs("mine", "Travel").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, err := NewEditor(s).Create(context.Background(), schema.Tags,
		map[string]any{"slug": "mine", "name_en": "Travel"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditorCreateWithLinks(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO blogs (slug, title_en) VALUES (?, ?)`)).
		WithArgs("hello", "Hello").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM blog_tags WHERE blog_id = ?`)).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO blog_tags (blog_id, tag_id) VALUES (?, ?)`)).
		WithArgs(int64(9), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := NewEditor(s).Create(context.Background(), schema.Blogs, map[string]any{
		"title_en": "Hello",
		"tag_ids":  []any{json.Number("3")},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditorCreateLinkFailureRollsBack(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO blogs (slug, title_en) VALUES (?, ?)`)).
		WithArgs("hello", "Hello").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM blog_tags WHERE blog_id = ?`)).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO blog_tags (blog_id, tag_id) VALUES (?, ?)`)).
		WithArgs(int64(9), int64(999)).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})
	mock.ExpectRollback()

	id, err := NewEditor(s).Create(context.Background(), schema.Blogs, map[string]any{
		"title_en": "Hello",
		"tag_ids":  []any{json.Number("999")},
	})
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)
	assert.Zero(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditorUpdateMissingRow(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE services SET title_en = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)).
		WithArgs("X", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := NewEditor(s).Update(context.Background(), schema.Services, 42, map[string]any{"title_en": "X"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditorUpdatePageEmpty(t *testing.T) {
	s, mock := newStore(t)
	_, err := NewEditor(s).UpdatePage(context.Background(), schema.HomePage, map[string]any{})
	assert.ErrorIs(t, err, apperr.ErrEmptyPayload)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditorDeleteIdempotent(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM blog_tags WHERE blog_id = ?`)).
		WithArgs(int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM blogs WHERE id = ?`)).
		WithArgs(int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	res, err := NewEditor(s).Delete(context.Background(), schema.Blogs, 77)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.RowsAffected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditorGetAttachesLinkIDs(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM blogs WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug"}).AddRow(int64(3), "x"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT tag_id AS id FROM blog_tags WHERE blog_id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(4)))

	rec, err := NewEditor(s).Get(context.Background(), schema.Blogs, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, rec["tag_ids"])
	require.NoError(t, mock.ExpectationsWereMet())
}
