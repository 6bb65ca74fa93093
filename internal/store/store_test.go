// internal/store/store_test.go
//
// Unit-tests for the execution boundary using sqlmock.
//
// Run: go test ./internal/store -v

package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/lang"
	"github.com/joel-cespedes/petit/internal/query"
	"github.com/joel-cespedes/petit/internal/schema"
)

func newMock(t *testing.T, driver string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, driver)), mock
}

func tagInsert(t *testing.T, s *Store) query.Statement {
	t.Helper()
	fs, err := query.Validate(schema.Tags, map[string]any{"slug": "go", "name_en": "Go"}, query.Insert)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	st, err := s.Builder().Build(schema.Tags, query.Insert, fs, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return st
}

func TestExecCommits(t *testing.T) {
	s, mock := newMock(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags (slug, name_en) VALUES (?, ?)`)).
		WithArgs("go", "Go").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	res, err := s.Exec(context.Background(), tagInsert(t, s))
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if res.GeneratedID != 7 || res.RowsAffected != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestExecReturningOnPostgres(t *testing.T) {
	s, mock := newMock(t, "pgx")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tags (slug, name_en) VALUES ($1, $2) RETURNING id`)).
		WithArgs("go", "Go").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	res, err := s.Exec(context.Background(), tagInsert(t, s))
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if res.GeneratedID != 11 {
		t.Fatalf("GeneratedID = %d, want 11", res.GeneratedID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestExecDuplicateRollsBack(t *testing.T) {
	s, mock := newMock(t, "mysql")
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'go' for key 'slug'"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags`)).WillReturnError(dup)
	mock.ExpectRollback()

	_, err := s.Exec(context.Background(), tagInsert(t, s))
	if !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("err = %v, want ConstraintViolation", err)
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		t.Fatalf("driver error not reachable: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestExecCommitFailureIsUnavailable(t *testing.T) {
	s, mock := newMock(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags`)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

	_, err := s.Exec(context.Background(), tagInsert(t, s))
	if !errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want StoreUnavailable", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestExecIgnoresClientCancel(t *testing.T) {
	s, mock := newMock(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags`)).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Exec(ctx, tagInsert(t, s)); err != nil {
		t.Fatalf("Exec with cancelled request ctx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestExecBatchAtomic(t *testing.T) {
	s, mock := newMock(t, "mysql")
	link, _ := schema.Blogs.Link("tag_ids")
	stmts := s.Builder().ReplaceLinks(link, 4, []int64{1, 2})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM blog_tags WHERE blog_id = ?`)).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO blog_tags (blog_id, tag_id) VALUES (?, ?), (?, ?)`)).
		WithArgs(int64(4), int64(1), int64(4), int64(2)).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key"})
	mock.ExpectRollback()

	_, err := s.ExecBatch(context.Background(), stmts)
	if !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("err = %v, want ConstraintViolation", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestExecThenFeedsGeneratedID(t *testing.T) {
	s, mock := newMock(t, "mysql")
	link, _ := schema.Blogs.Link("tag_ids")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags (slug, name_en) VALUES (?, ?)`)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM blog_tags WHERE blog_id = ?`)).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	out, err := s.ExecThen(context.Background(), tagInsert(t, s), func(r Result) ([]query.Statement, error) {
		return s.Builder().ReplaceLinks(link, r.GeneratedID, nil), nil
	})
	if err != nil {
		t.Fatalf("ExecThen: %v", err)
	}
	if len(out) != 2 || out[0].GeneratedID != 11 {
		t.Fatalf("results = %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestExecThenErrorRollsBack(t *testing.T) {
	s, mock := newMock(t, "mysql")
	stop := apperr.NotFound("tags row")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := s.ExecThen(context.Background(), tagInsert(t, s), func(Result) ([]query.Statement, error) {
		return nil, stop
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSelectNormalisesBytes(t *testing.T) {
	s, mock := newMock(t, "mysql")

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, slug, name_es AS name FROM tags ORDER BY id ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name"}).
			AddRow(int64(1), []byte("viajes"), []byte("Viajes")))

	recs, err := s.Select(context.Background(), query.SelectCollection(schema.Tags, lang.ES, query.Filter{}))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(recs) != 1 || recs[0]["name"] != "Viajes" || recs[0]["slug"] != "viajes" {
		t.Fatalf("unexpected records: %#v", recs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	s, mock := newMock(t, "mysql")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM blogs WHERE slug = ? AND is_published = TRUE LIMIT 1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Get(context.Background(), query.SelectBySlug(schema.Blogs, lang.EN, "missing"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind apperr.StoreKind
		ok   bool
	}{
		{"mysql dup", &mysql.MySQLError{Number: 1062}, apperr.ConstraintViolation, true},
		{"mysql fk", &mysql.MySQLError{Number: 1451}, apperr.ConstraintViolation, true},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, apperr.StoreUnavailable, true},
		{"mysql syntax", &mysql.MySQLError{Number: 1064}, 0, false},
		{"pg unique", &pgconn.PgError{Code: "23505"}, apperr.ConstraintViolation, true},
		{"pg conn", &pgconn.PgError{Code: "08006"}, apperr.StoreUnavailable, true},
		{"conn done", sql.ErrConnDone, apperr.StoreUnavailable, true},
		{"deadline", context.DeadlineExceeded, apperr.StoreUnavailable, true},
		{"plain", errors.New("boom"), 0, false},
	}
	for _, tc := range cases {
		kind, ok := classify(tc.err)
		if ok != tc.ok || kind != tc.kind {
			t.Errorf("%s: classify = %v, %v; want %v, %v", tc.name, kind, ok, tc.kind, tc.ok)
		}
	}
}
