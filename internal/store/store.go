// internal/store/store.go
//
// Execution & Commit Boundary.
//
// Context
// -------
// Every write handed to Exec runs in its own transaction: begin, bind,
// execute, commit.  ExecThen extends one transaction over statements that
// need the first write's result, such as link rows keyed by a new id.  A failure at any step rolls back and returns a
// classified *apperr.StoreError.  When Exec returns nil the effect is
// durable.
//
// Workflow
// --------
//  1. Detach from request cancellation (context.WithoutCancel) and bound
//     the unit with the store timeout, so a client disconnect cannot abort
//     between execute and commit.
//  2. BeginTxx → sqlx.Named → Rebind → Exec (or QueryRowx for RETURNING).
//  3. Commit.  The deferred Rollback is a no-op after a successful commit.
//
// Notes
// -----
//   - Reads use the pool directly; there is nothing to commit.
//   - Record values arrive as driver types; []byte is normalised to string
//     so JSON encoding yields text, not base64.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/metrics"
	"github.com/joel-cespedes/petit/internal/query"
)

// DefaultTimeout bounds one unit of work once it is detached from the
// request.
const DefaultTimeout = 10 * time.Second

// Result reports the effect of one write.
type Result struct {
	RowsAffected int64
	GeneratedID  int64 // inserts only
}

// Record is one row keyed by column (or alias) name.
type Record map[string]any

// Store executes statements against one pool.
type Store struct {
	db      *sqlx.DB
	dialect query.Dialect
	timeout time.Duration
}

// New wraps db.  The dialect follows db.DriverName().
func New(db *sqlx.DB) *Store {
	return &Store{
		db:      db,
		dialect: query.DialectFor(db.DriverName()),
		timeout: DefaultTimeout,
	}
}

// WithTimeout returns a copy using d as the unit-of-work bound.
func (s *Store) WithTimeout(d time.Duration) *Store {
	cp := *s
	cp.timeout = d
	return &cp
}

// Builder returns a statement builder for the store's dialect.
func (s *Store) Builder() query.Builder { return query.NewBuilder(s.dialect) }

// DB exposes the pool for health checks.
func (s *Store) DB() *sqlx.DB { return s.db }

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrap("ping", err)
	}
	return nil
}

// Exec runs one write statement as its own unit of work.
func (s *Store) Exec(ctx context.Context, st query.Statement) (Result, error) {
	res, err := s.ExecBatch(ctx, []query.Statement{st})
	if err != nil {
		return Result{}, err
	}
	return res[0], nil
}

// ExecBatch runs stmts in one transaction; either all commit or none do.
func (s *Store) ExecBatch(ctx context.Context, stmts []query.Statement) ([]Result, error) {
	if len(stmts) == 0 {
		return nil, nil
	}
	rest := stmts[1:]
	return s.ExecThen(ctx, stmts[0], func(Result) ([]query.Statement, error) { return rest, nil })
}

// Then builds the statements that follow a write from that write's result.
// A non-nil error rolls the whole unit back and is returned unchanged.
type Then func(Result) ([]query.Statement, error)

// ExecThen runs first, hands its result to then, and runs the statements
// then returns, all in one transaction.  A nil then runs first alone.
func (s *Store) ExecThen(ctx context.Context, first query.Statement, then Then) ([]Result, error) {
	op := first.Kind.String() + " " + first.Table

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, s.fail(op, err)
	}
	defer tx.Rollback()

	res, err := run(ctx, tx, first)
	if err != nil {
		return nil, s.fail(op, err)
	}
	done := []query.Statement{first}
	out := []Result{res}

	if then != nil {
		next, err := then(res)
		if err != nil {
			return nil, err
		}
		for _, st := range next {
			r, err := run(ctx, tx, st)
			if err != nil {
				return nil, s.fail(op, err)
			}
			done = append(done, st)
			out = append(out, r)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, s.fail(op, err)
	}

	for _, st := range done {
		metrics.StatementsTotal.WithLabelValues(st.Table, st.Kind.String()).Inc()
	}
	return out, nil
}

func run(ctx context.Context, tx *sqlx.Tx, st query.Statement) (Result, error) {
	q, args, err := sqlx.Named(st.Text, st.Params)
	if err != nil {
		return Result{}, err
	}
	q = tx.Rebind(q)

	if st.Returning {
		var id int64
		if err := tx.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
			return Result{}, err
		}
		return Result{RowsAffected: 1, GeneratedID: id}, nil
	}

	r, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return Result{}, err
	}
	n, err := r.RowsAffected()
	if err != nil {
		return Result{}, err
	}
	res := Result{RowsAffected: n}
	if st.Kind == query.Insert {
		if id, err := r.LastInsertId(); err == nil {
			res.GeneratedID = id
		}
	}
	return res, nil
}

func (s *Store) fail(op string, err error) error {
	werr := wrap(op, err)
	zap.L().Error("store", zap.String("op", op), zap.Error(werr))
	return werr
}

// Get reads exactly one row.  No row is apperr.ErrNotFound.
func (s *Store) Get(ctx context.Context, st query.Statement) (Record, error) {
	recs, err := s.Select(ctx, st)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, apperr.NotFound(st.Table + " row")
	}
	return recs[0], nil
}

// Select reads every row st yields.
func (s *Store) Select(ctx context.Context, st query.Statement) ([]Record, error) {
	op := "select " + st.Table

	rows, err := s.db.NamedQueryContext(ctx, st.Text, st.Params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Record{}, nil
		}
		return nil, s.fail(op, err)
	}
	defer rows.Close()

	out := make([]Record, 0, 8)
	for rows.Next() {
		m := make(map[string]any)
		if err := rows.MapScan(m); err != nil {
			return nil, s.fail(op, err)
		}
		out = append(out, normalise(m))
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(op, err)
	}
	return out, nil
}

func normalise(m map[string]any) Record {
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			m[k] = string(b)
		}
	}
	return Record(m)
}

func storeErrors(kind string) {
	metrics.StoreErrorsTotal.WithLabelValues(kind).Inc()
}
