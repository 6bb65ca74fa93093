// internal/store/classify.go
//
// Driver error classification.
//
// Context
// -------
// Three drivers can sit behind the pool.  Each reports integrity failures
// in its own shape; classify folds them into the two store kinds the HTTP
// layer understands.  Errors that match neither kind are returned
// unclassified and surface as internal errors.
//
// Notes
// -----
//   - MySQL: 1048 column cannot be null, 1062 duplicate entry, 1364 no
//     default, 1406 data too long, 1451/1452 foreign key.  1205 and 1213
//     (lock wait, deadlock) count as unavailable.
//   - Postgres: SQLSTATE class 23 is integrity_constraint_violation.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/joel-cespedes/petit/internal/apperr"
)

var mysqlConstraint = map[uint16]struct{}{
	1048: {}, 1062: {}, 1364: {}, 1406: {}, 1451: {}, 1452: {},
}

// classify reports the store kind for err, or ok == false.
func classify(err error) (kind apperr.StoreKind, ok bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		if _, hit := mysqlConstraint[me.Number]; hit {
			return apperr.ConstraintViolation, true
		}
		if me.Number == 1205 || me.Number == 1213 {
			return apperr.StoreUnavailable, true
		}
		return 0, false
	}

	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		if len(pe.Code) >= 2 && pe.Code[:2] == "23" {
			return apperr.ConstraintViolation, true
		}
		if len(pe.Code) >= 2 && (pe.Code[:2] == "08" || pe.Code[:2] == "57") {
			return apperr.StoreUnavailable, true
		}
		return 0, false
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrConstraint:
			return apperr.ConstraintViolation, true
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen:
			return apperr.StoreUnavailable, true
		}
		return 0, false
	}

	var ce *pgconn.ConnectError
	var ne net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &ce),
		errors.As(err, &ne):
		return apperr.StoreUnavailable, true
	}
	return 0, false
}

// wrap classifies err and records it.  Unclassified errors keep op as
// context but carry no store kind.
func wrap(op string, err error) error {
	if kind, ok := classify(err); ok {
		storeErrors(kind.String())
		return &apperr.StoreError{Kind: kind, Op: op, Err: err}
	}
	storeErrors("other")
	return fmt.Errorf("%s: %w", op, err)
}
