// Package database centralises sqlx connection helpers.  Three drivers are
// registered: go-sql-driver/mysql (default, also MariaDB), pgx for
// PostgreSQL, and go-sqlite3 for local development.
//
// Public entry points:
//
//	Open(driver, dsn)                          – conservative pool sizes.
//	OpenWithOptions(driver, dsn, Options)      – fine-grained control.
//	Monitor(ctx, db, every)                    – reachability and pool gauges.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Options tunes one pool.  Zero fields take the Open defaults.
type Options struct {
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Open returns a *sqlx.DB with sane defaults: 15 max open, 5 idle, and a
// 30-minute connection lifetime.
func Open(driver, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(driver, dsn, Options{})
}

// OpenWithOptions opens driver with dsn and the given pool sizes.
// SQLite pools are pinned to one connection so ":memory:" databases and
// file locks behave.
func OpenWithOptions(driver, dsn string, o Options) (*sqlx.DB, error) {
	switch driver {
	case "mysql", "pgx", "sqlite3":
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}
	if o.MaxOpen == 0 {
		o.MaxOpen = 15
	}
	if o.MaxIdle == 0 {
		o.MaxIdle = 5
	}
	if o.ConnMaxLifetime == 0 {
		o.ConnMaxLifetime = 30 * time.Minute
	}
	if o.PingTimeout == 0 {
		o.PingTimeout = 5 * time.Second
	}
	if driver == "sqlite3" {
		o.MaxOpen, o.MaxIdle = 1, 1
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(o.MaxOpen)
	db.SetMaxIdleConns(o.MaxIdle)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), o.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
