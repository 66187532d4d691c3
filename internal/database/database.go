// Package database opens a bun database for the configured driver.
package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmgilman/go/errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-projectclocks/internal/config"
)

// Open connects to the database described by cfg and checks the
// connection with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		db    *bun.DB
		err   error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		sqldb, err = sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabase, "open sqlite")
		}
		// sqlite allows one writer at a time.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case config.DriverPostgres:
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabase, "open postgres")
		}
		sqldb.SetConnMaxIdleTime(5 * time.Minute)
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unsupported database driver %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, errors.CodeDatabase, "ping %s", cfg.Driver)
	}
	return db, nil
}
