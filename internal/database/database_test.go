package database

import (
	"context"
	"testing"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-projectclocks/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:database_test?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var one int
	if err := db.NewSelect().ColumnExpr("1").Scan(context.Background(), &one); err != nil {
		t.Fatalf("select 1: %v", err)
	}
	if one != 1 {
		t.Errorf("select 1 = %d", one)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	if errors.GetCode(err) != errors.CodeInvalidConfig {
		t.Errorf("Open() error = %v, want %s", err, errors.CodeInvalidConfig)
	}
}
