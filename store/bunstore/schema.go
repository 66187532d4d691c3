package bunstore

import (
	"context"
	"fmt"

	"github.com/jmgilman/go/errors"
	"github.com/uptrace/bun"
)

// Table describes one model to migrate. Name must match the model's bun
// table name; it prefixes the index names. Each column in Indexes gets a
// non-unique index.
type Table struct {
	Name    string
	Model   any
	Indexes []string
}

// CreateSchema creates every table and index that does not exist yet. It
// is safe to run on every start.
func CreateSchema(ctx context.Context, db bun.IDB, tables ...Table) error {
	for _, t := range tables {
		q := db.NewCreateTable().Model(t.Model).IfNotExists()
		if _, err := q.Exec(ctx); err != nil {
			return errors.Wrapf(err, errors.CodeDatabase, "create table %s", t.Name)
		}

		for _, column := range t.Indexes {
			_, err := db.NewCreateIndex().
				Model(t.Model).
				Index(fmt.Sprintf("%s_%s_idx", t.Name, column)).
				Column(column).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return errors.Wrapf(err, errors.CodeDatabase, "create index %s.%s", t.Name, column)
			}
		}
	}
	return nil
}

// DropSchema drops the tables of the given models.
func DropSchema(ctx context.Context, db bun.IDB, tables ...Table) error {
	for _, t := range tables {
		if _, err := db.NewDropTable().Model(t.Model).IfExists().Exec(ctx); err != nil {
			return errors.Wrapf(err, errors.CodeDatabase, "drop table %s", t.Name)
		}
	}
	return nil
}
