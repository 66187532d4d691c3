package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-projectclocks/store"
)

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID      int    `bun:"id,pk,autoincrement"`
	Name    string `bun:"name,notnull"`
	GroupID *int64 `bun:"group_id"`
}

var widgetGroup = store.Index[widget]{
	Name:   "group",
	Column: "group_id",
	Key: func(w widget) (int64, bool) {
		if w.GroupID == nil {
			return 0, false
		}
		return *w.GroupID, true
	},
}

var widgetTable = Table{Name: "widgets", Model: (*widget)(nil), Indexes: []string{"group_id"}}

func groupID(v int64) *int64 { return &v }

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	sqldb, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	if err := CreateSchema(context.Background(), db, widgetTable); err != nil {
		t.Fatalf("CreateSchema() error = %v", err)
	}
	return db
}

func TestStore_CRUD(t *testing.T) {
	db := newTestDB(t)
	s := New[int, widget](db)
	ctx := context.Background()

	w := &widget{Name: "sprocket", GroupID: groupID(1)}
	n, err := s.Insert(ctx, w)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Insert() affected = %d, want 1", n)
	}
	if w.ID == 0 {
		t.Fatal("Insert() did not scan the generated id")
	}

	got, found, err := s.FindByID(ctx, w.ID)
	if err != nil || !found {
		t.Fatalf("FindByID() found = %v, err = %v", found, err)
	}
	if got.Name != "sprocket" || got.GroupID == nil || *got.GroupID != 1 {
		t.Errorf("FindByID() = %+v", got)
	}

	w.Name = "cog"
	if n, err := s.Update(ctx, w); err != nil || n != 1 {
		t.Errorf("Update() = %d, %v", n, err)
	}
	got, _, _ = s.FindByID(ctx, w.ID)
	if got.Name != "cog" {
		t.Errorf("Name after update = %q, want %q", got.Name, "cog")
	}

	if n, err := s.Remove(ctx, w); err != nil || n != 1 {
		t.Errorf("Remove() = %d, %v", n, err)
	}
	_, found, err = s.FindByID(ctx, w.ID)
	if err != nil || found {
		t.Errorf("FindByID() after remove found = %v, err = %v", found, err)
	}
}

func TestStore_MissingRowsAffectNothing(t *testing.T) {
	db := newTestDB(t)
	s := New[int, widget](db)
	ctx := context.Background()

	ghost := &widget{ID: 404, Name: "ghost"}
	if n, err := s.Update(ctx, ghost); err != nil || n != 0 {
		t.Errorf("Update(missing) = %d, %v, want 0, nil", n, err)
	}
	if n, err := s.Remove(ctx, ghost); err != nil || n != 0 {
		t.Errorf("Remove(missing) = %d, %v, want 0, nil", n, err)
	}
}

func TestStore_Scans(t *testing.T) {
	db := newTestDB(t)
	s := New[int, widget](db)
	ctx := context.Background()

	empty, err := s.ScanAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ScanAll() on empty table = %#v, want empty slice", empty)
	}

	for _, w := range []*widget{
		{Name: "a", GroupID: groupID(1)},
		{Name: "b", GroupID: groupID(2)},
		{Name: "c", GroupID: groupID(1)},
		{Name: "d"},
	} {
		if _, err := s.Insert(ctx, w); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ScanAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("ScanAll() returned %d rows, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Errorf("ScanAll() not ordered by id: %d before %d", all[i-1].ID, all[i].ID)
		}
	}

	inGroup, err := s.ScanBy(ctx, widgetGroup.Eq(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(inGroup) != 2 || inGroup[0].Name != "a" || inGroup[1].Name != "c" {
		t.Errorf("ScanBy(group=1) = %+v", inGroup)
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := CreateSchema(ctx, db, widgetTable); err != nil {
		t.Errorf("second CreateSchema() error = %v", err)
	}
	if err := DropSchema(ctx, db, widgetTable); err != nil {
		t.Errorf("DropSchema() error = %v", err)
	}
	if err := DropSchema(ctx, db, widgetTable); err != nil {
		t.Errorf("second DropSchema() error = %v", err)
	}
}

func TestWithPrimaryKey(t *testing.T) {
	s := New[int, widget](nil, WithPrimaryKey("widget_id"))
	if s.pk != "widget_id" {
		t.Errorf("pk = %q, want %q", s.pk, "widget_id")
	}

	s = New[int, widget](nil, WithPrimaryKey(""))
	if s.pk != DefaultPrimaryKey {
		t.Errorf("pk = %q, want %q", s.pk, DefaultPrimaryKey)
	}
}
