package testsupport

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-projectclocks/store"
)

func newRowStore() *MemoryStore[int, fixtureRow] {
	return NewMemoryStore(
		func(r fixtureRow) int { return r.ID },
		func(r *fixtureRow, id int) { r.ID = id },
	)
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newRowStore()

	row := fixtureRow{Name: "acme"}
	n, err := s.Insert(ctx, &row)
	if err != nil || n != 1 {
		t.Fatalf("insert: n=%d err=%v", n, err)
	}
	if row.ID != 1 {
		t.Fatalf("expected assigned id 1, got %d", row.ID)
	}

	row.Name = "acme inc"
	if n, _ := s.Update(ctx, &row); n != 1 {
		t.Fatalf("expected update to affect 1 row, got %d", n)
	}

	got, found, err := s.FindByID(ctx, 1)
	if err != nil || !found || got.Name != "acme inc" {
		t.Fatalf("find: got=%+v found=%v err=%v", got, found, err)
	}

	missing := fixtureRow{ID: 99}
	if n, _ := s.Update(ctx, &missing); n != 0 {
		t.Errorf("expected update of missing row to affect 0 rows, got %d", n)
	}

	if n, _ := s.Remove(ctx, &row); n != 1 {
		t.Fatalf("expected remove to affect 1 row, got %d", n)
	}
	if _, found, _ := s.FindByID(ctx, 1); found {
		t.Error("expected row to be gone")
	}

	if s.Calls(OpUpdate) != 2 || s.Calls(OpRemove) != 1 || s.Calls(OpFindByID) != 2 {
		t.Errorf("unexpected call counts: update=%d remove=%d find=%d",
			s.Calls(OpUpdate), s.Calls(OpRemove), s.Calls(OpFindByID))
	}
}

func TestMemoryStore_FaultInjection(t *testing.T) {
	ctx := context.Background()
	s := newRowStore()
	boom := errors.New("boom")

	s.FailOn(OpInsert, boom)
	if _, err := s.Insert(ctx, &fixtureRow{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	s.FailOn(OpInsert, nil)

	s.AffectOn(OpInsert, 0)
	row := fixtureRow{Name: "ghost"}
	if n, err := s.Insert(ctx, &row); n != 0 || err != nil {
		t.Fatalf("expected forced 0 rows, got n=%d err=%v", n, err)
	}
	if len(s.Rows()) != 0 {
		t.Errorf("forced affected count must not write data")
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := newRowStore()
	s.Seed(fixtureRow{Name: "acme"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ScanAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ScanAll() error = %v, want context.Canceled", err)
	}
	if _, err := s.Insert(ctx, &fixtureRow{Name: "late"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Insert() error = %v, want context.Canceled", err)
	}
	if len(s.Rows()) != 1 {
		t.Errorf("cancelled insert wrote data, rows = %d", len(s.Rows()))
	}
	if s.Calls(OpScanAll) != 1 {
		t.Errorf("cancelled calls are still counted, got %d", s.Calls(OpScanAll))
	}
}

func TestMemoryStore_ScanBy(t *testing.T) {
	ctx := context.Background()
	s := newRowStore()
	s.Seed(fixtureRow{Name: "a"}, fixtureRow{Name: "b"}, fixtureRow{Name: "c"})

	byID := store.Index[fixtureRow]{
		Name:   "id",
		Column: "id",
		Key:    func(r fixtureRow) (int64, bool) { return int64(r.ID), true },
	}

	rows, err := s.ScanBy(ctx, byID.Eq(2))
	if err != nil {
		t.Fatalf("scan by: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "b" {
		t.Errorf("expected only row b, got %+v", rows)
	}

	all, _ := s.ScanAll(ctx)
	if len(all) != 3 || all[0].ID != 1 || all[2].ID != 3 {
		t.Errorf("expected ordered scan of 3 rows, got %+v", all)
	}
}
