package projectclocks

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
	"github.com/goliatone/go-projectclocks/store/bunstore"
)

// Audit holds the creation and modification columns shared by several
// tables. Embed it by value.
type Audit struct {
	Created    *time.Time `bun:"created" json:"created,omitempty"`
	CreatedIP  *string    `bun:"created_ip" json:"created_ip,omitempty"`
	CreatedBy  *int       `bun:"created_by" json:"created_by,omitempty"`
	Modified   *time.Time `bun:"modified" json:"modified,omitempty"`
	ModifiedIP *string    `bun:"modified_ip" json:"modified_ip,omitempty"`
	ModifiedBy *int       `bun:"modified_by" json:"modified_by,omitempty"`
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Second) }

// stamp fills Created on insert and Modified on update.
func (a *Audit) stamp(query bun.Query) {
	t := now()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.Created == nil {
			a.Created = &t
		}
	case *bun.UpdateQuery:
		a.Modified = &t
	}
}

func (a Audit) clone() Audit {
	a.Created = clonePtr(a.Created)
	a.CreatedIP = clonePtr(a.CreatedIP)
	a.CreatedBy = clonePtr(a.CreatedBy)
	a.Modified = clonePtr(a.Modified)
	a.ModifiedIP = clonePtr(a.ModifiedIP)
	a.ModifiedBy = clonePtr(a.ModifiedBy)
	return a
}

func clonePtr[V any](p *V) *V {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func auditRules(a *Audit) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&a.CreatedIP, validation.NilOrNotEmpty, is.IP),
		validation.Field(&a.ModifiedIP, validation.NilOrNotEmpty, is.IP),
	}
}

func required(v int) (int64, bool) { return int64(v), true }

func nullable(v *int) (int64, bool) {
	if v == nil {
		return 0, false
	}
	return int64(*v), true
}

func index[T any](name, column string, key func(T) (int64, bool)) store.Index[T] {
	return store.Index[T]{Name: name, Column: column, Key: key}
}

func columns[T any](indexes []store.Index[T]) []string {
	out := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, idx.Column)
	}
	return out
}

func newRepository[K store.ID, T any](s store.Store[K, T], key func(T) K, name string, opts []repositorycache.Option) (*repositorycache.CachedRepository[K, T], error) {
	opts = append([]repositorycache.Option{repositorycache.WithName(name)}, opts...)
	return repositorycache.New(s, key, opts...)
}

// Tables lists every entity table with its secondary index columns.
func Tables() []bunstore.Table {
	return []bunstore.Table{
		{Name: ClientsTable, Model: (*Client)(nil), Indexes: columns(ClientIndexes)},
		{Name: GroupsTable, Model: (*Group)(nil), Indexes: columns(GroupIndexes)},
		{Name: InvoicesTable, Model: (*Invoice)(nil), Indexes: columns(InvoiceIndexes)},
		{Name: ProjectsTable, Model: (*Project)(nil), Indexes: columns(ProjectIndexes)},
		{Name: ReportConfigurationsTable, Model: (*ReportConfiguration)(nil), Indexes: columns(ReportConfigurationIndexes)},
		{Name: RolesTable, Model: (*Role)(nil), Indexes: columns(RoleIndexes)},
		{Name: TasksTable, Model: (*Task)(nil), Indexes: columns(TaskIndexes)},
		{Name: TimeSheetsTable, Model: (*TimeSheet)(nil), Indexes: columns(TimeSheetIndexes)},
		{Name: UsersTable, Model: (*User)(nil), Indexes: columns(UserIndexes)},
		{Name: UserProjectsTable, Model: (*UserProject)(nil), Indexes: columns(UserProjectIndexes)},
		{Name: UserTimeEntriesTable, Model: (*UserTimeEntry)(nil), Indexes: columns(UserTimeEntryIndexes)},
	}
}

// notBefore fails when the validated date is earlier than start. Either
// side being nil or zero passes.
func notBefore(start any) validation.RuleFunc {
	return func(value any) error {
		from, ok := asTime(start)
		if !ok {
			return nil
		}
		to, ok := asTime(value)
		if !ok {
			return nil
		}
		if to.Before(from) {
			return validation.NewError("validation_date_order", "must not be before the start date")
		}
		return nil
	}
}

func asTime(v any) (time.Time, bool) {
	v, isNil := validation.Indirect(v)
	if isNil {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok && !t.IsZero()
}
