package projectclocks

import (
	"context"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const UserTimeEntriesTable = "user_time_entries"

var clockTime = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// UserTimeEntry is a single time record. Start and Duration are clock
// times in HH:MM or HH:MM:SS form.
type UserTimeEntry struct {
	bun.BaseModel `bun:"table:user_time_entries,alias:ute"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      int       `bun:"user_id,notnull" json:"user_id"`
	GroupID     *int      `bun:"group_id" json:"group_id,omitempty"`
	OrgID       *int      `bun:"org_id" json:"org_id,omitempty"`
	Date        time.Time `bun:"date,type:date,notnull" json:"date"`
	Start       *string   `bun:"start" json:"start,omitempty"`
	Duration    *string   `bun:"duration" json:"duration,omitempty"`
	ClientID    *int      `bun:"client_id" json:"client_id,omitempty"`
	ProjectID   *int      `bun:"project_id" json:"project_id,omitempty"`
	TaskID      *int      `bun:"task_id" json:"task_id,omitempty"`
	TimesheetID *int      `bun:"timesheet_id" json:"timesheet_id,omitempty"`
	InvoiceID   *int      `bun:"invoice_id" json:"invoice_id,omitempty"`
	Comment     *string   `bun:"comment" json:"comment,omitempty"`
	Billable    *int16    `bun:"billable" json:"billable,omitempty"`
	Approved    *int16    `bun:"approved" json:"approved,omitempty"`
	Paid        *int16    `bun:"paid" json:"paid,omitempty"`
	Audit
	Status *int16 `bun:"status" json:"status,omitempty"`
}

func (e UserTimeEntry) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&e.UserID, validation.Required),
		validation.Field(&e.Date, validation.Required),
		validation.Field(&e.Start, validation.Match(clockTime)),
		validation.Field(&e.Duration, validation.Match(clockTime)),
	}
	return validation.ValidateStruct(&e, append(rules, auditRules(&e.Audit)...)...)
}

var _ bun.BeforeAppendModelHook = (*UserTimeEntry)(nil)

func (e *UserTimeEntry) BeforeAppendModel(_ context.Context, query bun.Query) error {
	e.Audit.stamp(query)
	return nil
}

func UserTimeEntryPK(e UserTimeEntry) int64 { return e.ID }

// Clone returns a copy that shares no pointers with e.
func (e UserTimeEntry) Clone() UserTimeEntry {
	e.GroupID = clonePtr(e.GroupID)
	e.OrgID = clonePtr(e.OrgID)
	e.Start = clonePtr(e.Start)
	e.Duration = clonePtr(e.Duration)
	e.ClientID = clonePtr(e.ClientID)
	e.ProjectID = clonePtr(e.ProjectID)
	e.TaskID = clonePtr(e.TaskID)
	e.TimesheetID = clonePtr(e.TimesheetID)
	e.InvoiceID = clonePtr(e.InvoiceID)
	e.Comment = clonePtr(e.Comment)
	e.Billable = clonePtr(e.Billable)
	e.Approved = clonePtr(e.Approved)
	e.Paid = clonePtr(e.Paid)
	e.Audit = e.Audit.clone()
	e.Status = clonePtr(e.Status)
	return e
}

var (
	UserTimeEntryByGroup     = index("group", "group_id", func(e UserTimeEntry) (int64, bool) { return nullable(e.GroupID) })
	UserTimeEntryByUser      = index("user", "user_id", func(e UserTimeEntry) (int64, bool) { return required(e.UserID) })
	UserTimeEntryByClient    = index("client", "client_id", func(e UserTimeEntry) (int64, bool) { return nullable(e.ClientID) })
	UserTimeEntryByProject   = index("project", "project_id", func(e UserTimeEntry) (int64, bool) { return nullable(e.ProjectID) })
	UserTimeEntryByTask      = index("task", "task_id", func(e UserTimeEntry) (int64, bool) { return nullable(e.TaskID) })
	UserTimeEntryByTimesheet = index("timesheet", "timesheet_id", func(e UserTimeEntry) (int64, bool) { return nullable(e.TimesheetID) })
)

var UserTimeEntryIndexes = []store.Index[UserTimeEntry]{
	UserTimeEntryByGroup,
	UserTimeEntryByUser,
	UserTimeEntryByClient,
	UserTimeEntryByProject,
	UserTimeEntryByTask,
	UserTimeEntryByTimesheet,
}

type UserTimeEntryRepository struct {
	*repositorycache.CachedRepository[int64, UserTimeEntry]
}

func NewUserTimeEntryRepository(s store.Store[int64, UserTimeEntry], opts ...repositorycache.Option) (*UserTimeEntryRepository, error) {
	repo, err := newRepository(s, UserTimeEntryPK, UserTimeEntriesTable, opts)
	if err != nil {
		return nil, err
	}
	return &UserTimeEntryRepository{repo}, nil
}

func (r *UserTimeEntryRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]UserTimeEntry, error) {
	return r.RetrieveBy(ctx, UserTimeEntryByGroup.Eq(int64(groupID)))
}

func (r *UserTimeEntryRepository) RetrieveByUser(ctx context.Context, userID int) ([]UserTimeEntry, error) {
	return r.RetrieveBy(ctx, UserTimeEntryByUser.Eq(int64(userID)))
}

func (r *UserTimeEntryRepository) RetrieveByClient(ctx context.Context, clientID int) ([]UserTimeEntry, error) {
	return r.RetrieveBy(ctx, UserTimeEntryByClient.Eq(int64(clientID)))
}

func (r *UserTimeEntryRepository) RetrieveByProject(ctx context.Context, projectID int) ([]UserTimeEntry, error) {
	return r.RetrieveBy(ctx, UserTimeEntryByProject.Eq(int64(projectID)))
}

func (r *UserTimeEntryRepository) RetrieveByTask(ctx context.Context, taskID int) ([]UserTimeEntry, error) {
	return r.RetrieveBy(ctx, UserTimeEntryByTask.Eq(int64(taskID)))
}

func (r *UserTimeEntryRepository) RetrieveByTimesheet(ctx context.Context, timesheetID int) ([]UserTimeEntry, error) {
	return r.RetrieveBy(ctx, UserTimeEntryByTimesheet.Eq(int64(timesheetID)))
}
