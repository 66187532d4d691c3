package projectclocks

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const TimeSheetsTable = "timesheets"

// TimeSheet groups a user's time entries over a date range for submission
// and approval.
type TimeSheet struct {
	bun.BaseModel `bun:"table:timesheets,alias:ts"`

	ID             int       `bun:"id,pk,autoincrement" json:"id"`
	UserID         int       `bun:"user_id,notnull" json:"user_id"`
	GroupID        *int      `bun:"group_id" json:"group_id,omitempty"`
	OrgID          *int      `bun:"org_id" json:"org_id,omitempty"`
	ClientID       *int      `bun:"client_id" json:"client_id,omitempty"`
	ProjectID      *int      `bun:"project_id" json:"project_id,omitempty"`
	Name           string    `bun:"name,notnull" json:"name"`
	Comment        *string   `bun:"comment" json:"comment,omitempty"`
	StartDate      time.Time `bun:"start_date,type:date,notnull" json:"start_date"`
	EndDate        time.Time `bun:"end_date,type:date,notnull" json:"end_date"`
	SubmitStatus   *int16    `bun:"submit_status" json:"submit_status,omitempty"`
	ApproveStatus  *int16    `bun:"approve_status" json:"approve_status,omitempty"`
	ApproveComment *string   `bun:"approve_comment" json:"approve_comment,omitempty"`
	Audit
	Status *int16 `bun:"status" json:"status,omitempty"`
}

func (t TimeSheet) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&t.UserID, validation.Required),
		validation.Field(&t.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&t.StartDate, validation.Required),
		validation.Field(&t.EndDate, validation.Required, validation.By(notBefore(t.StartDate))),
	}
	return validation.ValidateStruct(&t, append(rules, auditRules(&t.Audit)...)...)
}

var _ bun.BeforeAppendModelHook = (*TimeSheet)(nil)

func (t *TimeSheet) BeforeAppendModel(_ context.Context, query bun.Query) error {
	t.Audit.stamp(query)
	return nil
}

func TimeSheetPK(t TimeSheet) int { return t.ID }

// Clone returns a copy that shares no pointers with t.
func (t TimeSheet) Clone() TimeSheet {
	t.GroupID = clonePtr(t.GroupID)
	t.OrgID = clonePtr(t.OrgID)
	t.ClientID = clonePtr(t.ClientID)
	t.ProjectID = clonePtr(t.ProjectID)
	t.Comment = clonePtr(t.Comment)
	t.SubmitStatus = clonePtr(t.SubmitStatus)
	t.ApproveStatus = clonePtr(t.ApproveStatus)
	t.ApproveComment = clonePtr(t.ApproveComment)
	t.Audit = t.Audit.clone()
	t.Status = clonePtr(t.Status)
	return t
}

var (
	TimeSheetByGroup   = index("group", "group_id", func(t TimeSheet) (int64, bool) { return nullable(t.GroupID) })
	TimeSheetByUser    = index("user", "user_id", func(t TimeSheet) (int64, bool) { return required(t.UserID) })
	TimeSheetByClient  = index("client", "client_id", func(t TimeSheet) (int64, bool) { return nullable(t.ClientID) })
	TimeSheetByProject = index("project", "project_id", func(t TimeSheet) (int64, bool) { return nullable(t.ProjectID) })
)

var TimeSheetIndexes = []store.Index[TimeSheet]{TimeSheetByGroup, TimeSheetByUser, TimeSheetByClient, TimeSheetByProject}

type TimeSheetRepository struct {
	*repositorycache.CachedRepository[int, TimeSheet]
}

func NewTimeSheetRepository(s store.Store[int, TimeSheet], opts ...repositorycache.Option) (*TimeSheetRepository, error) {
	repo, err := newRepository(s, TimeSheetPK, TimeSheetsTable, opts)
	if err != nil {
		return nil, err
	}
	return &TimeSheetRepository{repo}, nil
}

func (r *TimeSheetRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]TimeSheet, error) {
	return r.RetrieveBy(ctx, TimeSheetByGroup.Eq(int64(groupID)))
}

func (r *TimeSheetRepository) RetrieveByUser(ctx context.Context, userID int) ([]TimeSheet, error) {
	return r.RetrieveBy(ctx, TimeSheetByUser.Eq(int64(userID)))
}

func (r *TimeSheetRepository) RetrieveByClient(ctx context.Context, clientID int) ([]TimeSheet, error) {
	return r.RetrieveBy(ctx, TimeSheetByClient.Eq(int64(clientID)))
}

func (r *TimeSheetRepository) RetrieveByProject(ctx context.Context, projectID int) ([]TimeSheet, error) {
	return r.RetrieveBy(ctx, TimeSheetByProject.Eq(int64(projectID)))
}
