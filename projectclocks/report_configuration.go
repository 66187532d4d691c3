package projectclocks

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const ReportConfigurationsTable = "report_configurations"

// ReportConfiguration is a saved report: its filters, period, visible
// columns and grouping.
type ReportConfiguration struct {
	bun.BaseModel `bun:"table:report_configurations,alias:rc"`

	ID         int     `bun:"id,pk,autoincrement" json:"id"`
	Name       string  `bun:"name,notnull" json:"name"`
	UserID     int     `bun:"user_id,notnull" json:"user_id"`
	GroupID    *int    `bun:"group_id" json:"group_id,omitempty"`
	OrgID      *int    `bun:"org_id" json:"org_id,omitempty"`
	ReportSpec *string `bun:"report_spec" json:"report_spec,omitempty"`

	ClientID   *int    `bun:"client_id" json:"client_id,omitempty"`
	ProjectID  *int    `bun:"project_id" json:"project_id,omitempty"`
	TaskID     *int    `bun:"task_id" json:"task_id,omitempty"`
	Billable   *int16  `bun:"billable" json:"billable,omitempty"`
	Approved   *int16  `bun:"approved" json:"approved,omitempty"`
	Invoice    *int16  `bun:"invoice" json:"invoice,omitempty"`
	Timesheet  *int16  `bun:"timesheet" json:"timesheet,omitempty"`
	PaidStatus *int16  `bun:"paid_status" json:"paid_status,omitempty"`
	Users      *string `bun:"users" json:"users,omitempty"`

	Period      *int16     `bun:"period" json:"period,omitempty"`
	PeriodStart *time.Time `bun:"period_start,type:date" json:"period_start,omitempty"`
	PeriodEnd   *time.Time `bun:"period_end,type:date" json:"period_end,omitempty"`

	ShowClient     int16 `bun:"show_client,notnull" json:"show_client"`
	ShowInvoice    int16 `bun:"show_invoice,notnull" json:"show_invoice"`
	ShowPaid       int16 `bun:"show_paid,notnull" json:"show_paid"`
	ShowIP         int16 `bun:"show_ip,notnull" json:"show_ip"`
	ShowProject    int16 `bun:"show_project,notnull" json:"show_project"`
	ShowTimesheet  int16 `bun:"show_timesheet,notnull" json:"show_timesheet"`
	ShowStart      int16 `bun:"show_start,notnull" json:"show_start"`
	ShowDuration   int16 `bun:"show_duration,notnull" json:"show_duration"`
	ShowCost       int16 `bun:"show_cost,notnull" json:"show_cost"`
	ShowTask       int16 `bun:"show_task,notnull" json:"show_task"`
	ShowEnd        int16 `bun:"show_end,notnull" json:"show_end"`
	ShowNote       int16 `bun:"show_note,notnull" json:"show_note"`
	ShowApproved   int16 `bun:"show_approved,notnull" json:"show_approved"`
	ShowWorkUnits  int16 `bun:"show_work_units,notnull" json:"show_work_units"`
	ShowTotalsOnly int16 `bun:"show_totals_only,notnull" json:"show_totals_only"`

	GroupBy1 *string `bun:"group_by1" json:"group_by1,omitempty"`
	GroupBy2 *string `bun:"group_by2" json:"group_by2,omitempty"`
	GroupBy3 *string `bun:"group_by3" json:"group_by3,omitempty"`
	Status   *int16  `bun:"status" json:"status,omitempty"`
}

func (rc ReportConfiguration) Validate() error {
	flag := []validation.Rule{validation.Min(0), validation.Max(1)}
	return validation.ValidateStruct(&rc,
		validation.Field(&rc.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&rc.UserID, validation.Required),
		validation.Field(&rc.PeriodEnd, validation.By(notBefore(rc.PeriodStart))),
		validation.Field(&rc.ShowClient, flag...),
		validation.Field(&rc.ShowInvoice, flag...),
		validation.Field(&rc.ShowPaid, flag...),
		validation.Field(&rc.ShowIP, flag...),
		validation.Field(&rc.ShowProject, flag...),
		validation.Field(&rc.ShowTimesheet, flag...),
		validation.Field(&rc.ShowStart, flag...),
		validation.Field(&rc.ShowDuration, flag...),
		validation.Field(&rc.ShowCost, flag...),
		validation.Field(&rc.ShowTask, flag...),
		validation.Field(&rc.ShowEnd, flag...),
		validation.Field(&rc.ShowNote, flag...),
		validation.Field(&rc.ShowApproved, flag...),
		validation.Field(&rc.ShowWorkUnits, flag...),
		validation.Field(&rc.ShowTotalsOnly, flag...),
		validation.Field(&rc.GroupBy1, validation.Length(0, 20)),
		validation.Field(&rc.GroupBy2, validation.Length(0, 20)),
		validation.Field(&rc.GroupBy3, validation.Length(0, 20)),
	)
}

func ReportConfigurationPK(rc ReportConfiguration) int { return rc.ID }

// Clone returns a copy that shares no pointers with rc.
func (rc ReportConfiguration) Clone() ReportConfiguration {
	rc.GroupID = clonePtr(rc.GroupID)
	rc.OrgID = clonePtr(rc.OrgID)
	rc.ReportSpec = clonePtr(rc.ReportSpec)
	rc.ClientID = clonePtr(rc.ClientID)
	rc.ProjectID = clonePtr(rc.ProjectID)
	rc.TaskID = clonePtr(rc.TaskID)
	rc.Billable = clonePtr(rc.Billable)
	rc.Approved = clonePtr(rc.Approved)
	rc.Invoice = clonePtr(rc.Invoice)
	rc.Timesheet = clonePtr(rc.Timesheet)
	rc.PaidStatus = clonePtr(rc.PaidStatus)
	rc.Users = clonePtr(rc.Users)
	rc.Period = clonePtr(rc.Period)
	rc.PeriodStart = clonePtr(rc.PeriodStart)
	rc.PeriodEnd = clonePtr(rc.PeriodEnd)
	rc.GroupBy1 = clonePtr(rc.GroupBy1)
	rc.GroupBy2 = clonePtr(rc.GroupBy2)
	rc.GroupBy3 = clonePtr(rc.GroupBy3)
	rc.Status = clonePtr(rc.Status)
	return rc
}

var (
	ReportConfigurationByGroup = index("group", "group_id", func(rc ReportConfiguration) (int64, bool) { return nullable(rc.GroupID) })
	ReportConfigurationByUser  = index("user", "user_id", func(rc ReportConfiguration) (int64, bool) { return required(rc.UserID) })
)

var ReportConfigurationIndexes = []store.Index[ReportConfiguration]{ReportConfigurationByGroup, ReportConfigurationByUser}

type ReportConfigurationRepository struct {
	*repositorycache.CachedRepository[int, ReportConfiguration]
}

func NewReportConfigurationRepository(s store.Store[int, ReportConfiguration], opts ...repositorycache.Option) (*ReportConfigurationRepository, error) {
	repo, err := newRepository(s, ReportConfigurationPK, ReportConfigurationsTable, opts)
	if err != nil {
		return nil, err
	}
	return &ReportConfigurationRepository{repo}, nil
}

func (r *ReportConfigurationRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]ReportConfiguration, error) {
	return r.RetrieveBy(ctx, ReportConfigurationByGroup.Eq(int64(groupID)))
}

func (r *ReportConfigurationRepository) RetrieveByUser(ctx context.Context, userID int) ([]ReportConfiguration, error) {
	return r.RetrieveBy(ctx, ReportConfigurationByUser.Eq(int64(userID)))
}
