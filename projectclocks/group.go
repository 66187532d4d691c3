package projectclocks

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const GroupsTable = "groups"

// GroupKeyLength is the length of a generated group key.
const GroupKeyLength = 32

// Group is a tenant. Groups can be nested through ParentID.
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:g"`

	ID                 int     `bun:"id,pk,autoincrement" json:"id"`
	ParentID           *int    `bun:"parent_id" json:"parent_id,omitempty"`
	OrgID              *int    `bun:"org_id" json:"org_id,omitempty"`
	GroupKey           *string `bun:"group_key" json:"group_key,omitempty"`
	Name               *string `bun:"name" json:"name,omitempty"`
	Description        *string `bun:"description" json:"description,omitempty"`
	Currency           *string `bun:"currency" json:"currency,omitempty"`
	DecimalMark        string  `bun:"decimal_mark,notnull" json:"decimal_mark"`
	Lang               string  `bun:"lang,notnull" json:"lang"`
	DateFormat         string  `bun:"date_format,notnull" json:"date_format"`
	TimeFormat         string  `bun:"time_format,notnull" json:"time_format"`
	WeekStart          int16   `bun:"week_start,notnull" json:"week_start"`
	TrackingMode       int16   `bun:"tracking_mode,notnull" json:"tracking_mode"`
	ProjectRequired    int16   `bun:"project_required,notnull" json:"project_required"`
	RecordType         int16   `bun:"record_type,notnull" json:"record_type"`
	BccEmail           *string `bun:"bcc_email" json:"bcc_email,omitempty"`
	AllowIP            *string `bun:"allow_ip" json:"allow_ip,omitempty"`
	PasswordComplexity *string `bun:"password_complexity" json:"password_complexity,omitempty"`
	Plugins            *string `bun:"plugins" json:"plugins,omitempty"`
	LockSpec           *string `bun:"lock_spec" json:"lock_spec,omitempty"`
	Holidays           *string `bun:"holidays" json:"holidays,omitempty"`
	WorkdayMinutes     *int16  `bun:"workday_minutes" json:"workday_minutes,omitempty"`
	CustomLogo         *int16  `bun:"custom_logo" json:"custom_logo,omitempty"`
	Config             *string `bun:"config" json:"config,omitempty"`
	CustomCSS          *string `bun:"custom_css" json:"custom_css,omitempty"`
	Audit
	EntitiesModified *time.Time `bun:"entities_modified" json:"entities_modified,omitempty"`
	Status           *int16     `bun:"status" json:"status,omitempty"`
}

func (g Group) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&g.GroupKey, validation.NilOrNotEmpty, validation.Length(GroupKeyLength, GroupKeyLength), is.Alphanumeric),
		validation.Field(&g.Name, validation.Length(0, 80)),
		validation.Field(&g.Description, validation.Length(0, 255)),
		validation.Field(&g.Currency, validation.Length(0, 7)),
		validation.Field(&g.DecimalMark, validation.Required, validation.Length(1, 1)),
		validation.Field(&g.Lang, validation.Required, validation.Length(1, 10)),
		validation.Field(&g.DateFormat, validation.Required, validation.Length(1, 20)),
		validation.Field(&g.TimeFormat, validation.Required, validation.Length(1, 20)),
		validation.Field(&g.WeekStart, validation.Min(0), validation.Max(6)),
		validation.Field(&g.BccEmail, validation.Length(0, 100), is.EmailFormat),
		validation.Field(&g.AllowIP, validation.Length(0, 255)),
		validation.Field(&g.PasswordComplexity, validation.Length(0, 64)),
		validation.Field(&g.Plugins, validation.Length(0, 255)),
		validation.Field(&g.LockSpec, validation.Length(0, 255)),
		validation.Field(&g.WorkdayMinutes, validation.Min(0), validation.Max(24*60)),
	}
	return validation.ValidateStruct(&g, append(rules, auditRules(&g.Audit)...)...)
}

// NewGroupKey returns a random 32 character group key.
func NewGroupKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

var _ bun.BeforeAppendModelHook = (*Group)(nil)

// BeforeAppendModel assigns a group key on insert when none is set.
func (g *Group) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && (g.GroupKey == nil || *g.GroupKey == "") {
		key := NewGroupKey()
		g.GroupKey = &key
	}
	g.Audit.stamp(query)
	return nil
}

func GroupPK(g Group) int { return g.ID }

// Clone returns a copy that shares no pointers with g.
func (g Group) Clone() Group {
	g.ParentID = clonePtr(g.ParentID)
	g.OrgID = clonePtr(g.OrgID)
	g.GroupKey = clonePtr(g.GroupKey)
	g.Name = clonePtr(g.Name)
	g.Description = clonePtr(g.Description)
	g.Currency = clonePtr(g.Currency)
	g.BccEmail = clonePtr(g.BccEmail)
	g.AllowIP = clonePtr(g.AllowIP)
	g.PasswordComplexity = clonePtr(g.PasswordComplexity)
	g.Plugins = clonePtr(g.Plugins)
	g.LockSpec = clonePtr(g.LockSpec)
	g.Holidays = clonePtr(g.Holidays)
	g.WorkdayMinutes = clonePtr(g.WorkdayMinutes)
	g.CustomLogo = clonePtr(g.CustomLogo)
	g.Config = clonePtr(g.Config)
	g.CustomCSS = clonePtr(g.CustomCSS)
	g.Audit = g.Audit.clone()
	g.EntitiesModified = clonePtr(g.EntitiesModified)
	g.Status = clonePtr(g.Status)
	return g
}

var (
	GroupByParent = index("parent", "parent_id", func(g Group) (int64, bool) { return nullable(g.ParentID) })
	GroupByOrg    = index("org", "org_id", func(g Group) (int64, bool) { return nullable(g.OrgID) })
)

var GroupIndexes = []store.Index[Group]{GroupByParent, GroupByOrg}

type GroupRepository struct {
	*repositorycache.CachedRepository[int, Group]
}

func NewGroupRepository(s store.Store[int, Group], opts ...repositorycache.Option) (*GroupRepository, error) {
	repo, err := newRepository(s, GroupPK, GroupsTable, opts)
	if err != nil {
		return nil, err
	}
	return &GroupRepository{repo}, nil
}

func (r *GroupRepository) RetrieveByParent(ctx context.Context, parentID int) ([]Group, error) {
	return r.RetrieveBy(ctx, GroupByParent.Eq(int64(parentID)))
}

func (r *GroupRepository) RetrieveByOrg(ctx context.Context, orgID int) ([]Group, error) {
	return r.RetrieveBy(ctx, GroupByOrg.Eq(int64(orgID)))
}
