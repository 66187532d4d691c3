package projectclocks

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const UsersTable = "users"

// User is a person who logs time. Client users have ClientID set and only
// see that client's data.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int     `bun:"id,pk,autoincrement" json:"id"`
	Login        string  `bun:"login,notnull" json:"login"`
	Password     *string `bun:"password" json:"password,omitempty"`
	Name         *string `bun:"name" json:"name,omitempty"`
	GroupID      int     `bun:"group_id,notnull" json:"group_id"`
	OrgID        *int    `bun:"org_id" json:"org_id,omitempty"`
	RoleID       *int    `bun:"role_id" json:"role_id,omitempty"`
	ClientID     *int    `bun:"client_id" json:"client_id,omitempty"`
	Rate         float64 `bun:"rate,type:numeric(6,2),notnull" json:"rate"`
	QuotaPercent float64 `bun:"quota_percent,type:numeric(6,2),notnull" json:"quota_percent"`
	Email        *string `bun:"email" json:"email,omitempty"`
	Audit
	Accessed   *time.Time `bun:"accessed" json:"accessed,omitempty"`
	AccessedIP *string    `bun:"accessed_ip" json:"accessed_ip,omitempty"`
	Status     *int16     `bun:"status" json:"status,omitempty"`
}

func (u User) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&u.Login, validation.Required, validation.Length(1, 50)),
		validation.Field(&u.Password, validation.Length(0, 50)),
		validation.Field(&u.Name, validation.Length(0, 100)),
		validation.Field(&u.GroupID, validation.Min(0)),
		validation.Field(&u.Rate, validation.Min(0.0), validation.Max(9999.99)),
		validation.Field(&u.QuotaPercent, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&u.Email, validation.Length(0, 100), is.EmailFormat),
		validation.Field(&u.AccessedIP, validation.NilOrNotEmpty, is.IP),
	}
	return validation.ValidateStruct(&u, append(rules, auditRules(&u.Audit)...)...)
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

func (u *User) BeforeAppendModel(_ context.Context, query bun.Query) error {
	u.Audit.stamp(query)
	return nil
}

func UserPK(u User) int { return u.ID }

// Clone returns a copy that shares no pointers with u.
func (u User) Clone() User {
	u.Password = clonePtr(u.Password)
	u.Name = clonePtr(u.Name)
	u.OrgID = clonePtr(u.OrgID)
	u.RoleID = clonePtr(u.RoleID)
	u.ClientID = clonePtr(u.ClientID)
	u.Email = clonePtr(u.Email)
	u.Audit = u.Audit.clone()
	u.Accessed = clonePtr(u.Accessed)
	u.AccessedIP = clonePtr(u.AccessedIP)
	u.Status = clonePtr(u.Status)
	return u
}

var (
	UserByGroup  = index("group", "group_id", func(u User) (int64, bool) { return required(u.GroupID) })
	UserByRole   = index("role", "role_id", func(u User) (int64, bool) { return nullable(u.RoleID) })
	UserByClient = index("client", "client_id", func(u User) (int64, bool) { return nullable(u.ClientID) })
)

var UserIndexes = []store.Index[User]{UserByGroup, UserByRole, UserByClient}

type UserRepository struct {
	*repositorycache.CachedRepository[int, User]
}

func NewUserRepository(s store.Store[int, User], opts ...repositorycache.Option) (*UserRepository, error) {
	repo, err := newRepository(s, UserPK, UsersTable, opts)
	if err != nil {
		return nil, err
	}
	return &UserRepository{repo}, nil
}

func (r *UserRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]User, error) {
	return r.RetrieveBy(ctx, UserByGroup.Eq(int64(groupID)))
}

func (r *UserRepository) RetrieveByRole(ctx context.Context, roleID int) ([]User, error) {
	return r.RetrieveBy(ctx, UserByRole.Eq(int64(roleID)))
}

func (r *UserRepository) RetrieveByClient(ctx context.Context, clientID int) ([]User, error) {
	return r.RetrieveBy(ctx, UserByClient.Eq(int64(clientID)))
}
