package projectclocks

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const RolesTable = "roles"

// Role is a named set of rights within a group. Higher Rank means more
// privileges.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID          int     `bun:"id,pk,autoincrement" json:"id"`
	GroupID     int     `bun:"group_id,notnull" json:"group_id"`
	OrgID       *int    `bun:"org_id" json:"org_id,omitempty"`
	Name        *string `bun:"name" json:"name,omitempty"`
	Description *string `bun:"description" json:"description,omitempty"`
	Rank        *int    `bun:"rank" json:"rank,omitempty"`
	Rights      *string `bun:"rights" json:"rights,omitempty"`
	Status      *int16  `bun:"status" json:"status,omitempty"`
}

func (r Role) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.GroupID, validation.Min(0)),
		validation.Field(&r.Name, validation.Length(0, 80)),
		validation.Field(&r.Description, validation.Length(0, 255)),
		validation.Field(&r.Rank, validation.Min(0)),
	)
}

func RolePK(r Role) int { return r.ID }

// Clone returns a copy that shares no pointers with r.
func (r Role) Clone() Role {
	r.OrgID = clonePtr(r.OrgID)
	r.Name = clonePtr(r.Name)
	r.Description = clonePtr(r.Description)
	r.Rank = clonePtr(r.Rank)
	r.Rights = clonePtr(r.Rights)
	r.Status = clonePtr(r.Status)
	return r
}

var RoleByGroup = index("group", "group_id", func(r Role) (int64, bool) { return required(r.GroupID) })

var RoleIndexes = []store.Index[Role]{RoleByGroup}

type RoleRepository struct {
	*repositorycache.CachedRepository[int, Role]
}

func NewRoleRepository(s store.Store[int, Role], opts ...repositorycache.Option) (*RoleRepository, error) {
	repo, err := newRepository(s, RolePK, RolesTable, opts)
	if err != nil {
		return nil, err
	}
	return &RoleRepository{repo}, nil
}

func (r *RoleRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]Role, error) {
	return r.RetrieveBy(ctx, RoleByGroup.Eq(int64(groupID)))
}
