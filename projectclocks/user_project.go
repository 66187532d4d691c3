package projectclocks

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const UserProjectsTable = "user_projects"

// UserProject assigns a user to a project, optionally with a project
// specific rate.
type UserProject struct {
	bun.BaseModel `bun:"table:user_projects,alias:up"`

	ID        int      `bun:"id,pk,autoincrement" json:"id"`
	UserID    int      `bun:"user_id,notnull" json:"user_id"`
	ProjectID int      `bun:"project_id,notnull" json:"project_id"`
	GroupID   *int     `bun:"group_id" json:"group_id,omitempty"`
	OrgID     *int     `bun:"org_id" json:"org_id,omitempty"`
	Rate      *float64 `bun:"rate,type:numeric(6,2)" json:"rate,omitempty"`
	Status    *int16   `bun:"status" json:"status,omitempty"`
}

func (up UserProject) Validate() error {
	return validation.ValidateStruct(&up,
		validation.Field(&up.UserID, validation.Required),
		validation.Field(&up.ProjectID, validation.Required),
		validation.Field(&up.Rate, validation.Min(0.0), validation.Max(9999.99)),
	)
}

func UserProjectPK(up UserProject) int { return up.ID }

// Clone returns a copy that shares no pointers with up.
func (up UserProject) Clone() UserProject {
	up.GroupID = clonePtr(up.GroupID)
	up.OrgID = clonePtr(up.OrgID)
	up.Rate = clonePtr(up.Rate)
	up.Status = clonePtr(up.Status)
	return up
}

var (
	UserProjectByGroup   = index("group", "group_id", func(up UserProject) (int64, bool) { return nullable(up.GroupID) })
	UserProjectByUser    = index("user", "user_id", func(up UserProject) (int64, bool) { return required(up.UserID) })
	UserProjectByProject = index("project", "project_id", func(up UserProject) (int64, bool) { return required(up.ProjectID) })
)

var UserProjectIndexes = []store.Index[UserProject]{UserProjectByGroup, UserProjectByUser, UserProjectByProject}

type UserProjectRepository struct {
	*repositorycache.CachedRepository[int, UserProject]
}

func NewUserProjectRepository(s store.Store[int, UserProject], opts ...repositorycache.Option) (*UserProjectRepository, error) {
	repo, err := newRepository(s, UserProjectPK, UserProjectsTable, opts)
	if err != nil {
		return nil, err
	}
	return &UserProjectRepository{repo}, nil
}

func (r *UserProjectRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]UserProject, error) {
	return r.RetrieveBy(ctx, UserProjectByGroup.Eq(int64(groupID)))
}

func (r *UserProjectRepository) RetrieveByUser(ctx context.Context, userID int) ([]UserProject, error) {
	return r.RetrieveBy(ctx, UserProjectByUser.Eq(int64(userID)))
}

func (r *UserProjectRepository) RetrieveByProject(ctx context.Context, projectID int) ([]UserProject, error) {
	return r.RetrieveBy(ctx, UserProjectByProject.Eq(int64(projectID)))
}
