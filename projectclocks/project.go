package projectclocks

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const ProjectsTable = "projects"

type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID          int     `bun:"id,pk,autoincrement" json:"id"`
	GroupID     int     `bun:"group_id,notnull" json:"group_id"`
	OrgID       *int    `bun:"org_id" json:"org_id,omitempty"`
	Name        string  `bun:"name,notnull" json:"name"`
	Description *string `bun:"description" json:"description,omitempty"`
	// Tasks is a comma separated list of task ids.
	Tasks  *string `bun:"tasks" json:"tasks,omitempty"`
	Status *int16  `bun:"status" json:"status,omitempty"`
}

func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.GroupID, validation.Min(0)),
		validation.Field(&p.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&p.Description, validation.Length(0, 255)),
	)
}

func ProjectPK(p Project) int { return p.ID }

// Clone returns a copy that shares no pointers with p.
func (p Project) Clone() Project {
	p.OrgID = clonePtr(p.OrgID)
	p.Description = clonePtr(p.Description)
	p.Tasks = clonePtr(p.Tasks)
	p.Status = clonePtr(p.Status)
	return p
}

var ProjectByGroup = index("group", "group_id", func(p Project) (int64, bool) { return required(p.GroupID) })

var ProjectIndexes = []store.Index[Project]{ProjectByGroup}

type ProjectRepository struct {
	*repositorycache.CachedRepository[int, Project]
}

func NewProjectRepository(s store.Store[int, Project], opts ...repositorycache.Option) (*ProjectRepository, error) {
	repo, err := newRepository(s, ProjectPK, ProjectsTable, opts)
	if err != nil {
		return nil, err
	}
	return &ProjectRepository{repo}, nil
}

func (r *ProjectRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]Project, error) {
	return r.RetrieveBy(ctx, ProjectByGroup.Eq(int64(groupID)))
}
