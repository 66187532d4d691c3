package projectclocks

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const TasksTable = "tasks"

type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          int     `bun:"id,pk,autoincrement" json:"id"`
	GroupID     int     `bun:"group_id,notnull" json:"group_id"`
	OrgID       *int    `bun:"org_id" json:"org_id,omitempty"`
	Name        string  `bun:"name,notnull" json:"name"`
	Description *string `bun:"description" json:"description,omitempty"`
	Status      *int16  `bun:"status" json:"status,omitempty"`
}

func (t Task) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.GroupID, validation.Min(0)),
		validation.Field(&t.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&t.Description, validation.Length(0, 255)),
	)
}

func TaskPK(t Task) int { return t.ID }

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	t.OrgID = clonePtr(t.OrgID)
	t.Description = clonePtr(t.Description)
	t.Status = clonePtr(t.Status)
	return t
}

var TaskByGroup = index("group", "group_id", func(t Task) (int64, bool) { return required(t.GroupID) })

var TaskIndexes = []store.Index[Task]{TaskByGroup}

type TaskRepository struct {
	*repositorycache.CachedRepository[int, Task]
}

func NewTaskRepository(s store.Store[int, Task], opts ...repositorycache.Option) (*TaskRepository, error) {
	repo, err := newRepository(s, TaskPK, TasksTable, opts)
	if err != nil {
		return nil, err
	}
	return &TaskRepository{repo}, nil
}

func (r *TaskRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]Task, error) {
	return r.RetrieveBy(ctx, TaskByGroup.Eq(int64(groupID)))
}
