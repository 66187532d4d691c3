package projectclocks

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const ClientsTable = "clients"

// Client is a customer of a group.
type Client struct {
	bun.BaseModel `bun:"table:clients,alias:c"`

	ID       int      `bun:"id,pk,autoincrement" json:"id"`
	GroupID  int      `bun:"group_id,notnull" json:"group_id"`
	OrgID    *int     `bun:"org_id" json:"org_id,omitempty"`
	Name     string   `bun:"name,notnull" json:"name"`
	Address  *string  `bun:"address" json:"address,omitempty"`
	Tax      *float64 `bun:"tax,type:numeric(6,2)" json:"tax,omitempty"`
	Projects *string  `bun:"projects" json:"projects,omitempty"`
	Status   *int16   `bun:"status" json:"status,omitempty"`
}

func (c Client) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.GroupID, validation.Min(0)),
		validation.Field(&c.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&c.Address, validation.Length(0, 255)),
		validation.Field(&c.Tax, validation.Min(0.0), validation.Max(9999.99)),
	)
}

func ClientPK(c Client) int { return c.ID }

// Clone returns a copy that shares no pointers with c.
func (c Client) Clone() Client {
	c.OrgID = clonePtr(c.OrgID)
	c.Address = clonePtr(c.Address)
	c.Tax = clonePtr(c.Tax)
	c.Projects = clonePtr(c.Projects)
	c.Status = clonePtr(c.Status)
	return c
}

var ClientByGroup = index("group", "group_id", func(c Client) (int64, bool) { return required(c.GroupID) })

var ClientIndexes = []store.Index[Client]{ClientByGroup}

type ClientRepository struct {
	*repositorycache.CachedRepository[int, Client]
}

func NewClientRepository(s store.Store[int, Client], opts ...repositorycache.Option) (*ClientRepository, error) {
	repo, err := newRepository(s, ClientPK, ClientsTable, opts)
	if err != nil {
		return nil, err
	}
	return &ClientRepository{repo}, nil
}

func (r *ClientRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]Client, error) {
	return r.RetrieveBy(ctx, ClientByGroup.Eq(int64(groupID)))
}
