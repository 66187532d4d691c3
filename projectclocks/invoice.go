package projectclocks

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

const InvoicesTable = "invoices"

type Invoice struct {
	bun.BaseModel `bun:"table:invoices,alias:i"`

	ID       int       `bun:"id,pk,autoincrement" json:"id"`
	GroupID  int       `bun:"group_id,notnull" json:"group_id"`
	OrgID    *int      `bun:"org_id" json:"org_id,omitempty"`
	Name     string    `bun:"name,notnull" json:"name"`
	Date     time.Time `bun:"date,type:date,notnull" json:"date"`
	ClientID int       `bun:"client_id,notnull" json:"client_id"`
	Status   *int16    `bun:"status" json:"status,omitempty"`
}

func (i Invoice) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.GroupID, validation.Min(0)),
		validation.Field(&i.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&i.Date, validation.Required),
		validation.Field(&i.ClientID, validation.Required),
	)
}

func InvoicePK(i Invoice) int { return i.ID }

// Clone returns a copy that shares no pointers with i.
func (i Invoice) Clone() Invoice {
	i.OrgID = clonePtr(i.OrgID)
	i.Status = clonePtr(i.Status)
	return i
}

var (
	InvoiceByGroup  = index("group", "group_id", func(i Invoice) (int64, bool) { return required(i.GroupID) })
	InvoiceByClient = index("client", "client_id", func(i Invoice) (int64, bool) { return required(i.ClientID) })
)

var InvoiceIndexes = []store.Index[Invoice]{InvoiceByGroup, InvoiceByClient}

type InvoiceRepository struct {
	*repositorycache.CachedRepository[int, Invoice]
}

func NewInvoiceRepository(s store.Store[int, Invoice], opts ...repositorycache.Option) (*InvoiceRepository, error) {
	repo, err := newRepository(s, InvoicePK, InvoicesTable, opts)
	if err != nil {
		return nil, err
	}
	return &InvoiceRepository{repo}, nil
}

func (r *InvoiceRepository) RetrieveByGroup(ctx context.Context, groupID int) ([]Invoice, error) {
	return r.RetrieveBy(ctx, InvoiceByGroup.Eq(int64(groupID)))
}

func (r *InvoiceRepository) RetrieveByClient(ctx context.Context, clientID int) ([]Invoice, error) {
	return r.RetrieveBy(ctx, InvoiceByClient.Eq(int64(clientID)))
}
