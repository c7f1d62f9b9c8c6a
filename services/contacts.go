// ABOUTME: Contact service over the contact_c table
// ABOUTME: Stamps created/updated timestamps and supports lookup by company
package services

import (
	"context"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

type ContactService struct {
	store *store[models.Contact]
	opts  Options
}

func NewContactService(client apper.Client, opts Options) *ContactService {
	opts = opts.withDefaults()
	return &ContactService{
		opts: opts,
		store: &store[models.Contact]{
			client:   client,
			table:    adapter.ContactTable,
			entity:   "Contact",
			fields:   adapter.ContactFields,
			search:   adapter.ContactSearchFields,
			orderBy:  []apper.OrderBy{{Field: "updated_at_c", Direction: apper.Desc}},
			decode:   adapter.ContactFromRecord,
			logger:   opts.Logger.Named("contacts"),
			pageSize: opts.PageSize,
		},
	}
}

func (s *ContactService) GetAll(ctx context.Context, opts ListOptions) ([]models.Contact, error) {
	return s.store.list(ctx, opts)
}

// ByCompany lists every contact whose company reference is companyID,
// paging past the page size.
func (s *ContactService) ByCompany(ctx context.Context, companyID int) ([]models.Contact, error) {
	return s.store.listAll(ctx, ListOptions{Where: []apper.Condition{
		{Field: "company_id_c", Operator: apper.OpEqualTo, Values: []any{companyID}},
	}})
}

func (s *ContactService) GetByID(ctx context.Context, id int) (models.Contact, error) {
	return s.store.get(ctx, id)
}

func (s *ContactService) Create(ctx context.Context, c models.Contact) (models.Contact, error) {
	now := s.opts.stamp()
	c.CreatedAt = now
	c.UpdatedAt = now
	return s.store.create(ctx, adapter.ContactToRecord(c))
}

// Update replaces every writable field of the contact.
func (s *ContactService) Update(ctx context.Context, id int, c models.Contact) (models.Contact, error) {
	c.UpdatedAt = s.opts.stamp()
	return s.store.update(ctx, id, adapter.ContactToRecord(c))
}

func (s *ContactService) Delete(ctx context.Context, id int) error {
	return s.store.delete(ctx, id)
}
