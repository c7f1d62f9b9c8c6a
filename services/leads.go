// ABOUTME: Lead service over the leads_c table
// ABOUTME: Fills the lead's display Name from the person's name when blank
package services

import (
	"context"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

type LeadService struct {
	store *store[models.Lead]
}

func NewLeadService(client apper.Client, opts Options) *LeadService {
	opts = opts.withDefaults()
	return &LeadService{
		store: &store[models.Lead]{
			client:   client,
			table:    adapter.LeadTable,
			entity:   "Lead",
			fields:   adapter.LeadFields,
			search:   adapter.LeadSearchFields,
			orderBy:  []apper.OrderBy{{Field: apper.FieldModifiedOn, Direction: apper.Desc}},
			decode:   adapter.LeadFromRecord,
			logger:   opts.Logger.Named("leads"),
			pageSize: opts.PageSize,
		},
	}
}

func (s *LeadService) GetAll(ctx context.Context, opts ListOptions) ([]models.Lead, error) {
	return s.store.list(ctx, opts)
}

func (s *LeadService) GetByID(ctx context.Context, id int) (models.Lead, error) {
	return s.store.get(ctx, id)
}

func (s *LeadService) Create(ctx context.Context, l models.Lead) (models.Lead, error) {
	if l.Name == "" {
		l.Name = l.FullName()
	}
	return s.store.create(ctx, adapter.LeadToRecord(l))
}

// Update replaces every writable field of the lead.
func (s *LeadService) Update(ctx context.Context, id int, l models.Lead) (models.Lead, error) {
	if l.Name == "" {
		l.Name = l.FullName()
	}
	return s.store.update(ctx, id, adapter.LeadToRecord(l))
}

func (s *LeadService) Delete(ctx context.Context, id int) error {
	return s.store.delete(ctx, id)
}
