// ABOUTME: Company service over the company_c table
// ABOUTME: Plain CRUD; the contact-detaching delete lives in cascade.go
package services

import (
	"context"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

type CompanyService struct {
	store *store[models.Company]
	opts  Options
}

func NewCompanyService(client apper.Client, opts Options) *CompanyService {
	opts = opts.withDefaults()
	return &CompanyService{
		opts: opts,
		store: &store[models.Company]{
			client:   client,
			table:    adapter.CompanyTable,
			entity:   "Company",
			fields:   adapter.CompanyFields,
			search:   adapter.CompanySearchFields,
			orderBy:  []apper.OrderBy{{Field: "name_c", Direction: apper.Asc}},
			decode:   adapter.CompanyFromRecord,
			logger:   opts.Logger.Named("companies"),
			pageSize: opts.PageSize,
		},
	}
}

func (s *CompanyService) GetAll(ctx context.Context, opts ListOptions) ([]models.Company, error) {
	return s.store.list(ctx, opts)
}

func (s *CompanyService) GetByID(ctx context.Context, id int) (models.Company, error) {
	return s.store.get(ctx, id)
}

func (s *CompanyService) Create(ctx context.Context, c models.Company) (models.Company, error) {
	now := s.opts.stamp()
	c.CreatedAt = now
	c.UpdatedAt = now
	return s.store.create(ctx, adapter.CompanyToRecord(c))
}

// Update replaces every writable field of the company.
func (s *CompanyService) Update(ctx context.Context, id int, c models.Company) (models.Company, error) {
	c.UpdatedAt = s.opts.stamp()
	return s.store.update(ctx, id, adapter.CompanyToRecord(c))
}

// Delete removes only the company row. Use CompanyCascade to detach contacts first.
func (s *CompanyService) Delete(ctx context.Context, id int) error {
	return s.store.delete(ctx, id)
}
