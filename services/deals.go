// ABOUTME: Deal service over the deals_c table
// ABOUTME: Updates are sparse patches; full updates send every writable field as a patch
package services

import (
	"context"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

type DealService struct {
	store *store[models.Deal]
}

func NewDealService(client apper.Client, opts Options) *DealService {
	opts = opts.withDefaults()
	return &DealService{
		store: &store[models.Deal]{
			client:   client,
			table:    adapter.DealTable,
			entity:   "Deal",
			fields:   adapter.DealFields,
			search:   adapter.DealSearchFields,
			orderBy:  []apper.OrderBy{{Field: apper.FieldModifiedOn, Direction: apper.Desc}},
			decode:   adapter.DealFromRecord,
			logger:   opts.Logger.Named("deals"),
			pageSize: opts.PageSize,
		},
	}
}

func (s *DealService) GetAll(ctx context.Context, opts ListOptions) ([]models.Deal, error) {
	return s.store.list(ctx, opts)
}

func (s *DealService) GetByID(ctx context.Context, id int) (models.Deal, error) {
	return s.store.get(ctx, id)
}

func (s *DealService) Create(ctx context.Context, d models.Deal) (models.Deal, error) {
	return s.store.create(ctx, adapter.DealToRecord(d))
}

// Update writes every writable field of d.
func (s *DealService) Update(ctx context.Context, id int, d models.Deal) (models.Deal, error) {
	return s.Patch(ctx, id, adapter.DealPatchFrom(d))
}

// Patch writes only the fields set on p.
func (s *DealService) Patch(ctx context.Context, id int, p models.DealPatch) (models.Deal, error) {
	return s.store.update(ctx, id, adapter.DealPatchToRecord(p))
}

func (s *DealService) Delete(ctx context.Context, id int) error {
	return s.store.delete(ctx, id)
}
