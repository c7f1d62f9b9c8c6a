// ABOUTME: Sales rep service over a process-local directory of users and assignments
// ABOUTME: Enforces required fields and one active assignment per user
package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
)

//go:embed seed/directory.json
var directorySeed []byte

// NewDirectory returns an in-memory client seeded with the mock user
// directory and initial sales rep assignments.
func NewDirectory() (*apper.MemoryClient, error) {
	var seed struct {
		Users     []apper.Record `json:"users"`
		SalesReps []apper.Record `json:"salesReps"`
	}
	if err := json.Unmarshal(directorySeed, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse directory seed: %w", err)
	}

	m := apper.NewMemoryClient()
	m.Seed(adapter.UserTable, seed.Users...)
	m.Seed(adapter.SalesRepTable, seed.SalesReps...)
	return m, nil
}

const duplicateAssignment = "This user is already assigned as an active sales representative"

type SalesRepService struct {
	store *store[models.SalesRep]
	users *store[models.User]
	opts  Options
}

func NewSalesRepService(client apper.Client, opts Options) *SalesRepService {
	opts = opts.withDefaults()
	logger := opts.Logger.Named("salesreps")
	return &SalesRepService{
		opts: opts,
		store: &store[models.SalesRep]{
			client:   client,
			table:    adapter.SalesRepTable,
			entity:   "Sales representative",
			fields:   adapter.SalesRepFields,
			search:   adapter.SalesRepSearchFields,
			orderBy:  []apper.OrderBy{{Field: apper.FieldID, Direction: apper.Asc}},
			decode:   adapter.SalesRepFromRecord,
			logger:   logger,
			pageSize: opts.PageSize,
		},
		users: &store[models.User]{
			client:   client,
			table:    adapter.UserTable,
			entity:   "User",
			fields:   adapter.UserFields,
			orderBy:  []apper.OrderBy{{Field: apper.FieldName, Direction: apper.Asc}},
			decode:   adapter.UserFromRecord,
			logger:   logger,
			pageSize: opts.PageSize,
		},
	}
}

func (s *SalesRepService) GetAll(ctx context.Context, opts ListOptions) ([]models.SalesRep, error) {
	return s.store.list(ctx, opts)
}

func (s *SalesRepService) GetByID(ctx context.Context, id int) (models.SalesRep, error) {
	return s.store.get(ctx, id)
}

// AvailableUsers lists the user directory reps can be assigned from.
func (s *SalesRepService) AvailableUsers(ctx context.Context) ([]models.User, error) {
	return s.users.list(ctx, ListOptions{})
}

func validateSalesRep(r models.SalesRep) error {
	fields := map[string]string{}
	if r.UserID == 0 {
		fields["userId"] = "User selection is required"
	}
	if r.Territory == "" {
		fields["territory"] = "Territory is required"
	}
	if r.Region == "" {
		fields["region"] = "Region is required"
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

// checkAssignment rejects a second active assignment for the same user.
func (s *SalesRepService) checkAssignment(ctx context.Context, r models.SalesRep) error {
	if !r.IsActive {
		return nil
	}
	existing, err := s.store.list(ctx, ListOptions{Where: []apper.Condition{
		{Field: "user_id_c", Operator: apper.OpEqualTo, Values: []any{r.UserID}},
	}})
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.ID != r.ID && e.IsActive {
			return models.NewValidationError("userId", duplicateAssignment)
		}
	}
	return nil
}

func (s *SalesRepService) Create(ctx context.Context, r models.SalesRep) (models.SalesRep, error) {
	if err := validateSalesRep(r); err != nil {
		return models.SalesRep{}, err
	}
	r.ID = 0
	if err := s.checkAssignment(ctx, r); err != nil {
		return models.SalesRep{}, err
	}
	now := s.opts.stamp()
	r.CreatedAt = now
	r.UpdatedAt = now
	return s.store.create(ctx, adapter.SalesRepToRecord(r))
}

// Update writes every writable field of r.
func (s *SalesRepService) Update(ctx context.Context, id int, r models.SalesRep) (models.SalesRep, error) {
	return s.Patch(ctx, id, adapter.SalesRepPatchFrom(r))
}

// Patch merges p into the stored sales rep.
func (s *SalesRepService) Patch(ctx context.Context, id int, p models.SalesRepPatch) (models.SalesRep, error) {
	current, err := s.store.get(ctx, id)
	if err != nil {
		return models.SalesRep{}, err
	}

	merged := current
	if p.UserID != nil {
		merged.UserID = *p.UserID
	}
	if p.Territory != nil {
		merged.Territory = *p.Territory
	}
	if p.Region != nil {
		merged.Region = *p.Region
	}
	if p.IsActive != nil {
		merged.IsActive = *p.IsActive
	}
	if err := validateSalesRep(merged); err != nil {
		return models.SalesRep{}, err
	}
	if err := s.checkAssignment(ctx, merged); err != nil {
		return models.SalesRep{}, err
	}

	rec := adapter.SalesRepPatchToRecord(p)
	rec["updated_at_c"] = s.opts.stamp()
	return s.store.update(ctx, id, rec)
}

func (s *SalesRepService) Delete(ctx context.Context, id int) error {
	return s.store.delete(ctx, id)
}
