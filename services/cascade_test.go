// ABOUTME: Tests for the company delete saga and sales rep rules
// ABOUTME: Asserts call ordering, compensation, and duplicate assignment rejection
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCompanyWithContacts(t *testing.T, mem *apper.MemoryClient) (int, []models.Contact) {
	t.Helper()
	company := mem.Seed(adapter.CompanyTable, apper.Record{"name_c": "Acme"})[0]
	other := mem.Seed(adapter.CompanyTable, apper.Record{"name_c": "Globex"})[0]
	mem.Seed(adapter.ContactTable,
		apper.Record{"first_name_c": "Ada", "company_id_c": company},
		apper.Record{"first_name_c": "Grace", "company_id_c": company},
		apper.Record{"first_name_c": "Linus", "company_id_c": other},
	)

	contacts, err := NewContactService(mem, testOptions()).ByCompany(context.Background(), company)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	return company, contacts
}

func newCascade(client apper.Client) (*CompanyCascade, *ContactService) {
	contacts := NewContactService(client, testOptions())
	return NewCompanyCascade(NewCompanyService(client, testOptions()), contacts, nil), contacts
}

func TestCascadeDetachesEachContactBeforeDelete(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	company, dependents := seedCompanyWithContacts(t, mem)
	cascade, contacts := newCascade(rec)

	require.NoError(t, cascade.Delete(ctx, company, dependents))

	assert.Equal(t, []string{
		"update:" + adapter.ContactTable,
		"update:" + adapter.ContactTable,
		"delete:" + adapter.CompanyTable,
	}, rec.Ops())

	for _, c := range dependents {
		got, err := contacts.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Zero(t, got.CompanyID)
		assert.Equal(t, c.FirstName, got.FirstName)
	}

	_, err := NewCompanyService(mem, testOptions()).GetByID(ctx, company)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCascadeLooksUpDependentsWhenNil(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	company, _ := seedCompanyWithContacts(t, mem)
	cascade, _ := newCascade(rec)

	require.NoError(t, cascade.Delete(ctx, company, nil))
	assert.Equal(t, "fetch:"+adapter.ContactTable, rec.Ops()[0])
	assert.Len(t, rec.Ops(), 4)
}

func TestCascadeCompensatesWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	company, dependents := seedCompanyWithContacts(t, mem)
	cascade, contacts := newCascade(rec)
	rec.Reject = func(c apper.Call) string {
		if c.Op == apper.OpDelete {
			return "company is locked"
		}
		return ""
	}

	err := cascade.Delete(ctx, company, dependents)
	require.Error(t, err)

	var cerr *CascadeError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "delete company", cerr.Saga)
	assert.Contains(t, cerr.Step, "delete company")
	assert.Equal(t, 2, cerr.Compensated)
	assert.NoError(t, cerr.CompensationErr)
	assert.True(t, IsKind(err, KindRow))

	for _, c := range dependents {
		got, err := contacts.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, company, got.CompanyID)
	}
}

func TestCascadeStopsAtFailedDetach(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	company, dependents := seedCompanyWithContacts(t, mem)
	cascade, contacts := newCascade(rec)

	calls := 0
	rec.Fail = func(c apper.Call) error {
		if c.Op == apper.OpUpdate {
			calls++
			if calls == 2 {
				return errors.New("timeout")
			}
		}
		return nil
	}

	err := cascade.Delete(ctx, company, dependents)
	var cerr *CascadeError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 1, cerr.Compensated)

	for _, op := range rec.Ops() {
		assert.NotEqual(t, "delete:"+adapter.CompanyTable, op)
	}
	first, err := contacts.GetByID(ctx, dependents[0].ID)
	require.NoError(t, err)
	assert.Equal(t, company, first.CompanyID)
}

func TestSalesRepDirectorySeed(t *testing.T) {
	dir, err := NewDirectory()
	require.NoError(t, err)
	svc := NewSalesRepService(dir, testOptions())

	users, err := svc.AvailableUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 12)

	reps, err := svc.GetAll(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, reps)
	assert.Equal(t, "John Smith", reps[0].UserName)
}

func TestSalesRepValidationAndDuplicates(t *testing.T) {
	ctx := context.Background()
	dir, err := NewDirectory()
	require.NoError(t, err)
	svc := NewSalesRepService(dir, testOptions())

	_, err = svc.Create(ctx, models.SalesRep{})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "User selection is required", verr.Fields["userId"])
	assert.Equal(t, "Territory is required", verr.Fields["territory"])
	assert.Equal(t, "Region is required", verr.Fields["region"])

	_, err = svc.Create(ctx, models.SalesRep{UserID: 1, Territory: "East", Region: "North America", IsActive: true})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, duplicateAssignment, verr.Fields["userId"])

	created, err := svc.Create(ctx, models.SalesRep{UserID: 4, Territory: "East", Region: "North America", IsActive: true})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "2026-03-04T05:06:07Z", created.CreatedAt)

	_, err = svc.GetByID(ctx, 999)
	assert.Equal(t, "Sales representative not found", err.Error())
}

func TestSalesRepPatchMerges(t *testing.T) {
	ctx := context.Background()
	dir, err := NewDirectory()
	require.NoError(t, err)
	svc := NewSalesRepService(dir, testOptions())

	territory := "Pacific Northwest"
	rep, err := svc.Patch(ctx, 1, models.SalesRepPatch{Territory: &territory})
	require.NoError(t, err)
	assert.Equal(t, "Pacific Northwest", rep.Territory)
	assert.Equal(t, "North America", rep.Region)
	assert.True(t, rep.IsActive)

	// Reactivating rep 3 onto user 1 collides with rep 1.
	user := 1
	active := true
	_, err = svc.Patch(ctx, 3, models.SalesRepPatch{UserID: &user, IsActive: &active})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestCascadeFindsDependentsBeyondOnePage(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	company := mem.Seed(adapter.CompanyTable, apper.Record{"name_c": "Acme"})[0]
	for i := 0; i < 5; i++ {
		mem.Seed(adapter.ContactTable, apper.Record{"first_name_c": "Ada", "company_id_c": company})
	}
	opts := testOptions()
	opts.PageSize = 2
	contacts := NewContactService(rec, opts)
	cascade := NewCompanyCascade(NewCompanyService(rec, opts), contacts, nil)

	require.NoError(t, cascade.Delete(ctx, company, nil))

	ops := rec.Ops()
	assert.Equal(t, []string{
		"fetch:" + adapter.ContactTable,
		"fetch:" + adapter.ContactTable,
		"fetch:" + adapter.ContactTable,
	}, ops[:3])
	assert.Len(t, ops, 3+5+1)
	assert.Equal(t, "delete:"+adapter.CompanyTable, ops[len(ops)-1])

	left, err := NewContactService(mem, testOptions()).ByCompany(ctx, company)
	require.NoError(t, err)
	assert.Empty(t, left)
}
