// ABOUTME: Tests for workspace wiring across backends
// ABOUTME: Drives entities end to end through their forms and list views
package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/config"
	"github.com/harperreed/crmdesk/form"
	"github.com/harperreed/crmdesk/listview"
	"github.com/harperreed/crmdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yes(string) bool { return true }

func TestOpenMemoryBackend(t *testing.T) {
	w, err := Open(&config.Config{Backend: config.BackendMemory, PageSize: 50}, Options{})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, config.BackendMemory, w.Mode)
	assert.Equal(t, []string{"companies", "contacts", "deals", "leads", "salesreps", "tasks"}, w.Keys())
	assert.Len(t, w.Entities(), 6)
	assert.Equal(t, "contacts", w.Entities()[0].Key)
}

func TestOpenSQLiteBackendPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "crm.db")
	cfg := &config.Config{Backend: config.BackendSQLite, DBPath: path}

	w, err := Open(cfg, Options{})
	require.NoError(t, err)
	acme, err := w.Companies.Create(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w, err = Open(cfg, Options{})
	require.NoError(t, err)
	defer w.Close()
	got, err := w.Companies.GetByID(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
}

func TestEntityAliases(t *testing.T) {
	w, err := New(apper.NewMemoryClient(), Options{})
	require.NoError(t, err)

	for alias, key := range map[string]string{
		"Contact": "contacts", "company": "companies", " deals ": "deals",
		"reps": "salesreps", "sales-reps": "salesreps", "task": "tasks",
	} {
		e, err := w.Entity(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, key, e.Key)
	}

	_, err = w.Entity("widgets")
	require.ErrorIs(t, err, ErrUnknownEntity)
	assert.Contains(t, err.Error(), "companies, contacts")
}

func TestFormSaveShowsUpInTable(t *testing.T) {
	ctx := context.Background()
	var got []string
	notifier := form.NotifierFunc(func(_ form.Level, msg string) { got = append(got, msg) })
	w, err := New(apper.NewMemoryClient(), Options{Notifier: notifier})
	require.NoError(t, err)

	e, err := w.Entity("contacts")
	require.NoError(t, err)
	f, err := e.NewForm()
	require.NoError(t, err)
	f.OpenNew()
	require.NoError(t, f.Set("firstName", "Ada"))
	require.NoError(t, f.Set("lastName", "Lovelace"))
	id, err := f.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Contact created successfully"}, got)

	table := e.NewTable()
	require.NoError(t, table.Load(ctx))
	assert.Equal(t, listview.StateReady, table.State())
	rows := table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.Equal(t, "Ada Lovelace", rows[0].Cells[0])

	rec, err := e.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", rec.(models.Contact).FirstName)
}

func TestCompanyDeleteDetachesContacts(t *testing.T) {
	ctx := context.Background()
	w, err := New(apper.NewMemoryClient(), Options{})
	require.NoError(t, err)

	acme, err := w.Companies.Create(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	ada, err := w.Contacts.Create(ctx, models.Contact{FirstName: "Ada", LastName: "Lovelace", CompanyID: acme.ID})
	require.NoError(t, err)

	e, err := w.Entity("companies")
	require.NoError(t, err)
	table := e.NewTable()
	require.NoError(t, table.Load(ctx))
	deleted, err := table.Delete(ctx, acme.ID, yes)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := w.Contacts.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CompanyID)
}

func TestTablesAreIndependent(t *testing.T) {
	w, err := New(apper.NewMemoryClient(), Options{})
	require.NoError(t, err)
	e, err := w.Entity("tasks")
	require.NoError(t, err)

	a, b := e.NewTable(), e.NewTable()
	a.SetSearch("call")
	assert.Equal(t, "call", a.Search())
	assert.Empty(t, b.Search())
}

func TestSalesRepsUseDirectory(t *testing.T) {
	ctx := context.Background()
	client := apper.NewMemoryClient()
	w, err := New(client, Options{})
	require.NoError(t, err)

	users, err := w.SalesReps.AvailableUsers(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, users)

	resp, err := client.FetchRecords(ctx, "user_c", apper.Query{})
	require.NoError(t, err)
	assert.Empty(t, resp.Data, "the main backend holds no directory users")
}

func TestEntitySave(t *testing.T) {
	ctx := context.Background()
	w, err := New(apper.NewMemoryClient(), Options{})
	require.NoError(t, err)
	e, err := w.Entity("deals")
	require.NoError(t, err)

	_, err = e.Save(ctx, 0, map[string]string{"name": "Renewal"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	id, err := e.Save(ctx, 0, map[string]string{
		"name": "Renewal", "companyId": "1", "value": "1200", "probability": "40", "expectedCloseDate": "2026-12-01",
	})
	require.NoError(t, err)

	_, err = e.Save(ctx, id, map[string]string{"probability": "80"})
	require.NoError(t, err)
	got, err := w.Deals.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 80, got.Probability)
	assert.Equal(t, "Renewal", got.Name)

	_, err = e.Save(ctx, id, map[string]string{"colour": "red"})
	require.ErrorIs(t, err, form.ErrUnknownField)
}
