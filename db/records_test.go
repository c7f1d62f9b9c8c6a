// ABOUTME: Tests for the SQLite record store against the record client contract
// ABOUTME: Mirrors the in-memory client behaviour and drives real services over it
package db

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
	"github.com/harperreed/crmdesk/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *RecordStore {
	t.Helper()
	db, err := OpenDatabase(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s := NewRecordStore(db, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func create(t *testing.T, s *RecordStore, table string, rec apper.Record) int {
	t.Helper()
	resp, err := s.CreateRecord(context.Background(), table, apper.RecordsRequest{Records: []apper.Record{rec}})
	require.NoError(t, err)
	require.True(t, resp.Results[0].Success)
	id, ok := apper.IntValue(resp.Results[0].Data[apper.FieldID])
	require.True(t, ok)
	return id
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := create(t, s, "contact_c", apper.Record{"first_name_c": "Ada", "Id": 999})
	assert.NotEqual(t, 999, id, "ids are assigned by the store")

	resp, err := s.GetRecordByID(ctx, "contact_c", id, apper.Query{})
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Ada", resp.Data["first_name_c"])
	assert.Equal(t, "2026-01-02T03:04:05Z", resp.Data[apper.FieldCreatedOn])

	missing, err := s.GetRecordByID(ctx, "contact_c", id+100, apper.Query{})
	require.NoError(t, err)
	assert.True(t, missing.Success)
	assert.Nil(t, missing.Data)

	other, err := s.GetRecordByID(ctx, "company_c", id, apper.Query{})
	require.NoError(t, err)
	assert.Nil(t, other.Data, "tables are isolated")
}

func TestFetchAppliesQueryAndExpandsLookups(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	acme := create(t, s, "company_c", apper.Record{"name_c": "Acme"})
	create(t, s, "contact_c", apper.Record{"first_name_c": "Grace", "company_id_c": acme})
	create(t, s, "contact_c", apper.Record{"first_name_c": "Ada", "company_id_c": nil})
	create(t, s, "contact_c", apper.Record{"first_name_c": "Alan", "company_id_c": 4242})

	resp, err := s.FetchRecords(ctx, "contact_c", apper.Query{
		Fields: []apper.FieldSpec{
			{Name: "first_name_c"},
			{Name: "company_id_c", Reference: &apper.Reference{Table: "company_c", Fields: []string{"name_c"}}},
		},
		OrderBy: []apper.OrderBy{{Field: "first_name_c", Direction: apper.Asc}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	require.Len(t, resp.Data, 3)

	assert.Equal(t, "Ada", resp.Data[0]["first_name_c"])
	assert.Nil(t, resp.Data[0]["company_id_c"])
	assert.Equal(t, float64(4242), resp.Data[1]["company_id_c"], "unresolvable ids stay bare")
	assert.Equal(t, map[string]any{"Id": acme, "Name": "Acme"}, resp.Data[2]["company_id_c"])

	paged, err := s.FetchRecords(ctx, "contact_c", apper.Query{
		Where:  []apper.Condition{{Field: "first_name_c", Operator: apper.OpContains, Values: []any{"a"}}},
		Paging: apper.Paging{Limit: 1, Offset: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, paged.Total)
	require.Len(t, paged.Data, 1)
	assert.Equal(t, "Ada", paged.Data[0]["first_name_c"])
}

func TestUpdateMergesAndReportsMissingRows(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := create(t, s, "deals_c", apper.Record{"Name_c": "Renewal", "Value_c": 100})

	resp, err := s.UpdateRecord(ctx, "deals_c", apper.RecordsRequest{Records: []apper.Record{
		{"Id": id, "Value_c": 250},
		{"Id": id + 50, "Value_c": 1},
	}})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, "Record not found", resp.Results[1].Message)

	got, err := s.GetRecordByID(ctx, "deals_c", id, apper.Query{})
	require.NoError(t, err)
	assert.Equal(t, "Renewal", got.Data["Name_c"])
	assert.Equal(t, float64(250), got.Data["Value_c"])
}

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id := create(t, s, "leads_c", apper.Record{"first_name_c": "Lin"})

	resp, err := s.DeleteRecord(ctx, "leads_c", apper.DeleteRequest{RecordIDs: []int{id, id}})
	require.NoError(t, err)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)

	n, err := s.Count(ctx, "leads_c")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServicesRunOverSQLite(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	opts := services.Options{}
	companies := services.NewCompanyService(s, opts)
	contacts := services.NewContactService(s, opts)

	acme, err := companies.Create(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	ada, err := contacts.Create(ctx, models.Contact{FirstName: "Ada", LastName: "Lovelace", CompanyID: acme.ID})
	require.NoError(t, err)

	got, err := contacts.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, acme.ID, got.CompanyID)
	assert.Equal(t, "Acme", got.CompanyName)

	cascade := services.NewCompanyCascade(companies, contacts, nil)
	require.NoError(t, cascade.Delete(ctx, acme.ID, nil))

	got, err = contacts.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CompanyID)

	n, err := s.Count(ctx, adapter.CompanyTable)
	require.NoError(t, err)
	assert.Zero(t, n)
}
