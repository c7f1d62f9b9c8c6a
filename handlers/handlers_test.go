// ABOUTME: Tests for MCP tool, resource and prompt handlers
// ABOUTME: Calls handlers directly against an in-memory workspace
package handlers

import (
	"context"
	"strconv"
	"testing"

	"github.com/harperreed/crmdesk/app"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/listview"
	"github.com/harperreed/crmdesk/models"
	"github.com/harperreed/crmdesk/services"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkspace(t *testing.T) *app.Workspace {
	t.Helper()
	ws, err := app.New(apper.NewMemoryClient(), app.Options{})
	require.NoError(t, err)
	return ws
}

func TestSaveAndGetRecord(t *testing.T) {
	ctx := context.Background()
	h := NewRecordHandlers(newWorkspace(t))

	_, saved, err := h.SaveRecord(ctx, nil, SaveRecordInput{
		Entity: "contact",
		Fields: map[string]string{"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com"},
	})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	assert.Equal(t, "contacts", saved.Entity)

	_, got, err := h.GetRecord(ctx, nil, GetRecordInput{Entity: "contacts", ID: saved.ID})
	require.NoError(t, err)
	contact, ok := got.Record.(models.Contact)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", contact.Email)

	_, updated, err := h.SaveRecord(ctx, nil, SaveRecordInput{
		Entity: "contacts",
		ID:     saved.ID,
		Fields: map[string]string{"title": "Analyst"},
	})
	require.NoError(t, err)
	contact = updated.Record.(models.Contact)
	assert.Equal(t, "Analyst", contact.Title)
	assert.Equal(t, "Ada", contact.FirstName)
}

func TestSaveRecordReportsEveryField(t *testing.T) {
	h := NewRecordHandlers(newWorkspace(t))

	_, _, err := h.SaveRecord(context.Background(), nil, SaveRecordInput{
		Entity: "contacts",
		Fields: map[string]string{"email": "nope"},
	})
	require.Error(t, err)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "email: Please enter a valid email address")
	assert.Contains(t, err.Error(), "firstName: First name is required")
}

func TestGetRecordErrors(t *testing.T) {
	h := NewRecordHandlers(newWorkspace(t))

	_, _, err := h.GetRecord(context.Background(), nil, GetRecordInput{Entity: "widgets", ID: 1})
	assert.ErrorIs(t, err, app.ErrUnknownEntity)

	_, _, err = h.GetRecord(context.Background(), nil, GetRecordInput{Entity: "leads", ID: 7})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestFindRecords(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	h := NewRecordHandlers(ws)
	for _, name := range []string{"Call Acme", "Email Globex", "Call Initech"} {
		_, err := ws.Tasks.Create(ctx, models.Task{Name: name, Status: "Not Started", Priority: "High"})
		require.NoError(t, err)
	}

	_, out, err := h.FindRecords(ctx, nil, FindRecordsInput{Entity: "tasks", Query: "call"})
	require.NoError(t, err)
	assert.Equal(t, "tasks", out.Entity)
	assert.Equal(t, []string{"Task", "Due", "Priority", "Status", "Company"}, out.Columns)
	assert.Equal(t, 2, out.Shown)
	assert.Equal(t, 3, out.Total)

	_, out, err = h.FindRecords(ctx, nil, FindRecordsInput{Entity: "tasks", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.Rows, 1)
	assert.Equal(t, 3, out.Shown)

	_, out, err = h.FindRecords(ctx, nil, FindRecordsInput{Entity: "tasks", Status: "Completed"})
	require.NoError(t, err)
	assert.Empty(t, out.Rows)
	assert.NotNil(t, out.Rows)

	_, _, err = h.FindRecords(ctx, nil, FindRecordsInput{Entity: "contacts", Priority: "High"})
	assert.ErrorIs(t, err, listview.ErrUnknownFilter)
}

func TestDeleteRecordDetachesContacts(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	h := NewRecordHandlers(ws)
	acme, err := ws.Companies.Create(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	ada, err := ws.Contacts.Create(ctx, models.Contact{FirstName: "Ada", LastName: "Lovelace", CompanyID: acme.ID})
	require.NoError(t, err)

	_, out, err := h.DeleteRecord(ctx, nil, DeleteRecordInput{Entity: "companies", ID: acme.ID})
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	got, err := ws.Contacts.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CompanyID)

	_, _, err = h.DeleteRecord(ctx, nil, DeleteRecordInput{Entity: "companies", ID: acme.ID})
	assert.ErrorIs(t, err, listview.ErrUnknownRecord)
}

func TestExportRecords(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	h := NewRecordHandlers(ws)

	_, _, err := h.ExportRecords(ctx, nil, ExportRecordsInput{Entity: "companies"})
	assert.ErrorIs(t, err, listview.ErrNothingToExport)

	_, err = ws.Companies.Create(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	_, out, err := h.ExportRecords(ctx, nil, ExportRecordsInput{Entity: "companies"})
	require.NoError(t, err)
	assert.Equal(t, "companies.csv", out.Filename)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "Company Name,Industry,Size,Website,Description,Contact Count\n"+
		`"Acme","","","","","0"`, out.CSV)
}

func TestReadResource(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	h := NewResourceHandlers(ws)
	acme, err := ws.Companies.Create(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)

	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	res, err := read("crm://companies")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	assert.Contains(t, res.Contents[0].Text, `"Acme"`)

	res, err = read("crm://companies/" + strconv.Itoa(acme.ID))
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"name": "Acme"`)

	_, err = read("crm://widgets")
	assert.Error(t, err)
	_, err = read("http://companies")
	assert.Error(t, err)
	_, err = read("crm://companies/9999")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRecordSummaryPrompt(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	h := NewPromptHandlers(ws)
	deal, err := ws.Deals.Create(ctx, models.Deal{Name: "Renewal", Stage: "Proposal"})
	require.NoError(t, err)

	res, err := h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "record-summary",
		Arguments: map[string]string{"entity": "deals", "id": strconv.Itoa(deal.ID)},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Summary for deal "+strconv.Itoa(deal.ID), res.Description)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Renewal")
	assert.Contains(t, text, "next steps")

	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "haiku"}})
	assert.Error(t, err)
	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "record-summary",
		Arguments: map[string]string{"entity": "deals", "id": "x"},
	}})
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(newWorkspace(t), "test"))
}
