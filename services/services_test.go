// ABOUTME: Tests for entity services over the in-memory record client
// ABOUTME: Covers list degradation, not-found, row failures, sparse updates and timestamps
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/crmdesk/adapter"
	"github.com/harperreed/crmdesk/apper"
	"github.com/harperreed/crmdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func testOptions() Options {
	return Options{Now: func() time.Time { return fixedNow }}
}

func setup(t *testing.T) (*apper.MemoryClient, *apper.Recorder) {
	t.Helper()
	mem := apper.NewMemoryClient()
	return mem, apper.NewRecorder(mem)
}

func TestContactCreateStampsTimestamps(t *testing.T) {
	ctx := context.Background()
	_, rec := setup(t)
	svc := NewContactService(rec, testOptions())

	c, err := svc.Create(ctx, models.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "2026-03-04T05:06:07Z", c.CreatedAt)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	sent := rec.Calls()[0].Records[0]
	assert.Nil(t, sent["company_id_c"])
	_, hasID := sent["Id"]
	assert.False(t, hasID)
}

func TestContactGetAllExpandsCompany(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	acme := mem.Seed(adapter.CompanyTable, apper.Record{"name_c": "Acme"})[0]
	mem.Seed(adapter.ContactTable, apper.Record{"first_name_c": "Ada", "company_id_c": acme})

	contacts, err := NewContactService(rec, testOptions()).GetAll(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, acme, contacts[0].CompanyID)
	assert.Equal(t, "Acme", contacts[0].CompanyName)
}

func TestGetAllFailureReturnsEmptyListAndError(t *testing.T) {
	ctx := context.Background()
	_, rec := setup(t)
	rec.Fail = func(apper.Call) error { return errors.New("offline") }

	contacts, err := NewContactService(rec, testOptions()).GetAll(ctx, ListOptions{})
	require.Error(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
	assert.True(t, IsKind(err, KindTransport))

	rec.Fail = nil
	rec.Refuse = func(apper.Call) string { return "table missing" }
	companies, err := NewCompanyService(rec, testOptions()).GetAll(ctx, ListOptions{})
	assert.Empty(t, companies)
	assert.True(t, IsKind(err, KindRejected))
	assert.Equal(t, "table missing", err.Error())
}

func TestGetAllEmptyIsNotAnError(t *testing.T) {
	_, rec := setup(t)
	deals, err := NewDealService(rec, testOptions()).GetAll(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, deals)
}

func TestGetAllUsesPageSize(t *testing.T) {
	mem, _ := setup(t)
	for i := 0; i < 120; i++ {
		mem.Seed(adapter.TaskTable, apper.Record{"subject_c": "t"})
	}
	tasks, err := NewTaskService(mem, testOptions()).GetAll(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, tasks, DefaultPageSize)
}

func TestGetByIDNotFound(t *testing.T) {
	_, rec := setup(t)
	_, err := NewContactService(rec, testOptions()).GetByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Contact not found", err.Error())
}

func TestCreateSurfacesFirstRowFailure(t *testing.T) {
	_, rec := setup(t)
	rec.Reject = func(c apper.Call) string { return "Email already exists" }

	_, err := NewLeadService(rec, testOptions()).Create(context.Background(), models.Lead{FirstName: "A", LastName: "B"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRow))
	assert.Equal(t, "Email already exists", err.Error())
}

func TestFirstRowFailureFoldsFieldErrors(t *testing.T) {
	msg, failed := firstRowFailure([]apper.Result{
		{Success: true},
		{Success: false, Errors: []apper.FieldError{{FieldLabel: "Email", Message: "is invalid"}}},
		{Success: false, Message: "second"},
	})
	assert.True(t, failed)
	assert.Equal(t, "Email: is invalid", msg)
}

func TestDeleteContractIsUniform(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	id := mem.Seed(adapter.DealTable, apper.Record{"Name_c": "x"})[0]
	deals := NewDealService(rec, testOptions())

	require.NoError(t, deals.Delete(ctx, id))

	err := deals.Delete(ctx, id)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRow))

	rec.Fail = func(apper.Call) error { return errors.New("offline") }
	for _, del := range []func(context.Context, int) error{
		NewContactService(rec, testOptions()).Delete,
		NewCompanyService(rec, testOptions()).Delete,
		NewLeadService(rec, testOptions()).Delete,
		NewTaskService(rec, testOptions()).Delete,
		deals.Delete,
	} {
		err := del(ctx, 1)
		var re *RemoteError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, KindTransport, re.Kind)
	}
}

func TestDealPatchIsSparse(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	id := mem.Seed(adapter.DealTable, apper.Record{"Name_c": "Renewal", "Value_c": 5000.0, "Status_c": "Prospecting"})[0]
	deals := NewDealService(rec, testOptions())

	stage := models.StageNegotiation
	d, err := deals.Patch(ctx, id, models.DealPatch{Stage: &stage})
	require.NoError(t, err)
	assert.Equal(t, "Renewal", d.Name)
	assert.Equal(t, 5000.0, d.Value)
	assert.Equal(t, models.StageNegotiation, d.Stage)

	sent := rec.Calls()[0].Records[0]
	assert.Equal(t, apper.Record{"Id": id, "Status_c": models.StageNegotiation}, sent)
}

func TestContactUpdateIsFullReplacement(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	id := mem.Seed(adapter.ContactTable, apper.Record{"first_name_c": "Ada", "title_c": "CTO"})[0]

	c, err := NewContactService(rec, testOptions()).Update(ctx, id, models.Contact{FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "", c.Title)
	assert.Equal(t, "2026-03-04T05:06:07Z", c.UpdatedAt)
}

func TestContactSearchMatchesServerSide(t *testing.T) {
	ctx := context.Background()
	mem, rec := setup(t)
	mem.Seed(adapter.ContactTable,
		apper.Record{"first_name_c": "Ada", "email_c": "ada@acme.test"},
		apper.Record{"first_name_c": "Grace", "email_c": "grace@navy.test"},
	)

	found, err := NewContactService(rec, testOptions()).GetAll(ctx, ListOptions{Search: "ACME"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ada", found[0].FirstName)
}

func TestTaskFilter(t *testing.T) {
	ctx := context.Background()
	mem, _ := setup(t)
	mem.Seed(adapter.TaskTable,
		apper.Record{"subject_c": "a", "status_c": models.TaskCompleted, "priority_c": models.PriorityHigh},
		apper.Record{"subject_c": "b", "status_c": models.TaskCompleted, "priority_c": models.PriorityLow},
		apper.Record{"subject_c": "c", "status_c": models.TaskNotStarted, "priority_c": models.PriorityHigh},
	)
	tasks, err := NewTaskService(mem, testOptions()).GetAll(ctx, ListOptions{Where: TaskFilter(models.TaskCompleted, models.PriorityHigh)})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Subject)

	assert.Empty(t, TaskFilter("", ""))
}

func TestLeadNameDefaultsToFullName(t *testing.T) {
	_, rec := setup(t)
	l, err := NewLeadService(rec, testOptions()).Create(context.Background(), models.Lead{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", l.Name)
}
