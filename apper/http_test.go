// ABOUTME: Tests for the HTTP client against the protocol handler
// ABOUTME: Runs full round-trips through httptest with a memory-backed handler
package apper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harperreed/crmdesk/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, backend Client) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(backend, HandlerConfig{ProjectID: "proj", PublicKey: "key"}, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryClient()
	acme := backend.Seed("company_c", Record{"name_c": "Acme"})[0]
	srv := newTestServer(t, backend)

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL, ProjectID: "proj", PublicKey: "key"}, zap.NewNop(), observability.NewMetrics())

	created, err := c.CreateRecord(ctx, "contact_c", RecordsRequest{Records: []Record{{"first_name_c": "Ada", "company_id_c": acme}}})
	require.NoError(t, err)
	require.True(t, created.Success)
	id, ok := IntValue(created.Results[0].Data[FieldID])
	require.True(t, ok)

	list, err := c.FetchRecords(ctx, "contact_c", Query{Fields: []FieldSpec{
		{Name: "first_name_c"},
		{Name: "company_id_c", Reference: &Reference{Table: "company_c", Fields: []string{"name_c"}}},
	}})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	lookup, ok := list.Data[0]["company_id_c"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", lookup[FieldName])

	got, err := c.GetRecordByID(ctx, "contact_c", id, Query{})
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Data["first_name_c"])

	updated, err := c.UpdateRecord(ctx, "contact_c", RecordsRequest{Records: []Record{{FieldID: id, "first_name_c": "Augusta"}}})
	require.NoError(t, err)
	assert.True(t, updated.Results[0].Success)

	deleted, err := c.DeleteRecord(ctx, "contact_c", DeleteRequest{RecordIDs: []int{id}})
	require.NoError(t, err)
	assert.True(t, deleted.Results[0].Success)

	missing, err := c.GetRecordByID(ctx, "contact_c", id, Query{})
	require.NoError(t, err)
	assert.Nil(t, missing.Data)
}

func TestHTTPClientRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t, NewMemoryClient())
	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL, ProjectID: "proj", PublicKey: "wrong"}, zap.NewNop(), nil)

	_, err := c.FetchRecords(context.Background(), "contact_c", Query{})
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
}

func TestHTTPClientTransportFailure(t *testing.T) {
	srv := newTestServer(t, NewMemoryClient())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: url}, zap.NewNop(), nil)
	_, err := c.FetchRecords(context.Background(), "contact_c", Query{})
	assert.Error(t, err)
}

func TestHandlerReportsBackendFailureAsBadGateway(t *testing.T) {
	rec := NewRecorder(NewMemoryClient())
	rec.Fail = func(Call) error { return errors.New("disk full") }
	srv := newTestServer(t, rec)

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL, ProjectID: "proj", PublicKey: "key"}, zap.NewNop(), nil)
	_, err := c.DeleteRecord(context.Background(), "contact_c", DeleteRequest{RecordIDs: []int{1}})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Status)
}
