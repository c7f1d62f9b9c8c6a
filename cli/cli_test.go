// ABOUTME: Tests for the record subcommands against a throwaway SQLite database
// ABOUTME: Each invocation builds a fresh command tree, so state only survives in the database file
package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/crmdesk/listview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t    *testing.T
	dir  string
	base []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{
		"CRMDESK_PROJECT_ID", "CRMDESK_PUBLIC_KEY", "VITE_APPER_PROJECT_ID", "VITE_APPER_PUBLIC_KEY",
		"CRMDESK_BACKEND", "CRMDESK_DB_PATH", "CRMDESK_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log_level: error\n"), 0o600))
	return &harness{t: t, dir: dir, base: []string{
		"--config", cfgFile,
		"--env-file", filepath.Join(dir, "missing.env"),
		"--backend", "sqlite",
		"--db-path", filepath.Join(dir, "crm.db"),
	}}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetArgs(append(append([]string{}, h.base...), args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run("", args...)
	require.NoError(h.t, err, errOut)
	return out
}

func TestAddListShow(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("add", "contacts", "--set", "firstName=Ada", "--set", "lastName=Lovelace", "--set", "email=ada@example.com")
	assert.Contains(t, out, "Contact created successfully")
	assert.Contains(t, out, "ID: 1")

	out = h.mustRun("list", "contacts")
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "Showing 1 of 1 contacts")

	out = h.mustRun("list", "contact", "--search", "grace")
	assert.Contains(t, out, "No contacts match your search.")

	out = h.mustRun("show", "contacts", "1")
	assert.Contains(t, out, `"firstName": "Ada"`)
}

func TestListEmpty(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("list", "deals"), "No deals found.")
}

func TestAddReportsEveryFieldError(t *testing.T) {
	h := newHarness(t)
	_, errOut, err := h.run("", "add", "contacts", "--set", "email=nope")
	require.EqualError(t, err, "validation failed")
	assert.Contains(t, errOut, "firstName: First name is required")
	assert.Contains(t, errOut, "lastName: Last name is required")
	assert.Contains(t, errOut, "email: Please enter a valid email address")
}

func TestBadSetFlag(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "add", "contacts", "--set", "firstName")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key=value")
}

func TestUpdateKeepsOtherFields(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "contacts", "--set", "firstName=Ada", "--set", "lastName=Lovelace", "--set", "title=Analyst")
	out := h.mustRun("update", "contacts", "1", "--set", "title=Countess")
	assert.Contains(t, out, "Contact updated successfully")

	out = h.mustRun("show", "contacts", "1")
	assert.Contains(t, out, `"title": "Countess"`)
	assert.Contains(t, out, `"lastName": "Lovelace"`)
}

func TestDeleteAsksFirst(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "contacts", "--set", "firstName=Ada", "--set", "lastName=Lovelace")

	out, _, err := h.run("n\n", "delete", "contacts", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete Ada Lovelace? [y/N]: ")
	assert.Contains(t, out, "Cancelled.")

	out, _, err = h.run("y\n", "delete", "contacts", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Contact deleted successfully")

	_, _, err = h.run("", "delete", "contacts", "1", "--yes")
	require.ErrorIs(t, err, listview.ErrUnknownRecord)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "companies", "--set", "name=Acme, Inc.")

	path := filepath.Join(h.dir, "out.csv")
	out := h.mustRun("export", "companies", "--output", path)
	assert.Contains(t, out, "Exported 1 companies to CSV")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Company Name,Industry,Size,Website,Description,Contact Count\n"+
		`"Acme, Inc.","","","","","0"`, string(data))

	out, errOut, err := h.run("", "export", "companies", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Company Name,"))
	assert.Contains(t, errOut, "Exported 1 companies to CSV")
}

func TestExportEmptyWarns(t *testing.T) {
	h := newHarness(t)
	_, errOut, err := h.run("", "export", "leads")
	require.ErrorIs(t, err, listview.ErrNothingToExport)
	assert.Contains(t, errOut, "warning: No leads to export")
}

func TestTaskFilters(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "tasks", "--set", "subject=Call Ada", "--set", "priority=High")
	h.mustRun("add", "tasks", "--set", "subject=Email Grace", "--set", "status=Completed")

	out := h.mustRun("list", "tasks", "--priority", "High")
	assert.Contains(t, out, "Call Ada")
	assert.NotContains(t, out, "Email Grace")

	out = h.mustRun("list", "tasks", "--status", "Completed")
	assert.Contains(t, out, "Email Grace")
	assert.Contains(t, out, "Showing 1 of 2 tasks")

	_, _, err := h.run("", "list", "contacts", "--status", "Completed")
	require.ErrorIs(t, err, listview.ErrUnknownFilter)
}

func TestFieldsCommand(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("fields", "tasks")
	assert.Contains(t, out, "priority")
	assert.Contains(t, out, "Low, Medium, High")
}

func TestArgumentErrors(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "list", "widgets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown entity "widgets"`)

	_, _, err = h.run("", "show", "contacts", "zero")
	require.EqualError(t, err, `invalid id "zero"`)

	_, _, err = h.run("", "list", "contacts", "--backend", "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestParseSets(t *testing.T) {
	values, err := parseSets([]string{"name=Acme, Inc.", "notes=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Acme, Inc.", "notes": "a=b", "empty": ""}, values)

	_, err = parseSets([]string{"=x"})
	require.Error(t, err)
}
