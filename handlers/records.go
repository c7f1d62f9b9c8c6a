// ABOUTME: Record MCP tool handlers
// ABOUTME: Implements find_records, get_record, save_record, delete_record and export_records over the workspace
package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/crmdesk/app"
	"github.com/harperreed/crmdesk/listview"
	"github.com/harperreed/crmdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultLimit = 25

type RecordHandlers struct {
	ws *app.Workspace
}

func NewRecordHandlers(ws *app.Workspace) *RecordHandlers {
	return &RecordHandlers{ws: ws}
}

func (h *RecordHandlers) table(ctx context.Context, entity string) (listview.Table, error) {
	e, err := h.ws.Entity(entity)
	if err != nil {
		return nil, err
	}
	t := e.NewTable()
	if err := t.Load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// describe flattens a validation error into one line listing every field.
func describe(err error) error {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+verr.Fields[k])
	}
	return fmt.Errorf("validation failed (%s): %w", strings.Join(parts, "; "), err)
}

type FindRecordsInput struct {
	Entity   string `json:"entity" jsonschema:"Entity to search: contacts, companies, deals, leads, tasks or salesreps"`
	Query    string `json:"query,omitempty" jsonschema:"Case-insensitive search term"`
	Status   string `json:"status,omitempty" jsonschema:"Exact task status filter (tasks only)"`
	Priority string `json:"priority,omitempty" jsonschema:"Exact task priority filter (tasks only)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of rows (default 25)"`
}

type FindRecordsOutput struct {
	Entity  string         `json:"entity"`
	Columns []string       `json:"columns"`
	Rows    []listview.Row `json:"rows"`
	Shown   int            `json:"shown"`
	Total   int            `json:"total"`
}

func (h *RecordHandlers) FindRecords(ctx context.Context, _ *mcp.CallToolRequest, input FindRecordsInput) (*mcp.CallToolResult, FindRecordsOutput, error) {
	t, err := h.table(ctx, input.Entity)
	if err != nil {
		return nil, FindRecordsOutput{}, err
	}
	t.SetSearch(input.Query)
	if input.Status != "" {
		if err := t.SetFilter("status", input.Status); err != nil {
			return nil, FindRecordsOutput{}, err
		}
	}
	if input.Priority != "" {
		if err := t.SetFilter("priority", input.Priority); err != nil {
			return nil, FindRecordsOutput{}, err
		}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	rows := t.Rows()
	if len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []listview.Row{}
	}

	out := FindRecordsOutput{Entity: t.Plural(), Rows: rows}
	for _, c := range t.Columns() {
		out.Columns = append(out.Columns, c.Title)
	}
	out.Shown, out.Total = t.Count()
	return nil, out, nil
}

type GetRecordInput struct {
	Entity string `json:"entity" jsonschema:"Entity of the record"`
	ID     int    `json:"id" jsonschema:"Record ID"`
}

type RecordOutput struct {
	Entity string `json:"entity"`
	ID     int    `json:"id"`
	Record any    `json:"record"`
}

func (h *RecordHandlers) GetRecord(ctx context.Context, _ *mcp.CallToolRequest, input GetRecordInput) (*mcp.CallToolResult, RecordOutput, error) {
	e, err := h.ws.Entity(input.Entity)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	rec, err := e.Get(ctx, input.ID)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	return nil, RecordOutput{Entity: e.Key, ID: input.ID, Record: rec}, nil
}

type SaveRecordInput struct {
	Entity string            `json:"entity" jsonschema:"Entity to create or update"`
	ID     int               `json:"id,omitempty" jsonschema:"Record ID to update; omit to create"`
	Fields map[string]string `json:"fields" jsonschema:"Form field values keyed by field name, e.g. firstName or companyId"`
}

func (h *RecordHandlers) SaveRecord(ctx context.Context, _ *mcp.CallToolRequest, input SaveRecordInput) (*mcp.CallToolResult, RecordOutput, error) {
	e, err := h.ws.Entity(input.Entity)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	id, err := e.Save(ctx, input.ID, input.Fields)
	if err != nil {
		return nil, RecordOutput{}, describe(err)
	}
	rec, err := e.Get(ctx, id)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	return nil, RecordOutput{Entity: e.Key, ID: id, Record: rec}, nil
}

type DeleteRecordInput struct {
	Entity string `json:"entity" jsonschema:"Entity of the record"`
	ID     int    `json:"id" jsonschema:"Record ID to delete"`
}

type DeleteRecordOutput struct {
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

// DeleteRecord skips the interactive confirmation: calling the tool is the
// confirmation. Deleting a company still detaches its contacts first.
func (h *RecordHandlers) DeleteRecord(ctx context.Context, _ *mcp.CallToolRequest, input DeleteRecordInput) (*mcp.CallToolResult, DeleteRecordOutput, error) {
	t, err := h.table(ctx, input.Entity)
	if err != nil {
		return nil, DeleteRecordOutput{}, err
	}
	if _, err := t.Delete(ctx, input.ID, nil); err != nil {
		return nil, DeleteRecordOutput{}, err
	}
	return nil, DeleteRecordOutput{
		Deleted: true,
		Message: fmt.Sprintf("%s %d deleted", t.Entity(), input.ID),
	}, nil
}

type ExportRecordsInput struct {
	Entity string `json:"entity" jsonschema:"Entity to export"`
}

type ExportRecordsOutput struct {
	Filename string `json:"filename"`
	Count    int    `json:"count"`
	CSV      string `json:"csv"`
}

func (h *RecordHandlers) ExportRecords(ctx context.Context, _ *mcp.CallToolRequest, input ExportRecordsInput) (*mcp.CallToolResult, ExportRecordsOutput, error) {
	t, err := h.table(ctx, input.Entity)
	if err != nil {
		return nil, ExportRecordsOutput{}, err
	}
	file, err := t.Export()
	if err != nil {
		return nil, ExportRecordsOutput{}, err
	}
	return nil, ExportRecordsOutput{Filename: file.Name, Count: file.Count, CSV: string(file.Data)}, nil
}
