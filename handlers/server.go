// ABOUTME: MCP server assembly
// ABOUTME: Registers record tools, per-entity resources and prompts on one server
package handlers

import (
	"github.com/harperreed/crmdesk/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server over the workspace. Run it with a
// transport, e.g. &mcp.StdioTransport{}.
func NewServer(ws *app.Workspace, version string) *mcp.Server {
	records := NewRecordHandlers(ws)
	resources := NewResourceHandlers(ws)
	prompts := NewPromptHandlers(ws)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "crmdesk",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_records",
		Description: "Search contacts, companies, deals, leads, tasks or sales reps",
	}, records.FindRecords)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_record",
		Description: "Fetch one record by entity and ID",
	}, records.GetRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_record",
		Description: "Create a record, or update one when an ID is given, with form validation",
	}, records.SaveRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete a record; deleting a company detaches its contacts",
	}, records.DeleteRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_records",
		Description: "Export every record of an entity as CSV text",
	}, records.ExportRecords)

	for _, e := range ws.Entities() {
		server.AddResource(&mcp.Resource{
			URI:         "crm://" + e.Key,
			Name:        e.Key,
			Description: e.Title + " as rendered list rows",
			MIMEType:    "application/json",
		}, resources.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "crm://{entity}/{id}",
		Name:        "record",
		Description: "One record by entity and ID",
		MIMEType:    "application/json",
	}, resources.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "record-summary",
		Description: "Summarize a CRM record and suggest next steps",
		Arguments: []*mcp.PromptArgument{
			{Name: "entity", Description: "Entity key, e.g. contacts", Required: true},
			{Name: "id", Description: "Record ID", Required: true},
		},
	}, prompts.GetPrompt)

	return server
}
