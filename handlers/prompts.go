// ABOUTME: MCP prompt handlers
// ABOUTME: Builds a record-summary prompt from any stored record
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/crmdesk/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	ws *app.Workspace
}

func NewPromptHandlers(ws *app.Workspace) *PromptHandlers {
	return &PromptHandlers{ws: ws}
}

func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "record-summary":
		return h.getRecordSummaryPrompt(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getRecordSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	e, err := h.ws.Entity(args["entity"])
	if err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(args["id"])
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", args["id"])
	}
	rec, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Here is a CRM record from %s:\n\n", e.Title))
	promptText.Write(data)
	promptText.WriteString("\n\nPlease analyze this record and provide:")
	promptText.WriteString("\n1. A brief summary of who or what it describes")
	promptText.WriteString("\n2. Recommendations for next steps or follow-up actions")
	promptText.WriteString("\n3. Any missing information worth collecting")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Summary for %s %d", strings.ToLower(e.NewTable().Entity()), id),
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: promptText.String(),
				},
			},
		},
	}, nil
}
