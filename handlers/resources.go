// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only JSON access to every entity via crm:// URIs
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

type ResourceHandlers struct {
	ws *app.Workspace
}

func NewResourceHandlers(ws *app.Workspace) *ResourceHandlers {
	return &ResourceHandlers{ws: ws}
}

// ReadResource serves crm://<entity> as the rendered list and
// crm://<entity>/<id> as one record.
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}
	parts := strings.Split(strings.TrimPrefix(uri, "crm://"), "/")

	e, err := h.ws.Entity(parts[0])
	if err != nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	var payload any
	if len(parts) > 1 && parts[1] != "" {
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		if payload, err = e.Get(ctx, id); err != nil {
			return nil, err
		}
	} else {
		t := e.NewTable()
		if err := t.Load(ctx); err != nil {
			return nil, err
		}
		payload = t.Rows()
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
