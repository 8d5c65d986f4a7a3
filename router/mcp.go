package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// mcpTools maps MCP tool names to router actions. Only the actions
// useful to an MCP client are exposed; mutation of credentials stays
// on the local HTTP surface.
var mcpTools = []struct {
	name        string
	description string
	action      string
}{
	{"collector_extract_page", "Extract a structured snapshot of the configured page", ActionExtractPage},
	{"collector_sync_page", "Send a page payload to the backend", ActionSyncPage},
	{"collector_analyze_profile", "Run the profile analysis workflow on the active page", ActionAnalyzeProfile},
	{"collector_auth_status", "Report authentication and connectivity status", ActionAuthStatus},
	{"collector_scrape_history", "List recently synced pages", ActionScrapeHistory},
}

func inputSchema(properties map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

// RegisterMCPTools exposes router actions as tools on an MCP server.
// Each tool takes a single optional "payload" argument carrying the
// action's JSON payload.
func RegisterMCPTools(srv *mcp.Server, r *Router) {
	for _, t := range mcpTools {
		action := t.action
		tool := &mcp.Tool{
			Name:        t.name,
			Description: t.description,
			InputSchema: inputSchema(map[string]any{
				"payload": map[string]any{"type": "object", "description": "Action payload"},
			}),
		}
		srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				Payload json.RawMessage `json:"payload"`
			}
			if len(req.Params.Arguments) > 0 {
				if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
					var res mcp.CallToolResult
					res.SetError(fmt.Errorf("invalid arguments: %w", err))
					return &res, nil
				}
			}

			result, handled := r.Dispatch(ctx, Request{Action: action, Payload: args.Payload})
			if !handled {
				var res mcp.CallToolResult
				res.SetError(errors.New("action not available"))
				return &res, nil
			}
			data, err := json.Marshal(result)
			if err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("marshal: %w", err))
				return &res, nil
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
			}, nil
		})
	}
}
