// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/forit/m365-relay/internal/audit"
	"github.com/forit/m365-relay/internal/registry"
)

// registerTools registers the fixed tool catalogue.
func (s *Server) registerTools() {
	moduleProperty := map[string]interface{}{
		"type":        "string",
		"description": moduleDescription,
		"enum":        validModules,
		"default":     "exo",
	}

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "run",
		Description: "Execute a PowerShell command. Omit all params to list connections and pool health. Provide connection+module+command to execute.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"connection": map[string]interface{}{
					"type":        "string",
					"description": "Connection name (e.g., 'ForIT-GA')",
				},
				"module":  moduleProperty,
				"command": map[string]interface{}{"type": "string", "description": "PowerShell command"},
			},
		},
	}, s.withAudit("run", s.handleRun))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "connection_add",
		Description: "Add a new M365 connection. Requires appId from an Azure AD app registration.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name":        map[string]interface{}{"type": "string", "description": "Connection name (e.g., 'ClientX')"},
				"tenant":      map[string]interface{}{"type": "string", "description": "Tenant domain (e.g., 'clientx.onmicrosoft.com')"},
				"appId":       map[string]interface{}{"type": "string", "description": "Azure AD app registration ID (GUID)"},
				"description": map[string]interface{}{"type": "string", "description": "What this connection is for"},
				"mcps": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": fmt.Sprintf("Which adapters can use this. Valid: %v", registry.KnownAdapters),
				},
				"expectedEmail": map[string]interface{}{
					"type":        "string",
					"description": "Identity expected after authentication (mismatches are warned about)",
				},
			},
			Required: []string{"name", "tenant", "appId", "description", "mcps"},
		},
	}, s.withAudit("connection_add", s.handleConnectionAdd))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "connection_remove",
		Description: "Remove a connection by name.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{"type": "string", "description": "Connection name to remove"},
			},
			Required: []string{"name"},
		},
	}, s.withAudit("connection_remove", s.handleConnectionRemove))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "connection_update",
		Description: "Update an existing connection's properties.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name":        map[string]interface{}{"type": "string", "description": "Connection name to update"},
				"appId":       map[string]interface{}{"type": "string", "description": "New app ID"},
				"tenant":      map[string]interface{}{"type": "string", "description": "New tenant"},
				"description": map[string]interface{}{"type": "string", "description": "New description"},
				"mcps":          map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "New adapter list"},
				"expectedEmail": map[string]interface{}{"type": "string", "description": "New expected identity"},
			},
			Required: []string{"name"},
		},
	}, s.withAudit("connection_update", s.handleConnectionUpdate))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_connections",
		Description: fmt.Sprintf("List all connections configured for the %s adapter.", s.adapter),
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.withAudit("list_connections", s.handleListConnections))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "login",
		Description: "Authenticate to a Microsoft service. Returns a device code for interactive authentication.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"connectionName": map[string]interface{}{
					"type":        "string",
					"description": "REQUIRED: Connection name from the shared registry (e.g., 'ForIT')",
				},
				"module": moduleProperty,
				"account": map[string]interface{}{
					"type":        "string",
					"description": "For Azure: which account to select when prompted (default: '1').",
					"default":     "1",
				},
			},
			Required: []string{"connectionName"},
		},
	}, s.withAudit("login", s.handleLogin))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "status",
		Description: "Check authentication status for a connection/module combination.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"connectionName": map[string]interface{}{"type": "string", "description": "REQUIRED: Connection name"},
				"module":         moduleProperty,
			},
			Required: []string{"connectionName"},
		},
	}, s.withAudit("status", s.handleStatus))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "sessions",
		Description: "List all active PowerShell sessions and their status.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.withAudit("sessions", s.handleSessions))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "disconnect",
		Description: "Disconnect a session. REQUIRES explicit user confirmation to prevent accidental disconnects.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"connectionName": map[string]interface{}{"type": "string", "description": "REQUIRED: Connection name"},
				"module":         moduleProperty,
				"confirmation": map[string]interface{}{
					"type":        "string",
					"description": "REQUIRED: Must be exactly 'DISCONNECT' to confirm this destructive action",
				},
			},
			Required: []string{"connectionName", "confirmation"},
		},
	}, s.withAudit("disconnect", s.handleDisconnect))
}

// withAudit wraps a tool handler so that exactly one audit record is
// emitted per invocation, on every exit path including panics.
func (s *Server) withAudit(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		start := time.Now()
		args := request.GetArguments()

		defer func() {
			entry := audit.Entry{
				Adapter:    s.adapter,
				Tool:       tool,
				Arguments:  args,
				Connection: connectionArg(request),
				DurationMS: time.Since(start).Milliseconds(),
			}

			if r := recover(); r != nil {
				entry.Error = fmt.Sprintf("panic: %v", r)
				s.recorder.Record(ctx, entry)
				panic(r)
			}

			switch {
			case err != nil:
				entry.Error = err.Error()
			case result != nil && result.IsError:
				entry.Error = resultText(result)
			default:
				entry.Result = resultText(result)
			}
			s.recorder.Record(ctx, entry)
		}()

		return handler(ctx, request)
	}
}

// connectionArg pulls the connection name from whichever argument carries it.
func connectionArg(request mcp.CallToolRequest) string {
	for _, key := range []string{"connection", "connectionName", "name"} {
		if v := request.GetString(key, ""); v != "" {
			return v
		}
	}
	return ""
}
