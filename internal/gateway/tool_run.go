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
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/forit/m365-relay/internal/dispatch"
)

// handleRun implements the run tool. With no arguments it is a discovery
// call; with all three it executes a command through the pool.
func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	connection := request.GetString("connection", "")
	module := request.GetString("module", "")
	command := request.GetString("command", "")

	if connection == "" && module == "" && command == "" {
		return s.handleDiscovery(ctx), nil
	}

	if connection == "" || module == "" || command == "" {
		return errorResponse("Error: connection, module, and command are all required"), nil
	}

	if !isValidModule(module) {
		return jsonError(map[string]any{
			"error": fmt.Sprintf("Unknown module: %s", module),
			"valid": validModules,
		}), nil
	}

	reg := s.store.Load()
	conn, ok := reg.Resolve(connection, s.adapter)
	if !ok {
		return jsonError(map[string]any{
			"error":     fmt.Sprintf("Connection '%s' not found or not configured for the %s adapter", connection, s.adapter),
			"available": reg.AvailableNames(s.adapter),
		}), nil
	}

	resp := s.pool.Run(ctx, connection, module, command)

	text, isErr := dispatch.RenderRun(resp, dispatch.Target{
		Connection:    connection,
		Tenant:        conn.Tenant,
		Module:        module,
		ExpectedEmail: conn.ExpectedEmail,
	})
	if isErr {
		return errorResponse(text), nil
	}
	return textResponse(text), nil
}

// handleDiscovery renders the pool's connection listing plus health metrics.
func (s *Server) handleDiscovery(ctx context.Context) *mcp.CallToolResult {
	connections := s.pool.Connections(ctx).DecodeConnections()
	metrics := s.pool.Metrics(ctx).DecodeMetrics()

	names := make([]string, 0, len(connections))
	for name := range connections {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("**Available Connections:**\n")
	for _, name := range names {
		info := connections[name]
		tenant := info.Tenant
		if tenant == "" {
			tenant = "unknown"
		}
		fmt.Fprintf(&b, "- %s: %s (%s)\n", name, tenant, info.Description)
	}

	uptime := metrics.UptimeHuman
	if uptime == "" {
		uptime = "unknown"
	}
	b.WriteString("\n**Session Pool Status:**\n")
	fmt.Fprintf(&b, "- Uptime: %s\n", uptime)
	fmt.Fprintf(&b, "- Requests: %d (%g%% errors)\n", metrics.TotalRequests, metrics.ErrorRate)
	fmt.Fprintf(&b, "- Active sessions: %d\n", metrics.ActiveSessions)
	fmt.Fprintf(&b, "- Avg response: %gms\n", metrics.AvgResponseMS)

	return textResponse(b.String())
}
