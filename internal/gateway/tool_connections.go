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

	"github.com/forit/m365-relay/internal/registry"
)

// stringSliceArg extracts a []string tool argument.
func stringSliceArg(request mcp.CallToolRequest, key string) []string {
	args := request.GetArguments()
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// allNames returns every connection name in the registry, sorted.
// Management tools operate on the whole document, not the adapter's view.
func allNames(reg *registry.Registry) []string {
	names := make([]string, 0, len(reg.Connections))
	for name := range reg.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// handleConnectionAdd implements the connection_add tool.
func (s *Server) handleConnectionAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(request.GetString("name", ""))
	tenant := strings.TrimSpace(request.GetString("tenant", ""))
	appID := strings.TrimSpace(request.GetString("appId", ""))
	description := strings.TrimSpace(request.GetString("description", ""))
	mcps := stringSliceArg(request, "mcps")
	expectedEmail := strings.TrimSpace(request.GetString("expectedEmail", ""))

	var missing []string
	for field, value := range map[string]bool{
		"name":        name != "",
		"tenant":      tenant != "",
		"appId":       appID != "",
		"description": description != "",
		"mcps":        len(mcps) > 0,
	} {
		if !value {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return jsonError(map[string]any{
			"error":   fmt.Sprintf("Missing: %s", strings.Join(missing, ", ")),
			"missing": missing,
		}), nil
	}

	if !registry.IsValidGUID(appID) {
		return jsonError(map[string]any{
			"error":   fmt.Sprintf("Invalid appId format: %s", appID),
			"invalid": "appId",
		}), nil
	}

	reg := s.store.Load()
	if _, exists := reg.Connections[name]; exists {
		return jsonError(map[string]any{
			"error":  fmt.Sprintf("'%s' already exists. Use connection_update.", name),
			"exists": name,
		}), nil
	}

	reg.Connections[name] = &registry.Connection{
		Tenant:        tenant,
		AppID:         appID,
		Description:   description,
		MCPs:          mcps,
		ExpectedEmail: expectedEmail,
	}
	if err := s.store.Save(reg); err != nil {
		s.logger.Error("registry save failed", "error", err)
		return jsonError(map[string]any{"error": "Failed to save"}), nil
	}

	return jsonResponse(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Connection '%s' added", name),
	}), nil
}

// handleConnectionRemove implements the connection_remove tool.
func (s *Server) handleConnectionRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(request.GetString("name", ""))
	if name == "" {
		return jsonError(map[string]any{"error": "name is required"}), nil
	}

	reg := s.store.Load()
	removed, ok := reg.Connections[name]
	if !ok {
		return jsonError(map[string]any{
			"error":     fmt.Sprintf("'%s' not found", name),
			"available": allNames(reg),
		}), nil
	}

	delete(reg.Connections, name)
	if err := s.store.Save(reg); err != nil {
		s.logger.Error("registry save failed", "error", err)
		return jsonError(map[string]any{"error": "Failed to save"}), nil
	}

	return jsonResponse(map[string]any{
		"success": true,
		"message": fmt.Sprintf("'%s' removed", name),
		"removed": removed,
	}), nil
}

// handleConnectionUpdate implements the connection_update tool.
func (s *Server) handleConnectionUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(request.GetString("name", ""))
	if name == "" {
		return jsonError(map[string]any{"error": "name is required"}), nil
	}

	reg := s.store.Load()
	conn, ok := reg.Connections[name]
	if !ok {
		return jsonError(map[string]any{
			"error":     fmt.Sprintf("'%s' not found", name),
			"available": allNames(reg),
		}), nil
	}

	var updated []string

	if appID := strings.TrimSpace(request.GetString("appId", "")); appID != "" {
		if !registry.IsValidGUID(appID) {
			return jsonError(map[string]any{
				"error":   fmt.Sprintf("Invalid appId: %s", appID),
				"invalid": "appId",
			}), nil
		}
		conn.AppID = appID
		updated = append(updated, "appId")
	}
	if tenant := strings.TrimSpace(request.GetString("tenant", "")); tenant != "" {
		conn.Tenant = tenant
		updated = append(updated, "tenant")
	}
	if description := strings.TrimSpace(request.GetString("description", "")); description != "" {
		conn.Description = description
		updated = append(updated, "description")
	}
	if mcps := stringSliceArg(request, "mcps"); len(mcps) > 0 {
		conn.MCPs = mcps
		updated = append(updated, "mcps")
	}
	if email := strings.TrimSpace(request.GetString("expectedEmail", "")); email != "" {
		conn.ExpectedEmail = email
		updated = append(updated, "expectedEmail")
	}

	if len(updated) == 0 {
		return jsonResponse(map[string]any{"message": "No changes"}), nil
	}

	if err := s.store.Save(reg); err != nil {
		s.logger.Error("registry save failed", "error", err)
		return jsonError(map[string]any{"error": "Failed to save"}), nil
	}

	return jsonResponse(map[string]any{
		"success":    true,
		"updated":    updated,
		"connection": conn,
	}), nil
}

// handleListConnections implements the list_connections tool: the
// registry-backed view of what this adapter is allowed to use.
func (s *Server) handleListConnections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reg := s.store.Load()
	available := reg.Available(s.adapter)

	if len(available) == 0 {
		return jsonResponse(map[string]any{
			"error": fmt.Sprintf("No connections configured for the %s adapter", s.adapter),
			"hint":  fmt.Sprintf("Add connections to %s with '%s' in the mcps array", s.store.Path(), s.adapter),
		}), nil
	}

	return jsonResponse(available), nil
}
