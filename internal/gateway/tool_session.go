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

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/forit/m365-relay/internal/dispatch"
)

// disconnectConfirmation is the literal token the disconnect tool demands.
const disconnectConfirmation = "DISCONNECT"

// resolveTarget validates connectionName+module and resolves the connection
// through the adapter filter. The returned result is non-nil on failure.
func (s *Server) resolveTarget(request mcp.CallToolRequest) (dispatch.Target, *mcp.CallToolResult) {
	connectionName := request.GetString("connectionName", "")
	module := request.GetString("module", "exo")

	if connectionName == "" {
		reg := s.store.Load()
		return dispatch.Target{}, jsonError(map[string]any{
			"error":     "connectionName is REQUIRED",
			"available": reg.AvailableNames(s.adapter),
			"hint":      "Every command must specify which connection to use",
		})
	}

	if !isValidModule(module) {
		return dispatch.Target{}, jsonError(map[string]any{
			"error": fmt.Sprintf("Unknown module: %s", module),
			"valid": validModules,
		})
	}

	reg := s.store.Load()
	conn, ok := reg.Resolve(connectionName, s.adapter)
	if !ok {
		return dispatch.Target{}, jsonError(map[string]any{
			"error":     fmt.Sprintf("Connection '%s' not found or not configured for the %s adapter", connectionName, s.adapter),
			"available": reg.AvailableNames(s.adapter),
		})
	}

	return dispatch.Target{
		Connection:    connectionName,
		Tenant:        conn.Tenant,
		Module:        module,
		ExpectedEmail: conn.ExpectedEmail,
	}, nil
}

// handleLogin implements the login tool.
func (s *Server) handleLogin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, failure := s.resolveTarget(request)
	if failure != nil {
		return failure, nil
	}

	account := request.GetString("account", "1")
	resp := s.pool.Login(ctx, target.Tenant, target.Module, account)

	text, isErr := dispatch.RenderLogin(resp, target)
	if isErr {
		return errorResponse(text), nil
	}
	return textResponse(text), nil
}

// handleStatus implements the status tool.
func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, failure := s.resolveTarget(request)
	if failure != nil {
		return failure, nil
	}

	resp := s.pool.Status(ctx, target.Tenant, target.Module)
	return textResponse(dispatch.RenderStatus(resp, target)), nil
}

// handleSessions implements the sessions tool.
func (s *Server) handleSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := s.pool.Sessions(ctx)
	return textResponse(dispatch.RenderSessions(resp)), nil
}

// handleDisconnect implements the disconnect tool. The confirmation token
// is checked locally; without it the pool is never contacted.
func (s *Server) handleDisconnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, failure := s.resolveTarget(request)
	if failure != nil {
		return failure, nil
	}

	if request.GetString("confirmation", "") != disconnectConfirmation {
		return jsonError(map[string]any{
			"error":    "Disconnect requires explicit user confirmation",
			"required": "Set confirmation='DISCONNECT' to proceed",
			"reason":   "This is a destructive action that terminates an authenticated session",
		}), nil
	}

	resp := s.pool.Disconnect(ctx, target.Tenant, target.Module)

	text, isErr := dispatch.RenderDisconnect(resp, target)
	if isErr {
		return errorResponse(text), nil
	}
	return textResponse(text), nil
}
