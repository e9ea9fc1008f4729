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

// Package gateway implements the MCP server that exposes connection
// management and session-pool operations as tools.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/forit/m365-relay/internal/audit"
	"github.com/forit/m365-relay/internal/pool"
	"github.com/forit/m365-relay/internal/registry"
)

// validModules is the remote service family vocabulary.
var validModules = []string{"exo", "pnp", "azure", "powerplatform", "teams"}

// moduleDescription documents the module argument in tool schemas.
const moduleDescription = "exo=Exchange, pnp=SharePoint, azure, powerplatform, teams"

// Server wraps the MCP server and routes tools through the registry, the
// pool client, and the auth-state dispatcher.
type Server struct {
	mcpServer *server.MCPServer
	adapter   string
	version   string
	store     *registry.Store
	pool      *pool.Client
	recorder  audit.Recorder
	logger    *slog.Logger
}

// Config configures the gateway.
type Config struct {
	// Adapter is this process's identity against connection mcps lists.
	Adapter string

	// Version is reported in the MCP handshake.
	Version string

	// Store is the shared connection registry.
	Store *registry.Store

	// Pool is the session-pool client.
	Pool *pool.Client

	// Recorder receives one audit record per tool invocation.
	// Nil means no-op.
	Recorder audit.Recorder

	// Logger is used for gateway diagnostics. Nil means slog.Default.
	Logger *slog.Logger
}

// NewServer creates a gateway instance and registers its tool catalogue.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Adapter == "" {
		return nil, fmt.Errorf("adapter name is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("registry store is required")
	}
	if cfg.Pool == nil {
		return nil, fmt.Errorf("pool client is required")
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Recorder == nil {
		cfg.Recorder = audit.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		mcpServer: server.NewMCPServer(cfg.Adapter, cfg.Version),
		adapter:   cfg.Adapter,
		version:   cfg.Version,
		store:     cfg.Store,
		pool:      cfg.Pool,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
	}

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio and blocks until stdin closes or
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting gateway", "adapter", s.adapter, "version", s.version)
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// textResponse creates a successful text result.
func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// errorResponse creates an error result.
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// jsonResponse pretty-prints a structured result.
func jsonResponse(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to encode result: %v", err))
	}
	return textResponse(string(data))
}

// jsonError pretty-prints a structured, machine-checkable error payload.
func jsonError(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to encode error: %v", err))
	}
	return errorResponse(string(data))
}

// isValidModule reports whether module is in the known vocabulary.
func isValidModule(module string) bool {
	for _, m := range validModules {
		if m == module {
			return true
		}
	}
	return false
}

// resultText extracts the first text content from a tool result, for audit
// summaries.
func resultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
