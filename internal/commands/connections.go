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

package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forit/m365-relay/internal/registry"
	"github.com/forit/m365-relay/pkg/errors"
)

// NewConnectionsCommand creates the connections command group.
func NewConnectionsCommand() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Manage the shared connection registry",
		Long: `Manage the shared connection registry from the terminal.

These commands edit the same registry file the MCP tools use, so changes
are visible to running adapter processes on their next registry read.`,
	}

	cmd.PersistentFlags().StringVar(&registryPath, "connections-file", "", "Registry file path (default ~/.m365-connections.json)")

	cmd.AddCommand(newConnectionsListCommand(&registryPath))
	cmd.AddCommand(newConnectionsAddCommand(&registryPath))
	cmd.AddCommand(newConnectionsRemoveCommand(&registryPath))

	return cmd
}

func newConnectionsListCommand(registryPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := registry.NewStore(*registryPath, nil)
			reg := store.Load()

			if len(reg.Connections) == 0 {
				cmd.Printf("No connections registered in %s\n", store.Path())
				return nil
			}

			names := make([]string, 0, len(reg.Connections))
			for name := range reg.Connections {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				conn := reg.Connections[name]
				cmd.Printf("%s\n", name)
				cmd.Printf("  Tenant:      %s\n", conn.Tenant)
				cmd.Printf("  Description: %s\n", conn.Description)
				cmd.Printf("  Adapters:    %s\n", strings.Join(conn.MCPs, ", "))
				if conn.ExpectedEmail != "" {
					cmd.Printf("  Identity:    %s\n", conn.ExpectedEmail)
				}
			}
			return nil
		},
	}
}

func newConnectionsAddCommand(registryPath *string) *cobra.Command {
	var (
		tenant        string
		appID         string
		description   string
		mcps          []string
		expectedEmail string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a connection to the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])

			if tenant == "" || appID == "" || description == "" || len(mcps) == 0 {
				return &errors.ValidationError{
					Message:    "--tenant, --app-id, --description, and --mcps are all required",
					Suggestion: "supply every flag; mcps is a comma-separated adapter list",
				}
			}
			if !registry.IsValidGUID(appID) {
				return &errors.ValidationError{
					Field:      "app-id",
					Message:    fmt.Sprintf("%q is not a GUID", appID),
					Suggestion: "copy the application (client) ID from the Azure AD app registration",
				}
			}

			store := registry.NewStore(*registryPath, nil)
			reg := store.Load()
			if _, exists := reg.Connections[name]; exists {
				return fmt.Errorf("connection %q already exists", name)
			}

			reg.Connections[name] = &registry.Connection{
				Tenant:        tenant,
				AppID:         appID,
				Description:   description,
				MCPs:          mcps,
				ExpectedEmail: expectedEmail,
			}
			if err := store.Save(reg); err != nil {
				return fmt.Errorf("failed to save registry: %w", err)
			}

			cmd.Printf("Connection %q added to %s\n", name, store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant domain (e.g., contoso.onmicrosoft.com)")
	cmd.Flags().StringVar(&appID, "app-id", "", "Azure AD app registration ID (GUID)")
	cmd.Flags().StringVar(&description, "description", "", "What this connection is for")
	cmd.Flags().StringSliceVar(&mcps, "mcps", nil, "Adapters allowed to use this connection")
	cmd.Flags().StringVar(&expectedEmail, "expected-email", "", "Identity expected after authentication")

	return cmd
}

func newConnectionsRemoveCommand(registryPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a connection from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])

			store := registry.NewStore(*registryPath, nil)
			reg := store.Load()
			if _, exists := reg.Connections[name]; !exists {
				names := make([]string, 0, len(reg.Connections))
				for n := range reg.Connections {
					names = append(names, n)
				}
				sort.Strings(names)
				return &errors.NotFoundError{Resource: "connection", ID: name, Available: names}
			}

			delete(reg.Connections, name)
			if err := store.Save(reg); err != nil {
				return fmt.Errorf("failed to save registry: %w", err)
			}

			cmd.Printf("Connection %q removed\n", name)
			return nil
		},
	}
}
