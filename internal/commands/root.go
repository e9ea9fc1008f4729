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

// Package commands builds the m365-relay CLI.
package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information set from build-time ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// SetVersion stores build-time version metadata for the version command
// and the MCP handshake.
func SetVersion(v, c, b string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
	if b != "" {
		buildDate = b
	}
}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "m365-relay",
		Short: "Multi-tenant Microsoft 365 connection router",
		Long: `m365-relay routes Microsoft 365 PowerShell commands from MCP clients
to a shared session-pool service, keyed by named tenant connections.

Connections live in a shared registry file (~/.m365-connections.json) that
several adapter processes read concurrently. Each connection lists which
adapters may use it; an adapter only sees and serves the connections that
name it.

The serve command runs the MCP server on stdio. The connections commands
manage the registry from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Accept underscore spellings of flag names (--pool_url == --pool-url).
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewConnectionsCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
