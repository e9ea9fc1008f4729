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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forit/m365-relay/internal/audit"
	"github.com/forit/m365-relay/internal/config"
	"github.com/forit/m365-relay/internal/gateway"
	"github.com/forit/m365-relay/internal/log"
	"github.com/forit/m365-relay/internal/pool"
	"github.com/forit/m365-relay/internal/registry"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		adapter         string
		poolURL         string
		connectionsFile string
		timeoutSeconds  int
		logLevel        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

The adapter name decides which registry connections this process may use:
a connection is visible only when its mcps list names this adapter. Run one
serve process per adapter identity.

Configuration example for an MCP client:
  {
    "mcpServers": {
      "m365": {
        "command": "m365-relay",
        "args": ["serve", "--adapter", "mm"]
      }
    }
  }

All logging goes to stderr; stdout carries the MCP protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(adapter, poolURL, connectionsFile, timeoutSeconds, logLevel)
		},
	}

	cmd.Flags().StringVar(&adapter, "adapter", "", "Adapter identity checked against connection mcps lists (default from config)")
	cmd.Flags().StringVar(&poolURL, "pool-url", "", "Session pool base URL (default http://localhost:5200)")
	cmd.Flags().StringVar(&connectionsFile, "connections-file", "", "Registry file path (default ~/.m365-connections.json)")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Pool request timeout in seconds (default 120)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Logging verbosity (debug, info, warn, error)")

	return cmd
}

// buildLogConfig starts from the environment (M365_RELAY_DEBUG and
// friends) and lets explicitly configured settings override it. Unset
// settings leave the environment-derived values intact.
func buildLogConfig(settings *config.Settings) *log.Config {
	cfg := log.FromEnv()
	if settings.LogLevel != "" {
		cfg.Level = settings.LogLevel
	}
	if settings.LogFormat != "" {
		cfg.Format = log.Format(settings.LogFormat)
	}
	return cfg
}

func runServe(adapter, poolURL, connectionsFile string, timeoutSeconds int, logLevel string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags win over config file and environment.
	if adapter != "" {
		settings.Adapter = adapter
	}
	if poolURL != "" {
		settings.PoolURL = poolURL
	}
	if connectionsFile != "" {
		settings.RegistryPath = connectionsFile
	}
	if timeoutSeconds > 0 {
		settings.TimeoutSeconds = timeoutSeconds
	}
	if logLevel != "" {
		settings.LogLevel = logLevel
	}

	logger := log.New(buildLogConfig(settings))

	store := registry.NewStore(settings.RegistryPath, log.WithComponent(logger, "registry"))

	client, err := pool.NewClient(pool.Config{
		BaseURL:  settings.PoolURL,
		Timeout:  settings.Timeout(),
		CallerID: settings.Adapter,
	})
	if err != nil {
		return fmt.Errorf("failed to create pool client: %w", err)
	}

	gw, err := gateway.NewServer(gateway.Config{
		Adapter:  settings.Adapter,
		Version:  version,
		Store:    store,
		Pool:     client,
		Recorder: audit.NewSlogRecorder(log.WithComponent(logger, "audit")),
		Logger:   log.WithComponent(logger, "gateway"),
	})
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	return gw.Run(ctx)
}
