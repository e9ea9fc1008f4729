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
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forit/m365-relay/internal/registry"
)

// runConnections executes the connections command group against a registry
// file, capturing output.
func runConnections(t *testing.T, registryPath string, args ...string) (string, error) {
	t.Helper()

	cmd := NewConnectionsCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--connections-file", registryPath))

	err := cmd.Execute()
	return out.String(), err
}

func TestConnectionsAddListRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")

	out, err := runConnections(t, path, "add", "Contoso",
		"--tenant", "contoso.onmicrosoft.com",
		"--app-id", "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		"--description", "Contoso prod",
		"--mcps", "mm,pwsh-manager",
		"--expected-email", "admin@contoso.com")
	require.NoError(t, err)
	assert.Contains(t, out, `Connection "Contoso" added`)

	reg := registry.NewStore(path, nil).Load()
	conn := reg.Connections["Contoso"]
	require.NotNil(t, conn)
	assert.Equal(t, []string{"mm", "pwsh-manager"}, conn.MCPs)

	out, err = runConnections(t, path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Contoso")
	assert.Contains(t, out, "mm, pwsh-manager")
	assert.Contains(t, out, "admin@contoso.com")

	_, err = runConnections(t, path, "remove", "Contoso")
	require.NoError(t, err)

	reg = registry.NewStore(path, nil).Load()
	assert.Empty(t, reg.Connections)
}

func TestConnectionsAdd_Validation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")

	_, err := runConnections(t, path, "add", "Contoso",
		"--tenant", "contoso.onmicrosoft.com")
	require.Error(t, err)

	_, err = runConnections(t, path, "add", "Contoso",
		"--tenant", "contoso.onmicrosoft.com",
		"--app-id", "not-a-guid",
		"--description", "x",
		"--mcps", "mm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GUID")

	reg := registry.NewStore(path, nil).Load()
	assert.Empty(t, reg.Connections, "failed adds must not write")
}

func TestConnectionsRemove_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")

	_, err := runConnections(t, path, "remove", "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestConnectionsList_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")

	out, err := runConnections(t, path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No connections registered")
}
