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

package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "connections.json"), nil)
}

func TestLoad_MissingFile(t *testing.T) {
	store := testStore(t)

	reg := store.Load()
	require.NotNil(t, reg)
	assert.Empty(t, reg.Connections)
}

func TestLoad_CorruptFile(t *testing.T) {
	store := testStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	reg := store.Load()
	require.NotNil(t, reg)
	assert.Empty(t, reg.Connections, "corrupt file must read as empty registry")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := testStore(t)

	reg := NewRegistry()
	reg.Connections["ForIT"] = &Connection{
		Tenant:        "forit.io",
		AppID:         "12345678-abcd-ef01-2345-6789abcdef01",
		Description:   "Primary tenant",
		MCPs:          []string{"mm", "pwsh-manager"},
		ExpectedEmail: "admin@forit.io",
	}

	require.NoError(t, store.Save(reg))

	got := store.Load()
	require.Contains(t, got.Connections, "ForIT")
	assert.Equal(t, reg.Connections["ForIT"], got.Connections["ForIT"])
}

func TestSave_PreservesUnknownTopLevelKeys(t *testing.T) {
	store := testStore(t)
	doc := `{
  "connections": {
    "A": {"tenant": "a.io", "appId": "12345678-abcd-ef01-2345-6789abcdef01", "description": "", "mcps": ["mm"]}
  },
  "schema_version": 3,
  "future": {"nested": ["kept", "as-is"]}
}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(doc), 0o600))

	reg := store.Load()
	reg.Connections["B"] = &Connection{
		Tenant:      "b.io",
		AppID:       "87654321-abcd-ef01-2345-6789abcdef01",
		Description: "added",
		MCPs:        []string{"mm"},
	}
	require.NoError(t, store.Save(reg))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var saved map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Contains(t, saved, "schema_version")
	assert.Contains(t, saved, "future")
	assert.JSONEq(t, `3`, string(saved["schema_version"]))
	assert.JSONEq(t, `{"nested": ["kept", "as-is"]}`, string(saved["future"]))
}

func TestSave_PrettyPrintedWithTrailingNewline(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Save(NewRegistry()))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  ", "document should be indented")
	assert.Equal(t, byte('\n'), raw[len(raw)-1])
}

func TestSave_UnwritablePathFails(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing-dir", "connections.json"), nil)

	err := store.Save(NewRegistry())
	assert.Error(t, err, "save into a missing directory must report failure, not panic")
}

func TestLockReleasedAfterSave(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Save(NewRegistry()))

	// A second writer must be able to take the lock immediately.
	lock, err := acquireLock(store.Path())
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

func TestIsValidGUID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"lowercase", "12345678-abcd-ef01-2345-6789abcdef01", true},
		{"uppercase", "12345678-ABCD-EF01-2345-6789ABCDEF01", true},
		{"not a guid", "not-a-guid", false},
		{"missing group", "12345678-abcd-ef01-6789abcdef01", false},
		{"wrong separator", "12345678_abcd_ef01_2345_6789abcdef01", false},
		{"trailing garbage", "12345678-abcd-ef01-2345-6789abcdef01x", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidGUID(tt.in); got != tt.want {
				t.Errorf("IsValidGUID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
