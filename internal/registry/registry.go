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

// Package registry implements the shared connection registry: a single JSON
// document on disk, read and written by every adapter process on the host.
//
// Reads are lock-free and tolerate a missing or corrupt file (empty
// registry). Writes hold an exclusive advisory lock for the duration of the
// write only. There is a deliberate read-modify-write window between a
// caller's Load and its Save: two processes can both load, mutate different
// connections, and the second Save wins. Registry writes are infrequent
// admin actions, so last-write-wins is accepted.
package registry

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

// DefaultFileName is the well-known registry file name under the user's
// home directory, shared with every other adapter on the host.
const DefaultFileName = ".m365-connections.json"

// KnownAdapters is the loose vocabulary for the mcps authorization list.
// Not enforced at write time; surfaced in tool descriptions as guidance.
var KnownAdapters = []string{"pnp-m365", "microsoft-graph", "mm", "exo", "onenote", "pwsh-manager"}

// guidRegex validates Azure AD application IDs (RFC 4122 textual form).
var guidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValidGUID reports whether s is a well-formed GUID.
func IsValidGUID(s string) bool {
	return guidRegex.MatchString(s)
}

// Connection is a named tenant credential/configuration record.
// The connection name is the registry map key, not a field of the record.
type Connection struct {
	// Tenant is the tenant domain (e.g., "contoso.onmicrosoft.com").
	Tenant string `json:"tenant"`

	// AppID is the Azure AD app registration ID (GUID).
	AppID string `json:"appId"`

	// Description says what this connection is for.
	Description string `json:"description"`

	// MCPs lists the adapters allowed to use this connection.
	MCPs []string `json:"mcps"`

	// ExpectedEmail, when set, is the identity the pool should report
	// after authentication. Mismatches are surfaced as warnings.
	ExpectedEmail string `json:"expectedEmail,omitempty"`
}

// AllowsAdapter reports whether the given adapter may use this connection.
func (c *Connection) AllowsAdapter(adapter string) bool {
	for _, m := range c.MCPs {
		if m == adapter {
			return true
		}
	}
	return false
}

// Registry is the parsed registry document. Top-level keys other than
// "connections" are reserved for other tools and round-trip unmodified.
type Registry struct {
	Connections map[string]*Connection

	// extra holds unknown top-level document keys, passed through opaquely.
	extra map[string]json.RawMessage
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{Connections: make(map[string]*Connection)}
}

// UnmarshalJSON parses the registry document, preserving unknown top-level
// keys for later re-serialization.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	r.Connections = make(map[string]*Connection)
	r.extra = make(map[string]json.RawMessage)

	for key, raw := range doc {
		if key != "connections" {
			r.extra[key] = raw
			continue
		}
		if err := json.Unmarshal(raw, &r.Connections); err != nil {
			return err
		}
	}

	return nil
}

// MarshalJSON serializes the document, merging preserved unknown keys back in.
func (r *Registry) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.extra)+1)
	for key, raw := range r.extra {
		doc[key] = raw
	}
	conns := r.Connections
	if conns == nil {
		conns = map[string]*Connection{}
	}
	doc["connections"] = conns
	return json.Marshal(doc)
}

// Store reads and writes the registry document at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the given path. An empty path resolves to
// the shared registry file in the user's home directory.
func NewStore(path string, logger *slog.Logger) *Store {
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, DefaultFileName)
		} else {
			path = DefaultFileName
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the registry file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the registry document. A missing or malformed file
// yields an empty registry; parse errors are never surfaced to callers,
// since a half-written file from another process must not break reads.
func (s *Store) Load() *Registry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("registry unreadable, treating as empty", "path", s.path, "error", err)
		}
		return NewRegistry()
	}

	reg := NewRegistry()
	if err := json.Unmarshal(data, reg); err != nil {
		s.logger.Warn("registry corrupt, treating as empty", "path", s.path, "error", err)
		return NewRegistry()
	}
	if reg.Connections == nil {
		reg.Connections = make(map[string]*Connection)
	}
	return reg
}

// Save serializes the full registry back to the store path, holding an
// exclusive advisory lock for the duration of the write. The lock is
// released unconditionally. Callers must check the returned error: a failed
// save leaves the previous document in place.
//
// The lock covers the write only. See the package comment for the accepted
// read-modify-write race between concurrent adapter processes.
func (s *Store) Save(reg *Registry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	lock, err := acquireLock(s.path)
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := lock.file.Truncate(0); err != nil {
		return err
	}
	if _, err := lock.file.Seek(0, 0); err != nil {
		return err
	}
	if _, err := lock.file.Write(data); err != nil {
		return err
	}
	return lock.file.Sync()
}
