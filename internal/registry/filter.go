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

import "sort"

// Summary is the listing view of a connection.
type Summary struct {
	Name        string `json:"name"`
	Tenant      string `json:"tenant"`
	Description string `json:"description"`
}

// Resolve looks up a connection by exact name, filtered for the given
// adapter. A connection that exists but does not list the adapter in its
// mcps set is reported exactly like an absent one, so adapters cannot
// enumerate each other's connection names.
func (r *Registry) Resolve(name, adapter string) (*Connection, bool) {
	conn, ok := r.Connections[name]
	if !ok || !conn.AllowsAdapter(adapter) {
		return nil, false
	}
	return conn, true
}

// Available returns name-sorted summaries of the connections visible to the
// given adapter.
func (r *Registry) Available(adapter string) []Summary {
	var out []Summary
	for name, conn := range r.Connections {
		if conn.AllowsAdapter(adapter) {
			out = append(out, Summary{
				Name:        name,
				Tenant:      conn.Tenant,
				Description: conn.Description,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AvailableNames returns the name-sorted list of connection names visible
// to the given adapter, for not-found errors and hints.
func (r *Registry) AvailableNames(adapter string) []string {
	summaries := r.Available(adapter)
	names := make([]string, len(summaries))
	for i, s := range summaries {
		names[i] = s.Name
	}
	return names
}
