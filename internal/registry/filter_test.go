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
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterFixture() *Registry {
	reg := NewRegistry()
	reg.Connections["Contoso"] = &Connection{
		Tenant:      "contoso.onmicrosoft.com",
		Description: "Contoso admin",
		MCPs:        []string{"mm"},
	}
	reg.Connections["Fabrikam"] = &Connection{
		Tenant:      "fabrikam.io",
		Description: "Fabrikam ops",
		MCPs:        []string{"mm", "pwsh-manager"},
	}
	reg.Connections["Adatum"] = &Connection{
		Tenant: "adatum.com",
		MCPs:   []string{"pwsh-manager"},
	}
	return reg
}

func TestResolve(t *testing.T) {
	reg := filterFixture()

	tests := []struct {
		name    string
		conn    string
		adapter string
		found   bool
	}{
		{"authorized", "Fabrikam", "mm", true},
		{"absent name", "Nowhere", "mm", false},
		{"exists but unauthorized", "Adatum", "mm", false},
		{"case sensitive name", "fabrikam", "mm", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, ok := reg.Resolve(tt.conn, tt.adapter)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.NotNil(t, conn)
			} else {
				// Unauthorized and absent must be indistinguishable.
				assert.Nil(t, conn)
			}
		})
	}
}

func TestAvailable_FiltersAndSorts(t *testing.T) {
	reg := filterFixture()

	got := reg.Available("mm")
	assert.Equal(t, []Summary{
		{Name: "Contoso", Tenant: "contoso.onmicrosoft.com", Description: "Contoso admin"},
		{Name: "Fabrikam", Tenant: "fabrikam.io", Description: "Fabrikam ops"},
	}, got)

	assert.Equal(t, []string{"Adatum", "Fabrikam"}, reg.AvailableNames("pwsh-manager"))
	assert.Empty(t, reg.Available("onenote"))
}
