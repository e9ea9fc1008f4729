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

package pool

import "strings"

// sharePointTenants maps tenant domains to SharePoint tenant prefixes for
// the cases where the prefix differs from the domain's first label
// (e.g. foritllc.sharepoint.com for forit.io).
var sharePointTenants = map[string]string{
	"forit.io": "foritllc",
}

// SharePointTenant returns the SharePoint tenant prefix for a domain.
func SharePointTenant(tenantDomain string) string {
	if prefix, ok := sharePointTenants[tenantDomain]; ok {
		return prefix
	}
	return strings.SplitN(tenantDomain, ".", 2)[0]
}

// sessionBody builds the common request body for session-addressed calls.
// PnP connections need the SharePoint tenant prefix alongside the domain.
func sessionBody(tenant, module string) map[string]any {
	body := map[string]any{
		"tenant": tenant,
		"module": module,
	}
	if module == "pnp" {
		body["sharepoint_tenant"] = SharePointTenant(tenant)
	}
	return body
}
