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

package dispatch

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forit/m365-relay/internal/pool"
)

var target = Target{
	Connection:    "ForIT",
	Tenant:        "forit.io",
	Module:        "exo",
	ExpectedEmail: "a@b.com",
}

func TestRenderRun_AuthRequired(t *testing.T) {
	resp := &pool.Response{Status: pool.StatusAuthRequired, DeviceCode: "ABC-123"}

	text, isErr := RenderRun(resp, target)

	assert.False(t, isErr)
	assert.Contains(t, text, "DEVICE CODE: ABC-123")
	assert.Contains(t, text, "a@b.com", "hint must carry the expected email")
	assert.Contains(t, text, DefaultSignInURL)
	assert.Contains(t, text, "retry the command")
}

func TestRenderRun_AuthRequired_TenantHint(t *testing.T) {
	resp := &pool.Response{Status: pool.StatusAuthRequired, DeviceCode: "XYZ-789"}
	noEmail := Target{Connection: "ForIT", Tenant: "forit.io", Module: "exo"}

	text, _ := RenderRun(resp, noEmail)

	assert.Contains(t, text, "Sign in with your @forit.io account")
}

func TestRenderRun_AuthInProgress(t *testing.T) {
	resp := &pool.Response{Status: pool.StatusAuthInProgress}

	text, isErr := RenderRun(resp, target)

	assert.False(t, isErr)
	assert.Contains(t, text, "Retry in a few seconds")
	assert.NotContains(t, text, "DEVICE CODE", "must not re-trigger auth")
}

func TestRenderRun_Error(t *testing.T) {
	resp := &pool.Response{Status: pool.StatusError, Error: "The session was reset"}

	text, isErr := RenderRun(resp, target)

	assert.True(t, isErr)
	assert.Equal(t, "Error: The session was reset", text)
}

func TestRenderRun_SuccessStripsControlAndWarnsOnMismatch(t *testing.T) {
	resp := &pool.Response{
		Status:          pool.StatusSuccess,
		Output:          "\x1b[32mOK\x1b[0m",
		AuthenticatedAs: "x@y.com",
	}

	text, isErr := RenderRun(resp, target)

	assert.False(t, isErr)
	assert.Contains(t, text, "WARNING: Wrong account! Expected a@b.com, got x@y.com")
	assert.Contains(t, text, "OK")
	assert.NotContains(t, text, "\x1b", "control sequences must be stripped")
}

func TestRenderRun_Success_MatchingIdentityNoWarning(t *testing.T) {
	resp := &pool.Response{
		Status:          pool.StatusSuccess,
		Output:          "Done",
		AuthenticatedAs: "A@B.COM", // case-insensitive match
	}

	text, _ := RenderRun(resp, target)

	assert.Equal(t, "Done", text)
}

func TestRenderRun_EmptyOutputMarker(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"control only", "\x1b[0m\x1b[?25l"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &pool.Response{Status: pool.StatusSuccess, Output: tt.output}
			text, _ := RenderRun(resp, target)
			assert.Equal(t, NoOutputMarker, text)
		})
	}
}

func TestRenderRun_UnknownStatusShowsRaw(t *testing.T) {
	raw := []byte(`{"status": "rebooting", "detail": "maintenance window"}`)
	resp := &pool.Response{Status: "rebooting", Raw: raw}

	text, isErr := RenderRun(resp, target)

	assert.False(t, isErr)
	assert.True(t, json.Valid([]byte(text)), "raw fallback should be JSON")
	assert.Contains(t, text, "maintenance window")
}

func TestRenderLogin(t *testing.T) {
	t.Run("device code pending", func(t *testing.T) {
		resp := &pool.Response{DeviceCode: "DEF-456", AuthPending: true, AuthURL: "https://login.example"}
		text, isErr := RenderLogin(resp, target)
		assert.False(t, isErr)
		assert.Contains(t, text, "DEVICE CODE: DEF-456")
		assert.Contains(t, text, "https://login.example")
		assert.Contains(t, text, "Authentication pending")
	})

	t.Run("connected", func(t *testing.T) {
		resp := &pool.Response{Success: true}
		text, isErr := RenderLogin(resp, target)
		assert.False(t, isErr)
		assert.Equal(t, "Connected to ForIT (forit.io) - exo", text)
	})

	t.Run("failed", func(t *testing.T) {
		resp := &pool.Response{Error: "AADSTS50059"}
		text, isErr := RenderLogin(resp, target)
		assert.True(t, isErr)
		assert.Equal(t, "Login failed: AADSTS50059", text)
	})
}

func TestRenderStatus(t *testing.T) {
	tests := []struct {
		name string
		resp *pool.Response
		want string
	}{
		{"connected", &pool.Response{Connected: true}, "✓"},
		{"pending", &pool.Response{AuthPending: true}, "⏳"},
		{"disconnected", &pool.Response{}, "✗"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderStatus(tt.resp, target)
			assert.True(t, strings.HasPrefix(got, tt.want), "got %q", got)
			assert.Contains(t, got, "ForIT (forit.io) - exo")
		})
	}
}

func TestRenderSessions(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		resp := &pool.Response{Raw: []byte(`{"sessions": []}`)}
		assert.Equal(t, "No active sessions", RenderSessions(resp))
	})

	t.Run("mixed states", func(t *testing.T) {
		resp := &pool.Response{Raw: []byte(`{"sessions": [
			{"tenant": "forit.io", "module": "exo", "connected": true, "last_used": "10:01"},
			{"tenant": "contoso.com", "module": "pnp", "auth_pending": true, "last_used": "10:02"},
			{"tenant": "adatum.com", "module": "azure", "last_used": "10:03"}
		]}`)}

		got := RenderSessions(resp)
		assert.Contains(t, got, "✓ forit.io (exo)")
		assert.Contains(t, got, "⏳ contoso.com (pnp)")
		assert.Contains(t, got, "✗ adatum.com (azure)")
	})
}

func TestRenderDisconnect(t *testing.T) {
	text, isErr := RenderDisconnect(&pool.Response{Success: true}, target)
	assert.False(t, isErr)
	assert.Equal(t, "Disconnected ForIT (forit.io) - exo", text)

	text, isErr = RenderDisconnect(&pool.Response{Error: "no such session"}, target)
	assert.True(t, isErr)
	assert.Equal(t, "Error: no such session", text)
}
