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

// Package dispatch maps raw session-pool responses into terminal
// user-facing results.
//
// Command execution dispatches on the pool's status field; login and status
// calls use a narrower three-way presentation (connected, pending,
// not-connected) that reuses the same device-code rendering.
package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forit/m365-relay/internal/pool"
)

// NoOutputMarker replaces empty or all-whitespace command output so
// downstream consumers never see ambiguous emptiness.
const NoOutputMarker = "(no output)"

// DefaultSignInURL is shown when the pool omits an auth URL.
const DefaultSignInURL = "https://microsoft.com/devicelogin"

// Target carries the resolved-connection context a rendering needs:
// which connection and module the call addressed, and the identity
// expectations recorded for it.
type Target struct {
	Connection    string
	Tenant        string
	Module        string
	ExpectedEmail string
}

// signInHint derives the pre-login reminder from the expected identity,
// falling back to the tenant domain.
func (t Target) signInHint() string {
	if t.ExpectedEmail != "" {
		return fmt.Sprintf(">>> SIGN IN AS: %s <<<", t.ExpectedEmail)
	}
	if t.Tenant != "" {
		return fmt.Sprintf(">>> Sign in with your @%s account <<<", t.Tenant)
	}
	return ""
}

// RenderRun maps a /run response to user-facing text. The second return
// value marks the result as an error for the protocol consumer.
func RenderRun(resp *pool.Response, target Target) (string, bool) {
	switch resp.Status {
	case pool.StatusAuthRequired:
		return renderDeviceCode(resp, target), false

	case pool.StatusAuthInProgress:
		return "Auth in progress by another caller. Retry in a few seconds.", false

	case pool.StatusError:
		return fmt.Sprintf("Error: %s", resp.ErrorMessage()), true

	case pool.StatusSuccess:
		return renderOutput(resp, target), false

	default:
		// Unknown shape: show the raw response for diagnostic visibility.
		return renderRaw(resp), false
	}
}

// renderDeviceCode formats the interactive-auth instruction.
func renderDeviceCode(resp *pool.Response, target Target) string {
	authURL := resp.AuthURL
	if authURL == "" {
		authURL = DefaultSignInURL
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**DEVICE CODE: %s**\n", resp.DeviceCode)
	fmt.Fprintf(&b, "Go to: %s\n", authURL)
	if hint := target.signInHint(); hint != "" {
		b.WriteString(hint)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nConnection: %s\nModule: %s\n\n", target.Connection, target.Module)
	b.WriteString("After authenticating, retry the command.")
	return b.String()
}

// renderOutput strips control sequences and applies the identity check.
// An identity mismatch is a warning, never a failure: the command already
// ran.
func renderOutput(resp *pool.Response, target Target) string {
	output := StripControl(resp.Output)

	if resp.AuthenticatedAs != "" && target.ExpectedEmail != "" &&
		!strings.EqualFold(resp.AuthenticatedAs, target.ExpectedEmail) {
		warning := fmt.Sprintf("WARNING: Wrong account! Expected %s, got %s\n\n",
			target.ExpectedEmail, resp.AuthenticatedAs)
		output = warning + output
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return NoOutputMarker
	}
	return output
}

// renderRaw pretty-prints the pool's raw response body.
func renderRaw(resp *pool.Response) string {
	if len(resp.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, resp.Raw, "", "  "); err == nil {
			return buf.String()
		}
		return string(resp.Raw)
	}
	data, _ := json.MarshalIndent(resp, "", "  ")
	return string(data)
}

// RenderLogin maps a /login response to the three-way presentation:
// pending (device code shown), connected, or failed.
func RenderLogin(resp *pool.Response, target Target) (string, bool) {
	if resp.DeviceCode != "" {
		authURL := resp.AuthURL
		if authURL == "" {
			authURL = DefaultSignInURL
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**DEVICE CODE: %s**\n", resp.DeviceCode)
		fmt.Fprintf(&b, "Go to: %s\n", authURL)
		if hint := target.signInHint(); hint != "" {
			b.WriteString(hint)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nConnection: %s\nTenant: %s\nModule: %s\n\n",
			target.Connection, target.Tenant, target.Module)
		if resp.AuthPending {
			b.WriteString("Authentication pending. Complete device code flow, then check status.")
		} else {
			b.WriteString("Connected")
		}
		return b.String(), false
	}

	if resp.Success {
		return fmt.Sprintf("Connected to %s (%s) - %s", target.Connection, target.Tenant, target.Module), false
	}

	return fmt.Sprintf("Login failed: %s", resp.ErrorMessage()), true
}

// RenderStatus maps a /status response to a one-line state summary.
func RenderStatus(resp *pool.Response, target Target) string {
	switch {
	case resp.Connected:
		return fmt.Sprintf("✓ %s (%s) - %s: Connected", target.Connection, target.Tenant, target.Module)
	case resp.AuthPending:
		return fmt.Sprintf("⏳ %s (%s) - %s: Authentication pending (complete device code flow)",
			target.Connection, target.Tenant, target.Module)
	default:
		return fmt.Sprintf("✗ %s (%s) - %s: Not connected", target.Connection, target.Tenant, target.Module)
	}
}

// RenderSessions formats the pool's session listing.
func RenderSessions(resp *pool.Response) string {
	sessions := resp.DecodeSessions()
	if len(sessions) == 0 {
		return "No active sessions"
	}

	lines := []string{"Sessions:", strings.Repeat("-", 50)}
	for _, s := range sessions {
		marker := "✗"
		if s.Connected {
			marker = "✓"
		} else if s.AuthPending {
			marker = "⏳"
		}
		lines = append(lines, fmt.Sprintf("%s %s (%s) - Last used: %s", marker, s.Tenant, s.Module, s.LastUsed))
	}
	return strings.Join(lines, "\n")
}

// RenderDisconnect maps a /disconnect response to user-facing text.
func RenderDisconnect(resp *pool.Response, target Target) (string, bool) {
	if resp.Success {
		return fmt.Sprintf("Disconnected %s (%s) - %s", target.Connection, target.Tenant, target.Module), false
	}
	return fmt.Sprintf("Error: %s", resp.ErrorMessage()), true
}
