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

import "encoding/json"

// Status is the session pool's response status for command execution.
// A connection+module pair is in exactly one auth state at the pool;
// this layer only observes it per call.
type Status string

const (
	// StatusSuccess means the command executed.
	StatusSuccess Status = "success"
	// StatusError means the command failed remotely (or transport failed;
	// transport failures are normalized into this status).
	StatusError Status = "error"
	// StatusAuthRequired means interactive device-code auth is needed.
	StatusAuthRequired Status = "auth_required"
	// StatusAuthInProgress means another caller already triggered auth for
	// this connection/module. Callers must retry, not re-trigger.
	StatusAuthInProgress Status = "auth_in_progress"
	// StatusConnected means the session is authenticated.
	StatusConnected Status = "connected"
	// StatusAuthPending means a device code was issued but not yet redeemed.
	StatusAuthPending Status = "auth_pending"
)

// Known reports whether the status is one of the pool's documented values.
// Anything else falls back to raw diagnostic rendering.
func (s Status) Known() bool {
	switch s {
	case StatusSuccess, StatusError, StatusAuthRequired, StatusAuthInProgress,
		StatusConnected, StatusAuthPending:
		return true
	default:
		return false
	}
}

// Response is the normalized session-pool response. Different endpoints
// populate different subsets; Raw retains the full body for the
// unknown-status diagnostic path and for endpoint-specific decoding.
type Response struct {
	Status Status `json:"status"`

	// Login/status/disconnect-style responses use booleans instead of Status.
	Success     bool `json:"success"`
	Connected   bool `json:"connected"`
	AuthPending bool `json:"auth_pending"`

	Output string `json:"output"`
	Result string `json:"result"`
	Error  string `json:"error"`

	DeviceCode      string `json:"device_code"`
	AuthURL         string `json:"auth_url"`
	AuthenticatedAs string `json:"authenticated_as"`

	Raw json.RawMessage `json:"-"`
}

// ErrorMessage returns the best available failure description.
func (r *Response) ErrorMessage() string {
	if r.Error != "" {
		return r.Error
	}
	if r.Result != "" {
		return r.Result
	}
	return "Unknown error"
}

// Metrics is the pool's /metrics document.
type Metrics struct {
	UptimeHuman    string  `json:"uptime_human"`
	TotalRequests  int     `json:"total_requests"`
	ErrorRate      float64 `json:"error_rate"`
	ActiveSessions int     `json:"active_sessions"`
	AvgResponseMS  float64 `json:"avg_response_ms"`
}

// Session is one entry in the pool's /sessions listing.
type Session struct {
	Tenant      string `json:"tenant"`
	Module      string `json:"module"`
	Connected   bool   `json:"connected"`
	AuthPending bool   `json:"auth_pending"`
	LastUsed    string `json:"last_used"`
}

// ConnectionInfo is one entry in the pool's /connections listing.
type ConnectionInfo struct {
	Tenant      string `json:"tenant"`
	Description string `json:"description"`
}

// DecodeMetrics decodes the raw body as a metrics document.
// Missing or malformed fields decode to zero values.
func (r *Response) DecodeMetrics() Metrics {
	var m Metrics
	if len(r.Raw) > 0 {
		_ = json.Unmarshal(r.Raw, &m)
	}
	return m
}

// DecodeSessions decodes the raw body's sessions list.
func (r *Response) DecodeSessions() []Session {
	var doc struct {
		Sessions []Session `json:"sessions"`
	}
	if len(r.Raw) > 0 {
		_ = json.Unmarshal(r.Raw, &doc)
	}
	return doc.Sessions
}

// DecodeConnections decodes the raw body's connections mapping.
func (r *Response) DecodeConnections() map[string]ConnectionInfo {
	var doc struct {
		Connections map[string]ConnectionInfo `json:"connections"`
	}
	if len(r.Raw) > 0 {
		_ = json.Unmarshal(r.Raw, &doc)
	}
	return doc.Connections
}
