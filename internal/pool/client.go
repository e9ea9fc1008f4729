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

// Package pool implements the HTTP client for the external session-pool
// service that owns PowerShell session lifecycles and device-code auth.
//
// The client is stateless. Transport failures never surface as Go errors:
// every call returns a Response, with timeouts and connection failures
// normalized into {status: "error", error: ...} so the dispatch layer has a
// single shape to handle.
package pool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	perrors "github.com/forit/m365-relay/pkg/errors"
	"github.com/forit/m365-relay/pkg/httpclient"
)

// DefaultBaseURL is the session pool's default endpoint.
const DefaultBaseURL = "http://localhost:5200"

// timedOutMessage is the fixed normalization for transport timeouts.
const timedOutMessage = "Request timed out"

// Config configures the pool client.
type Config struct {
	// BaseURL is the session pool endpoint. Default: DefaultBaseURL,
	// overridable via M365_RELAY_POOL_URL.
	BaseURL string

	// Timeout is the per-request timeout. Long by default: the pool may
	// block on interactive auth or slow remote execution.
	Timeout time.Duration

	// CallerID identifies this adapter in pool-side request logs.
	CallerID string
}

// DefaultConfig returns a Config with environment overrides applied.
func DefaultConfig() Config {
	cfg := Config{
		BaseURL: DefaultBaseURL,
		Timeout: 120 * time.Second,
	}
	if url := os.Getenv("M365_RELAY_POOL_URL"); url != "" {
		cfg.BaseURL = url
	}
	return cfg
}

// Client issues request/response calls to the session pool.
type Client struct {
	baseURL  string
	callerID string
	http     *http.Client
}

// NewClient creates a pool client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	hc := httpclient.DefaultConfig()
	hc.Timeout = cfg.Timeout

	client, err := httpclient.New(hc)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool http client: %w", err)
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		callerID: cfg.CallerID,
		http:     client,
	}, nil
}

// Call issues one request to the pool. GET when body is nil, POST with a
// JSON body otherwise. The returned Response is never nil.
func (c *Client) Call(ctx context.Context, endpoint string, body map[string]any) *Response {
	url := c.baseURL + endpoint

	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	} else {
		var payload []byte
		payload, err = json.Marshal(body)
		if err == nil {
			req, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
			if req != nil {
				req.Header.Set("Content-Type", "application/json")
			}
		}
	}
	if err != nil {
		return errorResponse(err.Error())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return errorResponse(timedOutMessage)
		}
		return errorResponse((&perrors.PoolError{Endpoint: endpoint, Message: err.Error(), Cause: err}).Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return errorResponse(timedOutMessage)
		}
		return errorResponse((&perrors.PoolError{Endpoint: endpoint, Message: err.Error(), Cause: err}).Error())
	}

	out := &Response{}
	if err := json.Unmarshal(raw, out); err != nil {
		return errorResponse(fmt.Sprintf("invalid response from pool: %v", err))
	}
	out.Raw = raw
	return out
}

// errorResponse builds the normalized transport-failure shape.
func errorResponse(message string) *Response {
	return &Response{Status: StatusError, Error: message}
}

// isTimeout reports whether err is a transport-level timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}
	return false
}

// Run executes a PowerShell command in an authenticated session.
func (c *Client) Run(ctx context.Context, connection, module, command string) *Response {
	return c.Call(ctx, "/run", map[string]any{
		"connection": connection,
		"module":     module,
		"command":    command,
		"caller_id":  c.callerID,
	})
}

// RunInSession executes a command addressed by tenant rather than
// connection name, for adapters that resolve the tenant locally.
func (c *Client) RunInSession(ctx context.Context, tenant, module, command string) *Response {
	body := sessionBody(tenant, module)
	body["command"] = command
	return c.Call(ctx, "/run", body)
}

// Login starts (or resumes) authentication for a tenant+module session.
// account selects among multiple cached accounts where the module prompts.
func (c *Client) Login(ctx context.Context, tenant, module, account string) *Response {
	body := sessionBody(tenant, module)
	body["account"] = account
	return c.Call(ctx, "/login", body)
}

// Status checks authentication status for a tenant+module session.
func (c *Client) Status(ctx context.Context, tenant, module string) *Response {
	return c.Call(ctx, "/status", sessionBody(tenant, module))
}

// Disconnect terminates a tenant+module session. The confirmation guard is
// enforced locally by the gateway before this is ever called.
func (c *Client) Disconnect(ctx context.Context, tenant, module string) *Response {
	return c.Call(ctx, "/disconnect", sessionBody(tenant, module))
}

// Sessions lists all active pool sessions.
func (c *Client) Sessions(ctx context.Context) *Response {
	return c.Call(ctx, "/sessions", nil)
}

// Connections lists the connections the pool itself knows about.
func (c *Client) Connections(ctx context.Context) *Response {
	return c.Call(ctx, "/connections", nil)
}

// Metrics fetches pool health metrics.
func (c *Client) Metrics(ctx context.Context) *Response {
	return c.Call(ctx, "/metrics", nil)
}
