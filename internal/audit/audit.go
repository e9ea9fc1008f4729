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

// Package audit emits one record per tool invocation, on every exit path.
//
// The recorder is a fire-and-forget collaborator: failures inside a
// recorder must never affect tool results, and a process without a
// configured sink falls back to the no-op implementation.
package audit

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/forit/m365-relay/internal/log"
)

// summaryLimit caps result and error summaries in audit records.
const summaryLimit = 100

// Entry is one tool-call audit record.
type Entry struct {
	// Adapter is the adapter identity emitting the record (e.g. "mm").
	Adapter string

	// Tool is the invoked tool name.
	Tool string

	// Arguments are the raw tool arguments.
	Arguments map[string]any

	// Connection is the resolved connection name, if any.
	Connection string

	// Result is a truncated summary of a successful result.
	Result string

	// Error is a truncated summary of a failure.
	Error string

	// DurationMS is the invocation duration in milliseconds.
	DurationMS int64
}

// Recorder receives tool-call records.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Nop is a Recorder that discards all records.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) {}

// slogRecorder writes audit records as structured log lines.
type slogRecorder struct {
	logger *slog.Logger
}

// NewSlogRecorder returns a Recorder that logs each entry via the given logger.
func NewSlogRecorder(logger *slog.Logger) Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogRecorder{logger: logger}
}

// Record implements Recorder.
func (r *slogRecorder) Record(ctx context.Context, e Entry) {
	attrs := []any{
		"event", "tool_call",
		log.AdapterKey, e.Adapter,
		log.ToolKey, e.Tool,
		log.DurationKey, e.DurationMS,
	}
	if e.Connection != "" {
		attrs = append(attrs, log.ConnectionKey, e.Connection)
	}
	if len(e.Arguments) > 0 {
		attrs = append(attrs, "arguments", e.Arguments)
	}
	if e.Result != "" {
		attrs = append(attrs, "result", Truncate(e.Result))
	}

	if e.Error != "" {
		attrs = append(attrs, "error", Truncate(e.Error))
		r.logger.WarnContext(ctx, "tool call failed", attrs...)
		return
	}
	r.logger.InfoContext(ctx, "tool call", attrs...)
}

// Truncate caps a summary string for audit records. The cut never splits
// a multi-byte rune, so the result stays valid UTF-8.
func Truncate(s string) string {
	if len(s) <= summaryLimit {
		return s
	}
	cut := summaryLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
