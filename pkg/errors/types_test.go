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

package errors

import (
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "with field",
			err:  &ValidationError{Field: "appId", Message: "not a GUID"},
			want: "validation failed on appId: not a GUID",
		},
		{
			name: "without field",
			err:  &ValidationError{Message: "missing arguments"},
			want: "validation failed: missing arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotFoundError_ListsAvailable(t *testing.T) {
	err := &NotFoundError{
		Resource:  "connection",
		ID:        "Contoso",
		Available: []string{"Fabrikam", "ForIT"},
	}

	msg := err.Error()
	if !strings.Contains(msg, "connection not found: Contoso") {
		t.Errorf("missing not-found prefix: %q", msg)
	}
	if !strings.Contains(msg, "Fabrikam, ForIT") {
		t.Errorf("missing available list: %q", msg)
	}
}

func TestPoolError_Unwrap(t *testing.T) {
	cause := New("connection refused")
	err := &PoolError{Endpoint: "/run", Message: "request failed", Cause: cause}

	if !Is(err, cause) {
		t.Error("expected errors.Is to match the wrapped cause")
	}
	if got := err.Error(); !strings.Contains(got, "/run") {
		t.Errorf("Error() = %q, want endpoint mentioned", got)
	}
}

func TestWrap_NilPassthrough(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}
