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

import "testing"

func TestStripControl(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Get-Mailbox output", "Get-Mailbox output"},
		{"sgr color", "\x1b[32mOK\x1b[0m", "OK"},
		{"sgr multi-param", "\x1b[1;31mFAIL\x1b[0m", "FAIL"},
		{"cursor hide", "\x1b[?25lprogress\x1b[?25h", "progress"},
		{"mixed", "\x1b[33m\x1b[?25lwarn\x1b[0m rest", "warn rest"},
		{"other escapes preserved", "\x1b[2Jcleared", "\x1b[2Jcleared"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripControl(tt.in); got != tt.want {
				t.Errorf("StripControl(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
