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

import "regexp"

// PowerShell output arrives with terminal control sequences. Exactly two
// families are stripped: SGR color/style sequences and the cursor-visibility
// toggle. All other bytes pass through untouched.
var (
	sgrSequence    = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	cursorSequence = regexp.MustCompile(`\x1b\[\?[0-9]+[hl]`)
)

// StripControl removes terminal control sequences from command output.
func StripControl(s string) string {
	s = sgrSequence.ReplaceAllString(s, "")
	return cursorSequence.ReplaceAllString(s, "")
}
