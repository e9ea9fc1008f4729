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

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forit/m365-relay/internal/config"
	"github.com/forit/m365-relay/internal/log"
)

func TestBuildLogConfig_DebugEnvSurvivesDefaults(t *testing.T) {
	t.Setenv("M365_RELAY_DEBUG", "1")
	t.Setenv("M365_RELAY_LOG_LEVEL", "")
	t.Setenv("M365_RELAY_LOG_FORMAT", "")

	cfg := buildLogConfig(config.Defaults())

	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.AddSource)
}

func TestBuildLogConfig_ExplicitSettingsWin(t *testing.T) {
	t.Setenv("M365_RELAY_DEBUG", "")
	t.Setenv("M365_RELAY_LOG_LEVEL", "")
	t.Setenv("M365_RELAY_LOG_FORMAT", "")

	settings := config.Defaults()
	settings.LogLevel = "warn"
	settings.LogFormat = "text"

	cfg := buildLogConfig(settings)

	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, log.FormatText, cfg.Format)
}
